package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"hirely/internal/auth"
	"hirely/internal/events"
)

// WsHandler 负责 WebSocket 鉴权与职位事件转发。
// 客户端建立连接后先发送一条 auth 消息，校验通过才开始接收事件。
type WsHandler struct {
	redisClient    redis.UniversalClient
	authService    *auth.AuthService
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewWsHandler 构造 WebSocket 处理器。
func NewWsHandler(redisClient redis.UniversalClient, authService *auth.AuthService, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	h := &WsHandler{
		redisClient:    redisClient,
		authService:    authService,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(h.allowedOrigins) == 0 {
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleConnection 升级连接、完成鉴权并转发职位事件。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	logger := h.logger.With(slog.String("client_ip", c.ClientIP()))

	userID, ok := h.authenticate(conn, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.Uint64("user_id", uint64(userID)))

	// 消费并丢弃后续客户端消息，以便及时感知连接关闭。
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.forwardEvents(ctx, conn, logger)
}

// authenticate 等待客户端的第一条 auth 消息并校验访问令牌。
func (h *WsHandler) authenticate(conn *websocket.Conn, logger *slog.Logger) (uint, bool) {
	_, message, err := conn.ReadMessage()
	if err != nil {
		return 0, false
	}

	var msg wsAuthMessage
	if err := json.Unmarshal(message, &msg); err != nil || msg.Type != "auth" {
		logger.Warn("websocket authentication failed: malformed auth message")
		return 0, false
	}

	claims, err := h.authService.ValidateToken(msg.Token)
	if err != nil || claims.TokenType != "access" {
		logger.Warn("websocket authentication failed: invalid token")
		return 0, false
	}
	return claims.UserID, true
}

// forwardEvents 订阅 Redis 频道并把职位事件推送给客户端。
func (h *WsHandler) forwardEvents(ctx context.Context, conn *websocket.Conn, logger *slog.Logger) {
	pubsub := h.redisClient.Subscribe(ctx, events.JobsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			logger.Info("websocket connection closed")
			return
		case msg, ok := <-ch:
			if !ok {
				logger.Info("event subscription closed")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				logger.Info("websocket write failed, closing", slog.Any("error", err))
				return
			}
		}
	}
}
