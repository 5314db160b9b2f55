package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"hirely/internal/api/middleware"
	"hirely/internal/auth"
	"hirely/internal/database"
)

const refreshTokenCookieName = "refresh_token"
const refreshTokenBlacklistKeyPrefix = "auth:refresh:blacklist:"
const loginRateLimitPerHour = 30

// AuthHandler 处理注册、登录、刷新与退出。
type AuthHandler struct {
	db          *gorm.DB
	authService *auth.AuthService
	redis       redis.UniversalClient
	logger      *slog.Logger
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, redisClient redis.UniversalClient, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		db:          db,
		authService: authService,
		redis:       redisClient,
		logger:      logger,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=candidate recruiter"`
}

// Register 创建新用户账号。角色默认求职者，可声明为招聘方。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = database.RoleCandidate
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.String("username", req.Username))

	var existing database.User
	if err := h.db.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error; err == nil {
		logger.Info("register conflict: user already exists")
		Conflict(c, "username already taken")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("register lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	user := database.User{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		logger.Error("create user failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("role", user.Role),
	)
	c.Status(http.StatusCreated)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

// Login 校验口令并返回 Token，刷新令牌走 HttpOnly Cookie。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.String("username", req.Username))

	rateKey := fmt.Sprintf("auth:login:rate:%s", c.ClientIP())
	if count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour); err != nil {
		logger.Warn("login rate counter unavailable", slog.Any("error", err))
	} else if count > loginRateLimitPerHour {
		Error(c, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Unauthorized(c)
			return
		}
		logger.Error("login lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login rejected: bad credentials")
		Unauthorized(c)
		return
	}

	pair, err := h.authService.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		logger.Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
		Role:        user.Role,
	})
}

// Refresh 用刷新令牌换取新的令牌对，旧刷新令牌进入黑名单。
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(refreshTokenCookieName)
	if err != nil || raw == "" {
		Unauthorized(c)
		return
	}

	claims, err := h.authService.ValidateToken(raw)
	if err != nil || claims.TokenType != "refresh" {
		Unauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("user_id", uint64(claims.UserID)))

	blacklistKey := refreshTokenBlacklistKeyPrefix + claims.ID
	if n, err := h.redis.Exists(ctx, blacklistKey).Result(); err != nil {
		logger.Error("refresh blacklist lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	} else if n > 0 {
		logger.Info("refresh rejected: token blacklisted")
		Unauthorized(c)
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		Unauthorized(c)
		return
	}

	pair, err := h.authService.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		logger.Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.blacklistRefreshToken(c, claims)
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
		Role:        user.Role,
	})
}

// Logout 作废刷新令牌并清除 Cookie。
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw, err := c.Cookie(refreshTokenCookieName); err == nil && raw != "" {
		if claims, err := h.authService.ValidateToken(raw); err == nil && claims.TokenType == "refresh" {
			h.blacklistRefreshToken(c, claims)
		}
	}

	c.SetCookie(refreshTokenCookieName, "", -1, "/v1/auth", "", true, true)
	c.Status(http.StatusNoContent)
}

// blacklistRefreshToken 把刷新令牌的 jti 写入黑名单，TTL 为令牌剩余有效期。
func (h *AuthHandler) blacklistRefreshToken(c *gin.Context, claims *auth.TokenClaims) {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	key := refreshTokenBlacklistKeyPrefix + claims.ID
	if err := h.redis.Set(c.Request.Context(), key, "1", ttl).Err(); err != nil {
		middleware.LoggerFromContext(c).Error("blacklist refresh token failed", slog.Any("error", err))
	}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	maxAge := int(h.authService.RefreshTokenTTL().Seconds())
	c.SetCookie(refreshTokenCookieName, token, maxAge, "/v1/auth", "", true, true)
}
