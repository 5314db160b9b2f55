package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"hirely/internal/tasks"
)

// LogoStore 是清理任务需要的最小存储接口。
type LogoStore interface {
	DeleteLogo(ctx context.Context, objectKey string) error
}

// LogoCleanupHandler 处理孤儿 Logo 的补偿删除任务。
type LogoCleanupHandler struct {
	storage LogoStore
	logger  *slog.Logger
}

// NewLogoCleanupHandler 构造 LogoCleanupHandler。
func NewLogoCleanupHandler(storage LogoStore, logger *slog.Logger) *LogoCleanupHandler {
	return &LogoCleanupHandler{storage: storage, logger: logger}
}

// ProcessTask 删除任务指定的对象。对象不存在视为成功，由存储层保证幂等。
func (h *LogoCleanupHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload tasks.LogoCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal logo cleanup payload: %w", err)
	}

	logger := h.logger.With(
		slog.String("object_key", payload.ObjectKey),
		slog.String("correlation_id", payload.CorrelationID),
	)

	if err := h.storage.DeleteLogo(ctx, payload.ObjectKey); err != nil {
		logger.Error("delete orphaned logo failed", slog.Any("error", err))
		return fmt.Errorf("delete orphaned logo %q: %w", payload.ObjectKey, err)
	}

	logger.Info("orphaned logo removed")
	return nil
}
