package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeLogoCleanup = "logo:cleanup"
)

// LogoCleanupPayload 描述需要删除的孤儿 Logo 对象。
// 公司行写入失败时，已上传的 Logo 通过该任务做补偿删除。
type LogoCleanupPayload struct {
	ObjectKey     string `json:"object_key"`
	CorrelationID string `json:"correlation_id"`
}

// NewLogoCleanupTask 构造一个 Logo 清理任务。
func NewLogoCleanupTask(objectKey, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(LogoCleanupPayload{
		ObjectKey:     objectKey,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLogoCleanup, payload), nil
}

// Enqueuer 将清理任务写入队列，实现 store.CleanupEnqueuer。
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer 构造 Enqueuer。
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueLogoCleanup 入队一个 Logo 清理任务。
func (e *Enqueuer) EnqueueLogoCleanup(ctx context.Context, objectKey string) error {
	task, err := NewLogoCleanupTask(objectKey, "")
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.MaxRetry(5))
	return err
}
