// Package events fans job lifecycle notifications out over Redis Pub/Sub.
// The websocket handler subscribes and forwards them to connected clients.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// JobsChannel is the Pub/Sub channel carrying job events.
const JobsChannel = "hirely:events:jobs"

// Event types.
const (
	TypeJobCreated       = "job.created"
	TypeJobStatusChanged = "job.status_changed"
	TypeJobDeleted       = "job.deleted"
)

// JobEvent 统一的 WebSocket 消息协议（通过 Redis Pub/Sub 转发给前端）。
// 注意：这里的字段名与前端解析保持一致。
type JobEvent struct {
	Type          string `json:"type"`
	JobID         uint   `json:"job_id"`
	Title         string `json:"title,omitempty"`
	IsOpen        bool   `json:"is_open"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Publisher writes job events to Redis.
type Publisher struct {
	redis redis.UniversalClient
}

// NewPublisher returns a Publisher over the given Redis client.
func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{redis: client}
}

// Publish marshals and publishes one event. Callers treat failures as
// non-fatal: a missed notification never blocks the write that caused it.
func (p *Publisher) Publish(ctx context.Context, event JobEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}
	if err := p.redis.Publish(ctx, JobsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish job event: %w", err)
	}
	return nil
}
