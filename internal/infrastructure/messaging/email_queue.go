package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/web3camp/cohort-hub/internal/application/dispatch"
)

// CourseDayEmailTopic is the queue topic carrying per-recipient email tasks.
// Bulk fan-out publishes one task per recipient here so the HTTP handler can
// answer immediately instead of waiting on every send.
const CourseDayEmailTopic = "course_day_email"

// EmailTask is one queued email.
type EmailTask struct {
	To       string               `json:"to"`
	Template string               `json:"template"`
	Subject  string               `json:"subject"`
	Params   dispatch.EmailParams `json:"params"`
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS EMAIL QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// RedisEmailQueue implements the email fan-out queue over Redis pub/sub.
//
// Delivery is at-most-once: a task published while no consumer is running is
// lost, and a consumer crash drops the in-flight task. Durable queuing is a
// known gap shared with the rest of the outbound paths.
type RedisEmailQueue struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisEmailQueue creates the queue over an existing Redis client.
func NewRedisEmailQueue(client *redis.Client, logger *slog.Logger) *RedisEmailQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisEmailQueue{
		client: client,
		logger: logger.With("component", "email_queue"),
	}
}

// Publish enqueues one email task.
func (q *RedisEmailQueue) Publish(ctx context.Context, task EmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal email task: %w", err)
	}
	if err := q.client.Publish(ctx, CourseDayEmailTopic, payload).Err(); err != nil {
		return fmt.Errorf("publish email task: %w", err)
	}
	q.logger.Debug("queued email", "to", task.To, "template", task.Template)
	return nil
}

// EmailSendFunc consumes one dequeued task.
type EmailSendFunc func(ctx context.Context, task EmailTask) error

// Consume subscribes to the topic and feeds every task to send, blocking
// until ctx is cancelled. Send failures are logged and dropped; a malformed
// payload is logged and skipped.
func (q *RedisEmailQueue) Consume(ctx context.Context, send EmailSendFunc) error {
	sub := q.client.Subscribe(ctx, CourseDayEmailTopic)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var task EmailTask
			if err := json.Unmarshal([]byte(msg.Payload), &task); err != nil {
				q.logger.Error("malformed email task", "error", err)
				continue
			}

			q.logger.Info("sending queued email",
				"subject", task.Subject,
				"template", task.Template,
				"to", task.To,
			)
			if err := send(ctx, task); err != nil {
				q.logger.Error("queued email send failed", "to", task.To, "error", err)
			}
		}
	}
}
