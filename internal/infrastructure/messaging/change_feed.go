package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/domain/submission"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// Change feed topics. The platform's write paths publish a notification here
// for every document mutation the trigger layer cares about, carrying full
// before/after snapshots so handlers never re-read the changed document.
const (
	UserUpdatedTopic       = "users_updated"
	SubmissionCreatedTopic = "lessons_submissions_created"
)

// userChangePayload is the wire format on UserUpdatedTopic.
type userChangePayload struct {
	Before user.User `json:"before"`
	After  user.User `json:"after"`
}

// submissionChangePayload is the wire format on SubmissionCreatedTopic.
type submissionChangePayload struct {
	Submission submission.LessonSubmission `json:"submission"`
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS CHANGE FEED
// ══════════════════════════════════════════════════════════════════════════════

// RedisChangeFeed bridges document-change notifications from Redis pub/sub
// onto the in-process event bus. Delivery guarantees follow pub/sub:
// notifications published while the worker is down are lost.
type RedisChangeFeed struct {
	client *redis.Client
	bus    shared.EventPublisher
	logger *slog.Logger
}

// NewRedisChangeFeed creates the feed.
func NewRedisChangeFeed(client *redis.Client, bus shared.EventPublisher, logger *slog.Logger) *RedisChangeFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisChangeFeed{
		client: client,
		bus:    bus,
		logger: logger.With("component", "change_feed"),
	}
}

// Run subscribes to the change topics and republishes every notification as
// a domain event, blocking until ctx is cancelled.
func (f *RedisChangeFeed) Run(ctx context.Context) error {
	sub := f.client.Subscribe(ctx, UserUpdatedTopic, SubmissionCreatedTopic)
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
			f.handle(msg)
		}
	}
}

func (f *RedisChangeFeed) handle(msg *redis.Message) {
	switch msg.Channel {
	case UserUpdatedTopic:
		var p userChangePayload
		if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
			f.logger.Error("malformed user change notification", "error", err)
			return
		}
		if err := f.bus.Publish(user.NewUpdatedEvent(p.Before, p.After)); err != nil {
			f.logger.Error("publish user event failed", "user_id", p.After.ID, "error", err)
		}

	case SubmissionCreatedTopic:
		var p submissionChangePayload
		if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
			f.logger.Error("malformed submission notification", "error", err)
			return
		}
		if err := f.bus.Publish(submission.NewCreatedEvent(p.Submission)); err != nil {
			f.logger.Error("publish submission event failed",
				"submission_id", p.Submission.ID, "error", err)
		}

	default:
		f.logger.Warn("notification on unexpected topic", "topic", msg.Channel)
	}
}
