package activity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/replywise/replywise/internal/nats"
)

const ConsumerName = "activity-recorder"

// fetchRetryDelay is how long Start waits after a failed fetch.
var fetchRetryDelay = time.Second

// Fetcher is the part of a jetstream.Consumer the recorder pulls from.
type Fetcher interface {
	Fetch(batch int, opts ...jetstream.FetchOpt) (jetstream.MessageBatch, error)
}

// Consumer records reply-generated events as history entries.
type Consumer struct {
	repo   Repository
	source Fetcher
}

func NewConsumer(repo Repository, source Fetcher) *Consumer {
	return &Consumer{repo: repo, source: source}
}

// Start pulls events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("activity consumer started", "consumer", ConsumerName)

	for {
		msgs, err := c.source.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("activity consumer: fetching events", "error", err)
			if !sleepCtx(ctx, fetchRetryDelay) {
				return nil
			}
			continue
		}

		for msg := range msgs.Messages() {
			c.handle(ctx, msg)
		}
		if err := msgs.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
			slog.Warn("activity consumer: batch ended early", "error", err)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) handle(ctx context.Context, msg jetstream.Msg) {
	var event inats.ReplyGeneratedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		// A malformed payload will never parse; drop it instead of redelivering.
		slog.Error("activity consumer: unmarshaling event", "error", err)
		_ = msg.Term()
		return
	}

	entry := entryFromEvent(event)
	if err := c.repo.Insert(ctx, entry); err != nil {
		slog.Error("activity consumer: persisting entry", "error", err, "user_id", event.UserID)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()
	slog.Debug("activity consumer: recorded generation", "user_id", event.UserID, "entry_id", entry.ID)
}

func entryFromEvent(event inats.ReplyGeneratedEvent) *Entry {
	id := event.EventID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Entry{
		ID:        id,
		UserID:    event.UserID,
		ReplyID:   event.ReplyID,
		ProfileID: event.ProfileID,
		PresetID:  event.PresetID,
		Length:    event.Length,
		Emoji:     event.Emoji,
		Provider:  event.Provider,
		Model:     event.Model,
		Persisted: event.Persisted,
		CreatedAt: event.Timestamp,
	}
}
