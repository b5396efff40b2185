package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
type Publisher struct {
	js jetstream.Publisher
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.Publisher) *Publisher {
	return &Publisher{js: js}
}

// PublishReplyGenerated publishes a generation event.
func (p *Publisher) PublishReplyGenerated(ctx context.Context, event ReplyGeneratedEvent) error {
	return p.publish(ctx, SubjectReplyGenerated, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
