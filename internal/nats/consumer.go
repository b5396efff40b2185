package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// FetchTimeout bounds one pull from a durable consumer.
const FetchTimeout = 5 * time.Second

// DurableConsumer creates or updates a pull consumer on the replies stream.
// Messages must be acked explicitly and are redelivered a bounded number of
// times.
func (c *Client) DurableConsumer(ctx context.Context, name, filterSubject string) (jetstream.Consumer, error) {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, StreamReplies, jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: filterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring consumer %s on %s: %w", name, StreamReplies, err)
	}
	return consumer, nil
}
