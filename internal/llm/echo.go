package llm

import (
	"context"
	"fmt"
)

// EchoClient answers without a network call. It is registered for local
// development and used by tests.
type EchoClient struct{}

func (EchoClient) Complete(_ context.Context, req ChatRequest) (string, error) {
	var last string
	for _, m := range req.Messages {
		if m.Role == RoleUser {
			last = m.Content
		}
	}
	return fmt.Sprintf("[model=%s max_tokens=%d] %s", req.Model, req.MaxTokens, collapse(last)), nil
}

func collapse(text string) string {
	if len(text) > 120 {
		return text[:120] + "..."
	}
	return text
}
