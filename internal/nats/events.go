package nats

import (
	"time"

	"github.com/google/uuid"
)

// Stream names.
const (
	StreamReplies = "REPLYWISE_REPLIES"
)

// Subject constants.
const (
	SubjectReplyGenerated = "replywise.replies.generated"
)

// ReplyGeneratedEvent is published after an authenticated generation. It
// carries identifiers and settings only, never message or reply text.
type ReplyGeneratedEvent struct {
	EventID   uuid.UUID  `json:"event_id"`
	ReplyID   *uuid.UUID `json:"reply_id,omitempty"`
	UserID    uuid.UUID  `json:"user_id"`
	ProfileID *uuid.UUID `json:"profile_id,omitempty"`
	PresetID  string     `json:"preset_id"`
	Length    string     `json:"length"`
	Emoji     bool       `json:"emoji"`
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	Persisted bool       `json:"persisted"`
	Timestamp time.Time  `json:"timestamp"`
}
