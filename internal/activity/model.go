// Package activity keeps a per-user history of generations, fed by the
// reply-generated events on NATS.
package activity

import (
	"time"

	"github.com/google/uuid"
)

// Entry matches the generation_events table schema.
type Entry struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ReplyID   *uuid.UUID `json:"reply_id,omitempty"`
	ProfileID *uuid.UUID `json:"profile_id,omitempty"`
	PresetID  string     `json:"preset_id"`
	Length    string     `json:"length"`
	Emoji     bool       `json:"emoji"`
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	Persisted bool       `json:"persisted"`
	CreatedAt time.Time  `json:"created_at"`
}

type ListParams struct {
	PresetID string
	Provider string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

func DefaultListParams() ListParams {
	return ListParams{
		Page:     1,
		PageSize: 20,
	}
}
