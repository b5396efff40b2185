package replies

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Reply matches the generated_replies table schema.
type Reply struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	ProfileID     *uuid.UUID      `json:"profile_id,omitempty"`
	PromptPayload json.RawMessage `json:"prompt_payload"`
	ResponseText  string          `json:"response_text"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PromptPayload is the snapshot of inputs that produced a reply.
type PromptPayload struct {
	Mode              string `json:"mode"`
	Message           string `json:"message,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
	PresetID          string `json:"preset_id"`
	Length            string `json:"length"`
	Emoji             bool   `json:"emoji"`
	SystemPrompt      string `json:"system_prompt"`
	UserPrompt        string `json:"user_prompt"`
	MaxTokens         int    `json:"max_tokens"`
	Provider          string `json:"provider"`
	Model             string `json:"model"`
}

// SaveParams describes one create-or-update of a generated reply.
type SaveParams struct {
	ExistingID *uuid.UUID
	ProfileID  *uuid.UUID
	UserID     uuid.UUID
	Payload    PromptPayload
	Response   string
}
