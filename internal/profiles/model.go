package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/replywise/replywise/internal/tone"
)

type Type string

const (
	TypeIndividual Type = "individual"
	TypeGroup      Type = "group"
)

// Profile describes a recipient the user writes to.
type Profile struct {
	ID               uuid.UUID    `json:"id"`
	OwnerUserID      uuid.UUID    `json:"owner_user_id"`
	Name             string       `json:"name"`
	Type             Type         `json:"type"`
	RelationshipType string       `json:"relationship_type,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	TonePreferences  *tone.Vector `json:"tone_preferences"`
	MatchedPreset    string       `json:"matched_preset,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// ProfileRow is the database representation. Notes are sealed and the tone
// vector is raw JSONB, nil when the profile has none.
type ProfileRow struct {
	ID               uuid.UUID
	OwnerUserID      uuid.UUID
	Name             string
	Type             string
	RelationshipType string
	Notes            string
	TonePreferences  []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// A tone can be given either as an explicit vector or as a preset id plus
// custom tags, expanded through the catalog.
type CreateProfileRequest struct {
	Name             string       `json:"name" validate:"required,min=1,max=255"`
	Type             Type         `json:"type" validate:"omitempty,oneof=individual group"`
	RelationshipType string       `json:"relationship_type" validate:"max=100"`
	Notes            string       `json:"notes" validate:"max=2000"`
	TonePreferences  *tone.Vector `json:"tone_preferences"`
	TonePreset       string       `json:"tone_preset" validate:"max=64"`
	CustomTags       []string     `json:"custom_tags" validate:"max=20,dive,min=1,max=40"`
}

type UpdateProfileRequest struct {
	Name                 *string      `json:"name" validate:"omitempty,min=1,max=255"`
	Type                 *Type        `json:"type" validate:"omitempty,oneof=individual group"`
	RelationshipType     *string      `json:"relationship_type" validate:"omitempty,max=100"`
	Notes                *string      `json:"notes" validate:"omitempty,max=2000"`
	TonePreferences      *tone.Vector `json:"tone_preferences"`
	TonePreset           *string      `json:"tone_preset" validate:"omitempty,max=64"`
	CustomTags           []string     `json:"custom_tags" validate:"max=20,dive,min=1,max=40"`
	ClearTonePreferences bool         `json:"clear_tone_preferences"`
}

type ListProfilesParams struct {
	Page     int
	PageSize int
}

func DefaultListParams() ListProfilesParams {
	return ListProfilesParams{
		Page:     1,
		PageSize: 20,
	}
}
