package preference

import (
	"github.com/replywise/replywise/internal/tone"
)

// MatchProfile is the preset selection that defers to the bound profile's vector.
const MatchProfile = "match-profile"

// State is everything the resolver needs for one generation. Transitions
// return a new State and never mutate the receiver.
type State struct {
	ManualLengthSet bool        `json:"manual_length_set"`
	ManualLength    tone.Length `json:"manual_length,omitempty"`
	ManualEmojiSet  bool        `json:"manual_emoji_set"`
	ManualEmoji     bool        `json:"manual_emoji"`

	PresetID     string       `json:"preset_id"`
	ProfileBound bool         `json:"profile_bound"`
	Profile      *tone.Vector `json:"profile,omitempty"`

	DefaultLength tone.Length `json:"default_length"`
	DefaultEmoji  bool        `json:"default_emoji"`
}

// BindProfile attaches a profile vector and switches to matching it.
func (s State) BindProfile(v tone.Vector) State {
	s.ProfileBound = true
	s.Profile = &v
	s.PresetID = MatchProfile
	return s.clearManual()
}

// BindProfileWithoutTone attaches a profile that has no tone vector. Matching
// it defines nothing, so every field falls through to the defaults.
func (s State) BindProfileWithoutTone() State {
	s.ProfileBound = true
	s.Profile = nil
	s.PresetID = MatchProfile
	return s.clearManual()
}

// UnbindProfile detaches the profile. There is nothing left to match, so the
// selection falls back to the given default preset.
func (s State) UnbindProfile(defaultPresetID string) State {
	s.ProfileBound = false
	s.Profile = nil
	s.PresetID = defaultPresetID
	return s.clearManual()
}

// SelectPreset switches the preset selection. Any choice, including
// MatchProfile, discards manual overrides.
func (s State) SelectPreset(id string) State {
	s.PresetID = id
	return s.clearManual()
}

// SetLength records a manual length edit that wins until the next transition.
func (s State) SetLength(l tone.Length) State {
	s.ManualLengthSet = true
	s.ManualLength = l
	return s
}

// SetEmoji records a manual emoji edit that wins until the next transition.
func (s State) SetEmoji(enabled bool) State {
	s.ManualEmojiSet = true
	s.ManualEmoji = enabled
	return s
}

func (s State) clearManual() State {
	s.ManualLengthSet = false
	s.ManualLength = ""
	s.ManualEmojiSet = false
	s.ManualEmoji = false
	return s
}
