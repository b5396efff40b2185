package preference

import (
	"fmt"
	"slices"

	"github.com/replywise/replywise/internal/tone"
)

// Settings is the effective length/emoji choice for one generation.
type Settings struct {
	Length tone.Length `json:"length"`
	Emoji  bool        `json:"emoji"`
}

// Style is the tone guidance handed to the prompt builder.
type Style struct {
	PresetID    string   `json:"preset_id"`
	Instruction string   `json:"instruction"`
	Tags        []string `json:"tags"`
}

// Resolver applies manual > preset > profile > default precedence.
type Resolver struct {
	catalog *tone.Catalog
}

func NewResolver(catalog *tone.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve computes each field independently. It reads nothing but s.
func (r *Resolver) Resolve(s State) Settings {
	var preset *tone.Vector
	if s.PresetID != MatchProfile {
		v := r.catalog.ForwardMap(s.PresetID, nil)
		preset = &v
	}

	var profile *tone.Vector
	if s.PresetID == MatchProfile && s.Profile != nil {
		profile = s.Profile
	}

	return Settings{
		Length: r.resolveLength(s, preset, profile),
		Emoji:  r.resolveEmoji(s, preset, profile),
	}
}

func (r *Resolver) resolveLength(s State, preset, profile *tone.Vector) tone.Length {
	switch {
	case s.ManualLengthSet && s.ManualLength.Valid():
		return s.ManualLength
	case preset != nil:
		return preset.PreferredLength
	case profile != nil && profile.PreferredLength.Valid():
		return profile.PreferredLength
	case s.DefaultLength.Valid():
		return s.DefaultLength
	}
	return tone.LengthMedium
}

func (r *Resolver) resolveEmoji(s State, preset, profile *tone.Vector) bool {
	switch {
	case s.ManualEmojiSet:
		return s.ManualEmoji
	case preset != nil:
		return preset.EmojiEnabled()
	case profile != nil && profile.EmojiUsage.Valid():
		return profile.EmojiEnabled()
	}
	return s.DefaultEmoji
}

// Style derives the tone instruction and tags for s. Custom tags extend a
// concrete preset's tags; under MatchProfile the profile's own tags are used,
// and a profile bound without a vector contributes no guidance at all.
func (r *Resolver) Style(s State, customTags []string) Style {
	if s.PresetID == MatchProfile {
		switch {
		case s.Profile != nil:
			return Style{
				PresetID:    MatchProfile,
				Instruction: profileInstruction(*s.Profile),
				Tags:        slices.Clone(s.Profile.Tags),
			}
		case s.ProfileBound:
			return Style{PresetID: MatchProfile}
		}
	}

	id := s.PresetID
	p, ok := r.catalog.ByID(id)
	if !ok {
		p = r.catalog.Default()
		id = p.ID
	}
	v := r.catalog.ForwardMap(id, customTags)
	return Style{
		PresetID:    id,
		Instruction: p.Instruction,
		Tags:        v.Tags,
	}
}

func profileInstruction(v tone.Vector) string {
	if !v.Formality.Valid() || !v.Friendliness.Valid() {
		return ""
	}
	return fmt.Sprintf("Match the recipient's preferred tone: %s formality, %s friendliness.", v.Formality, v.Friendliness)
}
