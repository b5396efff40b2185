package tone

type Formality string

const (
	FormalityFormal  Formality = "formal"
	FormalityNeutral Formality = "neutral"
	FormalityCasual  Formality = "casual"
)

func (f Formality) Valid() bool {
	switch f {
	case FormalityFormal, FormalityNeutral, FormalityCasual:
		return true
	}
	return false
}

type Friendliness string

const (
	FriendlinessFriendly Friendliness = "friendly"
	FriendlinessNeutral  Friendliness = "neutral"
	FriendlinessReserved Friendliness = "reserved"
)

func (f Friendliness) Valid() bool {
	switch f {
	case FriendlinessFriendly, FriendlinessNeutral, FriendlinessReserved:
		return true
	}
	return false
}

type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

func (l Length) Valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return true
	}
	return false
}

type EmojiUsage string

const (
	EmojiNone    EmojiUsage = "none"
	EmojiMinimal EmojiUsage = "minimal"
	EmojiAllowed EmojiUsage = "allowed"
)

func (e EmojiUsage) Valid() bool {
	switch e {
	case EmojiNone, EmojiMinimal, EmojiAllowed:
		return true
	}
	return false
}

// Vector is the structured description of a reply style.
type Vector struct {
	Formality       Formality    `json:"formality" yaml:"formality" validate:"required,oneof=formal neutral casual"`
	Friendliness    Friendliness `json:"friendliness" yaml:"friendliness" validate:"required,oneof=friendly neutral reserved"`
	PreferredLength Length       `json:"preferred_length" yaml:"preferred_length" validate:"required,oneof=short medium long"`
	EmojiUsage      EmojiUsage   `json:"emoji_usage" yaml:"emoji_usage" validate:"required,oneof=none minimal allowed"`
	Tags            []string     `json:"tags" yaml:"-"`
}

// Valid reports whether every enumerated field holds one of its allowed values.
func (v Vector) Valid() bool {
	return v.Formality.Valid() && v.Friendliness.Valid() && v.PreferredLength.Valid() && v.EmojiUsage.Valid()
}

// EmojiEnabled collapses the three-way emoji usage into the on/off switch used by prompts.
func (v Vector) EmojiEnabled() bool {
	return v.EmojiUsage == EmojiMinimal || v.EmojiUsage == EmojiAllowed
}

// EmojiUsageFor maps an on/off emoji choice back onto a vector value.
func EmojiUsageFor(enabled bool) EmojiUsage {
	if enabled {
		return EmojiMinimal
	}
	return EmojiNone
}
