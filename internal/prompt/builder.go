// Package prompt turns resolved tone settings into a chat-completion prompt.
// Build is pure: identical inputs always produce byte-identical prompts, which
// keeps stored prompt payloads reproducible.
package prompt

import (
	"errors"
	"strings"

	"github.com/replywise/replywise/internal/tone"
)

var ErrMessageOrContextRequired = errors.New("message_or_context_required")

type Mode string

const (
	ModeAuthenticated Mode = "authenticated"
	ModeGuest         Mode = "guest"
)

const (
	EmojiRequiredDirective  = "Emojis are required: include 1-3 emojis that fit the message naturally."
	EmojiForbiddenDirective = "Emojis are forbidden: do not use any emojis."
)

var lengthDirectives = map[tone.Length]string{
	tone.LengthShort:  "concise, 2-3 sentences",
	tone.LengthMedium: "1-2 paragraphs",
	tone.LengthLong:   "detailed, 2-3 paragraphs",
}

var maxTokens = map[tone.Length]int{
	tone.LengthShort:  150,
	tone.LengthMedium: 300,
	tone.LengthLong:   500,
}

var personas = map[Mode]string{
	ModeAuthenticated: "You are a personal writing assistant. Draft a reply the user can send as-is, written in their voice and adapted to the recipient described below.",
	ModeGuest:         "You are a writing assistant. Draft a reply the user can send as-is.",
}

type Input struct {
	Mode              Mode
	Message           string
	AdditionalContext string
	Length            tone.Length
	Emoji             bool
	ToneInstruction   string
	Tags              []string
	ProfileContext    string
}

type Prompt struct {
	System    string `json:"system_prompt" yaml:"system_prompt"`
	User      string `json:"user_prompt" yaml:"user_prompt"`
	MaxTokens int    `json:"max_tokens" yaml:"max_tokens"`
}

// Build assembles the system and user prompts. At least one of Message and
// AdditionalContext must be non-blank.
func Build(in Input) (Prompt, error) {
	hasMessage := strings.TrimSpace(in.Message) != ""
	hasContext := strings.TrimSpace(in.AdditionalContext) != ""
	if !hasMessage && !hasContext {
		return Prompt{}, ErrMessageOrContextRequired
	}

	length := in.Length
	if !length.Valid() {
		length = tone.LengthMedium
	}

	return Prompt{
		System:    buildSystem(in, length),
		User:      buildUser(in, length, hasMessage, hasContext),
		MaxTokens: maxTokens[length],
	}, nil
}

// MaxTokens returns the completion budget for a length.
func MaxTokens(l tone.Length) int {
	if n, ok := maxTokens[l]; ok {
		return n
	}
	return maxTokens[tone.LengthMedium]
}

func buildSystem(in Input, length tone.Length) string {
	persona, ok := personas[in.Mode]
	if !ok {
		persona = personas[ModeGuest]
	}

	sections := []string{
		persona,
		strings.TrimSpace(in.ProfileContext),
		"Length: " + lengthDirectives[length] + ".",
		styleDirective(in.ToneInstruction, in.Tags),
		emojiDirective(in.Emoji),
	}

	var b strings.Builder
	for _, s := range sections {
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s)
	}
	return b.String()
}

func styleDirective(instruction string, tags []string) string {
	var lines []string
	if s := strings.TrimSpace(instruction); s != "" {
		lines = append(lines, "Tone: "+s)
	}
	if len(tags) > 0 {
		lines = append(lines, "Style: "+strings.Join(tags, ", ")+".")
	}
	return strings.Join(lines, "\n")
}

func emojiDirective(enabled bool) string {
	if enabled {
		return EmojiRequiredDirective
	}
	return EmojiForbiddenDirective
}

func buildUser(in Input, length tone.Length, hasMessage, hasContext bool) string {
	var parts []string
	if hasMessage {
		parts = append(parts, "Message to reply to:\n"+in.Message)
	} else {
		parts = append(parts, "There is no message to reply to. Compose a new message from scratch.")
	}
	if hasContext {
		parts = append(parts, "Additional context:\n"+in.AdditionalContext)
	}
	parts = append(parts, summary(length, in.Emoji))
	return strings.Join(parts, "\n\n")
}

func summary(length tone.Length, emoji bool) string {
	e := "off"
	if emoji {
		e = "on"
	}
	return "(Requested length: " + string(length) + "; emojis: " + e + ")"
}
