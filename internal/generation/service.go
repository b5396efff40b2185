// Package generation drafts one reply per request: it resolves the effective
// tone, builds the prompt, calls the chat model, and records the result.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/replywise/replywise/internal/llm"
	"github.com/replywise/replywise/internal/metrics"
	inats "github.com/replywise/replywise/internal/nats"
	"github.com/replywise/replywise/internal/preference"
	"github.com/replywise/replywise/internal/profiles"
	"github.com/replywise/replywise/internal/prompt"
	"github.com/replywise/replywise/internal/replies"
	"github.com/replywise/replywise/internal/tone"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUpstream        = errors.New("chat completion failed")
)

type ProfileLookup interface {
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*profiles.Profile, error)
}

type ReplySaver interface {
	Save(ctx context.Context, p replies.SaveParams) (*uuid.UUID, error)
}

type EventPublisher interface {
	PublishReplyGenerated(ctx context.Context, event inats.ReplyGeneratedEvent) error
}

type Options struct {
	DefaultLength tone.Length
	DefaultEmoji  bool
	Temperature   float32
}

type Service struct {
	catalog  *tone.Catalog
	resolver *preference.Resolver
	registry *llm.Registry
	profiles ProfileLookup
	replies  ReplySaver
	events   EventPublisher
	opts     Options
	now      func() time.Time
}

// NewService wires the generation flow. events may be nil when event
// publishing is disabled.
func NewService(catalog *tone.Catalog, registry *llm.Registry, profileLookup ProfileLookup, saver ReplySaver, events EventPublisher, opts Options) *Service {
	if !opts.DefaultLength.Valid() {
		opts.DefaultLength = tone.LengthMedium
	}
	return &Service{
		catalog:  catalog,
		resolver: preference.NewResolver(catalog),
		registry: registry,
		profiles: profileLookup,
		replies:  saver,
		events:   events,
		opts:     opts,
		now:      time.Now,
	}
}

type AuthenticatedRequest struct {
	Message           string       `json:"message" validate:"max=8000"`
	AdditionalContext string       `json:"additional_context" validate:"max=8000"`
	ProfileID         *uuid.UUID   `json:"profile_id"`
	Length            *tone.Length `json:"length" validate:"omitempty,oneof=short medium long"`
	EmojiEnabled      *bool        `json:"emoji_enabled"`
	TonePreset        string       `json:"tone_preset" validate:"max=64"`
	CustomTags        []string     `json:"custom_tags" validate:"max=20,dive,min=1,max=40"`
	ReplyID           *uuid.UUID   `json:"reply_id"`
	AIAgent           string       `json:"ai_agent" validate:"max=64"`
}

type GuestRequest struct {
	Message           string       `json:"message" validate:"max=4000"`
	AdditionalContext string       `json:"additional_context" validate:"max=4000"`
	Length            *tone.Length `json:"length" validate:"omitempty,oneof=short medium long"`
	EmojiEnabled      *bool        `json:"emoji_enabled"`
	TonePreset        string       `json:"tone_preset" validate:"max=64"`
}

type Debug struct {
	SystemPrompt string      `json:"system_prompt"`
	UserPrompt   string      `json:"user_prompt"`
	ProfileID    *uuid.UUID  `json:"profile_id"`
	LengthUsed   tone.Length `json:"length_used"`
	AIProvider   string      `json:"ai_provider"`
	Model        string      `json:"model"`
}

type Result struct {
	Reply   string     `json:"reply"`
	ReplyID *uuid.UUID `json:"reply_id"`
	Debug   Debug      `json:"debug"`
}

type GuestResult struct {
	Reply string `json:"reply"`
}

// BaseState is the preference state before any profile, preset or manual
// choice is applied.
func (s *Service) BaseState() preference.State {
	return preference.State{
		PresetID:      s.catalog.Default().ID,
		DefaultLength: s.opts.DefaultLength,
		DefaultEmoji:  s.opts.DefaultEmoji,
	}
}

// StateFor replays the request's choices onto the base state in UI order:
// bind the profile, pick a preset, then apply manual overrides. A bound
// profile with a nil vector still switches the selection to match-profile.
func (s *Service) StateFor(profileBound bool, profileVector *tone.Vector, presetID string, length *tone.Length, emoji *bool) preference.State {
	st := s.BaseState()
	switch {
	case profileVector != nil:
		st = st.BindProfile(*profileVector)
	case profileBound:
		st = st.BindProfileWithoutTone()
	}
	if presetID != "" {
		st = st.SelectPreset(presetID)
	}
	if length != nil {
		st = st.SetLength(*length)
	}
	if emoji != nil {
		st = st.SetEmoji(*emoji)
	}
	return st
}

func (s *Service) Resolver() *preference.Resolver {
	return s.resolver
}

func (s *Service) GenerateForUser(ctx context.Context, userID uuid.UUID, req AuthenticatedRequest) (*Result, error) {
	if isBlank(req.Message) && isBlank(req.AdditionalContext) {
		return nil, prompt.ErrMessageOrContextRequired
	}

	var profile *profiles.Profile
	if req.ProfileID != nil {
		p, err := s.profiles.GetOwned(ctx, *req.ProfileID, userID)
		if err != nil {
			return nil, fmt.Errorf("looking up profile: %w", err)
		}
		if p == nil {
			return nil, ErrProfileNotFound
		}
		profile = p
	}

	var profileVector *tone.Vector
	if profile != nil {
		profileVector = profile.TonePreferences
	}
	st := s.StateFor(profile != nil, profileVector, req.TonePreset, req.Length, req.EmojiEnabled)
	settings := s.resolver.Resolve(st)
	style := s.resolver.Style(st, req.CustomTags)

	built, err := prompt.Build(prompt.Input{
		Mode:              prompt.ModeAuthenticated,
		Message:           req.Message,
		AdditionalContext: req.AdditionalContext,
		Length:            settings.Length,
		Emoji:             settings.Emoji,
		ToneInstruction:   style.Instruction,
		Tags:              style.Tags,
		ProfileContext:    profiles.RenderContext(profile),
	})
	if err != nil {
		return nil, err
	}

	provider, text, err := s.complete(ctx, req.AIAgent, built)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(string(prompt.ModeAuthenticated), "upstream_error").Inc()
		return nil, err
	}

	var profileID *uuid.UUID
	if profile != nil {
		id := profile.ID
		profileID = &id
	}

	replyID, err := s.replies.Save(ctx, replies.SaveParams{
		ExistingID: req.ReplyID,
		ProfileID:  profileID,
		UserID:     userID,
		Payload: replies.PromptPayload{
			Mode:              string(prompt.ModeAuthenticated),
			Message:           req.Message,
			AdditionalContext: req.AdditionalContext,
			PresetID:          style.PresetID,
			Length:            string(settings.Length),
			Emoji:             settings.Emoji,
			SystemPrompt:      built.System,
			UserPrompt:        built.User,
			MaxTokens:         built.MaxTokens,
			Provider:          provider.Name,
			Model:             provider.Model,
		},
		Response: text,
	})
	if err != nil {
		metrics.ReplyPersistFailuresTotal.Inc()
		slog.Error("persisting generated reply",
			"error", err,
			"user_id", userID,
			"profile_id", profileID,
		)
		replyID = nil
	}

	s.publish(ctx, inats.ReplyGeneratedEvent{
		EventID:   uuid.New(),
		ReplyID:   replyID,
		UserID:    userID,
		ProfileID: profileID,
		PresetID:  style.PresetID,
		Length:    string(settings.Length),
		Emoji:     settings.Emoji,
		Provider:  provider.Name,
		Model:     provider.Model,
		Persisted: replyID != nil,
		Timestamp: s.now().UTC(),
	})

	metrics.GenerationsTotal.WithLabelValues(string(prompt.ModeAuthenticated), "success").Inc()

	return &Result{
		Reply:   text,
		ReplyID: replyID,
		Debug: Debug{
			SystemPrompt: built.System,
			UserPrompt:   built.User,
			ProfileID:    profileID,
			LengthUsed:   settings.Length,
			AIProvider:   provider.Name,
			Model:        provider.Model,
		},
	}, nil
}

// GenerateForGuest drafts a reply without a profile and without persisting
// anything. Quota enforcement is the caller's job.
func (s *Service) GenerateForGuest(ctx context.Context, req GuestRequest) (*GuestResult, error) {
	if isBlank(req.Message) && isBlank(req.AdditionalContext) {
		return nil, prompt.ErrMessageOrContextRequired
	}

	presetID := req.TonePreset
	if presetID == preference.MatchProfile {
		presetID = ""
	}
	st := s.StateFor(false, nil, presetID, req.Length, req.EmojiEnabled)
	settings := s.resolver.Resolve(st)
	style := s.resolver.Style(st, nil)

	built, err := prompt.Build(prompt.Input{
		Mode:              prompt.ModeGuest,
		Message:           req.Message,
		AdditionalContext: req.AdditionalContext,
		Length:            settings.Length,
		Emoji:             settings.Emoji,
		ToneInstruction:   style.Instruction,
		Tags:              style.Tags,
	})
	if err != nil {
		return nil, err
	}

	_, text, err := s.complete(ctx, "", built)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(string(prompt.ModeGuest), "upstream_error").Inc()
		return nil, err
	}

	metrics.GenerationsTotal.WithLabelValues(string(prompt.ModeGuest), "success").Inc()
	return &GuestResult{Reply: text}, nil
}

// complete makes the single model call of a request. It is neither retried
// nor given its own timeout; the request context bounds it.
func (s *Service) complete(ctx context.Context, agent string, p prompt.Prompt) (llm.Provider, string, error) {
	provider, err := s.registry.Resolve(agent)
	if err != nil {
		return llm.Provider{}, "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	start := time.Now()
	text, err := provider.Client.Complete(ctx, llm.ChatRequest{
		Model: provider.Model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: p.System},
			{Role: llm.RoleUser, Content: p.User},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	metrics.CompletionDuration.WithLabelValues(provider.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		return provider, "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return provider, strings.TrimSpace(text), nil
}

func (s *Service) publish(ctx context.Context, event inats.ReplyGeneratedEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishReplyGenerated(ctx, event); err != nil {
		slog.Warn("publishing reply generated event", "error", err, "user_id", event.UserID)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
