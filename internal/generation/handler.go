package generation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/replywise/replywise/internal/api"
	"github.com/replywise/replywise/internal/auth"
	"github.com/replywise/replywise/internal/metrics"
	"github.com/replywise/replywise/internal/preference"
	"github.com/replywise/replywise/internal/prompt"
	"github.com/replywise/replywise/internal/quota"
	"github.com/replywise/replywise/internal/replies"
	"github.com/replywise/replywise/internal/tone"
)

const (
	codeMessageRequired   = "message_or_context_required"
	codeGuestLimitReached = "guest_limit_reached"
)

type ReplyGetter interface {
	Get(ctx context.Context, id, userID uuid.UUID) (*replies.Reply, error)
}

type Handler struct {
	svc      *Service
	guard    *quota.Guard
	catalog  *tone.Catalog
	replies  ReplyGetter
	validate *validator.Validate
}

func NewHandler(svc *Service, guard *quota.Guard, catalog *tone.Catalog, getter ReplyGetter) *Handler {
	return &Handler{
		svc:      svc,
		guard:    guard,
		catalog:  catalog,
		replies:  getter,
		validate: validator.New(),
	}
}

func (h *Handler) GenerateReply(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req AuthenticatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	res, err := h.svc.GenerateForUser(r.Context(), uid, req)
	if err != nil {
		h.handleGenerateError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, res)
}

type guestResponse struct {
	Reply                string `json:"reply"`
	RemainingGenerations int    `json:"remaining_generations"`
}

// GuestGenerate serves anonymous visitors. The count lives in a cookie and
// only advances after a reply was actually produced.
func (h *Handler) GuestGenerate(w http.ResponseWriter, r *http.Request) {
	count := h.guard.Read(r)
	decision := h.guard.Check(count)
	if !decision.Allowed {
		metrics.GuestQuotaRejectionsTotal.Inc()
		api.JSONErrorDetail(w, http.StatusTooManyRequests, codeGuestLimitReached,
			"Free generations used up. Sign up to keep drafting replies.",
			map[string]int{"remaining_generations": 0},
		)
		return
	}

	var req GuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	res, err := h.svc.GenerateForGuest(r.Context(), req)
	if err != nil {
		h.handleGenerateError(w, err)
		return
	}

	h.guard.Write(w, count+1)
	api.JSON(w, http.StatusOK, guestResponse{
		Reply:                res.Reply,
		RemainingGenerations: decision.Remaining,
	})
}

func (h *Handler) GetReply(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "replyID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid reply ID"))
		return
	}

	reply, err := h.replies.Get(r.Context(), id, uid)
	if err != nil {
		slog.Error("fetching reply", "error", err, "reply_id", id)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if reply == nil {
		api.HandleError(w, api.NewNotFoundError("reply not found"))
		return
	}

	api.JSON(w, http.StatusOK, reply)
}

func (h *Handler) ListTones(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.catalog.Presets())
}

type matchRequest struct {
	Tags []string `json:"tags" validate:"max=50,dive,max=40"`
}

type matchResponse struct {
	PresetID string `json:"preset_id"`
}

func (h *Handler) MatchTone(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	api.JSON(w, http.StatusOK, matchResponse{PresetID: h.catalog.ReverseMatch(req.Tags)})
}

type resolveRequest struct {
	Profile      *tone.Vector `json:"profile"`
	TonePreset   string       `json:"tone_preset" validate:"max=64"`
	Length       *tone.Length `json:"length" validate:"omitempty,oneof=short medium long"`
	EmojiEnabled *bool        `json:"emoji_enabled"`
	CustomTags   []string     `json:"custom_tags" validate:"max=20,dive,min=1,max=40"`
}

type resolveResponse struct {
	Settings preference.Settings `json:"settings"`
	Style    preference.Style    `json:"style"`
	State    preference.State    `json:"state"`
}

// ResolvePreferences previews what a generation would use for the given
// choices without calling the model.
func (h *Handler) ResolvePreferences(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	st := h.svc.StateFor(req.Profile != nil, req.Profile, req.TonePreset, req.Length, req.EmojiEnabled)
	resolver := h.svc.Resolver()
	api.JSON(w, http.StatusOK, resolveResponse{
		Settings: resolver.Resolve(st),
		Style:    resolver.Style(st, req.CustomTags),
		State:    st,
	})
}

func (h *Handler) handleGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prompt.ErrMessageOrContextRequired):
		api.JSONErrorDetail(w, http.StatusBadRequest, codeMessageRequired,
			"Provide a message or some additional context.", nil)
	case errors.Is(err, ErrProfileNotFound):
		api.HandleError(w, api.ErrProfileNotFound)
	case errors.Is(err, ErrUpstream):
		slog.Error("generating reply", "error", err)
		api.HandleError(w, api.ErrUpstream)
	default:
		slog.Error("generating reply", "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}

func userID(r *http.Request) (uuid.UUID, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
