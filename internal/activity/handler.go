package activity

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/replywise/replywise/internal/api"
	"github.com/replywise/replywise/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns the caller's generation history, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError(err.Error()))
		return
	}

	entries, total, err := h.repo.ListByUser(r.Context(), userID, params)
	if err != nil {
		slog.Error("listing generation history", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, entries, total, params.Page, params.PageSize)
}

func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	params := DefaultListParams()
	params.PresetID = q.Get("preset_id")
	params.Provider = q.Get("provider")

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		params.Page = p
	}
	if ps, err := strconv.Atoi(q.Get("page_size")); err == nil && ps > 0 && ps <= 100 {
		params.PageSize = ps
	}

	for name, dst := range map[string]**time.Time{"from": &params.From, "to": &params.To} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ListParams{}, errInvalidTime(name)
		}
		*dst = &t
	}

	return params, nil
}

type errInvalidTime string

func (e errInvalidTime) Error() string {
	return "invalid " + string(e) + " timestamp, expected RFC3339"
}
