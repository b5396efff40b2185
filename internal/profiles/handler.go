package profiles

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/replywise/replywise/internal/api"
	"github.com/replywise/replywise/internal/auth"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	p, err := h.svc.Create(r.Context(), ownerID, &req)
	if err != nil {
		h.handleServiceError(w, "creating profile", err)
		return
	}

	api.JSON(w, http.StatusCreated, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	params := DefaultListParams()
	if p := r.URL.Query().Get("page"); p != "" {
		if page, err := strconv.Atoi(p); err == nil && page > 0 {
			params.Page = page
		}
	}
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		if pageSize, err := strconv.Atoi(ps); err == nil && pageSize > 0 && pageSize <= 100 {
			params.PageSize = pageSize
		}
	}

	list, total, err := h.svc.ListByOwner(r.Context(), ownerID, params)
	if err != nil {
		slog.Error("listing profiles", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, list, total, params.Page, params.PageSize)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p := GetProfileFromContext(r.Context())
	if p == nil {
		api.HandleError(w, api.ErrProfileNotFound)
		return
	}

	api.JSON(w, http.StatusOK, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := GetProfileFromContext(r.Context())
	if p == nil {
		api.HandleError(w, api.ErrProfileNotFound)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	updated, err := h.svc.Update(r.Context(), p, &req)
	if err != nil {
		h.handleServiceError(w, "updating profile", err)
		return
	}

	api.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := GetProfileFromContext(r.Context())
	if p == nil {
		api.HandleError(w, api.ErrProfileNotFound)
		return
	}

	if err := h.svc.Delete(r.Context(), p.ID); err != nil {
		slog.Error("deleting profile", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "profile deleted successfully")
}

// OwnershipMiddleware loads the profile named in the URL and rejects anyone
// but its owner. A foreign profile answers 404 so ids cannot be probed.
func (h *Handler) OwnershipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}

		profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
		if err != nil {
			api.HandleError(w, api.NewBadRequestError("invalid profile ID"))
			return
		}

		p, err := h.svc.GetByID(r.Context(), profileID)
		if err != nil {
			slog.Error("fetching profile for ownership check", "error", err)
			api.HandleError(w, api.ErrInternalServer)
			return
		}
		if p == nil {
			api.HandleError(w, api.ErrProfileNotFound)
			return
		}

		if p.OwnerUserID.String() != claims.UserID {
			slog.Warn("ownership violation attempt",
				"profile_id", profileID,
				"profile_owner", p.OwnerUserID,
				"requester", claims.UserID,
				"path", r.URL.Path,
				"method", r.Method,
			)
			api.HandleError(w, api.ErrProfileNotFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetProfileInContext(r.Context(), p)))
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, ErrUnknownPreset) {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}
	slog.Error(action, "error", err)
	api.HandleError(w, api.ErrInternalServer)
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
