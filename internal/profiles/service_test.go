package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replywise/replywise/internal/auth"
	"github.com/replywise/replywise/internal/tone"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type memoryRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*ProfileRow
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[uuid.UUID]*ProfileRow)}
}

func (m *memoryRepo) Create(_ context.Context, row *ProfileRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *row
	m.rows[row.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*ProfileRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memoryRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*ProfileRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ProfileRow
	for _, row := range m.rows {
		if row.OwnerUserID == ownerID {
			cp := *row
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := min(offset+limit, len(out))
	return out[offset:end], nil
}

func (m *memoryRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	rows, _ := m.ListByOwner(ctx, ownerID, 1000, 0)
	return int64(len(rows)), nil
}

func (m *memoryRepo) Update(_ context.Context, row *ProfileRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *row
	m.rows[row.ID] = &cp
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	catalog, err := tone.LoadDefault()
	require.NoError(t, err)
	enc, err := auth.NewEncryptor(testKey)
	require.NoError(t, err)
	repo := newMemoryRepo()
	return NewService(repo, catalog, enc), repo
}

func TestService_CreateFromPreset(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()

	p, err := svc.Create(context.Background(), owner, &CreateProfileRequest{
		Name:       "Sam",
		TonePreset: "friendly",
		CustomTags: []string{"warm", "sports"},
	})
	require.NoError(t, err)

	assert.Equal(t, TypeIndividual, p.Type)
	require.NotNil(t, p.TonePreferences)
	assert.Equal(t, tone.FormalityCasual, p.TonePreferences.Formality)
	assert.Equal(t, []string{"friendly", "warm", "casual", "sports"}, p.TonePreferences.Tags)
	assert.Equal(t, "friendly", p.MatchedPreset)
}

func TestService_CreateWithExplicitVector(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(context.Background(), uuid.New(), &CreateProfileRequest{
		Name: "Board",
		Type: TypeGroup,
		TonePreferences: &tone.Vector{
			Formality:       tone.FormalityFormal,
			Friendliness:    tone.FriendlinessReserved,
			PreferredLength: tone.LengthLong,
			EmojiUsage:      tone.EmojiNone,
			Tags:            []string{"polite", "formal", "polite"},
		},
		TonePreset: "casual",
	})
	require.NoError(t, err)

	assert.Equal(t, tone.LengthLong, p.TonePreferences.PreferredLength)
	assert.Equal(t, []string{"polite", "formal"}, p.TonePreferences.Tags)
	assert.Equal(t, "diplomatic", p.MatchedPreset)
}

func TestService_CreateUnknownPreset(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), uuid.New(), &CreateProfileRequest{Name: "X", TonePreset: "sarcastic"})
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestService_NotesAreSealedAtRest(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, uuid.New(), &CreateProfileRequest{Name: "Ana", Notes: "allergic to meetings"})
	require.NoError(t, err)

	row := repo.rows[p.ID]
	assert.NotContains(t, row.Notes, "meetings")
	assert.Nil(t, row.TonePreferences)

	got, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "allergic to meetings", got.Notes)
	assert.Nil(t, got.TonePreferences)
	assert.Empty(t, got.MatchedPreset)
}

func TestService_GetOwned(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.Create(ctx, owner, &CreateProfileRequest{Name: "Lee"})
	require.NoError(t, err)

	got, err := svc.GetOwned(ctx, p.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, got)

	foreign, err := svc.GetOwned(ctx, p.ID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, foreign)

	missing, err := svc.GetOwned(ctx, uuid.New(), owner)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, uuid.New(), &CreateProfileRequest{Name: "Kim", TonePreset: "professional"})
	require.NoError(t, err)

	preset := "casual"
	name := "Kimberly"
	updated, err := svc.Update(ctx, p, &UpdateProfileRequest{Name: &name, TonePreset: &preset})
	require.NoError(t, err)
	assert.Equal(t, "Kimberly", updated.Name)
	assert.Equal(t, tone.LengthShort, updated.TonePreferences.PreferredLength)
	assert.Equal(t, "casual", updated.MatchedPreset)

	cleared, err := svc.Update(ctx, updated, &UpdateProfileRequest{ClearTonePreferences: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.TonePreferences)

	got, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TonePreferences)
	assert.Equal(t, "Kimberly", got.Name)
}

func TestService_PartiallyInvalidStoredVector(t *testing.T) {
	svc, repo := newTestService(t)
	id := uuid.New()
	now := time.Now()
	repo.rows[id] = &ProfileRow{
		ID: id, OwnerUserID: uuid.New(), Name: "Old", Type: "individual",
		TonePreferences: []byte(`{"formality":"formal","preferred_length":"gigantic","tags":["a","a"]}`),
		CreatedAt:       now, UpdatedAt: now,
	}

	p, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p.TonePreferences)
	assert.False(t, p.TonePreferences.Valid())
	assert.Equal(t, []string{"a"}, p.TonePreferences.Tags)
}

func TestRenderContext(t *testing.T) {
	assert.Empty(t, RenderContext(nil))

	p := &Profile{
		Name:             "Sam",
		Type:             TypeIndividual,
		RelationshipType: "manager",
		TonePreferences: &tone.Vector{
			Formality:       tone.FormalityFormal,
			Friendliness:    tone.FriendlinessNeutral,
			PreferredLength: tone.LengthLong,
			EmojiUsage:      tone.EmojiNone,
		},
	}

	want := "Recipient profile:\n" +
		"- Name: Sam\n" +
		"- Type: individual\n" +
		"- Relationship: manager\n" +
		"- Preferred tone: formal formality, neutral friendliness, long replies, none emoji use"
	assert.Equal(t, want, RenderContext(p))
	assert.Equal(t, RenderContext(p), RenderContext(p))
}

func TestRenderContext_SkipsInvalidToneFields(t *testing.T) {
	p := &Profile{
		Name:            "Jo",
		Notes:           "  likes brevity ",
		TonePreferences: &tone.Vector{Formality: "weird", PreferredLength: tone.LengthShort},
	}
	assert.Equal(t, "Recipient profile:\n- Name: Jo\n- Notes: likes brevity\n- Preferred tone: short replies", RenderContext(p))
}

func newTestRouter(h *Handler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.WithUserClaims(req.Context(), &auth.AccessClaims{UserID: userID.String()})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/profiles", h.Create)
	r.Get("/profiles", h.List)
	r.Route("/profiles/{profileID}", func(r chi.Router) {
		r.Use(h.OwnershipMiddleware)
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CRUDAndOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHandler(svc)
	owner := uuid.New()
	ownerRouter := newTestRouter(h, owner)
	intruderRouter := newTestRouter(h, uuid.New())

	rec := doJSON(t, ownerRouter, http.MethodPost, "/profiles", map[string]any{
		"name":        "Sam",
		"tone_preset": "empathetic",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "empathetic", created.Data.MatchedPreset)
	path := "/profiles/" + created.Data.ID.String() + "/"

	rec = doJSON(t, ownerRouter, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, intruderRouter, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, intruderRouter, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, ownerRouter, http.MethodGet, "/profiles/not-a-uuid/", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, ownerRouter, http.MethodPut, path, map[string]any{"relationship_type": "sibling"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ownerRouter, http.MethodGet, "/profiles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data       []Profile `json:"data"`
		TotalCount int64     `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.EqualValues(t, 1, list.TotalCount)
	assert.Equal(t, "sibling", list.Data[0].RelationshipType)

	rec = doJSON(t, ownerRouter, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ownerRouter, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(NewHandler(svc), uuid.New())

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"tone_preset": "friendly"}},
		{"bad type", map[string]any{"name": "A", "type": "crowd"}},
		{"unknown preset", map[string]any{"name": "A", "tone_preset": "sarcastic"}},
		{"bad vector", map[string]any{"name": "A", "tone_preferences": map[string]any{"formality": "loud"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/profiles", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
