package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/replywise/replywise/internal/auth"
	"github.com/replywise/replywise/internal/tone"
)

var ErrUnknownPreset = errors.New("unknown tone preset")

type Service struct {
	repo      Repository
	catalog   *tone.Catalog
	encryptor *auth.Encryptor
}

func NewService(repo Repository, catalog *tone.Catalog, encryptor *auth.Encryptor) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		encryptor: encryptor,
	}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req *CreateProfileRequest) (*Profile, error) {
	vector, err := s.toneFrom(req.TonePreferences, req.TonePreset, req.CustomTags)
	if err != nil {
		return nil, err
	}

	profileType := req.Type
	if profileType == "" {
		profileType = TypeIndividual
	}

	now := time.Now().UTC()
	p := &Profile{
		ID:               uuid.New(),
		OwnerUserID:      ownerID,
		Name:             req.Name,
		Type:             profileType,
		RelationshipType: req.RelationshipType,
		Notes:            req.Notes,
		TonePreferences:  vector,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	row, err := s.profileToRow(p)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	s.decorate(p)
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return s.rowToProfile(row)
}

// GetOwned returns the profile only when it belongs to userID. Missing and
// foreign profiles are indistinguishable to the caller.
func (s *Service) GetOwned(ctx context.Context, id, userID uuid.UUID) (*Profile, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.OwnerUserID != userID {
		return nil, nil
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, params ListProfilesParams) ([]*Profile, int64, error) {
	offset := (params.Page - 1) * params.PageSize

	rows, err := s.repo.ListByOwner(ctx, ownerID, params.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*Profile, 0, len(rows))
	for _, row := range rows {
		p, err := s.rowToProfile(row)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, count, nil
}

func (s *Service) Update(ctx context.Context, current *Profile, req *UpdateProfileRequest) (*Profile, error) {
	p := *current

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.RelationshipType != nil {
		p.RelationshipType = *req.RelationshipType
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}

	switch {
	case req.ClearTonePreferences:
		p.TonePreferences = nil
	case req.TonePreferences != nil || req.TonePreset != nil:
		preset := ""
		if req.TonePreset != nil {
			preset = *req.TonePreset
		}
		vector, err := s.toneFrom(req.TonePreferences, preset, req.CustomTags)
		if err != nil {
			return nil, err
		}
		p.TonePreferences = vector
	}

	p.UpdatedAt = time.Now().UTC()

	row, err := s.profileToRow(&p)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	s.decorate(&p)
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// toneFrom builds the stored vector from either an explicit vector or a
// preset id expanded through the catalog. An explicit vector wins.
func (s *Service) toneFrom(explicit *tone.Vector, presetID string, customTags []string) (*tone.Vector, error) {
	if explicit != nil {
		v := *explicit
		v.Tags = dedupe(append(slices.Clone(v.Tags), customTags...))
		return &v, nil
	}
	if presetID == "" {
		return nil, nil
	}
	if _, ok := s.catalog.ByID(presetID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, presetID)
	}
	v := s.catalog.ForwardMap(presetID, customTags)
	return &v, nil
}

// decorate fills derived, non-persisted fields.
func (s *Service) decorate(p *Profile) {
	p.MatchedPreset = ""
	if p.TonePreferences != nil {
		p.MatchedPreset = s.catalog.ReverseMatch(p.TonePreferences.Tags)
	}
}

func (s *Service) profileToRow(p *Profile) (*ProfileRow, error) {
	sealed, err := s.encryptor.Seal(p.Notes, p.ID.String())
	if err != nil {
		return nil, fmt.Errorf("sealing notes: %w", err)
	}

	var toneJSON []byte
	if p.TonePreferences != nil {
		toneJSON, err = json.Marshal(p.TonePreferences)
		if err != nil {
			return nil, fmt.Errorf("marshaling tone preferences: %w", err)
		}
	}

	return &ProfileRow{
		ID:               p.ID,
		OwnerUserID:      p.OwnerUserID,
		Name:             p.Name,
		Type:             string(p.Type),
		RelationshipType: p.RelationshipType,
		Notes:            sealed,
		TonePreferences:  toneJSON,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}, nil
}

func (s *Service) rowToProfile(row *ProfileRow) (*Profile, error) {
	notes, err := s.encryptor.Open(row.Notes, row.ID.String())
	if err != nil {
		return nil, fmt.Errorf("opening notes: %w", err)
	}

	p := &Profile{
		ID:               row.ID,
		OwnerUserID:      row.OwnerUserID,
		Name:             row.Name,
		Type:             Type(row.Type),
		RelationshipType: row.RelationshipType,
		Notes:            notes,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}

	if len(row.TonePreferences) > 0 && string(row.TonePreferences) != "null" {
		var v tone.Vector
		if err := json.Unmarshal(row.TonePreferences, &v); err != nil {
			return nil, fmt.Errorf("unmarshaling tone preferences: %w", err)
		}
		if !v.Valid() {
			// Individual invalid fields are ignored by the resolver.
			slog.Warn("profile has partially invalid tone preferences", "profile_id", row.ID)
		}
		v.Tags = dedupe(v.Tags)
		p.TonePreferences = &v
	}

	s.decorate(p)
	return p, nil
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
