package replies

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store persists generated replies with create-or-update semantics.
type Store struct {
	repo Repository
	now  func() time.Time
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// Save writes a reply and returns its id, or nil when nothing was written.
//
// Replies without a profile are never persisted. With ExistingID set, only a
// reply owned by UserID is overwritten; a missing or foreign id is a silent
// no-op. Without ExistingID a new reply is inserted. Storage errors are
// returned for the caller to log; they must not fail the generation.
func (s *Store) Save(ctx context.Context, p SaveParams) (*uuid.UUID, error) {
	if p.ProfileID == nil {
		return nil, nil
	}

	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling prompt payload: %w", err)
	}

	now := s.now().UTC()

	if p.ExistingID != nil {
		updated, err := s.repo.UpdateOwned(ctx, *p.ExistingID, p.UserID, payload, p.Response, now)
		if err != nil {
			return nil, err
		}
		if !updated {
			slog.Debug("reply not found for owner, skipping save",
				"reply_id", *p.ExistingID,
				"user_id", p.UserID,
			)
			return nil, nil
		}
		id := *p.ExistingID
		return &id, nil
	}

	profileID := *p.ProfileID
	reply := &Reply{
		ID:            uuid.New(),
		UserID:        p.UserID,
		ProfileID:     &profileID,
		PromptPayload: payload,
		ResponseText:  p.Response,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, reply); err != nil {
		return nil, err
	}
	return &reply.ID, nil
}

// Get returns a reply owned by userID, or nil.
func (s *Store) Get(ctx context.Context, id, userID uuid.UUID) (*Reply, error) {
	return s.repo.GetOwned(ctx, id, userID)
}
