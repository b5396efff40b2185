package replies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, reply *Reply) error
	// UpdateOwned overwrites payload and response of a reply owned by userID.
	// It reports false when no such reply exists for that owner.
	UpdateOwned(ctx context.Context, id, userID uuid.UUID, payload []byte, response string, updatedAt time.Time) (bool, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*Reply, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, reply *Reply) error {
	query := `
		INSERT INTO generated_replies (id, user_id, profile_id, prompt_payload, response_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		reply.ID, reply.UserID, reply.ProfileID,
		[]byte(reply.PromptPayload), reply.ResponseText,
		reply.CreatedAt, reply.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting generated reply: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateOwned(ctx context.Context, id, userID uuid.UUID, payload []byte, response string, updatedAt time.Time) (bool, error) {
	query := `
		UPDATE generated_replies
		SET prompt_payload = $3, response_text = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID, payload, response, updatedAt)
	if err != nil {
		return false, fmt.Errorf("updating generated reply: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*Reply, error) {
	query := `
		SELECT id, user_id, profile_id, prompt_payload, response_text, created_at, updated_at
		FROM generated_replies
		WHERE id = $1 AND user_id = $2`

	reply := &Reply{}
	var payload []byte
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&reply.ID, &reply.UserID, &reply.ProfileID,
		&payload, &reply.ResponseText,
		&reply.CreatedAt, &reply.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying generated reply: %w", err)
	}
	reply.PromptPayload = payload
	return reply, nil
}
