package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]Entry, int64, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// Insert ignores an entry whose id was already stored, so redelivered
// events do not duplicate history.
func (r *postgresRepository) Insert(ctx context.Context, e *Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO generation_events (id, user_id, reply_id, profile_id, preset_id, length, emoji, provider, model, persisted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, e.ReplyID, e.ProfileID, e.PresetID, e.Length, e.Emoji,
		e.Provider, e.Model, e.Persisted, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting generation event: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]Entry, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	conditions := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if params.PresetID != "" {
		add("preset_id = $%d", params.PresetID)
	}
	if params.Provider != "" {
		add("provider = $%d", params.Provider)
	}
	if params.From != nil {
		add("created_at >= $%d", *params.From)
	}
	if params.To != nil {
		add("created_at <= $%d", *params.To)
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM generation_events WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting generation events: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	query := fmt.Sprintf(
		`SELECT id, user_id, reply_id, profile_id, preset_id, length, emoji, provider, model, persisted, created_at
		 FROM generation_events WHERE %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying generation events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ReplyID, &e.ProfileID, &e.PresetID, &e.Length,
			&e.Emoji, &e.Provider, &e.Model, &e.Persisted, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning generation event: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating generation events: %w", err)
	}

	return entries, total, nil
}
