package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, row *ProfileRow) error
	GetByID(ctx context.Context, id uuid.UUID) (*ProfileRow, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*ProfileRow, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Update(ctx context.Context, row *ProfileRow) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const profileColumns = `id, owner_user_id, name, type, relationship_type, notes, tone_preferences, created_at, updated_at`

func scanProfile(row pgx.Row) (*ProfileRow, error) {
	p := &ProfileRow{}
	err := row.Scan(
		&p.ID, &p.OwnerUserID, &p.Name, &p.Type,
		&p.RelationshipType, &p.Notes, &p.TonePreferences,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *postgresRepository) Create(ctx context.Context, row *ProfileRow) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		row.ID, row.OwnerUserID, row.Name, row.Type,
		row.RelationshipType, row.Notes, row.TonePreferences,
		row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*ProfileRow, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	row, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying profile by id: %w", err)
	}
	return row, nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*ProfileRow, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE owner_user_id = $1
		ORDER BY name ASC, created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var result []*ProfileRow
	for rows.Next() {
		row, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}
	return result, nil
}

func (r *postgresRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE owner_user_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting profiles: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) Update(ctx context.Context, row *ProfileRow) error {
	query := `
		UPDATE profiles
		SET name = $2, type = $3, relationship_type = $4, notes = $5, tone_preferences = $6, updated_at = $7
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		row.ID, row.Name, row.Type, row.RelationshipType,
		row.Notes, row.TonePreferences, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}
