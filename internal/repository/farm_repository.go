package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"farm-management/internal/domain"
)

type FarmRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Farm, error)
	HasAccess(ctx context.Context, farmID string, userID uuid.UUID) (bool, error)
}

type farmRepository struct {
	db *sqlx.DB
}

func NewFarmRepository(db *sqlx.DB) FarmRepository {
	return &farmRepository{db: db}
}

func (r *farmRepository) GetByID(ctx context.Context, id string) (*domain.Farm, error) {
	var farm domain.Farm
	query := `SELECT id, name, created_by, created_at FROM farms WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &farm, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &farm, nil
}

// HasAccess reports whether the user is assigned to the farm or created it.
func (r *farmRepository) HasAccess(ctx context.Context, farmID string, userID uuid.UUID) (bool, error) {
	var ok bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM farms f
			LEFT JOIN farm_members m ON m.farm_id = f.id AND m.user_id = $2
			WHERE f.id = $1 AND f.deleted_at IS NULL
			  AND (m.user_id IS NOT NULL OR f.created_by = $2)
		)`

	err := r.db.GetContext(ctx, &ok, query, farmID, userID)
	return ok, err
}
