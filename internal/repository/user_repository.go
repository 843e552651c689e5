package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"farm-management/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListByFarm(ctx context.Context, farmID string) ([]domain.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, email, full_name, user_type, is_superuser, is_active, created_at, updated_at, deleted_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByFarm returns the active farm users assigned to a farm.
func (r *userRepository) ListByFarm(ctx context.Context, farmID string) ([]domain.User, error) {
	var users []domain.User
	query := `
		SELECT u.id, u.email, u.full_name, u.user_type, u.is_superuser, u.is_active, u.created_at, u.updated_at, u.deleted_at
		FROM users u
		JOIN farm_members m ON m.user_id = u.id
		WHERE m.farm_id = $1 AND u.is_active = true AND u.deleted_at IS NULL
		ORDER BY u.full_name`

	err := r.db.SelectContext(ctx, &users, query, farmID)
	return users, err
}
