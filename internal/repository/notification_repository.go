package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"farm-management/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	ListByScope(ctx context.Context, scope domain.Scope, limit int) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, scope domain.Scope, ids []uuid.UUID) error
	Delete(ctx context.Context, scope domain.Scope, ids []uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, scope domain.Scope) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// scopeFilter yields the WHERE clause shared by every scoped query. $1 is the
// user id and $2 the farm id, where an empty farm id matches every farm.
const scopeFilter = `n.user_id = $1 AND ($2 = '' OR n.farm_id = $2)`

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, farm_id, category, title, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.UserID, notif.FarmID, notif.Category, notif.Title, notif.Message,
	).Scan(&notif.CreatedAt)
}

func (r *notificationRepository) ListByScope(ctx context.Context, scope domain.Scope, limit int) ([]domain.Notification, error) {
	notifications := []domain.Notification{}
	query := `
		SELECT n.id, n.user_id, n.farm_id, f.name AS farm_name, n.category, n.title, n.message,
		       n.is_read, n.read_at, n.created_at
		FROM notifications n
		LEFT JOIN farms f ON f.id = n.farm_id
		WHERE ` + scopeFilter + `
		ORDER BY n.created_at DESC
		LIMIT $3`

	err := r.db.SelectContext(ctx, &notifications, query, scope.UserID, scope.FarmID, limit)
	return notifications, err
}

// MarkAsRead marks the given notifications read. An empty id set marks every
// unread notification in the scope.
func (r *notificationRepository) MarkAsRead(ctx context.Context, scope domain.Scope, ids []uuid.UUID) error {
	if len(ids) == 0 {
		query := `UPDATE notifications n SET is_read = true, read_at = NOW()
			WHERE ` + scopeFilter + ` AND n.is_read = false`
		_, err := r.db.ExecContext(ctx, query, scope.UserID, scope.FarmID)
		return err
	}

	query := `UPDATE notifications n SET is_read = true, read_at = NOW()
		WHERE ` + scopeFilter + ` AND n.is_read = false AND n.id = ANY($3::uuid[])`
	_, err := r.db.ExecContext(ctx, query, scope.UserID, scope.FarmID, pq.Array(uuidStrings(ids)))
	return err
}

func (r *notificationRepository) Delete(ctx context.Context, scope domain.Scope, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM notifications n WHERE ` + scopeFilter + ` AND n.id = ANY($3::uuid[])`
	result, err := r.db.ExecContext(ctx, query, scope.UserID, scope.FarmID, pq.Array(uuidStrings(ids)))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *notificationRepository) CountUnread(ctx context.Context, scope domain.Scope) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications n WHERE ` + scopeFilter + ` AND n.is_read = false`
	err := r.db.GetContext(ctx, &count, query, scope.UserID, scope.FarmID)
	return count, err
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
