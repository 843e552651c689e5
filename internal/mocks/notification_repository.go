package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"farm-management/internal/domain"
)

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}

func (m *NotificationRepository) ListByScope(ctx context.Context, scope domain.Scope, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, scope, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationRepository) MarkAsRead(ctx context.Context, scope domain.Scope, ids []uuid.UUID) error {
	args := m.Called(ctx, scope, ids)
	return args.Error(0)
}

func (m *NotificationRepository) Delete(ctx context.Context, scope domain.Scope, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, scope, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, scope domain.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}
