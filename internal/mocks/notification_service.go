package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"farm-management/internal/domain"
	"farm-management/internal/service/notification"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) Feed(ctx context.Context, scope domain.Scope, filter notification.Filter) (*notification.Snapshot, error) {
	args := m.Called(ctx, scope, filter)
	return snapshotArg(args)
}

func (m *NotificationService) MarkAsRead(ctx context.Context, scope domain.Scope, id uuid.UUID) (*notification.Snapshot, error) {
	args := m.Called(ctx, scope, id)
	return snapshotArg(args)
}

func (m *NotificationService) MarkAllAsRead(ctx context.Context, scope domain.Scope) (*notification.Snapshot, error) {
	args := m.Called(ctx, scope)
	return snapshotArg(args)
}

func (m *NotificationService) RequestDelete(ctx context.Context, scope domain.Scope, id uuid.UUID) (*notification.Confirmation, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Confirmation), args.Error(1)
}

func (m *NotificationService) ConfirmDelete(ctx context.Context, scope domain.Scope, id uuid.UUID, token string) (*notification.Snapshot, error) {
	args := m.Called(ctx, scope, id, token)
	return snapshotArg(args)
}

func (m *NotificationService) Release(scope domain.Scope) {
	m.Called(scope)
}

func (m *NotificationService) GetUnreadCount(ctx context.Context, scope domain.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) Send(ctx context.Context, sender *domain.User, input domain.SendNotificationInput) (*notification.SendResult, error) {
	args := m.Called(ctx, sender, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.SendResult), args.Error(1)
}

func (m *NotificationService) Shutdown() {
	m.Called()
}

func snapshotArg(args mock.Arguments) (*notification.Snapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Snapshot), args.Error(1)
}
