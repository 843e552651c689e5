package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"farm-management/internal/domain"
	"farm-management/internal/service/navigation"
)

type NavigationService struct {
	mock.Mock
}

func (m *NavigationService) Resolve(ctx context.Context, user *domain.User, path, farmID string) (*navigation.Menu, error) {
	args := m.Called(ctx, user, path, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*navigation.Menu), args.Error(1)
}
