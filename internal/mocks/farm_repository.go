package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"farm-management/internal/domain"
)

type FarmRepository struct {
	mock.Mock
}

func (m *FarmRepository) GetByID(ctx context.Context, id string) (*domain.Farm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Farm), args.Error(1)
}

func (m *FarmRepository) HasAccess(ctx context.Context, farmID string, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, farmID, userID)
	return args.Bool(0), args.Error(1)
}
