package navigation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"farm-management/internal/domain"
	"farm-management/internal/repository"
)

var ErrFarmAccessDenied = errors.New("farm not found or access denied")

type Menu struct {
	Role      domain.Role       `json:"role"`
	RoleLabel string            `json:"role_label"`
	Route     domain.Route      `json:"route"`
	Entries   []domain.NavEntry `json:"entries"`
}

type Service interface {
	Resolve(ctx context.Context, user *domain.User, path, farmID string) (*Menu, error)
}

type service struct {
	farmRepo repository.FarmRepository
	logger   *zap.Logger
}

func NewService(farmRepo repository.FarmRepository, logger *zap.Logger) Service {
	return &service{farmRepo: farmRepo, logger: logger}
}

// Resolve builds the menu for the user at path. A farm user asking for a farm
// they are not assigned to gets ErrFarmAccessDenied instead of that farm's
// menu.
func (s *service) Resolve(ctx context.Context, user *domain.User, path, farmID string) (*Menu, error) {
	role, err := user.Role()
	if err != nil {
		return nil, err
	}

	route := domain.ParseRoute(path, farmID)

	if role == domain.RoleFarmUser && route.InFarmScope {
		ok, err := s.farmRepo.HasAccess(ctx, route.FarmID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check farm access: %w", err)
		}
		if !ok {
			s.logger.Debug("Farm menu denied",
				zap.String("user_id", user.ID.String()),
				zap.String("farm_id", route.FarmID))
			return nil, ErrFarmAccessDenied
		}
	}

	return &Menu{
		Role:      role,
		RoleLabel: role.Label(),
		Route:     route,
		Entries:   Resolve(role, route),
	}, nil
}
