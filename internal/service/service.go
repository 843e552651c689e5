package service

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farm-management/internal/config"
	"farm-management/internal/repository"
	"farm-management/internal/service/auth"
	"farm-management/internal/service/email"
	"farm-management/internal/service/navigation"
	"farm-management/internal/service/notification"
)

type Services struct {
	Auth         auth.Service
	Email        email.Service
	Navigation   navigation.Service
	Notification notification.Service
}

func NewServices(repos *repository.Repositories, redis *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	var emailService email.Service
	if cfg.ResendAPIKey != "" {
		emailService = email.NewService(cfg)
	} else {
		logger.Warn("RESEND_API_KEY not set, notification emails are disabled")
	}

	authService := auth.NewService(repos.User, cfg)
	navigationService := navigation.NewService(repos.Farm, logger.Named("navigation"))
	notificationService := notification.NewService(
		repos.Notification,
		repos.User,
		repos.Farm,
		emailService,
		redis,
		cfg,
		logger.Named("notification"),
	)

	return &Services{
		Auth:         authService,
		Email:        emailService,
		Navigation:   navigationService,
		Notification: notificationService,
	}
}

func (s *Services) Shutdown() {
	s.Notification.Shutdown()
}
