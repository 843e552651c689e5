package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farm-management/internal/config"
	"farm-management/internal/domain"
	"farm-management/internal/repository"
	"farm-management/internal/service"
)

// env holds the wiring a command needs. Redis is optional here even when the
// API requires it.
type env struct {
	services *service.Services
	logger   *zap.Logger
	close    func()
}

// openEnv is replaced in tests.
var openEnv = openDatabaseEnv

func openDatabaseEnv() (*env, error) {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if client, err := config.NewRedisClient(cfg); err == nil {
		rdb = client
	} else {
		logger.Debug("Redis unavailable", zap.Error(err))
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, logger)

	return &env{
		services: services,
		logger:   logger,
		close: func() {
			services.Shutdown()
			if rdb != nil {
				rdb.Close()
			}
			db.Close()
			_ = logger.Sync()
		},
	}, nil
}

func (e *env) user(ctx context.Context, raw string) (*domain.User, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", raw, err)
	}
	return e.services.Auth.GetUserByID(ctx, id)
}
