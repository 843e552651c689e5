package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farm-management/internal/config"
	"farm-management/internal/domain"
	"farm-management/internal/handler"
	"farm-management/internal/middleware"
	"farm-management/internal/repository"
	"farm-management/internal/service"
	"farm-management/internal/service/auth"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zlog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	var rdb *redis.Client
	rdb, err = config.NewRedisClient(cfg)
	if err != nil {
		if cfg.RedisRequired {
			zlog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		zlog.Warn("Redis unavailable, caching disabled and delete confirmations kept in memory", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zlog)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(zlog),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		services.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		zlog.Warn("Timed out waiting for pending notification emails")
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Get("/navigation", h.Navigation.Get)
	protected.Get("/shell", h.Shell.Get)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
	notifications.Delete("/session", h.Notification.ReleaseSession)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/:id/delete-request", h.Notification.RequestDelete)
	notifications.Delete("/:id", h.Notification.Delete)

	farmNotifications := protected.Group("/farms/:farmId/notifications")
	farmNotifications.Get("/", h.Notification.List)
	farmNotifications.Get("/unread-count", h.Notification.GetUnreadCount)
	farmNotifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
	farmNotifications.Delete("/session", h.Notification.ReleaseSession)
	farmNotifications.Patch("/:id/read", h.Notification.MarkAsRead)
	farmNotifications.Post("/:id/delete-request", h.Notification.RequestDelete)
	farmNotifications.Delete("/:id", h.Notification.Delete)

	admin := protected.Group("/admin", middleware.RequireAnyRole(domain.RoleAdmin, domain.RoleSuperuser))
	admin.Post("/notifications", h.Admin.SendNotification)
}
