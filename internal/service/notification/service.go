package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farm-management/internal/config"
	"farm-management/internal/domain"
	"farm-management/internal/repository"
	"farm-management/internal/service/email"
)

var (
	ErrFarmAccessDenied = errors.New("farm not found or access denied")
	ErrFarmNotFound     = errors.New("farm not found")
	ErrRecipientInvalid = errors.New("recipient is not a member of the farm")
	ErrInvalidInput     = errors.New("title and message are required")
)

type Service interface {
	Feed(ctx context.Context, scope domain.Scope, filter Filter) (*Snapshot, error)
	MarkAsRead(ctx context.Context, scope domain.Scope, id uuid.UUID) (*Snapshot, error)
	MarkAllAsRead(ctx context.Context, scope domain.Scope) (*Snapshot, error)
	RequestDelete(ctx context.Context, scope domain.Scope, id uuid.UUID) (*Confirmation, error)
	ConfirmDelete(ctx context.Context, scope domain.Scope, id uuid.UUID, token string) (*Snapshot, error)
	Release(scope domain.Scope)
	GetUnreadCount(ctx context.Context, scope domain.Scope) (int64, error)

	Send(ctx context.Context, sender *domain.User, input domain.SendNotificationInput) (*SendResult, error)
	Shutdown()
}

type SendResult struct {
	FarmID  string `json:"farm_id"`
	Created int    `json:"created"`
	Failed  int    `json:"failed"`
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	farmRepo  repository.FarmRepository
	emailSvc  email.Service
	redis     *redis.Client
	confirmer Confirmer
	logger    *zap.Logger
	now       func() time.Time

	fetchLimit     int
	boardIdleTTL   time.Duration
	unreadCacheTTL time.Duration

	mu     sync.Mutex
	boards map[string]*Board

	mailers sync.WaitGroup
}

func NewService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	farmRepo repository.FarmRepository,
	emailSvc email.Service,
	redis *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		notifRepo:      notifRepo,
		userRepo:       userRepo,
		farmRepo:       farmRepo,
		emailSvc:       emailSvc,
		redis:          redis,
		confirmer:      NewConfirmationStore(redis, cfg.DeleteConfirmTTL),
		logger:         logger,
		now:            time.Now,
		fetchLimit:     cfg.NotificationFetchLimit,
		boardIdleTTL:   cfg.BoardIdleTTL,
		unreadCacheTTL: cfg.UnreadCountCacheTTL,
		boards:         make(map[string]*Board),
	}
}

// Feed refreshes the scope's board and renders it with filter applied.
func (s *service) Feed(ctx context.Context, scope domain.Scope, filter Filter) (*Snapshot, error) {
	if err := s.authorize(ctx, scope); err != nil {
		return nil, err
	}

	snap, err := s.board(scope).Refresh(ctx, filter)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		return nil, err
	}
	return &snap, nil
}

func (s *service) MarkAsRead(ctx context.Context, scope domain.Scope, id uuid.UUID) (*Snapshot, error) {
	board, err := s.loadedBoard(ctx, scope)
	if err != nil {
		return nil, err
	}

	snap, err := board.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateUnread(ctx, scope)
	return &snap, nil
}

func (s *service) MarkAllAsRead(ctx context.Context, scope domain.Scope) (*Snapshot, error) {
	board, err := s.loadedBoard(ctx, scope)
	if err != nil {
		return nil, err
	}

	snap, err := board.MarkAllRead(ctx)
	if err != nil {
		return nil, err
	}
	s.invalidateUnread(ctx, scope)
	return &snap, nil
}

func (s *service) RequestDelete(ctx context.Context, scope domain.Scope, id uuid.UUID) (*Confirmation, error) {
	board, err := s.loadedBoard(ctx, scope)
	if err != nil {
		return nil, err
	}
	return board.RequestDelete(ctx, id)
}

func (s *service) ConfirmDelete(ctx context.Context, scope domain.Scope, id uuid.UUID, token string) (*Snapshot, error) {
	board, err := s.loadedBoard(ctx, scope)
	if err != nil {
		return nil, err
	}

	snap, err := board.ConfirmDelete(ctx, id, token)
	if err != nil {
		return nil, err
	}
	s.invalidateUnread(ctx, scope)
	return &snap, nil
}

// Release closes the scope's board, dropping any fetch still in flight.
func (s *service) Release(scope domain.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if board, ok := s.boards[scope.Key()]; ok {
		board.Close()
		delete(s.boards, scope.Key())
	}
}

func unreadCacheKey(scope domain.Scope) string {
	return "notifications:unread:" + scope.Key()
}

func (s *service) GetUnreadCount(ctx context.Context, scope domain.Scope) (int64, error) {
	if err := s.authorize(ctx, scope); err != nil {
		return 0, err
	}

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, unreadCacheKey(scope)).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.notifRepo.CountUnread(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, unreadCacheKey(scope), count, s.unreadCacheTTL).Err(); err != nil {
			s.logger.Debug("Failed to cache unread counter", zap.String("scope", scope.Key()), zap.Error(err))
		}
	}
	return count, nil
}

// invalidateUnread drops the cached counters of the user's global scope and,
// when different, of the given farm scope.
func (s *service) invalidateUnread(ctx context.Context, scope domain.Scope) {
	if s.redis == nil {
		return
	}

	keys := []string{unreadCacheKey(domain.Scope{UserID: scope.UserID})}
	if scope.IsFarm() {
		keys = append(keys, unreadCacheKey(scope))
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("Failed to invalidate unread counter", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *service) authorize(ctx context.Context, scope domain.Scope) error {
	if !scope.IsFarm() {
		return nil
	}

	ok, err := s.farmRepo.HasAccess(ctx, scope.FarmID, scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to check farm access: %w", err)
	}
	if !ok {
		return ErrFarmAccessDenied
	}
	return nil
}

// loadedBoard returns the scope's board, fetching it first if this viewer has
// not loaded one yet.
func (s *service) loadedBoard(ctx context.Context, scope domain.Scope) (*Board, error) {
	if err := s.authorize(ctx, scope); err != nil {
		return nil, err
	}

	board := s.board(scope)
	if board.Loaded() {
		return board, nil
	}

	if _, err := board.Refresh(ctx, board.Filter()); err != nil && !errors.Is(err, ErrSuperseded) {
		return nil, err
	}
	return board, nil
}

func (s *service) board(scope domain.Scope) *Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIdleLocked()

	if board, ok := s.boards[scope.Key()]; ok {
		return board
	}

	board := NewBoard(s.notifRepo, s.confirmer, scope,
		WithFetchLimit(s.fetchLimit),
		WithClock(s.now),
		WithLogger(s.logger),
	)
	s.boards[scope.Key()] = board
	return board
}

func (s *service) evictIdleLocked() {
	if s.boardIdleTTL <= 0 {
		return
	}

	now := s.now()
	for key, board := range s.boards {
		if board.idleSince(now) > s.boardIdleTTL {
			board.Close()
			delete(s.boards, key)
			s.logger.Debug("Evicted idle notification board", zap.String("scope", key))
		}
	}
}

// Shutdown closes every board and waits for queued emails.
func (s *service) Shutdown() {
	s.mu.Lock()
	for key, board := range s.boards {
		board.Close()
		delete(s.boards, key)
	}
	s.mu.Unlock()

	s.mailers.Wait()
}
