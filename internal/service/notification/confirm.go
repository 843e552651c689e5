package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"farm-management/internal/domain"
)

var ErrInvalidConfirmation = errors.New("delete confirmation is invalid or has expired")

const deletePrompt = "Are you sure you want to delete this notification?"

type Confirmation struct {
	Token          string    `json:"token"`
	NotificationID uuid.UUID `json:"notification_id"`
	Prompt         string    `json:"prompt"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Confirmer holds pending delete confirmations. A token is redeemable once,
// only by the scope it was issued to, and only before it expires.
type Confirmer interface {
	Issue(ctx context.Context, scope domain.Scope, id uuid.UUID) (*Confirmation, error)
	Redeem(ctx context.Context, scope domain.Scope, token string) (uuid.UUID, error)
}

type pendingDelete struct {
	ScopeKey       string    `json:"scope"`
	NotificationID uuid.UUID `json:"notification_id"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type confirmationStore struct {
	redis *redis.Client
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	pending map[string]pendingDelete
}

// NewConfirmationStore keeps confirmations in redis, or in process memory when
// client is nil.
func NewConfirmationStore(client *redis.Client, ttl time.Duration) Confirmer {
	return &confirmationStore{
		redis:   client,
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]pendingDelete),
	}
}

func confirmationKey(token string) string {
	return "notifications:delete-confirm:" + token
}

func (s *confirmationStore) Issue(ctx context.Context, scope domain.Scope, id uuid.UUID) (*Confirmation, error) {
	token := uuid.NewString()
	pending := pendingDelete{
		ScopeKey:       scope.Key(),
		NotificationID: id,
		ExpiresAt:      s.now().Add(s.ttl),
	}

	if s.redis != nil {
		payload, err := json.Marshal(pending)
		if err != nil {
			return nil, err
		}
		if err := s.redis.Set(ctx, confirmationKey(token), payload, s.ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to store delete confirmation: %w", err)
		}
	} else {
		s.mu.Lock()
		s.sweepLocked()
		s.pending[token] = pending
		s.mu.Unlock()
	}

	return &Confirmation{
		Token:          token,
		NotificationID: id,
		Prompt:         deletePrompt,
		ExpiresAt:      pending.ExpiresAt,
	}, nil
}

func (s *confirmationStore) Redeem(ctx context.Context, scope domain.Scope, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrInvalidConfirmation
	}

	pending, err := s.take(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	if pending.ScopeKey != scope.Key() || !s.now().Before(pending.ExpiresAt) {
		return uuid.Nil, ErrInvalidConfirmation
	}
	return pending.NotificationID, nil
}

func (s *confirmationStore) take(ctx context.Context, token string) (pendingDelete, error) {
	var pending pendingDelete

	if s.redis != nil {
		raw, err := s.redis.GetDel(ctx, confirmationKey(token)).Bytes()
		if errors.Is(err, redis.Nil) {
			return pending, ErrInvalidConfirmation
		}
		if err != nil {
			return pending, fmt.Errorf("failed to read delete confirmation: %w", err)
		}
		if err := json.Unmarshal(raw, &pending); err != nil {
			return pending, ErrInvalidConfirmation
		}
		return pending, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[token]
	if !ok {
		return pending, ErrInvalidConfirmation
	}
	delete(s.pending, token)
	return pending, nil
}

func (s *confirmationStore) sweepLocked() {
	now := s.now()
	for token, p := range s.pending {
		if !now.Before(p.ExpiresAt) {
			delete(s.pending, token)
		}
	}
}
