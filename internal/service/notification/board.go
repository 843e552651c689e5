package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farm-management/internal/domain"
)

var (
	ErrSuperseded  = errors.New("notification fetch superseded by a newer request")
	ErrBoardClosed = errors.New("notification board is closed")
	ErrNotFound    = errors.New("notification not found")
)

const defaultFetchLimit = 100

// Store is the data-access side a board works against. The store, not the
// board, is authoritative.
type Store interface {
	ListByScope(ctx context.Context, scope domain.Scope, limit int) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, scope domain.Scope, ids []uuid.UUID) error
	Delete(ctx context.Context, scope domain.Scope, ids []uuid.UUID) (int64, error)
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the user about the last operation.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

type Snapshot struct {
	Scope      domain.Scope `json:"scope"`
	Filter     Filter       `json:"filter"`
	Items      []View       `json:"items"`
	Counts     Counts       `json:"counts"`
	Notice     *Notice      `json:"notice,omitempty"`
	Generation uint64       `json:"generation"`
	FetchedAt  time.Time    `json:"fetched_at"`
}

// Board is the local notification list of one viewer. It is loaded by Refresh,
// mutated optimistically by the read commands and shrunk by confirmed deletes.
type Board struct {
	store     Store
	confirmer Confirmer
	scope     domain.Scope
	limit     int
	now       func() time.Time
	logger    *zap.Logger

	life   context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	items      []View
	filter     Filter
	generation uint64
	loaded     bool
	closed     bool
	notice     *Notice
	fetchedAt  time.Time
	lastUsed   time.Time
}

type BoardOption func(*Board)

func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

func WithFetchLimit(limit int) BoardOption {
	return func(b *Board) {
		if limit > 0 {
			b.limit = limit
		}
	}
}

func WithLogger(logger *zap.Logger) BoardOption {
	return func(b *Board) { b.logger = logger }
}

func NewBoard(store Store, confirmer Confirmer, scope domain.Scope, opts ...BoardOption) *Board {
	scope.FarmID = strings.Clone(scope.FarmID)

	b := &Board{
		store:     store,
		confirmer: confirmer,
		scope:     scope,
		limit:     defaultFetchLimit,
		now:       time.Now,
		logger:    zap.NewNop(),
		items:     []View{},
		filter:    FilterAll,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.life, b.cancel = context.WithCancel(context.Background())
	b.lastUsed = b.now()
	return b
}

// Refresh fetches the scope's notifications and replaces the local list. Only
// the most recently started refresh may install its result; an older one that
// finishes later gets ErrSuperseded along with the current snapshot. A failed
// fetch leaves an empty list and an error notice.
//
// The returned snapshot is rendered with filter, whatever filter a concurrent
// caller asked for. filter also becomes the default for later mutations.
func (b *Board) Refresh(ctx context.Context, filter Filter) (Snapshot, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Snapshot{}, ErrBoardClosed
	}
	b.filter = filter
	b.generation++
	gen := b.generation
	b.lastUsed = b.now()
	b.mu.Unlock()

	fetchCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.life, cancel)
	records, err := b.store.ListByScope(fetchCtx, b.scope, b.limit)
	stop()
	cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return Snapshot{}, ErrBoardClosed
	}
	if gen != b.generation {
		b.logger.Debug("Discarding superseded notification fetch",
			zap.String("scope", b.scope.Key()),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", b.generation))
		return b.snapshotLocked(filter), ErrSuperseded
	}

	now := b.now()
	if err != nil {
		b.logger.Warn("Failed to fetch notifications",
			zap.String("scope", b.scope.Key()),
			zap.Error(err))
		b.items = []View{}
		b.notice = &Notice{Level: NoticeError, Message: "Could not load notifications"}
	} else {
		b.items = Rank(records, now)
		b.notice = nil
	}
	b.loaded = true
	b.fetchedAt = now

	return b.snapshotLocked(filter), nil
}

// SetFilter changes the filter that Snapshot and the mutations render with.
func (b *Board) SetFilter(f Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
}

func (b *Board) Filter() Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked(b.filter)
}

func (b *Board) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

func (b *Board) MarkRead(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	return b.execute(ctx, markReadCommand{ids: []uuid.UUID{id}})
}

func (b *Board) MarkAllRead(ctx context.Context) (Snapshot, error) {
	return b.execute(ctx, markReadCommand{})
}

// RequestDelete issues the confirmation that ConfirmDelete must present.
func (b *Board) RequestDelete(ctx context.Context, id uuid.UUID) (*Confirmation, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBoardClosed
	}
	found := b.indexLocked(id) >= 0
	b.lastUsed = b.now()
	b.mu.Unlock()

	if !found {
		return nil, ErrNotFound
	}
	return b.confirmer.Issue(ctx, b.scope, id)
}

// ConfirmDelete redeems a confirmation for id and deletes the notification
// from the store. The local list only changes once the store has accepted the
// delete.
func (b *Board) ConfirmDelete(ctx context.Context, id uuid.UUID, token string) (Snapshot, error) {
	confirmed, err := b.confirmer.Redeem(ctx, b.scope, token)
	if err != nil {
		return Snapshot{}, err
	}
	if confirmed != id {
		return Snapshot{}, ErrInvalidConfirmation
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Snapshot{}, ErrBoardClosed
	}
	b.lastUsed = b.now()
	b.mu.Unlock()

	_, err = b.store.Delete(ctx, b.scope, []uuid.UUID{id})

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.logger.Warn("Failed to delete notification",
			zap.String("scope", b.scope.Key()),
			zap.String("notification_id", id.String()),
			zap.Error(err))
		b.notice = &Notice{Level: NoticeError, Message: "Could not delete notification"}
		return b.snapshotLocked(b.filter), nil
	}

	if i := b.indexLocked(id); i >= 0 {
		b.items = append(b.items[:i:i], b.items[i+1:]...)
	}
	b.notice = &Notice{Level: NoticeSuccess, Message: "Notification deleted"}
	return b.snapshotLocked(b.filter), nil
}

// Close discards the board. In-flight fetches are cancelled and their results
// dropped.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.cancel()
}

func (b *Board) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastUsed)
}

// command is an optimistic local change paired with the remote call that
// confirms it. apply returns the function that undoes the local change.
type command interface {
	apply(items []View, now time.Time) (undo func([]View), err error)
	remote(ctx context.Context, store Store, scope domain.Scope) error
	successNotice() *Notice
	failureNotice() *Notice
}

func (b *Board) execute(ctx context.Context, cmd command) (Snapshot, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Snapshot{}, ErrBoardClosed
	}
	undo, err := cmd.apply(b.items, b.now())
	if err != nil {
		b.mu.Unlock()
		return Snapshot{}, err
	}
	b.lastUsed = b.now()
	b.mu.Unlock()

	err = cmd.remote(ctx, b.store, b.scope)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.logger.Warn("Notification update failed, rolling back",
			zap.String("scope", b.scope.Key()),
			zap.Error(err))
		undo(b.items)
		b.notice = cmd.failureNotice()
		return b.snapshotLocked(b.filter), nil
	}

	b.notice = cmd.successNotice()
	return b.snapshotLocked(b.filter), nil
}

type readState struct {
	read   bool
	readAt *time.Time
}

// markReadCommand marks the listed notifications read, or every local
// notification when ids is empty.
type markReadCommand struct {
	ids []uuid.UUID
}

func (c markReadCommand) all() bool {
	return len(c.ids) == 0
}

func (c markReadCommand) targets(id uuid.UUID) bool {
	if c.all() {
		return true
	}
	for _, target := range c.ids {
		if target == id {
			return true
		}
	}
	return false
}

func (c markReadCommand) apply(items []View, now time.Time) (func([]View), error) {
	prior := make(map[uuid.UUID]readState)
	matched := false

	for i := range items {
		if !c.targets(items[i].ID) {
			continue
		}
		matched = true
		if items[i].IsRead {
			continue
		}
		prior[items[i].ID] = readState{read: items[i].IsRead, readAt: items[i].ReadAt}
		readAt := now
		items[i].IsRead = true
		items[i].ReadAt = &readAt
	}

	if !c.all() && !matched {
		return nil, ErrNotFound
	}

	return func(items []View) {
		for i := range items {
			if state, ok := prior[items[i].ID]; ok {
				items[i].IsRead = state.read
				items[i].ReadAt = state.readAt
			}
		}
	}, nil
}

func (c markReadCommand) remote(ctx context.Context, store Store, scope domain.Scope) error {
	return store.MarkAsRead(ctx, scope, c.ids)
}

func (c markReadCommand) successNotice() *Notice {
	if c.all() {
		return &Notice{Level: NoticeSuccess, Message: "All notifications marked as read"}
	}
	return nil
}

func (c markReadCommand) failureNotice() *Notice {
	if c.all() {
		return &Notice{Level: NoticeError, Message: "Could not mark all notifications as read"}
	}
	return &Notice{Level: NoticeError, Message: "Could not mark notification as read"}
}

func (b *Board) indexLocked(id uuid.UUID) int {
	for i := range b.items {
		if b.items[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshotLocked renders the list through filter. A pending notice is handed
// out once and then cleared.
func (b *Board) snapshotLocked(filter Filter) Snapshot {
	notice := b.notice
	b.notice = nil

	return Snapshot{
		Scope:      b.scope,
		Filter:     filter,
		Items:      Apply(b.items, filter),
		Counts:     Count(b.items),
		Notice:     notice,
		Generation: b.generation,
		FetchedAt:  b.fetchedAt,
	}
}
