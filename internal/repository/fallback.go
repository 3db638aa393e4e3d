package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrDegraded is returned when a write missed the primary store and only
// the secondary holds it.
var ErrDegraded = errors.New("primary store unavailable, change kept in memory")

// FallbackStore keeps a primary store and a secondary one. Every write is
// tried on the primary first; a failed write is kept in the secondary and
// reported with ErrDegraded, so callers can retry and the value survives
// until the primary takes it. Reads that miss on the primary fall through to
// the secondary, which also serves legacy data.
type FallbackStore struct {
	primary   KVStore
	secondary KVStore
	logger    *zap.Logger

	mu      sync.RWMutex
	pending map[string]bool // keys whose latest value is only in the secondary
}

// NewFallbackStore wraps primary with secondary as the fallback
func NewFallbackStore(primary, secondary KVStore, logger *zap.Logger) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		pending:   make(map[string]bool),
	}
}

// Degraded reports whether some writes have not reached the primary
func (s *FallbackStore) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending) > 0
}

func (s *FallbackStore) isPending(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[key]
}

func (s *FallbackStore) markPending(op string, err error, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		s.logger.Warn("primary store failed, keeping changes in memory", zap.String("op", op), zap.Error(err))
	}
	for _, k := range keys {
		s.pending[k] = true
	}
}

func (s *FallbackStore) markStored(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return
	}
	for _, k := range keys {
		delete(s.pending, k)
	}
	if len(s.pending) == 0 {
		s.logger.Info("primary store recovered")
	}
}

func (s *FallbackStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.isPending(key) {
		return s.secondary.Get(ctx, key)
	}
	v, err := s.primary.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return s.secondary.Get(ctx, key)
	}
	return v, err
}

func (s *FallbackStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.primary.Set(ctx, key, value)
	if err == nil {
		s.markStored(key)
		return nil
	}

	s.markPending("set", err, key)
	if serr := s.secondary.Set(ctx, key, value); serr != nil {
		return errors.Join(fmt.Errorf("%w: %w", ErrDegraded, err), serr)
	}
	return fmt.Errorf("%w: %w", ErrDegraded, err)
}

func (s *FallbackStore) Remove(ctx context.Context, keys ...string) error {
	err := s.primary.Remove(ctx, keys...)
	serr := s.secondary.Remove(ctx, keys...)
	if err != nil {
		s.markPending("remove", err, keys...)
		return errors.Join(fmt.Errorf("%w: %w", ErrDegraded, err), serr)
	}
	s.markStored(keys...)
	return serr
}

func (s *FallbackStore) Clear(ctx context.Context) error {
	err := s.primary.Clear(ctx)
	serr := s.secondary.Clear(ctx)
	if err != nil {
		s.markPending("clear", err, KeyTiles, KeyStickyNotes)
		return errors.Join(fmt.Errorf("%w: %w", ErrDegraded, err), serr)
	}
	s.mu.Lock()
	s.pending = make(map[string]bool)
	s.mu.Unlock()
	return serr
}

func (s *FallbackStore) Close() error {
	return errors.Join(s.primary.Close(), s.secondary.Close())
}
