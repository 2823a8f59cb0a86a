// --- File: internal/storage/cache/ledger.go ---
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-push-service/pkg/push"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get decodes the value into dest, or returns an error (ErrMiss if absent).
	Get(ctx context.Context, key string, dest any) error
	// Set stores the value with a TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Incr atomically increments the integer at key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
}

const (
	generationKey = "push:history:gen"
	statsKey      = "push:history:stats"
	countKey      = "push:history:count"
)

// viewKey scopes a cached view to a ledger generation. Writes bump the
// generation, so a view computed before a write lands under a key no
// reader asks for again.
func viewKey(base string, gen int64) string {
	return fmt.Sprintf("%s:%d", base, gen)
}

var _ push.HistoryStore = (*CachedLedger)(nil)

// CachedLedger is a Decorator that adds read-aside caching of the derived
// ledger views (Stats and Count) to any HistoryStore. Record queries always
// go to the real store.
type CachedLedger struct {
	push.HistoryStore
	cache  CacheClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedLedger creates the decorator.
func NewCachedLedger(realStore push.HistoryStore, cache CacheClient, ttl time.Duration, logger *slog.Logger) *CachedLedger {
	return &CachedLedger{
		HistoryStore: realStore,
		cache:        cache,
		ttl:          ttl,
		logger:       logger.With("component", "CachedLedger"),
	}
}

// --- READ PATH (Read-Aside) ---

func (s *CachedLedger) Stats(ctx context.Context) (push.Stats, error) {
	gen, cacheable := s.generation(ctx)
	key := viewKey(statsKey, gen)

	var cached push.Stats
	if cacheable {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	fresh, err := s.HistoryStore.Stats(ctx)
	if err != nil {
		return push.Stats{}, err
	}
	if cacheable {
		if err := s.cache.Set(ctx, key, fresh, s.ttl); err != nil {
			s.logger.Warn("Failed to cache stats", "err", err)
		}
	}
	return fresh, nil
}

func (s *CachedLedger) Count(ctx context.Context) (int, error) {
	gen, cacheable := s.generation(ctx)
	key := viewKey(countKey, gen)

	var cached int
	if cacheable {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	fresh, err := s.HistoryStore.Count(ctx)
	if err != nil {
		return 0, err
	}
	if cacheable {
		if err := s.cache.Set(ctx, key, fresh, s.ttl); err != nil {
			s.logger.Warn("Failed to cache count", "err", err)
		}
	}
	return fresh, nil
}

// generation reads the current ledger generation. An absent key is
// generation zero. Any other failure disables caching for the call.
func (s *CachedLedger) generation(ctx context.Context) (int64, bool) {
	var gen int64
	err := s.cache.Get(ctx, generationKey, &gen)
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, ErrMiss):
		return 0, true
	default:
		s.logger.Warn("Failed to read history cache generation", "err", err)
		return 0, false
	}
}

// --- WRITE PATHS (Invalidate-on-Write) ---

// Save reports success once the real store has the record. A failed
// invalidation is logged and the cached views lag until their TTL expires.
func (s *CachedLedger) Save(ctx context.Context, record push.HistoryRecord) error {
	if err := s.HistoryStore.Save(ctx, record); err != nil {
		return err
	}
	if err := s.invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate history cache", "record_id", record.ID, "err", err)
	}
	return nil
}

func (s *CachedLedger) Clear(ctx context.Context) error {
	if err := s.HistoryStore.Clear(ctx); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

// invalidate bumps the generation after the store write, retiring every view
// computed against the previous contents.
func (s *CachedLedger) invalidate(ctx context.Context) error {
	_, err := s.cache.Incr(ctx, generationKey)
	return err
}
