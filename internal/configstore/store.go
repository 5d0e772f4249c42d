// Package configstore keeps engine configuration blobs in memory and writes
// them behind to a persistent backend. Reads never touch the backend after
// Warm, so tick-loop callers never block on I/O.
package configstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/worker"
)

// Blob keys for engine configuration.
const (
	KeyCounters    = "counters"
	KeyRatios      = "ratios"
	KeyDisplay     = "display"
	KeyLeaderboard = "leaderboard"
	KeyAFK         = "afk"
	KeyModeration  = "moderation"
)

// AllKeys lists every key warmed at startup.
var AllKeys = []string{KeyCounters, KeyRatios, KeyDisplay, KeyLeaderboard, KeyAFK, KeyModeration}

// Blob is one persisted configuration value.
type Blob struct {
	Key   string
	Value string
}

// BlobStore is the persistent backend.
type BlobStore interface {
	ReadBlobs(ctx context.Context, keys []string) (map[string]string, error)
	WriteBlobs(ctx context.Context, blobs []Blob) error
}

// Reader reads configuration blobs.
type Reader interface {
	ReadBlob(key string) (string, bool)
}

// Writer writes configuration blobs.
type Writer interface {
	WriteBlob(key, value string)
}

// ReadWriter is both.
type ReadWriter interface {
	Reader
	Writer
}

// Options configures the write-behind pool of a Store.
type Options struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Logger        *zap.Logger
}

// Store is the in-memory cache in front of a BlobStore.
type Store struct {
	mu      sync.RWMutex
	cache   map[string]string
	backend BlobStore
	flush   *worker.Pool[Blob]
	logger  *zap.SugaredLogger
}

// New creates a Store backed by backend. A nil backend keeps everything in
// memory.
func New(backend BlobStore, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Store{
		cache:   make(map[string]string),
		backend: backend,
		logger:  opts.Logger.Sugar(),
	}
	if backend != nil {
		s.flush = worker.NewPool[Blob](worker.PoolConfig{
			Name:          "config_blobs",
			WorkerCount:   1,
			QueueSize:     opts.QueueSize,
			BatchSize:     opts.BatchSize,
			FlushInterval: opts.FlushInterval,
			Logger:        opts.Logger,
		}, worker.FlushFunc[Blob](backend.WriteBlobs))
	}
	return s
}

// NewMemory returns a Store with no backend.
func NewMemory() *Store {
	return New(nil, Options{})
}

// Start launches the write-behind pool.
func (s *Store) Start(ctx context.Context) {
	if s.flush != nil {
		s.flush.Start(ctx)
	}
}

// Stop flushes pending writes.
func (s *Store) Stop() {
	if s.flush != nil {
		s.flush.Stop()
	}
}

// Warm loads keys from the backend into memory.
func (s *Store) Warm(ctx context.Context, keys ...string) error {
	if s.backend == nil || len(keys) == 0 {
		return nil
	}
	blobs, err := s.backend.ReadBlobs(ctx, keys)
	if err != nil {
		return fmt.Errorf("warm config blobs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range blobs {
		s.cache[k] = v
	}
	s.logger.Infow("Config blobs loaded", "requested", len(keys), "found", len(blobs))
	return nil
}

// ReadBlob returns the cached value of key.
func (s *Store) ReadBlob(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cache[key]
	return v, ok
}

// WriteBlob updates the cache and schedules a backend write.
func (s *Store) WriteBlob(key, value string) {
	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	if s.flush != nil && !s.flush.Enqueue(Blob{Key: key, Value: value}) {
		s.logger.Warnw("Config blob write dropped", "key", key)
	}
}

// QueueDepth reports pending backend writes.
func (s *Store) QueueDepth() int {
	if s.flush == nil {
		return 0
	}
	return s.flush.QueueDepth()
}
