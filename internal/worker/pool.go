// Package worker implements the buffered worker pool pattern for write-behind
// persistence. It decouples the tick loop from storage round trips, providing:
// - Backpressure handling via load shedding
// - Batched flushes (Redis pipelines, SQL bulk upserts, ClickHouse batches)
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	jobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statboard_pool_jobs_enqueued_total",
		Help: "Total number of jobs accepted by a worker pool",
	}, []string{"pool"})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statboard_pool_jobs_processed_total",
		Help: "Total number of jobs flushed successfully",
	}, []string{"pool"})

	jobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statboard_pool_jobs_failed_total",
		Help: "Total number of jobs whose flush failed",
	}, []string{"pool"})

	jobsLoadShed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statboard_pool_jobs_load_shed_total",
		Help: "Total number of jobs dropped because the queue was full or stopped",
	}, []string{"pool"})

	queueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "statboard_pool_queue_depth",
		Help: "Current depth of a worker pool queue",
	}, []string{"pool"})

	flushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statboard_pool_flush_duration_seconds",
		Help:    "Duration of batch flushes",
		Buckets: prometheus.DefBuckets,
	}, []string{"pool"})
)

var errFlusherPanic = errors.New("worker: flusher panicked")

// Flusher persists a batch of jobs.
type Flusher[T any] interface {
	Flush(ctx context.Context, batch []T) error
}

// FlushFunc adapts a function to Flusher.
type FlushFunc[T any] func(ctx context.Context, batch []T) error

func (f FlushFunc[T]) Flush(ctx context.Context, batch []T) error { return f(ctx, batch) }

// PoolConfig configures the worker pool
type PoolConfig struct {
	Name          string
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	FlushTimeout  time.Duration
	Logger        *zap.Logger
}

// Pool batches jobs of type T and hands them to a Flusher. With a single
// worker, batches are flushed in enqueue order.
type Pool[T any] struct {
	config   PoolConfig
	flusher  Flusher[T]
	jobQueue chan T
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a new worker pool
func NewPool[T any](cfg PoolConfig, flusher Flusher[T]) *Pool[T] {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool[T]{
		config:   cfg,
		flusher:  flusher,
		jobQueue: make(chan T, cfg.QueueSize),
		logger:   cfg.Logger.Sugar().With("pool", cfg.Name),
	}
}

// Start launches the worker goroutines
func (p *Pool[T]) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Start queue depth reporter
	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop closes the queue, waits for workers to flush what is left, then
// cancels the pool context.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool...")
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a job to the queue. It never blocks: a full or stopped queue
// drops the job and returns false.
func (p *Pool[T]) Enqueue(job T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		jobsLoadShed.WithLabelValues(p.config.Name).Inc()
		return false
	}

	select {
	case p.jobQueue <- job:
		jobsEnqueued.WithLabelValues(p.config.Name).Inc()
		return true
	default:
		p.logger.Warn("Worker pool queue full, dropping job")
		jobsLoadShed.WithLabelValues(p.config.Name).Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool[T]) QueueDepth() int {
	return len(p.jobQueue)
}

// worker collects jobs into batches and flushes them by size or interval
func (p *Pool[T]) worker(id int) {
	defer p.wg.Done()

	p.logger.Debugw("Worker started", "worker", id)

	batch := make([]T, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.flushBatch(batch); err != nil {
			p.logger.Errorw("Batch flush failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			jobsFailed.WithLabelValues(p.config.Name).Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch flushed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			jobsProcessed.WithLabelValues(p.config.Name).Add(float64(len(batch)))
		}
		flushDuration.WithLabelValues(p.config.Name).Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				// Channel closed, flush remaining
				flush()
				return
			}

			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// flushBatch runs the flusher with its own timeout so a canceled pool
// context does not abort the final flush.
func (p *Pool[T]) flushBatch(batch []T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorw("Flusher panic", "error", r)
			err = errFlusherPanic
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), p.config.FlushTimeout)
	defer cancel()
	return p.flusher.Flush(ctx, batch)
}

func (p *Pool[T]) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.WithLabelValues(p.config.Name).Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
