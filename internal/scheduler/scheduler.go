// Package scheduler runs the engine on one goroutine: queued game events and
// the fixed tick cycle never execute concurrently.
package scheduler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/afk"
	"github.com/openmohaa/statboard/internal/display"
	"github.com/openmohaa/statboard/internal/leaderboard"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/moderation"
	"github.com/openmohaa/statboard/internal/ratio"
	"github.com/openmohaa/statboard/internal/tracker"
	"github.com/openmohaa/statboard/internal/world"
)

// Cycle names used as metric labels.
const (
	CyclePlaytime   = "playtime"
	CycleRatio      = "ratio"
	CycleDisplay    = "display"
	CycleHUD        = "hud"
	CycleAFK        = "afk"
	CycleModeration = "moderation"
	CycleSnapshot   = "snapshot"
	CycleEvents     = "events"
)

var (
	cycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statboard_cycle_duration_seconds",
		Help:    "Time spent in each engine cycle",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	}, []string{"cycle"})
	eventsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statboard_events_queued_total",
		Help: "Game events accepted into the dispatch queue",
	})
	eventsShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statboard_events_shed_total",
		Help: "Game events dropped because the dispatch queue was full",
	})
	eventQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "statboard_event_queue_depth",
		Help: "Game events waiting for dispatch",
	})
	onlinePlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "statboard_online_players",
		Help: "Players currently online",
	})
)

const (
	DefaultTickInterval     = time.Second
	DefaultSnapshotInterval = 120 * time.Second
	DefaultQueueSize        = 10000

	// maxEventBatch bounds how many events are applied between two checks
	// of the ticker.
	maxEventBatch = 256
)

// Config holds the cadences of the scheduler.
type Config struct {
	TickInterval     time.Duration
	SnapshotInterval time.Duration
	QueueSize        int
	Logger           *zap.Logger
}

// Engine bundles the components driven by the scheduler.
type Engine struct {
	Roster      *world.Roster
	Outbox      *world.Outbox
	Tracker     *tracker.Tracker
	Ratios      *ratio.Engine
	Rotator     *display.Rotator
	HUD         *display.HUD
	AFK         *afk.Detector
	Moderation  *moderation.Enforcer
	Snapshotter *leaderboard.Snapshotter
}

// Scheduler owns the dispatch goroutine.
type Scheduler struct {
	cfg    Config
	engine Engine
	events chan models.Event
	logger *zap.SugaredLogger

	ticks         int
	snapshotEvery int
}

func New(engine Engine, cfg Config) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = DefaultSnapshotInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	every := int(cfg.SnapshotInterval / cfg.TickInterval)
	if every < 1 {
		every = 1
	}
	return &Scheduler{
		cfg:           cfg,
		engine:        engine,
		events:        make(chan models.Event, cfg.QueueSize),
		logger:        cfg.Logger.Sugar(),
		snapshotEvery: every,
	}
}

// Enqueue hands an event to the dispatch goroutine without blocking. It
// returns false when the queue is full.
func (s *Scheduler) Enqueue(e models.Event) bool {
	select {
	case s.events <- e:
		eventsQueued.Inc()
		return true
	default:
		eventsShed.Inc()
		return false
	}
}

// QueueDepth reports the number of events waiting for dispatch.
func (s *Scheduler) QueueDepth() int {
	return len(s.events)
}

// Run dispatches events and ticks until ctx is cancelled. Events still
// queued at shutdown are applied before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	s.logger.Infow("Scheduler started", "tickInterval", s.cfg.TickInterval.String(), "snapshotEvery", s.snapshotEvery)
	for {
		select {
		case <-ctx.Done():
			s.drainEvents(len(s.events))
			s.logger.Infow("Scheduler stopped", "ticks", s.ticks)
			return nil
		case <-ticker.C:
			s.drainEvents(len(s.events))
			s.Step()
		case e := <-s.events:
			batch := append(make([]models.Event, 0, maxEventBatch), e)
			batch = s.collect(batch)
			s.ApplyEvents(batch...)
		}
	}
}

// collect appends already-queued events to batch without waiting.
func (s *Scheduler) collect(batch []models.Event) []models.Event {
	for len(batch) < maxEventBatch {
		select {
		case e := <-s.events:
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

func (s *Scheduler) drainEvents(n int) {
	for n > 0 {
		batch := s.collect(make([]models.Event, 0, min(n, maxEventBatch)))
		if len(batch) == 0 {
			return
		}
		s.ApplyEvents(batch...)
		n -= len(batch)
	}
}

// ApplyEvents updates the roster and counters. Leave events also end the
// player's AFK, moderation and playtime sessions.
func (s *Scheduler) ApplyEvents(events ...models.Event) {
	defer observe(CycleEvents, time.Now())
	eventQueueDepth.Set(float64(len(s.events)))

	e := s.engine
	for _, ev := range events {
		if e.Roster.Apply(ev) {
			if e.AFK != nil {
				e.AFK.Forget(ev.Player)
			}
			if e.Moderation != nil {
				e.Moderation.Forget(ev.Player)
			}
		}
	}
	if e.Tracker != nil {
		e.Tracker.Apply(events...)
	}
}

// Step runs one tick synchronously. Ratio evaluation always precedes the
// display rotation so a rotated ratio counter shows this tick's value.
func (s *Scheduler) Step() {
	s.ticks++
	e := s.engine
	players := e.Roster.OnlinePlayers()
	onlinePlayers.Set(float64(len(players)))
	if e.Outbox != nil {
		e.Outbox.BeginTick()
	}

	if e.Tracker != nil {
		s.timed(CyclePlaytime, func() { e.Tracker.TickPlaytime(players, s.cfg.TickInterval) })
	}
	if e.Ratios != nil {
		s.timed(CycleRatio, func() { e.Ratios.EvaluateCycle() })
	}
	if e.Rotator != nil {
		s.timed(CycleDisplay, func() { e.Rotator.Tick(s.cfg.TickInterval) })
	}
	if e.HUD != nil {
		s.timed(CycleHUD, func() { e.HUD.Tick() })
	}
	if e.AFK != nil {
		s.timed(CycleAFK, func() { e.AFK.Scan(players, s.cfg.TickInterval) })
	}
	if e.Moderation != nil {
		s.timed(CycleModeration, func() { e.Moderation.Scan(players) })
	}
	if e.Snapshotter != nil && s.ticks%s.snapshotEvery == 0 {
		s.timed(CycleSnapshot, func() { e.Snapshotter.SnapshotCycle() })
	}
}

// Ticks returns the number of completed ticks.
func (s *Scheduler) Ticks() int {
	return s.ticks
}

// timed runs fn, recording its duration. A panic is logged and the tick
// continues with the next cycle.
func (s *Scheduler) timed(cycle string, fn func()) {
	defer observe(cycle, time.Now())
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("Engine cycle panicked", "cycle", cycle, "panic", r)
		}
	}()
	fn()
}

func observe(cycle string, start time.Time) {
	cycleDuration.WithLabelValues(cycle).Observe(time.Since(start).Seconds())
}
