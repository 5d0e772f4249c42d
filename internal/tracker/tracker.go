// Package tracker turns game events into counter updates.
package tracker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/registry"
	"github.com/openmohaa/statboard/internal/scores"
)

var eventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "statboard_events_applied_total",
	Help: "Game events applied to counters",
}, []string{"type"})

// Tracker applies events to the built-in counters. It is not safe for
// concurrent use.
type Tracker struct {
	registry *registry.Registry
	store    *scores.Store
	logger   *zap.SugaredLogger

	// unbanked playtime per online player
	playtime map[string]time.Duration
}

func New(reg *registry.Registry, store *scores.Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		registry: reg,
		store:    store,
		logger:   logger.Sugar(),
		playtime: make(map[string]time.Duration),
	}
}

// Apply updates counters for each event under one registry snapshot.
func (t *Tracker) Apply(events ...models.Event) {
	if len(events) == 0 {
		return
	}
	snap := t.registry.Snapshot()
	for i := range events {
		t.apply(snap, &events[i])
	}
}

func (t *Tracker) apply(snap registry.Snapshot, e *models.Event) {
	switch e.Type {
	case models.EventPlayerJoin:
		t.add(snap, e.Player, registry.Joins, 1)
	case models.EventPlayerLeave:
		t.Forget(e.Player)
	case models.EventPlayerKill:
		if e.Attacker != "" && e.Attacker != e.Victim {
			t.add(snap, e.Attacker, registry.Kills, 1)
		}
		t.add(snap, e.Victim, registry.Deaths, 1)
	case models.EventEntityDeath:
		t.add(snap, e.Player, registry.Deaths, 1)
	case models.EventMobKill:
		t.add(snap, e.Player, registry.MobKills, 1)
	case models.EventBlockBreak:
		t.add(snap, e.Player, registry.BlocksBroken, amountOrOne(e.Amount))
	case models.EventBlockPlace:
		t.add(snap, e.Player, registry.BlocksPlaced, amountOrOne(e.Amount))
	case models.EventMoney:
		t.add(snap, e.Player, registry.Money, e.Amount)
	default:
		return
	}
	eventsApplied.WithLabelValues(string(e.Type)).Inc()
}

// add increments counter for identity and, for global counters, the
// server-wide total.
func (t *Tracker) add(snap registry.Snapshot, identity, counter string, delta int64) {
	if identity == "" || delta == 0 || !snap.Enabled(counter) {
		return
	}
	t.store.Ensure(counter, snap.Label(counter)).Add(identity, delta)

	if !snap.TrackGlobals() {
		return
	}
	for _, b := range registry.BuiltIns {
		if b.ID == counter && b.Global {
			global := registry.GlobalCounter(counter)
			t.store.Ensure(global, "Total "+snap.Label(counter)).Add(scores.GlobalIdentity, delta)
			return
		}
	}
}

// TickPlaytime credits elapsed time to every online player, adding one
// playtime point per full minute.
func (t *Tracker) TickPlaytime(players []models.Player, elapsed time.Duration) {
	snap := t.registry.Snapshot()
	if !snap.Enabled(registry.Playtime) || elapsed <= 0 {
		return
	}
	handle := t.store.Ensure(registry.Playtime, snap.Label(registry.Playtime))
	for _, p := range players {
		acc := t.playtime[p.Name] + elapsed
		if minutes := int64(acc / time.Minute); minutes > 0 {
			handle.Add(p.Name, minutes)
			acc -= time.Duration(minutes) * time.Minute
		}
		t.playtime[p.Name] = acc
	}
}

// Forget drops unbanked playtime of a player who left.
func (t *Tracker) Forget(name string) {
	delete(t.playtime, name)
}

func amountOrOne(n int64) int64 {
	if n > 0 {
		return n
	}
	return 1
}
