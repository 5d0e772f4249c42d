// Package display drives the scoreboard display slots and the per-player
// counter overlay.
package display

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/scores"
)

var rotationsFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "statboard_display_rotations_total",
	Help: "Display slot rotations fired",
}, []string{"slot"})

// PlayerSource lists online players.
type PlayerSource interface {
	OnlinePlayers() []models.Player
}

// DisplayBinder points a display slot at an objective.
type DisplayBinder interface {
	BindDisplay(slot models.DisplaySlot, objective string)
}

// SlotState is the volatile rotation cursor of one slot. It starts at zero
// and is not restored across restarts.
type SlotState struct {
	Index   int
	Elapsed time.Duration
}

// Rotator cycles each display slot through its configured sequence on an
// independent cadence. Tick must be called from a single goroutine.
type Rotator struct {
	config  configstore.Reader
	store   *scores.Store
	players PlayerSource
	binder  DisplayBinder
	logger  *zap.SugaredLogger

	state map[models.DisplaySlot]*SlotState
}

func NewRotator(config configstore.Reader, store *scores.Store, players PlayerSource, binder DisplayBinder, logger *zap.Logger) *Rotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Rotator{
		config:  config,
		store:   store,
		players: players,
		binder:  binder,
		logger:  logger.Sugar(),
		state:   make(map[models.DisplaySlot]*SlotState, len(models.DisplaySlots)),
	}
	for _, s := range models.DisplaySlots {
		r.state[s] = &SlotState{}
	}
	return r
}

// State returns a copy of the rotation cursor of slot.
func (r *Rotator) State(slot models.DisplaySlot) SlotState {
	if st, ok := r.state[slot]; ok {
		return *st
	}
	return SlotState{}
}

// Tick advances every slot by one tick of length elapsed and returns the
// slots that fired. A slot fires once DelaySeconds of ticks have accumulated.
func (r *Rotator) Tick(elapsed time.Duration) []models.DisplaySlot {
	cfg := configstore.Load(r.config, configstore.KeyDisplay, models.DefaultDisplayConfig(), func(key string, err error) {
		r.logger.Warnw("Display config unreadable, using defaults", "key", key, "error", err)
	})

	var fired []models.DisplaySlot
	for _, slot := range models.DisplaySlots {
		sc := cfg.Slot(slot)
		if !sc.Enabled || len(sc.Sequence) == 0 {
			continue
		}
		st := r.state[slot]
		st.Elapsed += elapsed
		if st.Elapsed < time.Duration(sc.DelaySeconds)*time.Second {
			continue
		}

		entry := sc.Sequence[st.Index%len(sc.Sequence)]
		st.Index = (st.Index + 1) % len(sc.Sequence)
		st.Elapsed = 0

		objective, ok := r.rebuild(entry)
		if !ok {
			r.logger.Warnw("Skipping blank rotation entry", "slot", slot.String(), "entry", entry)
			continue
		}
		r.binder.BindDisplay(slot, objective)
		rotationsFired.WithLabelValues(slot.String()).Inc()
		fired = append(fired, slot)
		r.logger.Debugw("Display rotated", "slot", slot.String(), "objective", objective)
	}
	return fired
}

// rebuild recreates the shadow counter for a rotation entry and fills it
// with the online players' current scores.
func (r *Rotator) rebuild(entry string) (string, bool) {
	id, label := DisplayIdentity(entry)
	if id == "" {
		return "", false
	}
	objective := id + models.DisplaySuffix
	r.store.Recreate(objective, label)

	players := r.players.OnlinePlayers()
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	r.store.CopyAll(id, objective, names)
	return objective, true
}

// DisplayIdentity splits a rotation entry into its canonical counter id and
// the label of its shadow counter: the stripped format codes followed by
// the id with its first letter upper-cased.
func DisplayIdentity(entry string) (id, label string) {
	codes, plain := models.StripFormatting(entry)
	id = strings.ToLower(strings.TrimSpace(plain))
	if id == "" {
		return "", ""
	}
	first, size := utf8.DecodeRuneInString(id)
	return id, codes + string(unicode.ToUpper(first)) + id[size:]
}
