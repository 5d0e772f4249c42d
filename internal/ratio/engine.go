// Package ratio computes derived ratios between counter pairs once per cycle.
package ratio

import (
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/filter"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/registry"
	"github.com/openmohaa/statboard/internal/scores"
)

var (
	ratiosEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statboard_ratios_evaluated_total",
		Help: "Ratio definitions evaluated",
	})
	ratiosSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statboard_ratios_skipped_total",
		Help: "Enabled ratio definitions skipped for missing fields",
	})
	ratioActionBars = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statboard_ratio_action_bars_total",
		Help: "Ratio heads-up messages pushed to players",
	})
)

// DisplayScale is the fixed-point factor of the published display counter.
const DisplayScale = 100

// PlayerSource lists online players.
type PlayerSource interface {
	OnlinePlayers() []models.Player
}

// ActionBarSender pushes heads-up text to one player.
type ActionBarSender interface {
	SendActionBar(player string, msg models.HUDMessage)
}

// Engine evaluates every ratio definition for every online player.
type Engine struct {
	repo    *Repository
	store   *scores.Store
	players PlayerSource
	bar     ActionBarSender
	logger  *zap.SugaredLogger
}

func NewEngine(repo *Repository, store *scores.Store, players PlayerSource, bar ActionBarSender, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		repo:    repo,
		store:   store,
		players: players,
		bar:     bar,
		logger:  logger.Sugar(),
	}
}

// Compute returns n/d, or n when d is not positive.
func Compute(n, d int64) float64 {
	if d > 0 {
		return float64(n) / float64(d)
	}
	return float64(n)
}

// Scaled converts a raw ratio to the integer stored on the display counter.
func Scaled(raw float64) int64 {
	return int64(math.Floor(raw * DisplayScale))
}

// FormatRatio renders a raw ratio with two decimals.
func FormatRatio(raw float64) string {
	return strconv.FormatFloat(raw, 'f', 2, 64)
}

// EvaluateCycle reloads the definitions and evaluates each enabled one. It
// returns the number of definitions evaluated.
func (e *Engine) EvaluateCycle() int {
	defs := e.repo.All()
	players := e.players.OnlinePlayers()

	evaluated := 0
	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		if !def.Evaluable() {
			ratiosSkipped.Inc()
			e.logger.Debugw("Skipping incomplete ratio", "ratioId", def.ID)
			continue
		}
		e.evaluate(def, players)
		evaluated++
	}
	ratiosEvaluated.Add(float64(evaluated))
	return evaluated
}

func (e *Engine) evaluate(def models.RatioDefinition, players []models.Player) {
	num := e.store.Ensure(def.Numerator, registry.FriendlyName(def.Numerator))
	den := e.store.Ensure(def.Denominator, registry.FriendlyName(def.Denominator))

	var display scores.Handle
	if def.DisplayRounded {
		display = e.store.Ensure(def.DisplayObjective(), def.DisplayName)
	}
	showBar := def.UseActionBar && !IsBuiltIn(def.ID) && e.bar != nil

	for _, p := range players {
		n := num.Get(p.Name)
		d := den.Get(p.Name)
		raw := Compute(n, d)

		if def.DisplayRounded {
			display.Set(p.Name, Scaled(raw))
		}
		if showBar && filter.PassesRatio(p, def, e.store) {
			e.bar.SendActionBar(p.Name, Message(def, n, d, raw))
			ratioActionBars.Inc()
		}
	}
}

// Message builds the four-line heads-up overlay for one player.
func Message(def models.RatioDefinition, n, d int64, raw float64) models.HUDMessage {
	return models.HUDMessage{Lines: []models.HUDLine{
		{Format: def.LabelFormat, Text: def.DisplayName},
		{Format: def.NumeratorFormat, Text: registry.FriendlyName(def.Numerator) + ": " + strconv.FormatInt(n, 10)},
		{Format: def.DenominatorFormat, Text: registry.FriendlyName(def.Denominator) + ": " + strconv.FormatInt(d, 10)},
		{Format: def.RatioFormat, Text: "Ratio: " + FormatRatio(raw)},
	}}
}
