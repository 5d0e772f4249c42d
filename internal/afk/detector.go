// Package afk removes players who stay in place for too long.
package afk

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/filter"
	"github.com/openmohaa/statboard/internal/models"
)

var afkActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "statboard_afk_actions_total",
	Help: "AFK warnings and removals issued",
}, []string{"action"})

// CommandRunner queues a command against a player.
type CommandRunner interface {
	RunCommand(player, command string) bool
}

// ActionBarSender pushes heads-up text to one player.
type ActionBarSender interface {
	SendActionBar(player string, msg models.HUDMessage)
}

type idleState struct {
	pos    models.Vec3
	idle   time.Duration
	warned bool
}

// Detector tracks how long each online player has not moved. Scan must be
// called from a single goroutine.
type Detector struct {
	config   configstore.Reader
	commands CommandRunner
	bar      ActionBarSender
	logger   *zap.SugaredLogger

	state map[string]*idleState
}

func NewDetector(config configstore.Reader, commands CommandRunner, bar ActionBarSender, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		config:   config,
		commands: commands,
		bar:      bar,
		logger:   logger.Sugar(),
		state:    make(map[string]*idleState),
	}
}

// Config returns the merged AFK configuration.
func (d *Detector) Config() models.AFKConfig {
	return configstore.Load(d.config, configstore.KeyAFK, models.DefaultAFKConfig(), func(key string, err error) {
		d.logger.Warnw("AFK config unreadable, using defaults", "key", key, "error", err)
	})
}

// Scan advances idle time by elapsed and acts on players over the limits.
// It returns the players the removal command was issued for.
func (d *Detector) Scan(players []models.Player, elapsed time.Duration) []string {
	cfg := d.Config()
	if !cfg.Enabled {
		if len(d.state) > 0 {
			d.state = make(map[string]*idleState)
		}
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	warnAt := timeout - time.Duration(cfg.WarnSeconds)*time.Second

	online := make(map[string]bool, len(players))
	var removed []string
	for _, p := range players {
		online[p.Name] = true
		if filter.IsAFKExempt(p, cfg.ExemptTags) {
			delete(d.state, p.Name)
			continue
		}

		st, ok := d.state[p.Name]
		if !ok || st.pos != p.Position {
			d.state[p.Name] = &idleState{pos: p.Position}
			continue
		}
		st.idle += elapsed

		if cfg.WarnSeconds > 0 && !st.warned && st.idle >= warnAt && st.idle < timeout {
			st.warned = true
			d.warn(p.Name, timeout-st.idle)
		}
		if st.idle >= timeout {
			cmd := models.ExpandCommand(cfg.Command, "player", p.Name)
			if d.commands.RunCommand(p.Name, cmd) {
				afkActions.WithLabelValues("remove").Inc()
				removed = append(removed, p.Name)
				d.logger.Infow("Idle player removed", "player", p.Name, "idle", st.idle.String())
			}
			st.idle = 0
			st.warned = false
		}
	}

	for name := range d.state {
		if !online[name] {
			delete(d.state, name)
		}
	}
	return removed
}

func (d *Detector) warn(player string, left time.Duration) {
	if d.bar == nil {
		return
	}
	secs := int(left.Round(time.Second) / time.Second)
	d.bar.SendActionBar(player, models.HUDMessage{Lines: []models.HUDLine{
		{Format: 'c', Text: fmt.Sprintf("You will be removed for inactivity in %d seconds", secs)},
	}})
	afkActions.WithLabelValues("warn").Inc()
}

// Forget drops the idle state of a player who left.
func (d *Detector) Forget(name string) {
	delete(d.state, name)
}

// Idle returns the tracked idle time of a player.
func (d *Detector) Idle(name string) time.Duration {
	if st, ok := d.state[name]; ok {
		return st.idle
	}
	return 0
}
