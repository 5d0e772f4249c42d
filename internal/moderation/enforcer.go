// Package moderation enforces bans and soft-ban confinement.
package moderation

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/models"
)

var moderationActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "statboard_moderation_actions_total",
	Help: "Moderation commands issued",
}, []string{"action"})

// CommandRunner queues a command against a player.
type CommandRunner interface {
	RunCommand(player, command string) bool
}

// ActionBarSender pushes heads-up text to one player.
type ActionBarSender interface {
	SendActionBar(player string, msg models.HUDMessage)
}

// Enforcer applies the ban list to online players. The kick command and the
// soft-ban notice are each issued once per login: names enter the kicked or
// notified set when the action is queued and leave both on Forget, which the
// leave handler calls. The sets are never persisted.
type Enforcer struct {
	config   configstore.ReadWriter
	commands CommandRunner
	bar      ActionBarSender
	logger   *zap.SugaredLogger

	notified map[string]struct{}
	kicked   map[string]struct{}
}

func NewEnforcer(config configstore.ReadWriter, commands CommandRunner, bar ActionBarSender, logger *zap.Logger) *Enforcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enforcer{
		config:   config,
		commands: commands,
		bar:      bar,
		logger:   logger.Sugar(),
		notified: make(map[string]struct{}),
		kicked:   make(map[string]struct{}),
	}
}

// Config returns the merged moderation configuration.
func (e *Enforcer) Config() models.ModerationConfig {
	return configstore.Load(e.config, configstore.KeyModeration, models.DefaultModerationConfig(), func(key string, err error) {
		e.logger.Warnw("Moderation config unreadable, using defaults", "key", key, "error", err)
	})
}

// Save persists cfg.
func (e *Enforcer) Save(cfg models.ModerationConfig) error {
	return configstore.Save(e.config, configstore.KeyModeration, cfg)
}

// Scan kicks banned players and confines soft-banned ones.
func (e *Enforcer) Scan(players []models.Player) {
	cfg := e.Config()
	if len(cfg.Bans) == 0 {
		return
	}
	bans := make(map[string]models.Ban, len(cfg.Bans))
	for _, b := range cfg.Bans {
		bans[strings.ToLower(b.Player)] = b
	}

	for _, p := range players {
		ban, ok := bans[strings.ToLower(p.Name)]
		if !ok {
			continue
		}
		switch ban.Kind {
		case models.BanHard:
			if _, done := e.kicked[p.Name]; done {
				continue
			}
			cmd := models.ExpandCommand(cfg.KickCommand, "player", p.Name, "reason", ban.Reason)
			// A refused command is retried on the next scan.
			if e.commands.RunCommand(p.Name, cmd) {
				e.kicked[p.Name] = struct{}{}
				moderationActions.WithLabelValues("kick").Inc()
			}
		case models.BanSoft:
			e.confine(cfg, p)
		}
	}
}

func (e *Enforcer) confine(cfg models.ModerationConfig, p models.Player) {
	if _, ok := e.notified[p.Name]; !ok && e.bar != nil {
		e.bar.SendActionBar(p.Name, models.HUDMessage{Lines: []models.HUDLine{{Format: 'c', Text: cfg.SoftBanNotice}}})
		e.notified[p.Name] = struct{}{}
	}

	// A zero area means no confinement is configured.
	if cfg.Area == (models.Bounds{}) || cfg.Area.Contains(p.Position) {
		return
	}
	c := cfg.Area.Center()
	cmd := models.ExpandCommand(cfg.TeleportCommand,
		"player", p.Name,
		"x", formatCoord(c.X),
		"y", formatCoord(c.Y),
		"z", formatCoord(c.Z),
	)
	if e.commands.RunCommand(p.Name, cmd) {
		moderationActions.WithLabelValues("teleport").Inc()
		e.logger.Debugw("Soft-banned player returned to area", "player", p.Name)
	}
}

// Forget ends the session of a player who left.
func (e *Enforcer) Forget(name string) {
	delete(e.notified, name)
	delete(e.kicked, name)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
