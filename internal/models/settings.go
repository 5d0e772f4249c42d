package models

import "strings"

// CounterSettings is the registry metadata of one counter.
type CounterSettings struct {
	Enabled   bool       `json:"enabled"`
	Label     string     `json:"label"`
	Color     FormatCode `json:"color"`
	ActionBar bool       `json:"actionBar"`
}

// RegistryConfig is the persisted counter registry.
type RegistryConfig struct {
	Counters map[string]CounterSettings `json:"counters"`

	// TrackGlobals keeps the server-wide total_* counters.
	TrackGlobals bool `json:"trackGlobals"`

	// HUDFilter gates the per-player counter overlay.
	HUDFilter FilterSet `json:"hudFilter"`
}

func (c *RegistryConfig) Normalize() {
	if c.Counters == nil {
		c.Counters = map[string]CounterSettings{}
	}
	if c.HUDFilter.Tags == nil {
		c.HUDFilter.Tags = []string{}
	}
}

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// ClampLimit bounds a leaderboard size to [1, MaxLeaderboardLimit].
func ClampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return n
}

// LeaderboardConfig configures offline snapshots.
type LeaderboardConfig struct {
	CustomCounters []string `json:"customCounters"`
	Limit          int      `json:"limit"`
}

func (c *LeaderboardConfig) Normalize() {
	if c.CustomCounters == nil {
		c.CustomCounters = []string{}
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLeaderboardLimit
	}
	c.Limit = ClampLimit(c.Limit)
}

// DefaultLeaderboardConfig tracks only built-in counters.
func DefaultLeaderboardConfig() LeaderboardConfig {
	return LeaderboardConfig{CustomCounters: []string{}, Limit: DefaultLeaderboardLimit}
}

const (
	DefaultAFKTimeoutSeconds = 300
	DefaultAFKWarnSeconds    = 30
	DefaultAFKCommand        = `kick "{player}" You were idle for too long`
)

// AFKConfig configures idle detection.
type AFKConfig struct {
	Enabled        bool `json:"enabled"`
	TimeoutSeconds int  `json:"timeoutSeconds"`
	WarnSeconds    int  `json:"warnSeconds"`

	// ExemptTags entries: "!tag" exempts players with tag, "tag" exempts
	// players without it.
	ExemptTags []string `json:"exemptTags"`

	// Command runs against an idle player; {player} is replaced by the name.
	Command string `json:"command"`
}

func (c *AFKConfig) Normalize() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultAFKTimeoutSeconds
	}
	if c.WarnSeconds < 0 || c.WarnSeconds >= c.TimeoutSeconds {
		c.WarnSeconds = 0
	}
	if c.ExemptTags == nil {
		c.ExemptTags = []string{}
	}
	if c.Command == "" {
		c.Command = DefaultAFKCommand
	}
}

// DefaultAFKConfig is disabled with a five minute timeout.
func DefaultAFKConfig() AFKConfig {
	return AFKConfig{
		TimeoutSeconds: DefaultAFKTimeoutSeconds,
		WarnSeconds:    DefaultAFKWarnSeconds,
		ExemptTags:     []string{},
		Command:        DefaultAFKCommand,
	}
}

// BanKind distinguishes hard and soft bans.
type BanKind string

const (
	BanHard BanKind = "ban"
	BanSoft BanKind = "softban"
)

// Ban is one moderation entry keyed by player name.
type Ban struct {
	Player string  `json:"player" validate:"required"`
	Kind   BanKind `json:"kind" validate:"oneof=ban softban"`
	Reason string  `json:"reason"`
}

// ModerationConfig holds bans and the soft-ban confinement area.
type ModerationConfig struct {
	Bans []Ban `json:"bans" validate:"dive"`

	// Area confines soft-banned players; they are returned to its center.
	Area Bounds `json:"area"`

	KickCommand     string `json:"kickCommand"`
	TeleportCommand string `json:"teleportCommand"`
	SoftBanNotice   string `json:"softBanNotice"`
}

const (
	DefaultKickCommand     = `kick "{player}" {reason}`
	DefaultTeleportCommand = `tp "{player}" {x} {y} {z}`
	DefaultSoftBanNotice   = "You are soft-banned and confined to this area"
)

func (c *ModerationConfig) Normalize() {
	if c.Bans == nil {
		c.Bans = []Ban{}
	}
	if c.KickCommand == "" {
		c.KickCommand = DefaultKickCommand
	}
	if c.TeleportCommand == "" {
		c.TeleportCommand = DefaultTeleportCommand
	}
	if c.SoftBanNotice == "" {
		c.SoftBanNotice = DefaultSoftBanNotice
	}
}

// DefaultModerationConfig has no bans.
func DefaultModerationConfig() ModerationConfig {
	c := ModerationConfig{}
	c.Normalize()
	return c
}

// ExpandCommand substitutes "{name}" placeholders in a command template.
// Pairs alternate placeholder name and value.
func ExpandCommand(template string, pairs ...string) string {
	if len(pairs)%2 != 0 {
		pairs = pairs[:len(pairs)-1]
	}
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(template)
}
