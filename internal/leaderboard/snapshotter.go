// Package leaderboard copies live counters into stable offline snapshots and
// ranks players by them.
package leaderboard

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/registry"
	"github.com/openmohaa/statboard/internal/scores"
)

// OfflineSuffix names the snapshot counter of a live counter.
const OfflineSuffix = "_offline"

var (
	snapshotEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statboard_snapshot_entries_total",
		Help: "Participant values copied into offline counters",
	})
	snapshotCounters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "statboard_snapshot_counters",
		Help: "Counters covered by the last snapshot cycle",
	})
	archiveShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statboard_snapshot_archive_shed_total",
		Help: "Snapshot rows dropped because the archive queue was full",
	})
)

// OfflineCounter returns the snapshot counter name for name.
func OfflineCounter(name string) string {
	return name + OfflineSuffix
}

// Row is one archived snapshot value.
type Row struct {
	SnapshotID uuid.UUID
	TakenAt    time.Time
	Counter    string
	Player     string
	Value      int64
}

// ArchiveSink accepts snapshot rows without blocking.
type ArchiveSink interface {
	Enqueue(Row) bool
}

// Standing is one ranked leaderboard entry.
type Standing struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Value  int64  `json:"value"`
}

// Snapshotter refreshes offline counters for the enabled built-in counters
// and the configured custom ones.
type Snapshotter struct {
	config   configstore.Reader
	registry *registry.Registry
	store    *scores.Store
	archive  ArchiveSink
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewSnapshotter builds a Snapshotter; archive may be nil.
func NewSnapshotter(config configstore.Reader, reg *registry.Registry, store *scores.Store, archive ArchiveSink, logger *zap.Logger) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshotter{
		config:   config,
		registry: reg,
		store:    store,
		archive:  archive,
		logger:   logger.Sugar(),
		now:      time.Now,
	}
}

// Config returns the merged leaderboard configuration.
func (s *Snapshotter) Config() models.LeaderboardConfig {
	return configstore.Load(s.config, configstore.KeyLeaderboard, models.DefaultLeaderboardConfig(), func(key string, err error) {
		s.logger.Warnw("Leaderboard config unreadable, using defaults", "key", key, "error", err)
	})
}

// Tracked lists the counters a snapshot covers: enabled built-ins in display
// order, then custom counters in configured order, without duplicates.
func (s *Snapshotter) Tracked() []string {
	counters := s.registry.Snapshot().EnabledBuiltIns()
	seen := make(map[string]bool, len(counters))
	for _, c := range counters {
		seen[c] = true
	}
	for _, c := range s.Config().CustomCounters {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		counters = append(counters, c)
	}
	return counters
}

// SnapshotCycle overwrites every tracked offline counter with the live
// values and returns the number of values copied.
func (s *Snapshotter) SnapshotCycle() int {
	snap := s.registry.Snapshot()
	id := uuid.New()
	takenAt := s.now().UTC()

	tracked := s.Tracked()
	copied := 0
	for _, name := range tracked {
		label := snap.Label(name)
		s.store.Ensure(name, label)
		s.store.Ensure(OfflineCounter(name), label)

		identities := s.store.Participants(name)
		s.store.CopyAll(name, OfflineCounter(name), identities)
		copied += len(identities)

		if s.archive == nil {
			continue
		}
		for _, identity := range identities {
			row := Row{
				SnapshotID: id,
				TakenAt:    takenAt,
				Counter:    name,
				Player:     identity,
				Value:      s.store.Get(identity, name),
			}
			if !s.archive.Enqueue(row) {
				archiveShed.Inc()
			}
		}
	}

	snapshotEntries.Add(float64(copied))
	snapshotCounters.Set(float64(len(tracked)))
	s.logger.Debugw("Leaderboard snapshot taken", "snapshotId", id.String(), "counters", len(tracked), "entries", copied)
	return copied
}

// Top ranks identities by their offline value on counter, highest first,
// ties broken by name. A non-positive limit uses the configured one.
func (s *Snapshotter) Top(counter string, limit int) []Standing {
	if limit <= 0 {
		limit = s.Config().Limit
	}
	limit = models.ClampLimit(limit)

	offline := OfflineCounter(counter)
	identities := s.store.Participants(offline)
	standings := make([]Standing, 0, len(identities))
	for _, identity := range identities {
		standings = append(standings, Standing{Player: identity, Value: s.store.Get(identity, offline)})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Value != standings[j].Value {
			return standings[i].Value > standings[j].Value
		}
		return standings[i].Player < standings[j].Player
	})

	if len(standings) > limit {
		standings = standings[:limit]
	}
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}
