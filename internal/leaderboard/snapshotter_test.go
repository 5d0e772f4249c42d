package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/registry"
	"github.com/openmohaa/statboard/internal/scores"
)

func newTestSnapshotter(t *testing.T, leaderboardCfg string, sink ArchiveSink) (*Snapshotter, *scores.Store) {
	t.Helper()
	conf := configstore.NewMemory()
	if leaderboardCfg != "" {
		conf.WriteBlob(configstore.KeyLeaderboard, leaderboardCfg)
	}
	conf.WriteBlob(configstore.KeyCounters, `{"counters": {"deaths": {"enabled": false}}}`)
	store := scores.NewStore(scores.NewMemory())
	s := NewSnapshotter(conf, registry.New(conf, nil), store, sink, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, store
}

func TestSnapshotCycleOverwrites(t *testing.T) {
	s, store := newTestSnapshotter(t, `{"customCounters": ["pvp_wins", " ", "kills"]}`, nil)
	store.Set("Alex", "kills", 5)
	store.Set("Sam", "kills", 9)
	store.Set("Alex", "kills_offline", 100)
	store.Set("Alex", "pvp_wins", 2)
	store.Set(scores.OfflinePlayerSentinel, "kills", 42)
	store.Set("Alex", "deaths", 7)

	if got := s.SnapshotCycle(); got != 3 {
		t.Errorf("SnapshotCycle() = %d, want 3", got)
	}
	if got := store.Get("Alex", "kills_offline"); got != 5 {
		t.Errorf("Alex kills_offline = %d, want 5 (overwrite)", got)
	}
	if got := store.Get("Sam", "kills_offline"); got != 9 {
		t.Errorf("Sam kills_offline = %d, want 9", got)
	}
	if got := store.Get("Alex", "pvp_wins_offline"); got != 2 {
		t.Errorf("custom counter offline = %d, want 2", got)
	}
	if store.Exists("deaths_offline") {
		t.Error("disabled built-in should not be snapshotted")
	}
	if !store.Exists("mob_kills_offline") {
		t.Error("enabled built-in offline counter should exist even without participants")
	}

	// No live changes: a second cycle is idempotent.
	s.SnapshotCycle()
	if got := store.Get("Alex", "kills_offline"); got != 5 {
		t.Errorf("second cycle changed kills_offline to %d", got)
	}
}

func TestTracked(t *testing.T) {
	s, _ := newTestSnapshotter(t, `{"customCounters": ["pvp_wins", "kills", "pvp_wins"]}`, nil)
	got := s.Tracked()
	want := []string{"kills", "mob_kills", "blocks_broken", "blocks_placed", "playtime", "money", "joins", "pvp_wins"}
	if len(got) != len(want) {
		t.Fatalf("Tracked() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tracked()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSnapshotCycleArchives(t *testing.T) {
	sink := &MockSink{}
	s, store := newTestSnapshotter(t, "", sink)
	store.Set("Alex", "kills", 5)
	store.Set("Sam", "money", 30)

	s.SnapshotCycle()

	if len(sink.Rows) != 2 {
		t.Fatalf("archived %d rows, want 2", len(sink.Rows))
	}
	id := sink.Rows[0].SnapshotID
	if id == uuid.Nil {
		t.Error("snapshot id not set")
	}
	for _, r := range sink.Rows {
		if r.SnapshotID != id {
			t.Errorf("rows of one cycle carry different ids: %s vs %s", r.SnapshotID, id)
		}
		if !r.TakenAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
			t.Errorf("TakenAt = %v", r.TakenAt)
		}
	}

	s.SnapshotCycle()
	if sink.Rows[2].SnapshotID == id {
		t.Error("each cycle should get a fresh snapshot id")
	}
}

func TestTop(t *testing.T) {
	s, store := newTestSnapshotter(t, `{"limit": 2}`, nil)
	store.Set("Alex", "kills_offline", 5)
	store.Set("Bea", "kills_offline", 9)
	store.Set("Cal", "kills_offline", 9)
	store.Set("Dee", "kills_offline", 1)

	top := s.Top("kills", 0)
	if len(top) != 2 {
		t.Fatalf("Top() returned %d, want configured limit 2", len(top))
	}
	if top[0].Player != "Bea" || top[1].Player != "Cal" || top[0].Rank != 1 || top[1].Rank != 2 {
		t.Errorf("Top() = %+v, want Bea then Cal", top)
	}

	all := s.Top("kills", 500)
	if len(all) != 4 || all[3].Player != "Dee" {
		t.Errorf("Top(500) = %+v", all)
	}

	if got := s.Top("nothing", 10); len(got) != 0 {
		t.Errorf("Top(unknown) = %+v, want empty", got)
	}
}

func TestClickHouseArchiveFlush(t *testing.T) {
	conn := &MockClickHouseConn{}
	archive := NewClickHouseArchive(conn)

	if err := archive.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(conn.Execs) != 2 {
		t.Errorf("EnsureSchema ran %d statements, want 2", len(conn.Execs))
	}

	rows := []Row{
		{SnapshotID: uuid.New(), Counter: "kills", Player: "Alex", Value: 5},
		{SnapshotID: uuid.New(), Counter: "kills", Player: "Sam", Value: 9},
	}
	if err := archive.Flush(context.Background(), rows); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(conn.Batch.Appended) != 2 || !conn.Batch.Sent {
		t.Errorf("batch appended %d rows, sent=%v", len(conn.Batch.Appended), conn.Batch.Sent)
	}
	if got := conn.Batch.Appended[1][3]; got != "Sam" {
		t.Errorf("player column = %v, want Sam", got)
	}
}

func TestClickHouseArchiveAppendError(t *testing.T) {
	conn := &MockClickHouseConn{Batch: &MockBatch{AppendErr: true}}
	archive := NewClickHouseArchive(conn)

	err := archive.Flush(context.Background(), []Row{{Counter: "kills", Player: "Alex"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !conn.Batch.Aborted {
		t.Error("batch should be aborted on append error")
	}
}

func TestClickHouseArchiveEmptyBatch(t *testing.T) {
	conn := &MockClickHouseConn{}
	if err := NewClickHouseArchive(conn).Flush(context.Background(), nil); err != nil {
		t.Fatalf("Flush(nil): %v", err)
	}
	if len(conn.Queries) != 0 {
		t.Error("empty batch should not prepare an insert")
	}
}
