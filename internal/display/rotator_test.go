package display

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/scores"
)

func setDisplay(t *testing.T, store *configstore.Store, cfg models.DisplayConfig) {
	t.Helper()
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	store.WriteBlob(configstore.KeyDisplay, string(raw))
}

func newTestRotator(t *testing.T, cfg models.DisplayConfig) (*Rotator, *scores.Store, *MockPlayers, *MockBinder) {
	t.Helper()
	conf := configstore.NewMemory()
	setDisplay(t, conf, cfg)
	store := scores.NewStore(scores.NewMemory())
	players := &MockPlayers{}
	binder := &MockBinder{}
	return NewRotator(conf, store, players, binder, nil), store, players, binder
}

func listOnly(seq []string, delay int) models.DisplayConfig {
	cfg := models.DefaultDisplayConfig()
	cfg.List = models.SlotConfig{Enabled: true, Sequence: seq, DelaySeconds: delay}
	return cfg
}

func TestRotatorFiresOnCadence(t *testing.T) {
	r, _, _, binder := newTestRotator(t, listOnly([]string{"kills", "deaths"}, 15))

	for i := 1; i <= 14; i++ {
		if fired := r.Tick(time.Second); len(fired) != 0 {
			t.Fatalf("tick %d fired %v", i, fired)
		}
	}
	if st := r.State(models.SlotList); st.Index != 0 || st.Elapsed != 14*time.Second {
		t.Fatalf("state before first firing = %+v", st)
	}

	if fired := r.Tick(time.Second); len(fired) != 1 || fired[0] != models.SlotList {
		t.Fatalf("tick 15 fired %v, want [list]", fired)
	}
	if st := r.State(models.SlotList); st.Index != 1 || st.Elapsed != 0 {
		t.Errorf("state after first firing = %+v, want index 1 elapsed 0", st)
	}
	if got := binder.Last().Objective; got != "kills_display" {
		t.Errorf("bound %q, want kills_display", got)
	}

	for i := 1; i <= 14; i++ {
		r.Tick(time.Second)
	}
	if len(binder.Bindings) != 1 {
		t.Fatalf("fired again before the delay elapsed")
	}
	r.Tick(time.Second)
	if st := r.State(models.SlotList); st.Index != 0 {
		t.Errorf("index after second firing = %d, want wrap to 0", st.Index)
	}
	if got := binder.Last().Objective; got != "deaths_display" {
		t.Errorf("bound %q, want deaths_display", got)
	}
}

func TestRotatorCadenceIsInSeconds(t *testing.T) {
	r, _, _, binder := newTestRotator(t, listOnly([]string{"kills", "deaths"}, 15))

	// 15 seconds of 100ms ticks fire exactly once
	for i := 1; i <= 150; i++ {
		fired := r.Tick(100 * time.Millisecond)
		if i < 150 && len(fired) != 0 {
			t.Fatalf("tick %d fired %v", i, fired)
		}
	}
	if len(binder.Bindings) != 1 {
		t.Fatalf("firings after 15s = %d, want 1", len(binder.Bindings))
	}

	// a 20s tick fires once and resets the accumulator
	if fired := r.Tick(20 * time.Second); len(fired) != 1 {
		t.Errorf("long tick fired %v, want one slot", fired)
	}
	if st := r.State(models.SlotList); st.Elapsed != 0 || st.Index != 0 {
		t.Errorf("state after long tick = %+v, want index 0 elapsed 0", st)
	}
}

func TestRotatorWrapsThroughSequence(t *testing.T) {
	r, _, _, binder := newTestRotator(t, listOnly([]string{"kills", "deaths", "kills"}, 1))

	for i := 0; i < 3; i++ {
		r.Tick(time.Second)
	}
	if got := binder.Last().Objective; got != "kills_display" {
		t.Errorf("after 3 firings bound %q, want kills_display", got)
	}
	if st := r.State(models.SlotList); st.Index != 0 {
		t.Errorf("after 3 firings index = %d, want 0", st.Index)
	}

	r.Tick(time.Second)
	if got := binder.Last().Objective; got != "kills_display" {
		t.Errorf("after 4 firings bound %q, want kills_display", got)
	}
	if st := r.State(models.SlotList); st.Index != 1 {
		t.Errorf("after 4 firings index = %d, want 1", st.Index)
	}
}

func TestRotatorIdleSlots(t *testing.T) {
	cfg := models.DefaultDisplayConfig()
	cfg.List = models.SlotConfig{Enabled: false, Sequence: []string{"kills"}, DelaySeconds: 1}
	cfg.Sidebar = models.SlotConfig{Enabled: true, Sequence: []string{}, DelaySeconds: 1}
	r, _, _, binder := newTestRotator(t, cfg)

	for i := 0; i < 50; i++ {
		r.Tick(time.Second)
	}
	if len(binder.Bindings) != 0 {
		t.Errorf("idle slots bound %v", binder.Bindings)
	}
	for _, slot := range models.DisplaySlots {
		if st := r.State(slot); st != (SlotState{}) {
			t.Errorf("%s state = %+v, want zero", slot, st)
		}
	}
}

func TestRotatorSlotsAreIndependent(t *testing.T) {
	cfg := models.DefaultDisplayConfig()
	cfg.List = models.SlotConfig{Enabled: true, Sequence: []string{"kills"}, DelaySeconds: 2}
	cfg.Sidebar = models.SlotConfig{Enabled: true, Sequence: []string{"deaths", "money"}, DelaySeconds: 3}
	r, _, _, binder := newTestRotator(t, cfg)

	for i := 0; i < 6; i++ {
		r.Tick(time.Second)
	}
	counts := map[models.DisplaySlot]int{}
	for _, b := range binder.Bindings {
		counts[b.Slot]++
	}
	if counts[models.SlotList] != 3 || counts[models.SlotSidebar] != 2 {
		t.Errorf("firings = %v, want list 3 sidebar 2", counts)
	}
}

func TestRotatorRebuildsShadowCounter(t *testing.T) {
	r, store, players, binder := newTestRotator(t, listOnly([]string{"§c§lKills"}, 1))
	players.Players = []models.Player{{Name: "Alex"}, {Name: "Sam"}}
	store.Set("Alex", "kills", 12)
	store.Set("Sam", "kills", 3)
	store.Set("Offline", "kills", 99)
	store.Set("Stale", "kills_display", 1)

	r.Tick(time.Second)

	if got := binder.Last().Objective; got != "kills_display" {
		t.Fatalf("bound %q, want kills_display", got)
	}
	if got := store.Get("Alex", "kills_display"); got != 12 {
		t.Errorf("Alex kills_display = %d, want 12", got)
	}
	if got := store.Get("Sam", "kills_display"); got != 3 {
		t.Errorf("Sam kills_display = %d, want 3", got)
	}
	parts := store.Participants("kills_display")
	if len(parts) != 2 {
		t.Errorf("kills_display participants = %v, want only online players", parts)
	}
}

func TestDisplayIdentity(t *testing.T) {
	tests := []struct {
		entry, id, label string
	}{
		{"kills", "kills", "Kills"},
		{"§c§lKills", "kills", "§c§lKills"},
		{"§6mob_kills", "mob_kills", "§6Mob_kills"},
		{" Deaths ", "deaths", "Deaths"},
		{"§a", "", ""},
	}
	for _, tt := range tests {
		id, label := DisplayIdentity(tt.entry)
		if id != tt.id || label != tt.label {
			t.Errorf("DisplayIdentity(%q) = %q, %q; want %q, %q", tt.entry, id, label, tt.id, tt.label)
		}
	}
}
