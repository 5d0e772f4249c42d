package world

import (
	"testing"

	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/scores"
)

func TestRosterApply(t *testing.T) {
	r := NewRoster()

	r.Apply(models.Event{Type: models.EventPlayerJoin, Player: "Sam", Tags: []string{"vip"}, PosX: 1})
	r.Apply(models.Event{Type: models.EventPlayerJoin, Player: "Alex"})
	r.Apply(models.Event{Type: models.EventPlayerState, Player: "Sam", PosX: 5, PosY: 64})
	r.Apply(models.Event{Type: models.EventPlayerKill, Attacker: "Alex", Victim: "Sam"})

	players := r.OnlinePlayers()
	if len(players) != 2 || players[0].Name != "Alex" || players[1].Name != "Sam" {
		t.Fatalf("OnlinePlayers() = %+v", players)
	}
	sam := players[1]
	if sam.Position != (models.Vec3{X: 5, Y: 64}) {
		t.Errorf("Sam position = %+v", sam.Position)
	}
	if !sam.HasTag("vip") {
		t.Error("state event without tags should keep existing tags")
	}

	if left := r.Apply(models.Event{Type: models.EventPlayerLeave, Player: "Sam"}); !left {
		t.Error("leave of online player should report true")
	}
	if left := r.Apply(models.Event{Type: models.EventPlayerLeave, Player: "Sam"}); left {
		t.Error("second leave should report false")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRosterReturnsCopies(t *testing.T) {
	r := NewRoster()
	r.Join(models.Player{Name: "Alex", Tags: []string{"a"}})

	p, _ := r.Player("Alex")
	p.Tags[0] = "mutated"

	again, _ := r.Player("Alex")
	if again.Tags[0] != "a" {
		t.Errorf("roster state mutated through returned copy: %v", again.Tags)
	}
}

func TestOutboxCoalescesActionBars(t *testing.T) {
	o := NewOutbox(0)
	o.BeginTick()
	o.SendActionBar("Alex", models.HUDMessage{Lines: []models.HUDLine{{Format: 'c', Text: "Kills: 1"}}})
	o.SendActionBar("Alex", models.HUDMessage{Lines: []models.HUDLine{{Text: "KD"}}})
	o.SendActionBar("Sam", models.HUDMessage{Lines: []models.HUDLine{{Text: "old"}}})

	o.BeginTick()
	o.SendActionBar("Sam", models.HUDMessage{Lines: []models.HUDLine{{Text: "new"}}})
	o.SendActionBar("Kim", models.HUDMessage{})

	b := o.Drain()
	if len(b.ActionBars) != 2 {
		t.Fatalf("ActionBars = %+v, want 2", b.ActionBars)
	}
	if b.ActionBars[0].Player != "Alex" || b.ActionBars[0].Text != "§cKills: 1\nKD" {
		t.Errorf("Alex = %+v", b.ActionBars[0])
	}
	if b.ActionBars[1].Text != "new" {
		t.Errorf("Sam = %q, want only the latest tick", b.ActionBars[1].Text)
	}

	if b := o.Drain(); len(b.ActionBars) != 0 || len(b.Objectives) != 0 || len(b.Commands) != 0 || len(b.Displays) != 0 {
		t.Errorf("second Drain() = %+v, want empty", b)
	}
}

func TestOutboxBindingsAndCommands(t *testing.T) {
	o := NewOutbox(2)
	o.BindDisplay(models.SlotSidebar, "kills_display")
	o.BindDisplay(models.SlotSidebar, "deaths_display")
	o.BindDisplay(models.SlotList, "money_display")

	if !o.RunCommand("Alex", "kick Alex") || !o.RunCommand("", "say hi") {
		t.Fatal("commands within capacity should queue")
	}
	if o.RunCommand("Sam", "kick Sam") {
		t.Error("command over capacity should be dropped")
	}

	b := o.Drain()
	want := []DisplayBinding{
		{Slot: models.SlotList, Objective: "money_display"},
		{Slot: models.SlotSidebar, Objective: "deaths_display"},
	}
	if len(b.Displays) != len(want) {
		t.Fatalf("Displays = %+v", b.Displays)
	}
	for i := range want {
		if b.Displays[i] != want[i] {
			t.Errorf("Displays[%d] = %+v, want %+v", i, b.Displays[i], want[i])
		}
	}
	if len(b.Commands) != 2 || b.Commands[0].Command != "kick Alex" {
		t.Errorf("Commands = %+v", b.Commands)
	}
	if o.Pending() != 0 {
		t.Errorf("Pending() = %d after drain", o.Pending())
	}
}

func TestOutboxMirrorsScoreboard(t *testing.T) {
	o := NewOutbox(0)
	board := scores.NewJournaled(scores.NewMemory(), o)

	board.SetScore("Alex", "kills_display", 4)
	board.RemoveObjective("kills_display")
	board.EnsureObjective("kills_display", "§6Kills")
	board.SetScores("kills_display", map[string]int64{"Alex": 5, "Sam": 2})
	board.SetScore("Sam", "kd_display", 150)

	b := o.Drain()
	if len(b.Objectives) != 2 {
		t.Fatalf("Objectives = %+v, want 2", b.Objectives)
	}
	kills := b.Objectives[0]
	if kills.Objective != "kills_display" || !kills.Remove || kills.Label != "§6Kills" {
		t.Errorf("kills update = %+v", kills)
	}
	if kills.Scores["Alex"] != 5 || kills.Scores["Sam"] != 2 || len(kills.Scores) != 2 {
		t.Errorf("kills scores = %v, want only values written after the remove", kills.Scores)
	}
	kd := b.Objectives[1]
	if kd.Remove || kd.Label != "kd_display" || kd.Scores["Sam"] != 150 {
		t.Errorf("kd update = %+v", kd)
	}

	if b := o.Drain(); len(b.Objectives) != 0 {
		t.Errorf("second Drain() objectives = %+v, want empty", b.Objectives)
	}
}
