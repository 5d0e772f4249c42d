package models

import (
	"encoding/json"
	"testing"
)

func TestStripFormatting(t *testing.T) {
	tests := []struct {
		in, codes, plain string
	}{
		{"kills", "", "kills"},
		{"§aKills", "§a", "Kills"},
		{"§a§lBlocks", "§a§l", "Blocks"},
		{"mid§cdle", "§c", "middle"},
		{"dangling§", "", "dangling"},
	}
	for _, tt := range tests {
		codes, plain := StripFormatting(tt.in)
		if codes != tt.codes || plain != tt.plain {
			t.Errorf("StripFormatting(%q) = (%q, %q), want (%q, %q)", tt.in, codes, plain, tt.codes, tt.plain)
		}
	}
}

func TestHUDMessageRender(t *testing.T) {
	msg := HUDMessage{Lines: []HUDLine{
		{Format: 'a', Text: "K/D"},
		{Text: "Kills: 3"},
	}}
	if got, want := msg.Render(), "§aK/D\nKills: 3"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestFormatCodeJSON(t *testing.T) {
	var def RatioDefinition
	if err := json.Unmarshal([]byte(`{"labelFormat":"§6","ratioFormat":""}`), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if def.LabelFormat != '6' {
		t.Errorf("LabelFormat = %q, want '6'", rune(def.LabelFormat))
	}
	if def.RatioFormat.Valid() {
		t.Error("empty format should be unset")
	}
	out, _ := json.Marshal(def.LabelFormat)
	if string(out) != `"6"` {
		t.Errorf("Marshal = %s, want \"6\"", out)
	}
}

func TestScoreFiltersSkipsDisabledAndUnpaired(t *testing.T) {
	def := RatioDefinition{
		RequiredScoreObjectives: []string{"money", "none", "level", "extra"},
		RequiredScoreRanges:     []ScoreBounds{{Min: 1, Max: 5}, {Min: 0, Max: 0}, {Min: 10, Max: 20}},
	}
	got := def.ScoreFilters()
	if len(got) != 2 {
		t.Fatalf("ScoreFilters() len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Objective != "money" || got[1].Objective != "level" || got[1].Min != 10 {
		t.Errorf("ScoreFilters() = %+v", got)
	}
}

func TestDisplaySlotText(t *testing.T) {
	var s DisplaySlot
	if err := s.UnmarshalText([]byte("belowName")); err != nil || s != SlotBelowName {
		t.Fatalf("UnmarshalText = %v, %v", s, err)
	}
	b, _ := SlotSidebar.MarshalText()
	if string(b) != "sidebar" {
		t.Errorf("MarshalText = %s", b)
	}
}
