package models

import "testing"

func TestExpandCommand(t *testing.T) {
	tests := []struct {
		name     string
		template string
		pairs    []string
		want     string
	}{
		{"single", `kick "{player}"`, []string{"player", "Alex"}, `kick "Alex"`},
		{"repeated", "{player} {player}", []string{"player", "Bea"}, "Bea Bea"},
		{"several", DefaultTeleportCommand, []string{"player", "Cal", "x", "1", "y", "64", "z", "-3.5"}, `tp "Cal" 1 64 -3.5`},
		{"unknown placeholder kept", "say {who}", []string{"player", "Dana"}, "say {who}"},
		{"odd pairs", "{player}", []string{"player"}, "{player}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandCommand(tt.template, tt.pairs...); got != tt.want {
				t.Errorf("ExpandCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{-5, 1}, {0, 1}, {10, 10}, {500, MaxLeaderboardLimit}} {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAFKConfigNormalize(t *testing.T) {
	c := AFKConfig{TimeoutSeconds: 30, WarnSeconds: 45}
	c.Normalize()
	if c.WarnSeconds != 0 {
		t.Errorf("WarnSeconds = %d, want 0 when not below the timeout", c.WarnSeconds)
	}
	if c.Command != DefaultAFKCommand || c.ExemptTags == nil {
		t.Errorf("defaults not filled: %+v", c)
	}
}
