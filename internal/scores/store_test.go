package scores

import (
	"testing"
)

// countingBoard records SetScore and SetScores calls
type countingBoard struct {
	*Memory
	single int
	batch  int
}

func (c *countingBoard) SetScore(identity, name string, value int64) {
	c.single++
	c.Memory.SetScore(identity, name, value)
}

func (c *countingBoard) SetScores(name string, values map[string]int64) {
	c.batch++
	c.Memory.SetScores(name, values)
}

// plainBoard hides the BatchWriter capability of Memory
type plainBoard struct {
	mem *Memory
}

func (p plainBoard) EnsureObjective(name, label string) { p.mem.EnsureObjective(name, label) }
func (p plainBoard) RemoveObjective(name string) { p.mem.RemoveObjective(name) }
func (p plainBoard) HasObjective(name string) bool { return p.mem.HasObjective(name) }
func (p plainBoard) Score(identity, name string) (int64, bool) { return p.mem.Score(identity, name) }
func (p plainBoard) SetScore(identity, name string, value int64) { p.mem.SetScore(identity, name, value) }
func (p plainBoard) Participants(name string) []string { return p.mem.Participants(name) }

func TestGetDefaultsToZero(t *testing.T) {
	store := NewStore(NewMemory())

	if got := store.Get("Steve", "kills"); got != 0 {
		t.Errorf("Get on missing objective = %d, want 0", got)
	}
	store.Ensure("kills", "Kills")
	if got := store.Get("Steve", "kills"); got != 0 {
		t.Errorf("Get on unscored identity = %d, want 0", got)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	mem := NewMemory()
	store := NewStore(mem)

	h := store.Ensure("kills", "Kills")
	h.Set("Steve", 4)
	store.Ensure("kills", "Different Label")

	if got := h.Get("Steve"); got != 4 {
		t.Errorf("value after re-ensure = %d, want 4", got)
	}
	if label, _ := mem.Label("kills"); label != "Kills" {
		t.Errorf("label = %q, want first label kept", label)
	}
}

func TestRecreateClearsScores(t *testing.T) {
	mem := NewMemory()
	store := NewStore(mem)
	store.Set("Steve", "kills_display", 9)

	store.Recreate("kills_display", "§aKills")

	if _, ok := mem.Score("Steve", "kills_display"); ok {
		t.Error("score survived Recreate")
	}
	if label, _ := mem.Label("kills_display"); label != "§aKills" {
		t.Errorf("label = %q", label)
	}
}

func TestAdd(t *testing.T) {
	store := NewStore(NewMemory())
	store.Add("Steve", "kills", 2)
	if got := store.Add("Steve", "kills", 3); got != 5 {
		t.Errorf("Add = %d, want 5", got)
	}
}

func TestParticipantsFiltersSentinel(t *testing.T) {
	store := NewStore(NewMemory())
	store.Set("Steve", "kills", 1)
	store.Set(OfflinePlayerSentinel, "kills", 3)
	store.Set("Alex", "kills", 2)

	got := store.Participants("kills")
	if len(got) != 2 || got[0] != "Alex" || got[1] != "Steve" {
		t.Errorf("Participants = %v, want [Alex Steve]", got)
	}
	if got := store.Participants("missing"); len(got) != 0 {
		t.Errorf("Participants(missing) = %v", got)
	}
}

func TestCopyAllUsesBatchWriter(t *testing.T) {
	board := &countingBoard{Memory: NewMemory()}
	store := NewStore(board)
	board.Memory.SetScore("Steve", "kills", 7)
	board.Memory.SetScore("Alex", "kills", 3)

	store.CopyAll("kills", "kills_display", []string{"Steve", "Alex", "Herobrine"})

	if board.batch != 1 || board.single != 0 {
		t.Errorf("batch=%d single=%d, want one batched write", board.batch, board.single)
	}
	if got := store.Get("Steve", "kills_display"); got != 7 {
		t.Errorf("Steve copy = %d, want 7", got)
	}
	if v, ok := board.Memory.Score("Herobrine", "kills_display"); !ok || v != 0 {
		t.Errorf("Herobrine copy = %d,%v, want explicit 0", v, ok)
	}
}

func TestCopyAllFallsBackToSingleWrites(t *testing.T) {
	mem := NewMemory()
	store := NewStore(plainBoard{mem: mem})
	mem.SetScore("Steve", "deaths", 2)

	store.CopyAll("deaths", "deaths_display", []string{"Steve"})

	if got := store.Get("Steve", "deaths_display"); got != 2 {
		t.Errorf("copy = %d, want 2", got)
	}
}
