// Package scores models the game's per-identity integer scoreboard and the
// ScoreStore the engine reads and writes counters through.
package scores

import (
	"sort"
	"sync"
)

// Scoreboard is the per-identity integer primitive: one named objective holds
// at most one value per identity.
type Scoreboard interface {
	EnsureObjective(name, label string)
	RemoveObjective(name string)
	HasObjective(name string) bool
	Score(identity, name string) (int64, bool)
	SetScore(identity, name string, value int64)
	Participants(name string) []string
}

// BatchWriter is implemented by scoreboards that can write many identities of
// one objective in a single operation.
type BatchWriter interface {
	SetScores(name string, values map[string]int64)
}

type objective struct {
	label  string
	scores map[string]int64
}

// Memory is a mutex-guarded in-memory Scoreboard. Every method is atomic per
// call, which is the only guarantee the engine relies on.
type Memory struct {
	mu         sync.RWMutex
	objectives map[string]*objective
}

func NewMemory() *Memory {
	return &Memory{objectives: make(map[string]*objective)}
}

func (m *Memory) EnsureObjective(name, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLocked(name, label)
}

func (m *Memory) ensureLocked(name, label string) *objective {
	obj, ok := m.objectives[name]
	if !ok {
		obj = &objective{label: label, scores: make(map[string]int64)}
		m.objectives[name] = obj
	}
	return obj
}

func (m *Memory) RemoveObjective(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objectives, name)
}

func (m *Memory) HasObjective(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objectives[name]
	return ok
}

// Label returns the display label of an objective.
func (m *Memory) Label(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objectives[name]
	if !ok {
		return "", false
	}
	return obj.label, true
}

func (m *Memory) Score(identity, name string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objectives[name]
	if !ok {
		return 0, false
	}
	v, ok := obj.scores[identity]
	return v, ok
}

// SetScore creates the objective with its name as label when missing.
func (m *Memory) SetScore(identity, name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLocked(name, name).scores[identity] = value
}

func (m *Memory) SetScores(name string, values map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj := m.ensureLocked(name, name)
	for identity, v := range values {
		obj.scores[identity] = v
	}
}

// Participants returns every identity with a value on name, sorted.
func (m *Memory) Participants(name string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objectives[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(obj.scores))
	for identity := range obj.scores {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}

// Objectives returns every objective name with its label.
func (m *Memory) Objectives() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.objectives))
	for name, obj := range m.objectives {
		out[name] = obj.label
	}
	return out
}
