// Package world mirrors the game's online players and queues the actions the
// game-side add-on must carry out.
package world

import (
	"sort"
	"sync"

	"github.com/openmohaa/statboard/internal/models"
)

// Roster is the set of online players, keyed by name.
type Roster struct {
	mu      sync.RWMutex
	players map[string]models.Player
}

func NewRoster() *Roster {
	return &Roster{players: make(map[string]models.Player)}
}

// Join adds p, replacing any previous state under the same name.
func (r *Roster) Join(p models.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.Name] = clonePlayer(p)
}

// Leave removes name and reports whether it was online.
func (r *Roster) Leave(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[name]
	delete(r.players, name)
	return ok
}

// Update refreshes position and, when tags is non-nil, tags. Unknown players
// are added.
func (r *Roster) Update(name string, tags []string, pos models.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[name]
	if !ok {
		p = models.Player{Name: name}
	}
	p.Position = pos
	if tags != nil {
		p.Tags = append([]string(nil), tags...)
	}
	r.players[name] = p
}

// Apply updates the roster from a join, leave or state event. It reports
// whether the event was a leave of an online player.
func (r *Roster) Apply(e models.Event) (left bool) {
	if e.Player == "" {
		return false
	}
	switch e.Type {
	case models.EventPlayerJoin:
		r.Join(models.Player{Name: e.Player, Tags: e.Tags, Position: e.Position()})
	case models.EventPlayerLeave:
		return r.Leave(e.Player)
	case models.EventPlayerState:
		r.Update(e.Player, e.Tags, e.Position())
	}
	return false
}

// Player returns the state of an online player.
func (r *Roster) Player(name string) (models.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[name]
	return clonePlayer(p), ok
}

// OnlinePlayers returns a copy of every online player sorted by name.
func (r *Roster) OnlinePlayers() []models.Player {
	r.mu.RLock()
	out := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, clonePlayer(p))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Roster) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

func clonePlayer(p models.Player) models.Player {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}
