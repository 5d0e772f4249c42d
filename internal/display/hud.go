package display

import (
	"strconv"

	"github.com/openmohaa/statboard/internal/filter"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/registry"
	"github.com/openmohaa/statboard/internal/scores"
)

// ActionBarSender pushes heads-up text to one player.
type ActionBarSender interface {
	SendActionBar(player string, msg models.HUDMessage)
}

// HUD pushes one line per action-bar counter to every player passing the
// registry's overlay filter.
type HUD struct {
	registry *registry.Registry
	store    *scores.Store
	players  PlayerSource
	bar      ActionBarSender
}

func NewHUD(reg *registry.Registry, store *scores.Store, players PlayerSource, bar ActionBarSender) *HUD {
	return &HUD{registry: reg, store: store, players: players, bar: bar}
}

// Tick returns the number of players that received an overlay.
func (h *HUD) Tick() int {
	snap := h.registry.Snapshot()
	counters := snap.ActionBarCounters()
	if len(counters) == 0 {
		return 0
	}
	hudFilter := snap.HUDFilter()

	sent := 0
	for _, p := range h.players.OnlinePlayers() {
		if !filter.Passes(p, hudFilter, h.store) {
			continue
		}
		msg := models.HUDMessage{Lines: make([]models.HUDLine, 0, len(counters))}
		for _, id := range counters {
			msg.Lines = append(msg.Lines, models.HUDLine{
				Format: snap.Color(id),
				Text:   snap.Label(id) + ": " + strconv.FormatInt(h.store.Get(p.Name, id), 10),
			})
		}
		h.bar.SendActionBar(p.Name, msg)
		sent++
	}
	return sent
}
