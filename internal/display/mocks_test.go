package display

import (
	"github.com/openmohaa/statboard/internal/models"
)

type MockPlayers struct {
	Players []models.Player
}

func (m *MockPlayers) OnlinePlayers() []models.Player { return m.Players }

type binding struct {
	Slot      models.DisplaySlot
	Objective string
}

type MockBinder struct {
	Bindings []binding
}

func (m *MockBinder) BindDisplay(slot models.DisplaySlot, objective string) {
	m.Bindings = append(m.Bindings, binding{Slot: slot, Objective: objective})
}

func (m *MockBinder) Last() binding {
	if len(m.Bindings) == 0 {
		return binding{}
	}
	return m.Bindings[len(m.Bindings)-1]
}

type MockActionBar struct {
	Sent map[string]models.HUDMessage
}

func (m *MockActionBar) SendActionBar(player string, msg models.HUDMessage) {
	if m.Sent == nil {
		m.Sent = make(map[string]models.HUDMessage)
	}
	m.Sent[player] = msg
}
