package ratio

import (
	"github.com/openmohaa/statboard/internal/models"
)

type MockPlayers struct {
	Players []models.Player
}

func (m *MockPlayers) OnlinePlayers() []models.Player { return m.Players }

type sentBar struct {
	Player string
	Msg    models.HUDMessage
}

type MockActionBar struct {
	Sent []sentBar
}

func (m *MockActionBar) SendActionBar(player string, msg models.HUDMessage) {
	m.Sent = append(m.Sent, sentBar{Player: player, Msg: msg})
}

type MockRemover struct {
	Removed []string
}

func (m *MockRemover) Remove(name string) { m.Removed = append(m.Removed, name) }
