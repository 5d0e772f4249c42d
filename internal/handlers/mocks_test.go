package handlers

import (
	"context"

	"github.com/openmohaa/statboard/internal/leaderboard"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/world"
)

// MockEventQueue records enqueued events
type MockEventQueue struct {
	Events   []models.Event
	Capacity int
}

func (m *MockEventQueue) Enqueue(e models.Event) bool {
	if m.Capacity > 0 && len(m.Events) >= m.Capacity {
		return false
	}
	m.Events = append(m.Events, e)
	return true
}

func (m *MockEventQueue) QueueDepth() int { return len(m.Events) }

// MockOutbox returns a fixed batch
type MockOutbox struct {
	Batch  world.Batch
	Drains int
}

func (m *MockOutbox) Drain() world.Batch {
	m.Drains++
	return m.Batch
}

// MockPlayers reports a fixed online set
type MockPlayers map[string]models.Player

func (m MockPlayers) Player(name string) (models.Player, bool) {
	p, ok := m[name]
	return p, ok
}

// MockHistory validates queries like the archive and returns fixed points
type MockHistory struct {
	Points []leaderboard.HistoryPoint
	Last   leaderboard.HistoryQuery
	Err    error
}

func (m *MockHistory) History(ctx context.Context, q leaderboard.HistoryQuery) ([]leaderboard.HistoryPoint, error) {
	m.Last = q
	if m.Err != nil {
		return nil, m.Err
	}
	if _, _, err := leaderboard.BuildHistoryQuery(q); err != nil {
		return nil, err
	}
	return m.Points, nil
}
