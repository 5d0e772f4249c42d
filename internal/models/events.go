package models

// EventType identifies an event posted by the game-side add-on.
type EventType string

const (
	EventPlayerJoin  EventType = "player_join"
	EventPlayerLeave EventType = "player_leave"
	EventPlayerState EventType = "player_state"
	EventPlayerKill  EventType = "player_kill"
	EventMobKill     EventType = "mob_kill"
	EventEntityDeath EventType = "entity_death"
	EventBlockBreak  EventType = "block_break"
	EventBlockPlace  EventType = "block_place"
	EventMoney       EventType = "money"
)

// KnownEventTypes is used to reject unknown events at ingestion.
var KnownEventTypes = map[EventType]bool{
	EventPlayerJoin:  true,
	EventPlayerLeave: true,
	EventPlayerState: true,
	EventPlayerKill:  true,
	EventMobKill:     true,
	EventEntityDeath: true,
	EventBlockBreak:  true,
	EventBlockPlace:  true,
	EventMoney:       true,
}

// Event is the incoming event from the game add-on
type Event struct {
	Type      EventType `json:"type" validate:"required"`
	Timestamp float64   `json:"timestamp"`

	// Primary actor (join/leave/state/block/money/mob kill)
	Player string   `json:"player,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	PosX   float64  `json:"x,omitempty"`
	PosY   float64  `json:"y,omitempty"`
	PosZ   float64  `json:"z,omitempty"`

	// Kill/death info
	Attacker string `json:"attacker,omitempty"`
	Victim   string `json:"victim,omitempty"`
	Entity   string `json:"entity,omitempty"`

	Block  string `json:"block,omitempty"`
	Amount int64  `json:"amount,omitempty"`
}

// Position returns the event's actor position.
func (e *Event) Position() Vec3 {
	return Vec3{X: e.PosX, Y: e.PosY, Z: e.PosZ}
}
