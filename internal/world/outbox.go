package world

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/scores"
)

// DefaultMaxCommands bounds the pending command queue.
const DefaultMaxCommands = 1000

var commandsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "statboard_outbox_commands_dropped_total",
	Help: "Commands dropped because the outbox queue was full",
})

// ActionBar is heads-up text for one player, already rendered.
type ActionBar struct {
	Player string `json:"player"`
	Text   string `json:"text"`
}

// DisplayBinding points a display slot at an objective.
type DisplayBinding struct {
	Slot      models.DisplaySlot `json:"slot"`
	Objective string             `json:"objective"`
}

// Command is a console command to run in the player's dimension.
type Command struct {
	Player  string `json:"player,omitempty"`
	Command string `json:"command"`
}

// ObjectiveUpdate mirrors scoreboard changes to the host. The host applies
// them in order: drop the objective when Remove is set, create it with
// Label when Label is set, then write Scores.
type ObjectiveUpdate struct {
	Objective string           `json:"objective"`
	Remove    bool             `json:"remove,omitempty"`
	Label     string           `json:"label,omitempty"`
	Scores    map[string]int64 `json:"scores,omitempty"`
}

// Batch is everything queued since the previous drain. Objectives come
// before Displays so a binding never names an objective the host lacks.
type Batch struct {
	ActionBars []ActionBar       `json:"actionBars"`
	Objectives []ObjectiveUpdate `json:"objectives"`
	Displays   []DisplayBinding  `json:"displays"`
	Commands   []Command         `json:"commands"`
}

type pendingBar struct {
	tick  uint64
	lines []string
}

// Outbox collects host-bound actions until the add-on polls for them.
// Heads-up pushes from the same tick are joined per player and replace
// those of earlier ticks. Scoreboard mutations coalesce per objective and
// display bindings keep the last one per slot. Commands queue in order.
type Outbox struct {
	mu             sync.Mutex
	tick           uint64
	bars           map[string]*pendingBar
	barOrder       []string
	objectives     map[string]*ObjectiveUpdate
	objectiveOrder []string
	bindings       map[models.DisplaySlot]string
	commands       []Command
	maxCommands    int
}

func NewOutbox(maxCommands int) *Outbox {
	if maxCommands <= 0 {
		maxCommands = DefaultMaxCommands
	}
	return &Outbox{
		bars:        make(map[string]*pendingBar),
		objectives:  make(map[string]*ObjectiveUpdate),
		bindings:    make(map[models.DisplaySlot]string),
		maxCommands: maxCommands,
	}
}

// BeginTick starts a new heads-up generation.
func (o *Outbox) BeginTick() {
	o.mu.Lock()
	o.tick++
	o.mu.Unlock()
}

// SendActionBar renders msg and queues it for player.
func (o *Outbox) SendActionBar(player string, msg models.HUDMessage) {
	text := msg.Render()
	if text == "" {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	pb, ok := o.bars[player]
	if !ok {
		pb = &pendingBar{tick: o.tick}
		o.bars[player] = pb
		o.barOrder = append(o.barOrder, player)
	}
	if pb.tick != o.tick {
		pb.tick = o.tick
		pb.lines = pb.lines[:0]
	}
	pb.lines = append(pb.lines, text)
}

// Enqueue folds a scoreboard mutation into the pending update for its
// objective. A removal discards anything queued before it. It never refuses.
func (o *Outbox) Enqueue(m scores.Mutation) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, ok := o.objectives[m.Objective]
	if !ok {
		u = &ObjectiveUpdate{Objective: m.Objective}
		o.objectives[m.Objective] = u
		o.objectiveOrder = append(o.objectiveOrder, m.Objective)
	}
	switch m.Op {
	case scores.OpRemove:
		u.Remove = true
		u.Label = ""
		u.Scores = nil
	case scores.OpEnsure:
		u.Label = m.Label
	case scores.OpSet:
		if u.Scores == nil {
			u.Scores = make(map[string]int64)
		}
		u.Scores[m.Identity] = m.Value
	case scores.OpSetMany:
		if u.Scores == nil {
			u.Scores = make(map[string]int64, len(m.Values))
		}
		for identity, v := range m.Values {
			u.Scores[identity] = v
		}
	}
	return true
}

func (o *Outbox) BindDisplay(slot models.DisplaySlot, objective string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bindings[slot] = objective
}

// RunCommand queues command. It returns false when the queue is full.
func (o *Outbox) RunCommand(player, command string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.commands) >= o.maxCommands {
		commandsDropped.Inc()
		return false
	}
	o.commands = append(o.commands, Command{Player: player, Command: command})
	return true
}

// Drain returns and clears everything queued.
func (o *Outbox) Drain() Batch {
	o.mu.Lock()
	defer o.mu.Unlock()

	b := Batch{
		ActionBars: make([]ActionBar, 0, len(o.barOrder)),
		Objectives: make([]ObjectiveUpdate, 0, len(o.objectiveOrder)),
		Displays:   make([]DisplayBinding, 0, len(o.bindings)),
		Commands:   o.commands,
	}
	for _, player := range o.barOrder {
		b.ActionBars = append(b.ActionBars, ActionBar{Player: player, Text: strings.Join(o.bars[player].lines, "\n")})
	}
	for _, name := range o.objectiveOrder {
		b.Objectives = append(b.Objectives, *o.objectives[name])
	}
	for _, slot := range models.DisplaySlots {
		if obj, ok := o.bindings[slot]; ok {
			b.Displays = append(b.Displays, DisplayBinding{Slot: slot, Objective: obj})
		}
	}
	if b.Commands == nil {
		b.Commands = []Command{}
	}

	o.bars = make(map[string]*pendingBar)
	o.barOrder = nil
	o.objectives = make(map[string]*ObjectiveUpdate)
	o.objectiveOrder = nil
	o.bindings = make(map[models.DisplaySlot]string)
	o.commands = nil
	return b
}

// Pending reports the number of queued commands.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.commands)
}
