package models

import "fmt"

// DisplaySlot is one of the fixed scoreboard display regions.
type DisplaySlot int

const (
	SlotList DisplaySlot = iota
	SlotSidebar
	SlotBelowName
)

// DisplaySlots lists every slot in rotation order.
var DisplaySlots = []DisplaySlot{SlotList, SlotSidebar, SlotBelowName}

var DisplaySlotNames = map[DisplaySlot]string{
	SlotList:      "list",
	SlotSidebar:   "sidebar",
	SlotBelowName: "belowName",
}

func (s DisplaySlot) String() string {
	if name, ok := DisplaySlotNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DisplaySlot(%d)", int(s))
}

func (s DisplaySlot) MarshalText() ([]byte, error) {
	if _, ok := DisplaySlotNames[s]; !ok {
		return nil, fmt.Errorf("unknown display slot %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *DisplaySlot) UnmarshalText(text []byte) error {
	for slot, name := range DisplaySlotNames {
		if name == string(text) {
			*s = slot
			return nil
		}
	}
	return fmt.Errorf("unknown display slot %q", string(text))
}

// DefaultDelaySeconds is the rotation cadence used when none is configured.
const DefaultDelaySeconds = 15

// SlotConfig is the persisted rotation setup for one slot.
type SlotConfig struct {
	Enabled      bool     `json:"enabled"`
	Sequence     []string `json:"sequence"`
	DelaySeconds int      `json:"delaySeconds"`
}

// DisplayConfig holds the rotation setup for all three slots.
type DisplayConfig struct {
	List      SlotConfig `json:"list"`
	Sidebar   SlotConfig `json:"sidebar"`
	BelowName SlotConfig `json:"belowName"`
}

// Slot returns the configuration of s.
func (c DisplayConfig) Slot(s DisplaySlot) SlotConfig {
	switch s {
	case SlotSidebar:
		return c.Sidebar
	case SlotBelowName:
		return c.BelowName
	default:
		return c.List
	}
}

// DefaultDisplayConfig has every slot disabled with the default cadence.
func DefaultDisplayConfig() DisplayConfig {
	def := SlotConfig{Sequence: []string{}, DelaySeconds: DefaultDelaySeconds}
	return DisplayConfig{List: def, Sidebar: def, BelowName: def}
}

func (c *DisplayConfig) Normalize() {
	for _, slot := range []*SlotConfig{&c.List, &c.Sidebar, &c.BelowName} {
		if slot.DelaySeconds <= 0 {
			slot.DelaySeconds = DefaultDelaySeconds
		}
		if slot.Sequence == nil {
			slot.Sequence = []string{}
		}
	}
}
