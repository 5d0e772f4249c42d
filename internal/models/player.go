package models

// Vec3 is a block-space position.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Player is the engine's view of an online player. Name doubles as the
// scoreboard identity.
type Player struct {
	Name     string   `json:"name"`
	Tags     []string `json:"tags"`
	Position Vec3     `json:"position"`
}

// HasTag reports whether the player carries tag.
func (p Player) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
