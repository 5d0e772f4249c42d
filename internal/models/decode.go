package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var errEventNotObject = errors.New("event is not a JSON object")

// UnmarshalJSON accepts both native and string-encoded JSON values. Script
// runtimes on the game side often stringify everything, including numbers and
// comma-joined tag lists. Unknown fields are ignored.
func (e *Event) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("flex unmarshal: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return errEventNotObject
	}

	*e = Event{}
	root.ForEach(func(key, value gjson.Result) bool {
		e.set(key.String(), value)
		return true
	})
	return nil
}

// FieldByJSONName sets an Event field from its JSON name using string
// coercion. It reports false for unknown names.
func (e *Event) FieldByJSONName(name, value string) bool {
	return e.set(name, gjson.Result{Type: gjson.String, Str: value})
}

func (e *Event) set(name string, v gjson.Result) bool {
	switch name {
	case "type":
		e.Type = EventType(v.String())
	case "timestamp":
		e.Timestamp = v.Float()
	case "player":
		e.Player = v.String()
	case "tags":
		e.Tags = tagList(v)
	case "x":
		e.PosX = v.Float()
	case "y":
		e.PosY = v.Float()
	case "z":
		e.PosZ = v.Float()
	case "attacker":
		e.Attacker = v.String()
	case "victim":
		e.Victim = v.String()
	case "entity":
		e.Entity = v.String()
	case "block":
		e.Block = v.String()
	case "amount":
		e.Amount = intValue(v)
	default:
		return false
	}
	return true
}

// intValue parses exact integers and truncates fractional ones ("28.5" -> 28).
func intValue(v gjson.Result) int64 {
	s := strings.TrimSpace(v.String())
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// tagList reads a JSON array of tags or a comma-joined string.
func tagList(v gjson.Result) []string {
	var raw []string
	if v.IsArray() {
		for _, item := range v.Array() {
			raw = append(raw, item.String())
		}
	} else {
		raw = strings.Split(v.String(), ",")
	}

	var tags []string
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
