package models

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// FormatEscape introduces a single-character format code in rendered text.
const FormatEscape = "§"

// FormatCode is an optional single-character color/style code. The zero value
// means no formatting.
type FormatCode rune

// NoFormat is the absent format code.
const NoFormat FormatCode = 0

// ParseFormatCode accepts "a", "§a" or "" and returns the code.
func ParseFormatCode(s string) FormatCode {
	s = strings.TrimPrefix(strings.TrimSpace(s), FormatEscape)
	if s == "" {
		return NoFormat
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return NoFormat
	}
	return FormatCode(r)
}

// Valid reports whether a code is set.
func (c FormatCode) Valid() bool { return c != NoFormat }

// Prefix renders the escape sequence for c, or "" when unset.
func (c FormatCode) Prefix() string {
	if !c.Valid() {
		return ""
	}
	return FormatEscape + string(rune(c))
}

func (c FormatCode) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return []byte(`""`), nil
	}
	return json.Marshal(string(rune(c)))
}

func (c *FormatCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseFormatCode(s)
	return nil
}

// HUDLine is one line of heads-up text with its own optional format.
type HUDLine struct {
	Format FormatCode `json:"format"`
	Text   string     `json:"text"`
}

// HUDMessage is a multi-line heads-up overlay. Formatting stays structured
// until Render.
type HUDMessage struct {
	Lines []HUDLine `json:"lines"`
}

// Render resolves format codes into escape sequences and joins the lines.
func (m HUDMessage) Render() string {
	var sb strings.Builder
	for i, line := range m.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line.Format.Prefix())
		sb.WriteString(line.Text)
	}
	return sb.String()
}

// StripFormatting splits s into the format escapes it carries and the plain
// text left over. A trailing escape with no code character is dropped.
func StripFormatting(s string) (codes, plain string) {
	// Fast path: no escape at all
	idx := strings.Index(s, FormatEscape)
	if idx == -1 {
		return "", s
	}

	var cb, pb strings.Builder
	pb.Grow(len(s))

	current := 0
	for {
		idx := strings.Index(s[current:], FormatEscape)
		if idx == -1 {
			pb.WriteString(s[current:])
			break
		}

		absIdx := current + idx
		pb.WriteString(s[current:absIdx])

		codeStart := absIdx + len(FormatEscape)
		if codeStart >= len(s) {
			break
		}
		_, size := utf8.DecodeRuneInString(s[codeStart:])
		cb.WriteString(s[absIdx : codeStart+size])
		current = codeStart + size
	}

	return cb.String(), pb.String()
}
