// Package transcript turns the JSONL event log into the plain-text sequence
// the suggestion generator consumes.
//
// Keydown characters pass through as-is; special keys become readable tokens
// ("[BACKSPACE]", "[UP]", ...); mouse clicks become position tokens with
// coordinates rounded to 50 px; bare modifier presses are dropped because
// their effect is already reflected in the characters around them.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// lineSchema validates one event-log line before it contributes to the
// transcript. Malformed lines are skipped with a warning, never fatal.
const lineSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["timestamp", "type"],
  "properties": {
    "timestamp": {"type": "integer", "minimum": 0},
    "type": {"enum": ["keyboard", "mouse"]}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "keyboard"}}},
      "then": {
        "required": ["action", "key"],
        "properties": {
          "action": {"enum": ["keydown", "keyup"]},
          "key": {"type": "string"},
          "char": {"type": ["string", "null"]}
        }
      }
    },
    {
      "if": {"properties": {"type": {"const": "mouse"}}},
      "then": {
        "required": ["action", "x", "y"],
        "properties": {
          "action": {"pattern": "^(left|right|middle)(down|up)$"},
          "x": {"type": "integer"},
          "y": {"type": "integer"}
        }
      }
    }
  ]
}`

var compiledSchema = jsonschema.MustCompileString("eventlog.json", lineSchema)

// keyTokens maps symbolic key names to generator-readable tokens. Names that
// map to the empty string are dropped entirely. Any name not listed becomes
// "[NAME]".
var keyTokens = map[string]string{
	"SPACE":       " ",
	"ENTER":       "\n",
	"TAB":         "\t",
	"BACKSPACE":   "[BACKSPACE]",
	"DELETE":      "[DELETE]",
	"UP_ARROW":    "[UP]",
	"DOWN_ARROW":  "[DOWN]",
	"LEFT_ARROW":  "[LEFT]",
	"RIGHT_ARROW": "[RIGHT]",
	"HOME":        "[HOME]",
	"END":         "[END]",
	"PAGE_UP":     "[PAGEUP]",
	"PAGE_DOWN":   "[PAGEDOWN]",
	"INSERT":      "[INSERT]",

	// Shift is already reflected in capitalization; Ctrl and Alt chords are
	// handled by the chord detector, not the transcript.
	"SHIFT":     "",
	"CTRL":      "",
	"ALT":       "",
	"CAPS_LOCK": "[CAPS]",
}

// clickTokens maps mouse actions to transcript tokens; releases are dropped,
// only the click itself carries context.
var clickTokens = map[string]string{
	"leftdown":   "MouseLeftClick",
	"rightdown":  "MouseRightClick",
	"middledown": "MouseMiddleClick",
}

// positionGrid is the rounding grid for click coordinates. Coarse positions
// give the generator spatial context without leaking exact screen layout.
const positionGrid = 50

// snapToGrid rounds v down to the previous grid multiple. Plain integer
// division truncates toward zero, which would round negative coordinates
// (monitors left of or above the primary) the wrong way.
func snapToGrid(v int64) int64 {
	if v < 0 && v%positionGrid != 0 {
		v -= positionGrid
	}
	return v / positionGrid * positionGrid
}

type line struct {
	Timestamp uint64  `json:"timestamp"`
	Type      string  `json:"type"`
	Action    string  `json:"action"`
	Key       string  `json:"key"`
	Char      *string `json:"char"`
	X         int64   `json:"x"`
	Y         int64   `json:"y"`
}

// Builder converts an event log into generator input.
type Builder struct {
	log *slog.Logger
}

// NewBuilder creates a transcript builder.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// BuildFile reads the JSONL log at path and returns the cleaned transcript.
func (b *Builder) BuildFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	var tokens []string
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var generic any
		if err := json.Unmarshal([]byte(raw), &generic); err != nil {
			b.log.Warn("skipping unparseable transcript line", "line", lineNum, "error", err)
			continue
		}
		if err := compiledSchema.Validate(generic); err != nil {
			b.log.Warn("skipping invalid transcript line", "line", lineNum, "error", err)
			continue
		}

		var entry line
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			b.log.Warn("skipping undecodable transcript line", "line", lineNum, "error", err)
			continue
		}
		if token := entryToken(entry); token != "" {
			tokens = append(tokens, token)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read event log: %w", err)
	}

	return Clean(strings.Join(tokens, "")), nil
}

func entryToken(entry line) string {
	switch entry.Type {
	case "keyboard":
		if entry.Action != "keydown" {
			return ""
		}
		if entry.Char != nil && len(*entry.Char) > 0 {
			return *entry.Char
		}
		if token, ok := keyTokens[entry.Key]; ok {
			return token
		}
		return "[" + entry.Key + "]"

	case "mouse":
		token, ok := clickTokens[entry.Action]
		if !ok {
			return ""
		}
		return fmt.Sprintf("[%s(%d,%d)]", token, snapToGrid(entry.X), snapToGrid(entry.Y))
	}
	return ""
}

// Clean normalizes a raw token sequence for the generator: residual modifier
// tokens are removed and runs of spaces collapse to one. Leading and trailing
// whitespace is preserved; it carries completion context.
func Clean(sequence string) string {
	cleaned := sequence
	for _, noise := range []string{"[SHIFT]", "[CTRL]", "[ALT]"} {
		cleaned = strings.ReplaceAll(cleaned, noise, "")
	}
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	return cleaned
}

// ValidateFile checks every line of the log at path against the line schema
// and returns the 1-based numbers of invalid lines.
func ValidateFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	var bad []int
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var generic any
		if err := json.Unmarshal([]byte(raw), &generic); err != nil {
			bad = append(bad, lineNum)
			continue
		}
		if err := compiledSchema.Validate(generic); err != nil {
			bad = append(bad, lineNum)
		}
	}
	return bad, scanner.Err()
}
