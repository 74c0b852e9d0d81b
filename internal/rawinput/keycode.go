package rawinput

import (
	"fmt"
	"strconv"
)

// Key is a Windows virtual-key code.
type Key uint16

// Virtual-key codes for the keys the daemon names, decodes, or injects.
const (
	KeyBackspace Key = 0x08
	KeyTab       Key = 0x09
	KeyEnter     Key = 0x0D
	KeyShift     Key = 0x10
	KeyControl   Key = 0x11
	KeyAlt       Key = 0x12
	KeyCapsLock  Key = 0x14
	KeyEscape    Key = 0x1B
	KeySpace     Key = 0x20
	KeyPageUp    Key = 0x21
	KeyPageDown  Key = 0x22
	KeyEnd       Key = 0x23
	KeyHome      Key = 0x24
	KeyLeft      Key = 0x25
	KeyUp        Key = 0x26
	KeyRight     Key = 0x27
	KeyDown      Key = 0x28
	KeyInsert    Key = 0x2D
	KeyDelete    Key = 0x2E

	Key0 Key = 0x30
	Key9 Key = 0x39
	KeyA Key = 0x41
	KeyZ Key = 0x5A

	KeyLeftWin  Key = 0x5B
	KeyRightWin Key = 0x5C

	KeyF1  Key = 0x70
	KeyF12 Key = 0x7B

	// OEM punctuation keys, US layout.
	KeySemicolon    Key = 0xBA // ;:
	KeyEquals       Key = 0xBB // =+
	KeyComma        Key = 0xBC // ,<
	KeyMinus        Key = 0xBD // -_
	KeyPeriod       Key = 0xBE // .>
	KeySlash        Key = 0xBF // /?
	KeyBacktick     Key = 0xC0 // `~
	KeyLeftBracket  Key = 0xDB // [{
	KeyBackslash    Key = 0xDC // \|
	KeyRightBracket Key = 0xDD // ]}
	KeyQuote        Key = 0xDE // '"
)

// keyNames maps non-letter, non-digit keys to their symbolic log names.
var keyNames = map[Key]string{
	KeySpace:     "SPACE",
	KeyEnter:     "ENTER",
	KeyBackspace: "BACKSPACE",
	KeyTab:       "TAB",
	KeyEscape:    "ESC",
	KeyDelete:    "DELETE",
	KeyInsert:    "INSERT",
	KeyHome:      "HOME",
	KeyEnd:       "END",
	KeyPageUp:    "PAGE_UP",
	KeyPageDown:  "PAGE_DOWN",

	KeyUp:    "UP_ARROW",
	KeyDown:  "DOWN_ARROW",
	KeyLeft:  "LEFT_ARROW",
	KeyRight: "RIGHT_ARROW",

	KeyShift:    "SHIFT",
	KeyControl:  "CTRL",
	KeyAlt:      "ALT",
	KeyCapsLock: "CAPS_LOCK",
	KeyLeftWin:  "LEFT_WIN",
	KeyRightWin: "RIGHT_WIN",

	KeySemicolon:    "SEMICOLON",
	KeyEquals:       "EQUALS",
	KeyComma:        "COMMA",
	KeyMinus:        "MINUS",
	KeyPeriod:       "PERIOD",
	KeySlash:        "SLASH",
	KeyBacktick:     "BACKTICK",
	KeyLeftBracket:  "LEFT_BRACKET",
	KeyBackslash:    "BACKSLASH",
	KeyRightBracket: "RIGHT_BRACKET",
	KeyQuote:        "QUOTE",
}

// Name returns the symbolic name used in the event log: letters and digits
// as themselves, F-keys as F1..F12, everything else from the name table,
// with a hex fallback for unknown codes.
func (k Key) Name() string {
	switch {
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + (k - KeyA)))
	case k >= Key0 && k <= Key9:
		return string(rune('0' + (k - Key0)))
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("VK_0x%x", uint16(k))
}

// IsLetter reports whether k is A..Z.
func (k Key) IsLetter() bool { return k >= KeyA && k <= KeyZ }

// IsDigit reports whether k is the top-row 0..9.
func (k Key) IsDigit() bool { return k >= Key0 && k <= Key9 }

// IsModifier reports whether k is one of the classic modifier keys.
func (k Key) IsModifier() bool {
	switch k {
	case KeyShift, KeyControl, KeyAlt:
		return true
	}
	return false
}

// ParseKey resolves a configuration key name back to its code. It accepts
// the same symbolic names Name produces.
func ParseKey(name string) (Key, bool) {
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'A' && c <= 'Z':
			return KeyA + Key(c-'A'), true
		case c >= 'a' && c <= 'z':
			return KeyA + Key(c-'a'), true
		case c >= '0' && c <= '9':
			return Key0 + Key(c-'0'), true
		}
	}
	if len(name) >= 2 && name[0] == 'F' {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 12 {
			return KeyF1 + Key(n-1), true
		}
	}
	for code, n := range keyNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}
