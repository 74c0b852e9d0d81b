// Package keymap converts virtual-key codes into logical characters under
// live Shift and CapsLock state.
//
// The decoder is deliberately small: it covers letters, digits, space, and
// the core US-layout punctuation. Keys outside that set decode to nothing and
// are logged by symbolic name only. IME composition and alternate layouts are
// out of scope.
package keymap

import (
	"suggestd/internal/rawinput"
)

// shiftedDigits is indexed by digit 0-9.
const shiftedDigits = ")!@#$%^&*("

// punctuation maps OEM keys to their base and shifted characters.
var punctuation = map[rawinput.Key][2]rune{
	rawinput.KeySemicolon:    {';', ':'},
	rawinput.KeyEquals:       {'=', '+'},
	rawinput.KeyComma:        {',', '<'},
	rawinput.KeyMinus:        {'-', '_'},
	rawinput.KeyPeriod:       {'.', '>'},
	rawinput.KeySlash:        {'/', '?'},
	rawinput.KeyBacktick:     {'`', '~'},
	rawinput.KeyLeftBracket:  {'[', '{'},
	rawinput.KeyBackslash:    {'\\', '|'},
	rawinput.KeyRightBracket: {']', '}'},
	rawinput.KeyQuote:        {'\'', '"'},
}

// Decoder holds the modifier state the character mapping depends on. One
// instance exists per engine; it is mutated only on the engine goroutine.
type Decoder struct {
	shiftPressed bool
	capsLockOn   bool
	initialized  bool
}

// NewDecoder creates a decoder seeded with the live CapsLock toggle state.
func NewDecoder(capsLockOn bool) *Decoder {
	return &Decoder{capsLockOn: capsLockOn, initialized: true}
}

// UpdateModifiers tracks Shift and CapsLock transitions. It must be called
// for every keyboard event before Decode sees that same event: the character
// a key produces depends on the modifier state at the instant it was pressed.
// CapsLock toggles on the down edge only, mirroring the physical key.
func (d *Decoder) UpdateModifiers(code rawinput.Key, isUp bool) {
	switch code {
	case rawinput.KeyShift:
		d.shiftPressed = !isUp
	case rawinput.KeyCapsLock:
		if !isUp {
			d.capsLockOn = !d.capsLockOn
		}
	}
}

// ShiftPressed reports the tracked Shift state.
func (d *Decoder) ShiftPressed() bool { return d.shiftPressed }

// CapsLockOn reports the tracked CapsLock toggle state.
func (d *Decoder) CapsLockOn() bool { return d.capsLockOn }

// Decode returns the character a key-down of code produces under the current
// modifier state, or false for keys outside the printable set. Key-up events
// must not be decoded; callers gate on the event direction.
func (d *Decoder) Decode(code rawinput.Key) (rune, bool) {
	if !d.initialized {
		return 0, false
	}

	switch {
	case code.IsLetter():
		upper := d.shiftPressed != d.capsLockOn // XOR
		c := rune('A' + (code - rawinput.KeyA))
		if !upper {
			c += 'a' - 'A'
		}
		return c, true

	case code.IsDigit():
		i := int(code - rawinput.Key0)
		if d.shiftPressed {
			return rune(shiftedDigits[i]), true
		}
		return rune('0' + i), true

	case code == rawinput.KeySpace:
		return ' ', true
	}

	if pair, ok := punctuation[code]; ok {
		if d.shiftPressed {
			return pair[1], true
		}
		return pair[0], true
	}
	return 0, false
}

// IsPrintable reports whether code belongs to the decoder's printable set,
// independent of modifier state.
func IsPrintable(code rawinput.Key) bool {
	if code.IsLetter() || code.IsDigit() || code == rawinput.KeySpace {
		return true
	}
	_, ok := punctuation[code]
	return ok
}

// PrintableKeys returns every code in the printable set, for tests and for
// the injection encoder's inverse table construction.
func PrintableKeys() []rawinput.Key {
	keys := make([]rawinput.Key, 0, 26+10+1+len(punctuation))
	for k := rawinput.KeyA; k <= rawinput.KeyZ; k++ {
		keys = append(keys, k)
	}
	for k := rawinput.Key0; k <= rawinput.Key9; k++ {
		keys = append(keys, k)
	}
	keys = append(keys, rawinput.KeySpace)
	for k := range punctuation {
		keys = append(keys, k)
	}
	return keys
}

// BaseChar returns the character code produces with no modifiers held, the
// anchor the injection encoder inverts against.
func BaseChar(code rawinput.Key) (rune, bool) {
	switch {
	case code.IsLetter():
		return rune('a' + (code - rawinput.KeyA)), true
	case code.IsDigit():
		return rune('0' + (code - rawinput.Key0)), true
	case code == rawinput.KeySpace:
		return ' ', true
	}
	if pair, ok := punctuation[code]; ok {
		return pair[0], true
	}
	return 0, false
}

// ShiftedChar returns the character code produces with Shift held.
func ShiftedChar(code rawinput.Key) (rune, bool) {
	switch {
	case code.IsLetter():
		return rune('A' + (code - rawinput.KeyA)), true
	case code.IsDigit():
		return rune(shiftedDigits[code-rawinput.Key0]), true
	case code == rawinput.KeySpace:
		return ' ', true
	}
	if pair, ok := punctuation[code]; ok {
		return pair[1], true
	}
	return 0, false
}
