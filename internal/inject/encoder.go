// Package inject turns suggestion text back into timed synthetic key events.
//
// Encoding is the structural inverse of decoding, with one deliberate
// asymmetry: the decoder reads live Shift/CapsLock state, the encoder never
// does. Shift necessity is computed purely from the target character, so
// injected text renders correctly no matter what the real keyboard's
// modifiers are doing at that moment.
package inject

import (
	"suggestd/internal/keymap"
	"suggestd/internal/rawinput"
)

// Stroke is one synthetic key transition.
type Stroke struct {
	Code rawinput.Key
	IsUp bool
}

// charTable inverts the keymap: character → (key, shift-needed). Built once
// from the decoder's own tables so the two directions cannot drift apart.
var charTable = buildCharTable()

type keyWithShift struct {
	code  rawinput.Key
	shift bool
}

func buildCharTable() map[rune]keyWithShift {
	table := make(map[rune]keyWithShift)
	for _, code := range keymap.PrintableKeys() {
		if c, ok := keymap.BaseChar(code); ok {
			table[c] = keyWithShift{code: code}
		}
		if c, ok := keymap.ShiftedChar(code); ok {
			if _, exists := table[c]; !exists {
				table[c] = keyWithShift{code: code, shift: true}
			}
		}
	}
	return table
}

// Encode maps text to the stroke sequence that reproduces it: a down/up pair
// per character, bracketed by synthetic Shift down/up when the character
// requires it. Characters with no key mapping are skipped, not fatal; they
// are returned so the caller can surface a warning.
func Encode(text string) (strokes []Stroke, skipped []rune) {
	for _, c := range text {
		entry, ok := charTable[c]
		if !ok {
			skipped = append(skipped, c)
			continue
		}
		if entry.shift {
			strokes = append(strokes, Stroke{Code: rawinput.KeyShift})
		}
		strokes = append(strokes,
			Stroke{Code: entry.code},
			Stroke{Code: entry.code, IsUp: true},
		)
		if entry.shift {
			strokes = append(strokes, Stroke{Code: rawinput.KeyShift, IsUp: true})
		}
	}
	return strokes, skipped
}

// KeyFor returns the key and shift requirement for a single character.
func KeyFor(c rune) (rawinput.Key, bool, bool) {
	entry, ok := charTable[c]
	return entry.code, entry.shift, ok
}
