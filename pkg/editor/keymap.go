package editor

// PianoKey is a key identity in the editor's piano-row jam mapping. Values
// match the teacher firmware's scancode constants in spirit, not value —
// here they're just the rune the key produces, since the host input layer
// (bubbletea) hands us runes rather than PC scancodes.
type PianoKey rune

// pianoKeyOrder lists jam keys in scan precedence order, grounded on the
// original firmware's get_semitone switch: a lower QWERTY row spans
// C-4..C-5, and an upper row overlaps the octave above starting at Q=C-5.
// Order matters — the Editor's jam scan picks the first held match.
var pianoKeyOrder = []struct {
	Key    PianoKey
	Offset int8
}{
	{'z', 0}, {'s', 1}, {'x', 2}, {'d', 3}, {'c', 4}, {'v', 5},
	{'g', 6}, {'b', 7}, {'h', 8}, {'n', 9}, {'j', 10}, {'m', 11}, {',', 12},
	{'q', 12}, {'2', 13}, {'w', 14}, {'3', 15}, {'e', 16}, {'r', 17},
	{'5', 18}, {'t', 19}, {'6', 20}, {'y', 21}, {'7', 22}, {'u', 23}, {'i', 24},
}

// Semitone returns k's offset from C and whether k is a piano key at all.
func Semitone(k PianoKey) (int8, bool) {
	for _, e := range pianoKeyOrder {
		if e.Key == k {
			return e.Offset, true
		}
	}
	return 0, false
}

// AllPianoKeys returns every jam key in scan precedence order.
func AllPianoKeys() []PianoKey {
	keys := make([]PianoKey, len(pianoKeyOrder))
	for i, e := range pianoKeyOrder {
		keys[i] = e.Key
	}
	return keys
}

// KeyRepeatDelay is the number of frames a navigation key must be held
// before key-repeat begins.
const KeyRepeatDelay = 20

// KeyRepeatRate is the number of frames between repeated navigation moves
// once repeat has started.
const KeyRepeatRate = 4
