// Package tracker implements the pattern/song data model: the atomic
// PatternCell, the fixed-shape Pattern grid, and the song order list.
package tracker

const (
	// Rows is the fixed row count of every pattern.
	Rows = 32
	// Channels is the fixed voice count: one column per FM channel.
	Channels = 9
	// CellSize is the on-disk/in-memory byte width of one PatternCell.
	CellSize = 5
	// PatternSize is the byte size of one whole pattern (32 * 9 * 5 = 1440).
	PatternSize = Rows * Channels * CellSize

	// MaxPatterns is the engine-level pattern table ceiling.
	MaxPatterns = 64
	// MaxOrdersUser is the UI-exposed song order length ceiling.
	MaxOrdersUser = 64

	// NoteEmpty marks a cell with no note.
	NoteEmpty uint8 = 0
	// NoteOff marks an explicit note-off cell.
	NoteOff uint8 = 255
	// NoteMin and NoteMax bound the editable semitone range.
	NoteMin uint8 = 12
	NoteMax uint8 = 119

	// VolumeMax is the highest linear volume a cell or brush may hold.
	VolumeMax uint8 = 63
)

// PatternCell is the atomic editable unit of a pattern: one voice's slot in
// one row. Effect is a 16-bit word packed as nibbles [cmd|s|d|t].
type PatternCell struct {
	Note   uint8
	Inst   uint8
	Vol    uint8
	Effect uint16
}

// IsEmpty reports whether the cell carries no note, instrument, volume, or
// effect at all.
func (c PatternCell) IsEmpty() bool {
	return c.Note == NoteEmpty && c.Inst == 0 && c.Vol == 0 && c.Effect == 0
}

// EffectCmd returns the effect word's command nibble (bits 12-15).
func (c PatternCell) EffectCmd() uint8 { return uint8(c.Effect >> 12) }

// EffectS returns the effect word's S nibble (bits 8-11).
func (c PatternCell) EffectS() uint8 { return uint8(c.Effect>>8) & 0xF }

// EffectD returns the effect word's D nibble (bits 4-7).
func (c PatternCell) EffectD() uint8 { return uint8(c.Effect>>4) & 0xF }

// EffectT returns the effect word's T nibble (bits 0-3).
func (c PatternCell) EffectT() uint8 { return uint8(c.Effect) & 0xF }

// EncodeEffect packs cmd/s/d/t nibbles into a 16-bit effect word.
func EncodeEffect(cmd, s, d, t uint8) uint16 {
	return uint16(cmd&0xF)<<12 | uint16(s&0xF)<<8 | uint16(d&0xF)<<4 | uint16(t&0xF)
}

// Marshal writes the cell's 5-byte on-disk layout: note, inst, vol,
// effect_lo, effect_hi (little-endian).
func (c PatternCell) Marshal() [CellSize]byte {
	return [CellSize]byte{
		c.Note, c.Inst, c.Vol,
		byte(c.Effect), byte(c.Effect >> 8),
	}
}

// UnmarshalCell decodes a 5-byte cell layout produced by Marshal.
func UnmarshalCell(b [CellSize]byte) PatternCell {
	return PatternCell{
		Note:   b[0],
		Inst:   b[1],
		Vol:    b[2],
		Effect: uint16(b[3]) | uint16(b[4])<<8,
	}
}

// Pattern is 32 rows x 9 channels of PatternCell, addressed [row][channel].
type Pattern struct {
	Rows [Rows][Channels]PatternCell
}

// Equal reports whether two patterns hold identical cells in all 288 slots.
func (p *Pattern) Equal(other *Pattern) bool {
	if other == nil {
		return false
	}
	return *p == *other
}

// noteNames is the 12 semitone names within an octave, sharps spelled out.
var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// NoteName renders a semitone (NoteMin..NoteMax) as e.g. "C-4"; NoteEmpty
// renders as "---" and NoteOff as "OFF".
func NoteName(note uint8) string {
	switch note {
	case NoteEmpty:
		return "---"
	case NoteOff:
		return "OFF"
	}
	octave := note / 12
	idx := note % 12
	return noteNames[idx] + string(rune('0'+octave%10))
}
