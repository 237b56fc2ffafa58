// Package editor implements the Editor (C7): cursor navigation with
// key-repeat, cell mutation, pattern/song-order editing, clipboard, and the
// piano-row jam-note scanner.
package editor

import (
	"github.com/rptracker/opl9trk/pkg/effect"
	"github.com/rptracker/opl9trk/pkg/synth"
	"github.com/rptracker/opl9trk/pkg/tracker"
)

// InputOracle is the edge-triggered input contract the Editor consumes.
// IsHeld reports a key's instantaneous down state; IsEdgePressed reports
// true only on the frame the key transitioned from up to down. Modifier
// queries are held-state, not edge.
type InputOracle interface {
	IsHeld(k rune) bool
	IsEdgePressed(k rune) bool
	Shift() bool
	Ctrl() bool
	Alt() bool
}

// Field identifies which part of a cell the cursor is editing.
type Field int

const (
	FieldNote Field = iota
	FieldInst
	FieldVol
	FieldEffectCmd
	FieldEffectS
	FieldEffectD
	FieldEffectT
)

// Cursor is the editor's position within the current pattern.
type Cursor struct {
	Row     int
	Channel int
	Field   Field
}

// Editor is the Editor (C7) state: cursor, edit/play mode, brush (current
// instrument/volume/octave), clipboard, and per-channel jam tracking.
type Editor struct {
	Cursor     Cursor
	EditMode   bool
	FollowMode bool

	CurOctave     uint8
	CurInstrument uint8
	CurVolume     uint8
	CurPattern    int

	clipboard []byte

	jamNote    [tracker.Channels]uint8 // active jam note per channel, 0 = none
	jamHeldKey [tracker.Channels]PianoKey

	repeatTimer map[rune]int
}

// New returns a fresh Editor in edit mode, octave 4, full volume.
func New() *Editor {
	return &Editor{
		EditMode:      true,
		FollowMode:    true,
		CurOctave:     4,
		CurVolume:     tracker.VolumeMax,
		CurInstrument: 0,
		repeatTimer:   make(map[rune]int),
	}
}

// IsJamming implements sequencer.JamSkipper.
func (e *Editor) IsJamming(ch int) bool {
	return e.jamNote[ch] != 0
}

// repeatFire applies key-repeat timing to k: returns true on the frame a
// navigation action should fire (first press, then after the initial
// delay, then periodically).
func (e *Editor) repeatFire(in InputOracle, k rune) bool {
	if in.IsEdgePressed(k) {
		e.repeatTimer[k] = 0
		return true
	}
	if !in.IsHeld(k) {
		delete(e.repeatTimer, k)
		return false
	}
	e.repeatTimer[k]++
	t := e.repeatTimer[k]
	if t < KeyRepeatDelay {
		return false
	}
	return (t-KeyRepeatDelay)%KeyRepeatRate == 0
}

// Navigate handles cursor movement with wraparound: down from row 31 wraps
// to row 0; right from channel 8 does not move.
func (e *Editor) Navigate(in InputOracle) {
	if e.repeatFire(in, 'v') { // down (host binds arrow keys to these runes)
		e.Cursor.Row = (e.Cursor.Row + 1) % tracker.Rows
	}
	if e.repeatFire(in, '^') { // up
		e.Cursor.Row--
		if e.Cursor.Row < 0 {
			e.Cursor.Row = tracker.Rows - 1
		}
	}
	if e.repeatFire(in, '<') { // left
		if e.Cursor.Channel > 0 {
			e.Cursor.Channel--
		}
	}
	if e.repeatFire(in, '>') { // right
		if e.Cursor.Channel < tracker.Channels-1 {
			e.Cursor.Channel++
		}
	}
}

// ToggleEditMode flips between edit (red cursor) and play (blue cursor).
func (e *Editor) ToggleEditMode() { e.EditMode = !e.EditMode }

// OctaveUp/OctaveDown adjust the brush octave, clamped to 0..8.
func (e *Editor) OctaveUp() {
	if e.CurOctave < 8 {
		e.CurOctave++
	}
}
func (e *Editor) OctaveDown() {
	if e.CurOctave > 0 {
		e.CurOctave--
	}
}

// InstrumentUp/InstrumentDown adjust the brush instrument, wrapping modulo
// 256.
func (e *Editor) InstrumentUp()   { e.CurInstrument++ }
func (e *Editor) InstrumentDown() { e.CurInstrument-- }

// TransposeNote clamps n+delta into [NoteMin, NoteMax].
func TransposeNote(n uint8, delta int) uint8 {
	v := int(n) + delta
	if v < int(tracker.NoteMin) {
		return tracker.NoteMin
	}
	if v > int(tracker.NoteMax) {
		return tracker.NoteMax
	}
	return uint8(v)
}

// PatternSelectNext/Prev wrap within MaxPatterns.
func (e *Editor) PatternSelectNext() {
	e.CurPattern = (e.CurPattern + 1) % tracker.MaxPatterns
}
func (e *Editor) PatternSelectPrev() {
	e.CurPattern--
	if e.CurPattern < 0 {
		e.CurPattern = tracker.MaxPatterns - 1
	}
}

// ClearCell blanks the cursor's current cell (Backspace/Delete).
func (e *Editor) ClearCell(pat *tracker.Pattern) {
	pat.Rows[e.Cursor.Row][e.Cursor.Channel] = tracker.PatternCell{}
}

// WriteNoteOff writes an explicit note-off cell at the cursor (Backtick).
func (e *Editor) WriteNoteOff(pat *tracker.Pattern) {
	pat.Rows[e.Cursor.Row][e.Cursor.Channel] = tracker.PatternCell{
		Note:   tracker.NoteOff,
		Inst:   e.CurInstrument,
		Vol:    0,
		Effect: tracker.EncodeEffect(0xF, 0, 0, 0),
	}
}

// CopyPattern snapshots the current pattern's raw bytes into the
// clipboard; store.CopyPattern already returns an independent buffer.
func (e *Editor) CopyPattern(store *tracker.Store, pat int) {
	e.clipboard = store.CopyPattern(pat)
}

// PastePattern writes the clipboard contents back into pat, if any copy has
// been made.
func (e *Editor) PastePattern(store *tracker.Store, pat int) {
	if e.clipboard == nil {
		return
	}
	store.PastePattern(pat, e.clipboard)
}

// JamScan implements the piano-row scan: the first held key that maps to a
// semitone is the jam note for the current channel, monophonic per voice.
// Pressing a new jam note kills any arp/vibrato on the voice and strikes
// it; releasing it emits note_off only if playing is false (§9's adopted
// open-question resolution).
func (e *Editor) JamScan(in InputOracle, keysDown []PianoKey, pat *tracker.Pattern, v *effect.VoiceState, d *synth.SynthDriver, patches synth.PatchBank, ch int, playing bool) {
	var pressed PianoKey
	found := false
	for _, k := range keysDown {
		if _, ok := Semitone(k); ok && in.IsHeld(rune(k)) {
			pressed = k
			found = true
			break
		}
	}

	if !found {
		if e.jamNote[ch] != 0 {
			if !playing {
				d.NoteOff(ch)
			}
			e.jamNote[ch] = 0
		}
		return
	}

	if e.jamNote[ch] != 0 && e.jamHeldKey[ch] == pressed {
		return // same note still held, nothing to do
	}

	off, _ := Semitone(pressed)
	note := TransposeNote(e.CurOctave*12, int(off))

	v.DeactivatePitch()
	d.NoteOff(ch)
	if patches != nil {
		d.SetPatch(ch, patches.GetPatch(e.CurInstrument))
	}
	d.SetVolume(ch, e.CurVolume)
	d.NoteOn(ch, note)
	e.jamNote[ch] = note
	e.jamHeldKey[ch] = pressed

	if e.EditMode {
		cell := &pat.Rows[e.Cursor.Row][ch]
		cell.Note = note
		cell.Inst = e.CurInstrument
		cell.Vol = e.CurVolume
	}
}
