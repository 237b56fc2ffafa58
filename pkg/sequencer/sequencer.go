// Package sequencer implements the Sequencer (C6): the row clock that
// advances play_row at ticks_per_row, triggers row entry through the
// Effect Parser, and walks the song order list.
package sequencer

import (
	"github.com/rptracker/opl9trk/pkg/effect"
	"github.com/rptracker/opl9trk/pkg/synth"
	"github.com/rptracker/opl9trk/pkg/tracker"
)

// DefaultTicksPerRow is the tempo default: 6 vsync ticks per row at ~60Hz
// vsync, giving 10 rows/sec. BPM is a display-only projection of this.
const DefaultTicksPerRow = 6

// JamSkipper reports whether a channel is currently being live-jammed by
// the editor, in which case the sequencer must not touch it on row entry.
type JamSkipper interface {
	IsJamming(ch int) bool
}

// State is the Sequencer's C6 state.
type State struct {
	IsPlaying   bool
	IsSongMode  bool
	TicksPerRow int
	TickCounter int
	PlayRow     int
	CurPattern  int
	CurOrderIdx int
	SongLength  int

	// Patches resolves a cell's instrument index to its FM patch. May be
	// left nil, in which case row entry skips loading a patch (useful in
	// tests that only care about pitch/volume behavior).
	Patches synth.PatchBank
}

// NewState returns a stopped sequencer at tempo default, pattern mode.
func NewState() *State {
	return &State{
		TicksPerRow: DefaultTicksPerRow,
		SongLength:  1,
	}
}

// Start is the Enter key's play/pause toggle. On the stopped -> playing
// edge it sets tick_counter to ticks_per_row so the row clock wraps and
// enters a row on the very next Tick, and, in song mode, resyncs
// cur_pattern to the order list at the existing cur_order_idx (order is
// left untouched otherwise, so resuming in pattern mode keeps whatever
// pattern was being hand-edited).
func (s *State) Start(order func(idx int) uint8) {
	if s.IsPlaying {
		s.IsPlaying = false
		return
	}
	s.IsPlaying = true
	s.TickCounter = s.TicksPerRow
	if s.IsSongMode {
		s.CurPattern = int(order(s.CurOrderIdx))
	}
}

// Stop is transport-stop (Shift+Enter): synchronously silences all voices,
// clears effect state, and resets tick_counter/play_row/cur_order_idx to 0.
func (s *State) Stop(voices *[tracker.Channels]effect.VoiceState, d *synth.SynthDriver) {
	s.IsPlaying = false
	s.TickCounter = 0
	s.PlayRow = 0
	s.CurOrderIdx = 0
	d.SilenceAll()
	for i := range voices {
		voices[i] = *effect.NewVoiceState()
	}
}

// Panic silences all voices (Esc). Unlike Stop it leaves the transport,
// play position, song state and effect state as they are.
func (s *State) Panic(d *synth.SynthDriver) {
	d.Panic()
}

// Tick runs one vsync frame of the sequencer against pat (the current
// pattern), order (the song order list), voices (per-channel effect
// state), and d (the synth driver). jam may be nil.
//
// Tick_counter advances at the top of the frame, mirroring the firmware's
// sequencer_step: a row is entered the instant the counter reaches
// ticks_per_row (and is reset to 0), while play_row/cur_order_idx advance
// one tick earlier, at ticks_per_row-1 — so the row that gets entered on
// the wrap is already the one that just advanced. Start's
// tick_counter = ticks_per_row primes this wrap to fire on the very next
// Tick call.
//
// Ordering within the frame: row entry (effect parse + note trigger) for a
// voice always precedes that voice's per-tick processing in the same
// frame; across voices, iteration is in ascending channel index.
func (s *State) Tick(pat *tracker.Pattern, order func(idx int) uint8, voices *[tracker.Channels]effect.VoiceState, d *synth.SynthDriver, jam JamSkipper) {
	if !s.IsPlaying {
		return
	}

	s.TickCounter++
	if s.TickCounter >= s.TicksPerRow {
		s.TickCounter = 0
		s.enterRow(pat, voices, d, jam)
	}

	tc := s.TickCounter
	for ch := 0; ch < tracker.Channels; ch++ {
		if jam != nil && jam.IsJamming(ch) {
			continue
		}
		effect.TickVoice(&voices[ch], ch, d, tc)
	}

	if s.TickCounter == s.TicksPerRow-1 {
		s.PlayRow = (s.PlayRow + 1) % tracker.Rows
		if s.PlayRow == 0 && s.IsSongMode {
			s.advanceOrder(order)
		}
	}
}

func (s *State) advanceOrder(order func(idx int) uint8) {
	if s.SongLength == 0 {
		return
	}
	s.CurOrderIdx = (s.CurOrderIdx + 1) % s.SongLength
	s.CurPattern = int(order(s.CurOrderIdx))
}

// enterRow runs the Effect Parser for every non-jammed voice against the
// play_row cell, cutting the previous note and striking the new one.
func (s *State) enterRow(pat *tracker.Pattern, voices *[tracker.Channels]effect.VoiceState, d *synth.SynthDriver, jam JamSkipper) {
	row := pat.Rows[s.PlayRow]
	for ch := 0; ch < tracker.Channels; ch++ {
		if jam != nil && jam.IsJamming(ch) {
			continue
		}
		cell := row[ch]
		v := &voices[ch]
		effect.Parse(v, cell, ch, d)

		if cell.Note == tracker.NoteEmpty {
			continue
		}
		d.NoteOff(ch)
		if cell.Note == tracker.NoteOff {
			continue
		}

		v.ActiveMidiNote = cell.Note
		startOffset := 0
		if v.PitchOwner == effect.PitchArp {
			v.Arp.StepIndex = 0
			v.Arp.TickCounter = 0
			startOffset = effect.ArpOffset(v.Arp.Style, v.Arp.Depth, 0)
		}
		if s.Patches != nil {
			d.SetPatch(ch, s.Patches.GetPatch(v.LastInst))
		}
		d.SetVolume(ch, v.LastVol)
		note := cell.Note
		if int(note)+startOffset >= 0 {
			note = uint8(int(note) + startOffset)
		}
		if v.FinePitch.Active {
			d.NoteOnDetuned(ch, note, v.FinePitch.Detune)
		} else {
			d.NoteOn(ch, note)
		}
	}
}
