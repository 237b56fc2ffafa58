package sequencer

import (
	"testing"

	"github.com/rptracker/opl9trk/pkg/effect"
	"github.com/rptracker/opl9trk/pkg/synth"
	"github.com/rptracker/opl9trk/pkg/tracker"
)

type nullSink struct{}

func (nullSink) WriteRegister(reg, data byte) {}

func newVoices() *[tracker.Channels]effect.VoiceState {
	var v [tracker.Channels]effect.VoiceState
	for i := range v {
		v[i] = *effect.NewVoiceState()
	}
	return &v
}

// S6: song_length=3, order=[1,2,0], cur_order_idx=2, cur_pattern=0,
// play_row=31. One row advance must yield play_row=0, cur_order_idx=0,
// cur_pattern=1.
func TestSongAdvanceS6(t *testing.T) {
	order := []uint8{1, 2, 0}
	s := NewState()
	s.IsPlaying = true
	s.IsSongMode = true
	s.SongLength = 3
	s.CurOrderIdx = 2
	s.CurPattern = 0
	s.PlayRow = 31
	// tick_counter increments at the top of Tick; play_row/cur_order_idx
	// advance when the post-increment counter reaches ticks_per_row-1.
	s.TickCounter = s.TicksPerRow - 2

	d := synth.NewSynthDriver(nullSink{})
	voices := newVoices()
	var pat tracker.Pattern

	s.Tick(&pat, func(i int) uint8 { return order[i] }, voices, d, nil)

	if s.PlayRow != 0 {
		t.Fatalf("play_row = %d, want 0", s.PlayRow)
	}
	if s.CurOrderIdx != 0 {
		t.Fatalf("cur_order_idx = %d, want 0", s.CurOrderIdx)
	}
	if s.CurPattern != 1 {
		t.Fatalf("cur_pattern = %d, want 1", s.CurPattern)
	}
}

func TestStopResetsTransport(t *testing.T) {
	s := NewState()
	s.IsPlaying = true
	s.PlayRow = 10
	s.TickCounter = 3
	s.CurOrderIdx = 2

	d := synth.NewSynthDriver(nullSink{})
	voices := newVoices()
	voices[0].Arp.Active = true

	s.Stop(voices, d)

	if s.IsPlaying || s.PlayRow != 0 || s.TickCounter != 0 || s.CurOrderIdx != 0 {
		t.Fatalf("stop should zero transport, got %+v", s)
	}
	if voices[0].Arp.Active {
		t.Fatal("stop should clear effect state")
	}
}

func noOrder(i int) uint8 { return 0 }

// Start is the Enter key's play/pause toggle: stopped -> playing must not
// require a second key to un-pause, and playing -> stopped must pause in
// place rather than resetting position (that's Shift+Enter's job).
func TestStartTogglesPlayPause(t *testing.T) {
	s := NewState()
	s.PlayRow = 7

	s.Start(noOrder)
	if !s.IsPlaying {
		t.Fatal("start from stopped should begin playback")
	}
	if s.TickCounter != s.TicksPerRow {
		t.Fatalf("tick_counter = %d, want ticks_per_row (%d) so the next Tick enters a row", s.TickCounter, s.TicksPerRow)
	}

	s.Start(noOrder)
	if s.IsPlaying {
		t.Fatal("start while already playing should pause")
	}
	if s.PlayRow != 7 {
		t.Fatalf("pause must preserve position, play_row = %d, want 7", s.PlayRow)
	}

	s.Start(noOrder)
	if !s.IsPlaying {
		t.Fatal("start after pause should resume playback")
	}
}

// Start, on the stopped->playing edge in song mode, resyncs cur_pattern to
// the order list at the existing cur_order_idx.
func TestStartResyncsPatternInSongMode(t *testing.T) {
	order := []uint8{5, 9, 2}
	s := NewState()
	s.IsSongMode = true
	s.CurOrderIdx = 1
	s.CurPattern = 0

	s.Start(func(i int) uint8 { return order[i] })

	if s.CurPattern != 9 {
		t.Fatalf("cur_pattern = %d, want 9 (order[cur_order_idx])", s.CurPattern)
	}
}

// Start must set tick_counter so the very next Tick enters a row, instead
// of waiting out a stale partial-row counter left over from before a
// pause.
func TestStartFiresFirstRowOnNextTick(t *testing.T) {
	sink := nullSink{}
	d := synth.NewSynthDriver(sink)
	voices := newVoices()
	var pat tracker.Pattern
	pat.Rows[3][0] = tracker.PatternCell{Note: 60, Vol: 63}

	s := NewState()
	s.PlayRow = 3
	s.Start(noOrder)

	s.Tick(&pat, noOrder, voices, d, nil)

	if voices[0].LastNote != 60 {
		t.Fatalf("row 3 should have been entered on the first Tick after Start, last_note = %d", voices[0].LastNote)
	}
}
