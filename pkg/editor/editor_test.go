package editor

import (
	"testing"

	"github.com/rptracker/opl9trk/pkg/tracker"
)

type fakeOracle struct {
	held    map[rune]bool
	edge    map[rune]bool
	shift   bool
	ctrl    bool
	alt     bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{held: map[rune]bool{}, edge: map[rune]bool{}}
}
func (f *fakeOracle) IsHeld(k rune) bool       { return f.held[k] }
func (f *fakeOracle) IsEdgePressed(k rune) bool { return f.edge[k] }
func (f *fakeOracle) Shift() bool              { return f.shift }
func (f *fakeOracle) Ctrl() bool               { return f.ctrl }
func (f *fakeOracle) Alt() bool                { return f.alt }

func TestNavigateWrapsRowDownward(t *testing.T) {
	e := New()
	e.Cursor.Row = tracker.Rows - 1
	in := newFakeOracle()
	in.edge['v'] = true
	e.Navigate(in)
	if e.Cursor.Row != 0 {
		t.Fatalf("row = %d, want 0 (wrap)", e.Cursor.Row)
	}
}

func TestNavigateChannelClampsAtMax(t *testing.T) {
	e := New()
	e.Cursor.Channel = tracker.Channels - 1
	in := newFakeOracle()
	in.edge['>'] = true
	e.Navigate(in)
	if e.Cursor.Channel != tracker.Channels-1 {
		t.Fatalf("channel = %d, want clamp at %d", e.Cursor.Channel, tracker.Channels-1)
	}
}

func TestOctaveBoundaries(t *testing.T) {
	e := New()
	e.CurOctave = 8
	e.OctaveUp()
	if e.CurOctave != 8 {
		t.Fatalf("octave up at 8 should clamp, got %d", e.CurOctave)
	}
	e.CurOctave = 0
	e.OctaveDown()
	if e.CurOctave != 0 {
		t.Fatalf("octave down at 0 should clamp, got %d", e.CurOctave)
	}
}

func TestInstrumentWrapsModulo256(t *testing.T) {
	e := New()
	e.CurInstrument = 255
	e.InstrumentUp()
	if e.CurInstrument != 0 {
		t.Fatalf("instrument should wrap to 0, got %d", e.CurInstrument)
	}
	e.CurInstrument = 0
	e.InstrumentDown()
	if e.CurInstrument != 255 {
		t.Fatalf("instrument should wrap to 255, got %d", e.CurInstrument)
	}
}

func TestTransposeNoteClampsAtBoundaries(t *testing.T) {
	if got := TransposeNote(tracker.NoteMin, -5); got != tracker.NoteMin {
		t.Fatalf("transpose below min = %d, want %d", got, tracker.NoteMin)
	}
	if got := TransposeNote(tracker.NoteMax, 5); got != tracker.NoteMax {
		t.Fatalf("transpose above max = %d, want %d", got, tracker.NoteMax)
	}
}

func TestCopyPasteRoundTrip(t *testing.T) {
	store := tracker.NewStore()
	e := New()
	store.WriteCell(0, 5, 2, tracker.PatternCell{Note: 60, Vol: 63})

	e.CopyPattern(store, 0)
	store.WriteCell(0, 5, 2, tracker.PatternCell{})
	e.PastePattern(store, 0)

	got := store.ReadCell(0, 5, 2)
	if got.Note != 60 || got.Vol != 63 {
		t.Fatalf("paste did not restore cell, got %+v", got)
	}
}

func TestKeyRepeatFiresOnEdgeThenAfterDelay(t *testing.T) {
	e := New()
	in := newFakeOracle()
	in.edge['v'] = true
	in.held['v'] = true
	if !e.repeatFire(in, 'v') {
		t.Fatal("edge press should fire immediately")
	}
	in.edge['v'] = false
	for i := 0; i < KeyRepeatDelay-1; i++ {
		if e.repeatFire(in, 'v') {
			t.Fatalf("should not repeat before delay elapses, fired at frame %d", i)
		}
	}
	if !e.repeatFire(in, 'v') {
		t.Fatal("should fire once delay elapses")
	}
}
