package render

import (
	"testing"

	"github.com/rptracker/opl9trk/pkg/tracker"
)

type fakeSurface struct {
	chars  []string
	bgRows map[int]Color
}

func newFakeSurface() *fakeSurface { return &fakeSurface{bgRows: map[int]Color{}} }

func (f *fakeSurface) DrawChar(x, y int, ch rune, fg, bg Color) {}
func (f *fakeSurface) SetBgRow(y int, bg Color)                 { f.bgRows[y] = bg }
func (f *fakeSurface) DrawString(x, y int, s string, fg, bg Color) {
	f.chars = append(f.chars, s)
}

func TestMarkPlayheadSetsDistinctBackground(t *testing.T) {
	s := newFakeSurface()
	a := New(s)
	a.MarkPlayhead(5)
	if s.bgRows[6] != ColorPlayhead {
		t.Fatalf("playhead row color = %v, want %v", s.bgRows[6], ColorPlayhead)
	}
}

func TestCursorColorTracksEditMode(t *testing.T) {
	s := newFakeSurface()
	a := New(s)
	a.UpdateCursorVisuals(0, 3, 0, 0, true)
	if s.bgRows[4] != ColorEditCursor {
		t.Fatalf("edit-mode cursor color = %v, want %v", s.bgRows[4], ColorEditCursor)
	}
	a.UpdateCursorVisuals(3, 4, 0, 0, false)
	if s.bgRows[5] != ColorPlayCursor {
		t.Fatalf("play-mode cursor color = %v, want %v", s.bgRows[5], ColorPlayCursor)
	}
}

func TestMetersDecayByTwoWithUnderflowClamp(t *testing.T) {
	a := New(newFakeSurface())
	a.Meters[0].Peak = 3
	a.UpdateMeters()
	if a.Meters[0].Peak != 1 {
		t.Fatalf("peak after one decay = %d, want 1", a.Meters[0].Peak)
	}
	a.UpdateMeters()
	if a.Meters[0].Peak != 0 {
		t.Fatalf("peak should clamp at 0, got %d", a.Meters[0].Peak)
	}
}

func TestRenderGridCoversAllRows(t *testing.T) {
	s := newFakeSurface()
	a := New(s)
	var pat tracker.Pattern
	a.RenderGrid(&pat)
	if len(s.chars) != tracker.Rows*tracker.Channels {
		t.Fatalf("expected %d draws, got %d", tracker.Rows*tracker.Channels, len(s.chars))
	}
}
