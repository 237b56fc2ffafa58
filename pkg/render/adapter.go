// Package render defines the Renderer Adapter (C8) contract. The spec
// describes this component by contract only: the actual 80x60 text-mode
// painting is an out-of-scope collaborator. What lives here is the
// interface a concrete surface (e.g. the TUI's lipgloss-backed surface)
// must satisfy, plus the adapter that drives it from engine state.
package render

import "github.com/rptracker/opl9trk/pkg/tracker"

// Color is an abstract foreground/background color index; the concrete
// surface maps it to whatever palette it renders with.
type Color int

// Color policy constants (§4.7): edit-mode cursor is red, play-mode cursor
// is blue, the playhead row gets a distinct background regardless of mode.
const (
	ColorEditCursor Color = iota
	ColorPlayCursor
	ColorPlayhead
	ColorDefault
)

// TextSurface is the minimal text-mode drawing contract the Renderer
// Adapter requires from its host.
type TextSurface interface {
	DrawChar(x, y int, ch rune, fg, bg Color)
	SetBgRow(y int, bg Color)
	DrawString(x, y int, s string, fg, bg Color)
}

// VoiceMeter is one channel's peak-meter state (0..63), decayed by
// update_meters.
type VoiceMeter struct {
	Peak uint8
}

// Adapter is the Renderer Adapter (C8): it reads pattern/cursor/playhead
// state and issues draw calls to a TextSurface, never the reverse.
type Adapter struct {
	Surface TextSurface
	Meters  [tracker.Channels]VoiceMeter
}

// New returns an adapter painting onto surface.
func New(surface TextSurface) *Adapter {
	return &Adapter{Surface: surface}
}

// RenderRow redraws one pattern row's cells.
func (a *Adapter) RenderRow(pat *tracker.Pattern, rowIdx int, y int) {
	for ch := 0; ch < tracker.Channels; ch++ {
		cell := pat.Rows[rowIdx][ch]
		x := ch * 10
		a.Surface.DrawString(x, y, tracker.NoteName(cell.Note), ColorDefault, ColorDefault)
	}
}

// RenderGrid redraws every row of pat.
func (a *Adapter) RenderGrid(pat *tracker.Pattern) {
	for row := 0; row < tracker.Rows; row++ {
		a.RenderRow(pat, row, row+1)
	}
}

// UpdateCursorVisuals clears the old cursor row's highlight and paints the
// new one, in ColorEditCursor (red) for edit mode or ColorPlayCursor (blue)
// otherwise.
func (a *Adapter) UpdateCursorVisuals(oldRow, newRow, oldCh, newCh int, editMode bool) {
	color := ColorPlayCursor
	if editMode {
		color = ColorEditCursor
	}
	a.Surface.SetBgRow(oldRow+1, ColorDefault)
	a.Surface.SetBgRow(newRow+1, color)
	_ = oldCh
	_ = newCh
}

// MarkPlayhead paints the playhead row's distinct background.
func (a *Adapter) MarkPlayhead(playRow int) {
	a.Surface.SetBgRow(playRow+1, ColorPlayhead)
}

// UpdateDashboard redraws the transport/status line; left as a surface
// string-draw call, since its exact content is a UI concern outside this
// spec's scope.
func (a *Adapter) UpdateDashboard(status string) {
	a.Surface.DrawString(0, 0, status, ColorDefault, ColorDefault)
}

// UpdateMeters decays every channel's peak by 2/frame with underflow
// clamp, and redraws each as a horizontal bar.
func (a *Adapter) UpdateMeters() {
	for ch := range a.Meters {
		m := &a.Meters[ch]
		if m.Peak >= 2 {
			m.Peak -= 2
		} else {
			m.Peak = 0
		}
		bar := make([]rune, m.Peak/4+1)
		for i := range bar {
			bar[i] = '#'
		}
		a.Surface.DrawString(ch*10, tracker.Rows+2, string(bar), ColorDefault, ColorDefault)
	}
}

// RefreshAll repaints grid, cursor, playhead, dashboard, and meters in one
// pass — used after a non-incremental state change (pattern switch, load).
func (a *Adapter) RefreshAll(pat *tracker.Pattern, cursorRow, cursorCh, playRow int, editMode bool, status string) {
	a.RenderGrid(pat)
	a.UpdateCursorVisuals(-1, cursorRow, -1, cursorCh, editMode)
	a.MarkPlayhead(playRow)
	a.UpdateDashboard(status)
	a.UpdateMeters()
}
