// Package engine composes C1-C8 into the single owned Engine value §9
// calls for: one struct parameterized through a frame-tick entry point,
// rather than the source's process-wide singletons.
package engine

import (
	"github.com/rptracker/opl9trk/pkg/editor"
	"github.com/rptracker/opl9trk/pkg/effect"
	"github.com/rptracker/opl9trk/pkg/render"
	"github.com/rptracker/opl9trk/pkg/sequencer"
	"github.com/rptracker/opl9trk/pkg/synth"
	"github.com/rptracker/opl9trk/pkg/tracker"
)

// Engine owns the pattern store, synth driver, per-voice effect state,
// sequencer transport, editor, and renderer adapter.
type Engine struct {
	Store     *tracker.Store
	Synth     *synth.SynthDriver
	Voices    [tracker.Channels]effect.VoiceState
	Sequencer *sequencer.State
	Editor    *editor.Editor
	Renderer  *render.Adapter
	Patches   synth.PatchBank

	patternCache tracker.Pattern
	prevRow      int
	prevCh       int
}

// New builds an Engine wired together: store and synth driver are
// caller-provided (the driver's sink is the concrete synthesizer), editor
// and sequencer start at their defaults, and the renderer paints onto
// surface. patches resolves instrument indices to FM patches and may be
// nil, in which case notes sound on whatever patch the driver last had.
func New(store *tracker.Store, synthDriver *synth.SynthDriver, surface render.TextSurface, patches synth.PatchBank) *Engine {
	e := &Engine{
		Store:     store,
		Synth:     synthDriver,
		Sequencer: sequencer.NewState(),
		Editor:    editor.New(),
		Renderer:  render.New(surface),
		Patches:   patches,
	}
	e.Sequencer.Patches = patches
	for i := range e.Voices {
		e.Voices[i] = *effect.NewVoiceState()
	}
	return e
}

// currentPattern loads the sequencer's (or editor's, when stopped) current
// pattern from the store into an in-memory Pattern for this frame's use.
func (e *Engine) currentPattern() *tracker.Pattern {
	patIdx := e.Sequencer.CurPattern
	if !e.Sequencer.IsPlaying {
		patIdx = e.Editor.CurPattern
	}
	buf := e.Store.CopyPattern(patIdx)
	for row := 0; row < tracker.Rows; row++ {
		for ch := 0; ch < tracker.Channels; ch++ {
			off := row*(tracker.Channels*tracker.CellSize) + ch*tracker.CellSize
			var raw [tracker.CellSize]byte
			copy(raw[:], buf[off:off+tracker.CellSize])
			e.patternCache.Rows[row][ch] = tracker.UnmarshalCell(raw)
		}
	}
	return &e.patternCache
}

// writeBackPattern persists editor mutations (cell edits, clears,
// note-offs, jam writes) made against the in-memory pattern cache back to
// the store, which exclusively owns cell memory per §3.
func (e *Engine) writeBackPattern(pat *tracker.Pattern) {
	patIdx := e.Sequencer.CurPattern
	if !e.Sequencer.IsPlaying {
		patIdx = e.Editor.CurPattern
	}
	for row := 0; row < tracker.Rows; row++ {
		for ch := 0; ch < tracker.Channels; ch++ {
			e.Store.WriteCell(patIdx, row, ch, pat.Rows[row][ch])
		}
	}
}

// FrameTick runs exactly one vsync frame in the mandated order:
// InputOracle -> Editor -> Sequencer -> Per-Tick Processor -> Renderer.
// The per-tick processor's own dispatch is internal to Sequencer.Tick.
func (e *Engine) FrameTick(in editor.InputOracle, jamKeys []editor.PianoKey) {
	pat := e.currentPattern()

	e.Editor.Navigate(in)
	for ch := 0; ch < tracker.Channels; ch++ {
		e.Editor.JamScan(in, jamKeys, pat, &e.Voices[ch], e.Synth, e.Patches, ch, e.Sequencer.IsPlaying)
	}

	e.Sequencer.Tick(pat, func(i int) uint8 { return e.Store.ReadOrder(i) }, &e.Voices, e.Synth, e.Editor)

	e.writeBackPattern(pat)

	if e.Sequencer.IsPlaying && e.Editor.FollowMode {
		e.Editor.Cursor.Row = e.Sequencer.PlayRow
	}

	e.Renderer.RenderGrid(pat)
	e.Renderer.UpdateCursorVisuals(e.prevRow, e.Editor.Cursor.Row, e.prevCh, e.Editor.Cursor.Channel, e.Editor.EditMode)
	e.prevRow, e.prevCh = e.Editor.Cursor.Row, e.Editor.Cursor.Channel
	if e.Sequencer.IsPlaying {
		e.Renderer.MarkPlayhead(e.Sequencer.PlayRow)
	}
	e.Renderer.UpdateMeters()
}

// ClearCurrentCell blanks the cell under the cursor (Backspace/Delete).
func (e *Engine) ClearCurrentCell() {
	pat := e.currentPattern()
	e.Editor.ClearCell(pat)
	e.writeBackPattern(pat)
}

// WriteNoteOffAtCursor writes an explicit note-off at the cursor (Backtick).
func (e *Engine) WriteNoteOffAtCursor() {
	pat := e.currentPattern()
	e.Editor.WriteNoteOff(pat)
	e.writeBackPattern(pat)
}

// CopyCurrentPattern snapshots the cursor's pattern to the clipboard.
func (e *Engine) CopyCurrentPattern() {
	patIdx := e.Sequencer.CurPattern
	if !e.Sequencer.IsPlaying {
		patIdx = e.Editor.CurPattern
	}
	e.Editor.CopyPattern(e.Store, patIdx)
}

// PasteCurrentPattern overwrites the cursor's pattern with the clipboard.
func (e *Engine) PasteCurrentPattern() {
	patIdx := e.Sequencer.CurPattern
	if !e.Sequencer.IsPlaying {
		patIdx = e.Editor.CurPattern
	}
	e.Editor.PastePattern(e.Store, patIdx)
}

// TransportStart is the play/pause toggle (Enter).
func (e *Engine) TransportStart() {
	e.Sequencer.Start(func(i int) uint8 { return e.Store.ReadOrder(i) })
}

// TransportStop stops playback, silences all voices, and resets the row
// clock (Shift+Enter).
func (e *Engine) TransportStop() { e.Sequencer.Stop(&e.Voices, e.Synth) }

// Panic silences all voices without disturbing cursor/song state (Esc).
func (e *Engine) Panic() { e.Sequencer.Panic(e.Synth) }
