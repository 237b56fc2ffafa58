package tui

// oracle adapts bubbletea's event-driven tea.KeyMsg delivery onto the
// editor.InputOracle contract's continuous per-frame polling: IsHeld must
// answer true for as long as a key is physically down, but bubbletea only
// ever tells us a key went down, never that it came back up. We approximate
// "held" with a rolling timeout: a key counts as held for holdFrames frames
// after its last keydown message, and as released once that window elapses
// without a fresh press. Terminals that forward OS key-repeat re-fire the
// keydown message every ~30-50ms while a key is actually held, which keeps
// the window topped up; a single tap decays out after holdFrames frames.
type oracle struct {
	down     map[rune]int // rune -> frames remaining before auto-release
	edge     map[rune]bool
	shift    bool
	ctrl     bool
	alt      bool
	holdFrames int
}

func newOracle() *oracle {
	return &oracle{
		down:       make(map[rune]int),
		edge:       make(map[rune]bool),
		holdFrames: 4,
	}
}

// press records a keydown for k, with modifier state as reported on that
// message.
func (o *oracle) press(k rune, shift, ctrl, alt bool) {
	if _, wasDown := o.down[k]; !wasDown {
		o.edge[k] = true
	}
	o.down[k] = o.holdFrames
	o.shift, o.ctrl, o.alt = shift, ctrl, alt
}

// beginFrame clears last frame's edges; call once per tick before
// FrameTick.
func (o *oracle) beginFrame() {
	for k := range o.edge {
		o.edge[k] = false
	}
}

// endFrame decays every held key's remaining window; call once per tick
// after FrameTick.
func (o *oracle) endFrame() {
	for k, frames := range o.down {
		if frames <= 0 {
			delete(o.down, k)
			continue
		}
		o.down[k] = frames - 1
	}
}

func (o *oracle) IsHeld(k rune) bool       { return o.down[k] > 0 }
func (o *oracle) IsEdgePressed(k rune) bool { return o.edge[k] }
func (o *oracle) Shift() bool              { return o.shift }
func (o *oracle) Ctrl() bool               { return o.ctrl }
func (o *oracle) Alt() bool                { return o.alt }
