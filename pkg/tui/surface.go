package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rptracker/opl9trk/pkg/render"
)

// cell is one character position on the soft text-mode surface: a
// rune plus its foreground/background color indices.
type cell struct {
	ch     rune
	fg, bg render.Color
}

// gridSurface implements render.TextSurface by buffering draw calls into an
// in-memory grid, which View renders through lipgloss. This is the concrete
// stand-in for the text-mode painting primitives the spec leaves external.
type gridSurface struct {
	width, height int
	cells         [][]cell
}

func newGridSurface(width, height int) *gridSurface {
	g := &gridSurface{width: width, height: height}
	g.cells = make([][]cell, height)
	for y := range g.cells {
		g.cells[y] = make([]cell, width)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{ch: ' ', fg: render.ColorDefault, bg: render.ColorDefault}
		}
	}
	return g
}

func (g *gridSurface) inBounds(x, y int) bool {
	return y >= 0 && y < g.height && x >= 0 && x < g.width
}

// DrawChar implements render.TextSurface.
func (g *gridSurface) DrawChar(x, y int, ch rune, fg, bg render.Color) {
	if !g.inBounds(x, y) {
		return
	}
	g.cells[y][x] = cell{ch: ch, fg: fg, bg: bg}
}

// SetBgRow implements render.TextSurface: recolors a whole row's background
// without touching its glyphs or foreground.
func (g *gridSurface) SetBgRow(y int, bg render.Color) {
	if y < 0 || y >= g.height {
		return
	}
	for x := range g.cells[y] {
		g.cells[y][x].bg = bg
	}
}

// DrawString implements render.TextSurface.
func (g *gridSurface) DrawString(x, y int, s string, fg, bg render.Color) {
	for i, r := range s {
		g.DrawChar(x+i, y, r, fg, bg)
	}
}

// colorStyle maps an abstract render.Color to a lipgloss style, per the
// spec's §4.7 color policy.
func colorStyle(c render.Color) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch c {
	case render.ColorEditCursor:
		return style.Background(lipgloss.Color("1"))
	case render.ColorPlayCursor:
		return style.Background(lipgloss.Color("4"))
	case render.ColorPlayhead:
		return style.Background(lipgloss.Color("8"))
	default:
		return style
	}
}

// Render flattens the grid into a styled string for bubbletea's View.
func (g *gridSurface) Render() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := g.cells[y][x]
			style := colorStyle(c.bg)
			if c.fg != render.ColorDefault {
				style = style.Foreground(lipgloss.Color("15"))
			}
			b.WriteString(style.Render(string(c.ch)))
		}
		if y < g.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
