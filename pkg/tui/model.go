// Package tui implements the terminal user interface: a bubbletea Model
// wrapping a single owned engine.Engine, translating terminal key messages
// into the editor.InputOracle contract and rendering the engine's
// render.Adapter output through a lipgloss-backed text surface.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rptracker/opl9trk/pkg/editor"
	"github.com/rptracker/opl9trk/pkg/engine"
	"github.com/rptracker/opl9trk/pkg/rptfile"
	"github.com/rptracker/opl9trk/pkg/synth"
	"github.com/rptracker/opl9trk/pkg/tracker"
)

const (
	gridWidth  = tracker.Channels * 10
	gridHeight = tracker.Rows + 8
)

// navigation runes Editor.Navigate polls the oracle for; arrow keys map to
// these rather than their own literal runes since bubbletea's key strings
// ("up", "down", ...) aren't single runes.
const (
	keyDown  = 'v'
	keyUp    = '^'
	keyLeft  = '<'
	keyRight = '>'
)

// Model is the bubbletea Model. It holds the engine by pointer so that
// Update's per-message value copy (bubbletea's Model is a value type) still
// shares the one owned Engine the spec's §9 design note calls for.
type Model struct {
	eng      *engine.Engine
	surface  *gridSurface
	oracle   *oracle
	filename string

	width, height int
	showHelp      bool
	statusMsg     string
}

// NewModel builds a Model around a fresh Engine wired to the caller's
// pattern store, synth driver and patch bank, plus a lipgloss-backed render
// surface. filename is used for
// Ctrl+S/Ctrl+L save/load, and may be empty.
func NewModel(synthDriver *synth.SynthDriver, store *tracker.Store, patches synth.PatchBank, filename string) Model {
	surface := newGridSurface(gridWidth, gridHeight)
	eng := engine.New(store, synthDriver, surface, patches)
	return Model{
		eng:      eng,
		surface:  surface,
		oracle:   newOracle(),
		filename: filename,
		width:    gridWidth,
		height:   gridHeight,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tickCmd())
}

// tickMsg drives one vsync frame; 16.666ms approximates the 60Hz vsync the
// spec's tick clock assumes.
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(16_666_666*time.Nanosecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		m.oracle.beginFrame()
		m.eng.FrameTick(m.oracle, editor.AllPianoKeys())
		m.oracle.endFrame()
		m.eng.Renderer.UpdateDashboard(m.statusLine())
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.eng.Panic()
		m.statusMsg = "panic: all voices silenced"
	case "enter":
		m.eng.TransportStart()
		if m.eng.Sequencer.IsPlaying {
			m.statusMsg = "playing"
		} else {
			m.statusMsg = "paused"
		}
	case "shift+enter":
		m.eng.TransportStop()
		m.statusMsg = "stopped"
	case "tab":
		m.eng.Editor.ToggleEditMode()
	case "f1":
		m.showHelp = !m.showHelp
	case "pgup":
		m.eng.Editor.OctaveUp()
	case "pgdown":
		m.eng.Editor.OctaveDown()
	case "+":
		m.eng.Editor.InstrumentUp()
	case "-":
		m.eng.Editor.InstrumentDown()
	case "backspace", "delete":
		m.eng.ClearCurrentCell()
	case "`":
		m.eng.WriteNoteOffAtCursor()
	case "ctrl+s":
		if err := m.saveFile(); err != nil {
			m.statusMsg = fmt.Sprintf("save failed: %v", err)
		} else {
			m.statusMsg = "saved " + m.filename
		}
	case "ctrl+l":
		if err := m.loadFile(); err != nil {
			m.statusMsg = fmt.Sprintf("load failed: %v", err)
		} else {
			m.statusMsg = "loaded " + m.filename
		}
	case "ctrl+k": // pattern copy; ctrl+c is taken by quit, unlike the original firmware's binding
		m.eng.CopyCurrentPattern()
		m.statusMsg = "pattern copied"
	case "ctrl+v":
		m.eng.PasteCurrentPattern()
		m.statusMsg = "pattern pasted"
	case "up":
		m.oracle.press(keyUp, false, false, msg.Alt)
	case "down":
		m.oracle.press(keyDown, false, false, msg.Alt)
	case "left":
		m.oracle.press(keyLeft, false, false, msg.Alt)
	case "right":
		m.oracle.press(keyRight, false, false, msg.Alt)
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			m.oracle.press(msg.Runes[0], false, false, false)
		}
	}
	return m, nil
}

func (m Model) statusLine() string {
	s := m.eng.Sequencer
	mode := "PLAY"
	if m.eng.Editor.EditMode {
		mode = "EDIT"
	}
	transport := "stopped"
	if s.IsPlaying {
		transport = "playing"
	}
	return fmt.Sprintf("%s  %s  oct:%d  inst:%d  pat:%d  row:%02d  %s",
		mode, transport, m.eng.Editor.CurOctave, m.eng.Editor.CurInstrument,
		m.eng.Editor.CurPattern, s.PlayRow, m.statusMsg)
}

func (m Model) View() string {
	body := m.surface.Render()
	if !m.showHelp {
		return body
	}
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(
		"Tab: edit/play  Enter: play  Shift+Enter: stop  Esc: panic\n" +
			"PgUp/PgDn: octave  +/-: instrument  Backspace: clear  `: note-off\n" +
			"Ctrl+S/Ctrl+L: save/load  F1: toggle this help")
	return body + "\n" + help
}

func (m Model) saveFile() error {
	if m.filename == "" {
		return fmt.Errorf("no filename set")
	}
	f, err := os.Create(m.filename)
	if err != nil {
		return err
	}
	defer f.Close()
	meta := rptfile.Metadata{
		Octave:     m.eng.Editor.CurOctave,
		Volume:     m.eng.Editor.CurVolume,
		SongLength: uint16(m.eng.Store.SongLength),
	}
	return rptfile.Save(f, m.eng.Store, meta)
}

func (m Model) loadFile() error {
	if m.filename == "" {
		return fmt.Errorf("no filename set")
	}
	f, err := os.Open(m.filename)
	if err != nil {
		return err
	}
	defer f.Close()
	meta, err := rptfile.Load(f, m.eng.Store)
	if err != nil {
		return err
	}
	m.eng.Editor.CurOctave = meta.Octave
	m.eng.Editor.CurVolume = meta.Volume
	m.eng.Store.SongLength = int(meta.SongLength)
	return nil
}
