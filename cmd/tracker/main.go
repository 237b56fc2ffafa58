// Command tracker is the terminal front-end: it wires a pattern Store, an
// OPL2-class Synth Driver, the built-in patch bank, and the bubbletea TUI
// together, with an optional non-interactive WAV export path.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/rptracker/opl9trk/pkg/audio"
	"github.com/rptracker/opl9trk/pkg/rptfile"
	"github.com/rptracker/opl9trk/pkg/synth"
	"github.com/rptracker/opl9trk/pkg/synth/fm"
	"github.com/rptracker/opl9trk/pkg/tracker"
	"github.com/rptracker/opl9trk/pkg/tui"
)

func main() {
	sampleRate := flag.Int("sample-rate", 44100, "audio sample rate in Hz")
	loadPath := flag.String("load", "", "load a song file (RPT1 format) on startup")
	savePath := flag.String("save", "", "default path used by the in-app save/load shortcuts")
	exportPath := flag.String("export", "", "render to a WAV file instead of opening the TUI")
	exportSeconds := flag.Float64("export-seconds", 10, "duration to render when -export is set")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "tracker"})

	store := tracker.NewStore()
	if *loadPath != "" {
		f, err := os.Open(*loadPath)
		if err != nil {
			logger.Fatal("opening song file", "path", *loadPath, "err", err)
		}
		if _, err := rptfile.Load(f, store); err != nil {
			f.Close()
			logger.Fatal("loading song", "path", *loadPath, "err", err)
		}
		f.Close()
		logger.Info("loaded song", "path", *loadPath)
	}

	chip := fm.NewChip(*sampleRate)
	driver := synth.NewSynthDriver(chip)
	patches := synth.NewDefaultBank()

	if *exportPath != "" {
		f, err := os.Create(*exportPath)
		if err != nil {
			logger.Fatal("creating export file", "path", *exportPath, "err", err)
		}
		defer f.Close()
		if err := audio.ExportWAV(chip, *sampleRate, f, *exportSeconds); err != nil {
			logger.Fatal("exporting WAV", "err", err)
		}
		logger.Info("exported WAV", "path", *exportPath, "seconds", *exportSeconds)
		return
	}

	filename := *savePath
	if filename == "" {
		filename = *loadPath
	}

	rt, err := audio.NewRealtimeOutput(chip, *sampleRate)
	if err != nil {
		logger.Warn("no audio device, continuing without sound", "err", err)
	} else {
		defer rt.Close()
	}

	model := tui.NewModel(driver, store, patches, filename)
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tracker: %v\n", err)
		os.Exit(1)
	}
}
