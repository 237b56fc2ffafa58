package fm

import (
	"math"
	"testing"

	"github.com/rptracker/opl9trk/pkg/synth"
)

func TestChipImplementsRegisterWriter(t *testing.T) {
	var _ synth.RegisterWriter = (*Chip)(nil)
}

func TestRenderProducesBoundedSamples(t *testing.T) {
	chip := NewChip(44100)
	driver := synth.NewSynthDriver(chip)
	driver.SetPatch(0, synth.Patch{CarAtDec: 0xF1, CarSusRel: 0xF1, ModAtDec: 0xF1, ModSusRel: 0xF1, CarKSL: 0x3F, ModKSL: 0x3F})
	driver.SetVolume(0, 127)
	driver.NoteOn(0, 60)

	buf := make([]float64, 512)
	chip.Render(buf)

	for i, s := range buf {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			t.Fatalf("sample %d is NaN/Inf: %v", i, s)
		}
		if s > 1.5 || s < -1.5 {
			t.Fatalf("sample %d out of expected range: %v", i, s)
		}
	}
}

func TestSilentWhenNoNoteOn(t *testing.T) {
	chip := NewChip(44100)
	buf := make([]float64, 256)
	chip.Render(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d should be silent with no note triggered, got %v", i, s)
		}
	}
}
