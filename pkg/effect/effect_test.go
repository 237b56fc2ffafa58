package effect

import (
	"testing"

	"github.com/rptracker/opl9trk/pkg/synth"
	"github.com/rptracker/opl9trk/pkg/tracker"
)

type recordingSink struct {
	writes []struct{ reg, data byte }
}

func (r *recordingSink) WriteRegister(reg, data byte) {
	r.writes = append(r.writes, struct{ reg, data byte }{reg, data})
}

// keyOnEvents counts this sink's $B0-$B8 writes that have the key-on bit
// set, i.e. how many notes were struck.
func (r *recordingSink) keyOnEvents() int {
	n := 0
	for _, w := range r.writes {
		if w.reg >= 0xB0 && w.reg < 0xB9 && w.data&0x20 != 0 {
			n++
		}
	}
	return n
}

// S1: minor-triad arpeggio (style 3, depth 0) must produce the offset
// sequence 0,3,7,12 repeating — the pure ArpOffset table is the contract
// under test; TickVoice is exercised separately for wiring.
func TestArpOffsetMinorTriadMatchesS1(t *testing.T) {
	want := []int{0, 3, 7, 12, 0, 3, 7, 12, 0, 3, 7, 12}
	for i, w := range want {
		if got := ArpOffset(3, 0, i); got != w {
			t.Fatalf("step %d: ArpOffset(3,0,%d) = %d, want %d", i, i, got, w)
		}
	}
}

// S1, integration: a cell with effect 0x1300 (style=3, depth=0, T=0 ->
// LUT[0]=1 tick/step) must re-strike a note every tick once running.
func TestArpTickFiresEveryTickAtLUTZero(t *testing.T) {
	sink := &recordingSink{}
	d := synth.NewSynthDriver(sink)
	v := NewVoiceState()

	cell := tracker.PatternCell{Note: 60, Vol: 63, Effect: tracker.EncodeEffect(0x1, 0x3, 0x0, 0x0)}
	Parse(v, cell, 0, d)
	if !v.Arp.Active || v.Arp.TargetTicks != 1 {
		t.Fatalf("arp not armed correctly: %+v", v.Arp)
	}

	// Row entry's own strike (tick 0) plus 4 subsequent ticks = 4 arp steps.
	for i := 0; i < 4; i++ {
		TickVoice(v, 0, d, i+1)
	}
	if v.Arp.StepIndex != 4 {
		t.Fatalf("expected 4 arp steps, got %d", v.Arp.StepIndex)
	}
}

// S2 (idempotence): re-parsing an unchanged effect word must not reset the
// vibrato's phase or tick counter.
func TestParseIdempotentOnUnchangedEffect(t *testing.T) {
	d := synth.NewSynthDriver(&recordingSink{})
	v := NewVoiceState()
	cell := tracker.PatternCell{Note: 60, Vol: 63, Effect: tracker.EncodeEffect(0x4, 0x2, 0x2, 0x4)}
	Parse(v, cell, 0, d)
	v.Vibrato.Phase = 160
	v.Vibrato.TickCounter = 1

	again := tracker.PatternCell{Effect: cell.Effect} // same effect word, empty note
	Parse(v, again, 0, d)

	if v.Vibrato.Phase != 160 || v.Vibrato.TickCounter != 1 {
		t.Fatalf("idempotent parse must not reset vibrato state, got %+v", v.Vibrato)
	}
}

// S3 (portamento arrival): mode 2 ("up by T semitones"), speed nibble 0
// (meaning 1 tick/step). Pitch should step 60->61->62->63 and then
// deactivate.
func TestPortamentoArrivesAndDeactivates(t *testing.T) {
	sink := &recordingSink{}
	d := synth.NewSynthDriver(sink)
	v := NewVoiceState()

	cell := tracker.PatternCell{Note: 60, Effect: tracker.EncodeEffect(0x2, 0x2, 0x0, 0x3)}
	Parse(v, cell, 0, d)
	if v.Porta.TargetNote != 63*16 {
		t.Fatalf("target note = %d, want %d", v.Porta.TargetNote, 63*16)
	}

	for tick := 1; tick <= 3; tick++ {
		tickPorta(v, 0, d, tick)
	}
	if v.Porta.Active {
		t.Fatal("portamento should be deactivated once target is reached")
	}
	if got := v.Porta.CurrentNote / 16; got != 63 {
		t.Fatalf("current note = %d, want 63", got)
	}
}

// S4 (note-cut): effect 0x5003 (cut at tick 3) must fire exactly once and
// zero the peak.
func TestNoteCutFiresOnce(t *testing.T) {
	sink := &recordingSink{}
	d := synth.NewSynthDriver(sink)
	v := NewVoiceState()
	v.Peak = 63

	cell := tracker.PatternCell{Note: 72, Vol: 63, Effect: tracker.EncodeEffect(0x5, 0x0, 0x0, 0x3)}
	Parse(v, cell, 0, d)

	for tick := 1; tick <= 5; tick++ {
		tickNoteCut(v, 0, d)
	}
	if v.NoteCut.Active {
		t.Fatal("note-cut should be one-shot")
	}
	if v.Peak != 0 {
		t.Fatalf("peak should be zeroed by note-cut, got %d", v.Peak)
	}
}

// S5 (F000 kill restores volume): tremolo with base volume 40 must, on
// kill, restore exactly that volume and deactivate.
func TestKillRestoresTremoloBaseVolume(t *testing.T) {
	d := synth.NewSynthDriver(&recordingSink{})
	v := NewVoiceState()
	cell := tracker.PatternCell{Note: 60, Vol: 40, Effect: tracker.EncodeEffect(0x8, 0x4, 0x4, 0x6)}
	Parse(v, cell, 0, d)
	if v.Tremolo.BaseVol != 40 {
		t.Fatalf("tremolo base vol = %d, want 40", v.Tremolo.BaseVol)
	}

	kill := tracker.PatternCell{Effect: tracker.EncodeEffect(0xF, 0, 0, 0)}
	Parse(v, kill, 0, d)

	if v.Tremolo.Active || v.CarrierOwner != CarrierNone {
		t.Fatal("kill must deactivate tremolo and release carrier ownership")
	}
	if v.LastVol != 40 {
		t.Fatalf("kill must restore unmodulated base volume, got %d", v.LastVol)
	}
}

// Mutual exclusion: arp and vibrato can never both be the pitch owner.
func TestPitchOwnershipMutualExclusion(t *testing.T) {
	d := synth.NewSynthDriver(&recordingSink{})
	v := NewVoiceState()
	Parse(v, tracker.PatternCell{Note: 60, Effect: tracker.EncodeEffect(0x1, 0x3, 0x0, 0x0)}, 0, d)
	if v.PitchOwner != PitchArp || !v.Arp.Active {
		t.Fatal("arp should own pitch after cmd 1")
	}
	Parse(v, tracker.PatternCell{Note: 60, Effect: tracker.EncodeEffect(0x4, 0x2, 0x2, 0x4)}, 0, d)
	if v.PitchOwner != PitchVibrato || v.Arp.Active {
		t.Fatal("vibrato must take exclusive pitch ownership, deactivating arp")
	}
}

func TestScaleDegreeChromaticIsIdentity(t *testing.T) {
	for i := 0; i < 16; i++ {
		if got := ScaleDegree(0, i); got != i {
			t.Fatalf("chromatic scale step %d = %d, want %d", i, got, i)
		}
	}
}

// Fine Pitch (cmd 9) on a bare effect word (no new note this row) must
// retune the sustaining note immediately at parse time, via NoteOnDetuned,
// rather than stashing a detune that nothing ever applies.
func TestFinePitchDetunesSustainingNoteAtParseTime(t *testing.T) {
	sink := &recordingSink{}
	d := synth.NewSynthDriver(sink)
	sink.writes = nil // ignore Init's own writes
	v := NewVoiceState()
	v.LastNote = 60

	cell := tracker.PatternCell{Effect: tracker.EncodeEffect(0x9, 0x0, 0x4, 0x0)}
	Parse(v, cell, 0, d)

	if !v.FinePitch.Active || v.FinePitch.Detune != 4 {
		t.Fatalf("fine pitch state = %+v, want active, detune 4", v.FinePitch)
	}

	fnumLo := func(s *recordingSink) (byte, bool) {
		for _, w := range s.writes {
			if w.reg == 0xA0 {
				return w.data, true
			}
		}
		return 0, false
	}
	detuned, ok := fnumLo(sink)
	if !ok {
		t.Fatal("fine pitch on a bare effect word must write a detuned frequency immediately")
	}

	baseSink := &recordingSink{}
	baseDriver := synth.NewSynthDriver(baseSink)
	baseSink.writes = nil
	baseDriver.NoteOn(0, 60)
	undetuned, _ := fnumLo(baseSink)

	if detuned == undetuned {
		t.Fatal("detuned f-num should differ from the undetuned note's f-num")
	}
}

// S7 (player.c:363): volume slide's speed nibble 0 means speed 1, not a
// permanently-stalled slide.
func TestVolSlideDefaultsZeroSpeedToOne(t *testing.T) {
	d := synth.NewSynthDriver(&recordingSink{})
	v := NewVoiceState()
	v.LastVol = 32

	cell := tracker.PatternCell{Effect: tracker.EncodeEffect(0x3, 0x0, 0x0, 0xF)}
	Parse(v, cell, 0, d)

	if v.VolSlide.SpeedFP != 84 {
		t.Fatalf("speed_fp = %d, want 84 (zero nibble defaulted to speed 1)", v.VolSlide.SpeedFP)
	}
}

// S7 (player.c:386/388): vibrato's rate/depth nibbles default to 4/2 when
// zero, instead of arming a pitch-owning effect that the ticker refuses to
// ever step.
func TestVibratoDefaultsZeroRateAndDepth(t *testing.T) {
	d := synth.NewSynthDriver(&recordingSink{})
	v := NewVoiceState()

	cell := tracker.PatternCell{Note: 60, Effect: tracker.EncodeEffect(0x4, 0x0, 0x0, 0x0)}
	Parse(v, cell, 0, d)

	if v.Vibrato.Rate != 4 || v.Vibrato.Depth != 2 {
		t.Fatalf("vibrato rate/depth = %d/%d, want 4/2", v.Vibrato.Rate, v.Vibrato.Depth)
	}
}

// S7 (player.c:415): auto-echo's delay nibble 0 means 1 tick, not a
// permanently-stalled echo.
func TestNoteDelayDefaultsZeroDelayToOne(t *testing.T) {
	d := synth.NewSynthDriver(&recordingSink{})
	v := NewVoiceState()

	cell := tracker.PatternCell{Note: 60, Effect: tracker.EncodeEffect(0x6, 0x0, 0x0, 0x0)}
	Parse(v, cell, 0, d)

	if v.NoteDelay.DelayTicks != 1 {
		t.Fatalf("delay_ticks = %d, want 1", v.NoteDelay.DelayTicks)
	}
}

// S7 (player.c:428): retrigger's speed nibble 0 means every 3 ticks, not a
// permanently-stalled retrigger.
func TestRetriggerDefaultsZeroSpeedToThree(t *testing.T) {
	d := synth.NewSynthDriver(&recordingSink{})
	v := NewVoiceState()

	cell := tracker.PatternCell{Note: 60, Effect: tracker.EncodeEffect(0x7, 0x0, 0x0, 0x0)}
	Parse(v, cell, 0, d)

	if v.Retrigger.Speed != 3 {
		t.Fatalf("retrigger speed = %d, want 3", v.Retrigger.Speed)
	}

	for i := 0; i < 6; i++ {
		tickRetrigger(v, 0, d)
	}
	if !v.Retrigger.Active {
		t.Fatal("retrigger should still be active (it only stops on F000 kill)")
	}
}
