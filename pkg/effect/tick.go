package effect

import "github.com/rptracker/opl9trk/pkg/synth"

// sineSteps, triSteps, squareSteps are 8-step-per-cycle LFO shapes scaled to
// +-100, applied as waveform*depth/100. A piecewise-linear approximation of
// the named waveform rather than a true sine table, per §4.4.
var sineSteps = [8]int{0, 70, 100, 70, 0, -70, -100, -70}
var triSteps = [8]int{0, 50, 100, 50, 0, -50, -100, -50}
var squareSteps = [8]int{100, 100, 100, 100, -100, -100, -100, -100}

func lfoOffset(waveform uint8, phase, depth int) int {
	step := (phase / 32) % 8
	var table [8]int
	switch waveform {
	case 0:
		table = sineSteps
	case 1:
		table = triSteps
	default:
		table = squareSteps
	}
	return table[step] * depth / 100
}

func clampNote(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}

// xorshift32 is the Generator effect's PRNG step.
func xorshift32(x uint32) uint32 {
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return x
}

// TickVoice runs the Per-Tick Processor (C5) for one voice: each effect's
// tick function, in the fixed dispatch order §4.4 mandates. tickCounter is
// the row-relative tick (0 on row entry).
func TickVoice(v *VoiceState, ch int, d *synth.SynthDriver, tickCounter int) {
	tickArp(v, ch, d)
	tickPorta(v, ch, d, tickCounter)
	tickVolSlide(v, ch, d)
	tickVibrato(v, ch, d)
	tickNoteCut(v, ch, d)
	tickNoteDelay(v, ch, d, tickCounter)
	tickRetrigger(v, ch, d)
	tickTremolo(v, ch, d, tickCounter)
	tickFinePitch(v, ch, d)
	tickGenerator(v, ch, d, tickCounter)
}

func currentVolume(v *VoiceState) uint8 {
	if v.VolSlide.Active {
		return clampVol(v.VolSlide.Accum / 256)
	}
	return v.LastVol
}

func clampVol(x int) uint8 {
	if x < 0 {
		return 0
	}
	if x > 63 {
		return 63
	}
	return uint8(x)
}

func tickArp(v *VoiceState, ch int, d *synth.SynthDriver) {
	a := &v.Arp
	if !a.Active {
		return
	}
	a.TickCounter++
	if a.TickCounter < a.TargetTicks {
		return
	}
	a.TickCounter = 0
	a.StepIndex++
	offset := ArpOffset(a.Style, a.Depth, a.StepIndex)
	note := clampNote(int(a.BaseNote) + offset)
	d.SetVolume(ch, currentVolume(v))
	d.NoteOn(ch, note)
}

func tickPorta(v *VoiceState, ch int, d *synth.SynthDriver, tickCounter int) {
	p := &v.Porta
	if !p.Active || tickCounter == 0 {
		return
	}
	speed := int(p.Speed)
	if speed == 0 {
		speed = 1
	}
	if tickCounter%speed != 0 {
		return
	}
	if p.CurrentNote < p.TargetNote {
		p.CurrentNote += 16
		if p.CurrentNote > p.TargetNote {
			p.CurrentNote = p.TargetNote
		}
	} else if p.CurrentNote > p.TargetNote {
		p.CurrentNote -= 16
		if p.CurrentNote < p.TargetNote {
			p.CurrentNote = p.TargetNote
		}
	} else {
		p.Active = false
		return
	}
	note := clampNote(p.CurrentNote / 16)
	d.SetPitch(ch, note)
	if p.CurrentNote == p.TargetNote {
		p.Active = false
	}
}

func tickVolSlide(v *VoiceState, ch int, d *synth.SynthDriver) {
	vs := &v.VolSlide
	if !vs.Active {
		return
	}
	vs.Accum += vs.SpeedFP
	if vs.Accum < 0 {
		vs.Accum = 0
	}
	if vs.Accum > 0x3F00 {
		vs.Accum = 0x3F00
	}
	d.SetVolume(ch, clampVol(vs.Accum/256))
}

func tickVibrato(v *VoiceState, ch int, d *synth.SynthDriver) {
	vib := &v.Vibrato
	if !vib.Active {
		return
	}
	vib.TickCounter++
	if vib.TickCounter < int(vib.Rate) {
		return
	}
	vib.TickCounter = 0
	vib.Phase = (vib.Phase + 32) % 256
	offset := lfoOffset(vib.Waveform, vib.Phase, int(vib.Depth))
	note := clampNote(int(vib.BaseNote) + offset)
	d.SetPitch(ch, note)
}

func tickNoteCut(v *VoiceState, ch int, d *synth.SynthDriver) {
	nc := &v.NoteCut
	if !nc.Active {
		return
	}
	nc.TickCounter++
	if nc.TickCounter < nc.CutTick {
		return
	}
	d.NoteOff(ch)
	v.Peak = 0
	nc.Active = false
}

func tickNoteDelay(v *VoiceState, ch int, d *synth.SynthDriver, tickCounter int) {
	nd := &v.NoteDelay
	if !nd.Active || tickCounter == 0 {
		return
	}
	nd.TickCounter++
	if nd.TickCounter < nd.DelayTicks {
		return
	}
	nd.TickCounter = 0
	if nd.Vol <= 6 {
		nd.Active = false
		return
	}
	nd.Vol -= 6
	d.SetVolume(ch, nd.Vol)
	d.NoteOn(ch, nd.Note)
}

func tickRetrigger(v *VoiceState, ch int, d *synth.SynthDriver) {
	r := &v.Retrigger
	if !r.Active {
		return
	}
	r.TickCounter++
	if r.TickCounter < int(r.Speed) {
		return
	}
	r.TickCounter = 0
	d.SetVolume(ch, r.Vol)
	d.NoteOn(ch, r.Note)
}

func tickTremolo(v *VoiceState, ch int, d *synth.SynthDriver, tickCounter int) {
	tr := &v.Tremolo
	if !tr.Active || tickCounter == 0 {
		return
	}
	if tr.Rate == 0 {
		return
	}
	tr.TickCounter += int(tr.Rate) * 4
	lfo := lfoOffset(tr.Waveform, tr.TickCounter, int(tr.Depth))
	newVol := clampVol(int(tr.BaseVol) + lfo)
	d.SetVolume(ch, newVol)
}

func tickFinePitch(v *VoiceState, ch int, d *synth.SynthDriver) {
	// no-op per tick: Parse already applied the detune via NoteOnDetuned,
	// either directly (bare effect word) or through the row's own note-on
	// dispatch; nothing further happens until the next effect word.
}

func tickGenerator(v *VoiceState, ch int, d *synth.SynthDriver, tickCounter int) {
	g := &v.Generator
	if !g.Active || tickCounter == 0 {
		return
	}
	if g.TargetTicks == 0 {
		return
	}
	g.TickCounter++
	if g.TickCounter < g.TargetTicks {
		return
	}
	g.TickCounter = 0
	g.Rng = xorshift32(g.Rng)
	rangeSpan := int(g.Range) + 1
	step := int(g.Rng % uint32(rangeSpan))
	offset := ScaleDegree(g.Scale, step)
	note := clampNote(int(g.BaseNote) + offset)
	d.SetVolume(ch, currentVolume(v))
	d.NoteOn(ch, note)
}
