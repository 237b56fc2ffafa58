package effect

import (
	"github.com/rptracker/opl9trk/pkg/synth"
	"github.com/rptracker/opl9trk/pkg/tracker"
)

// Parse implements the Effect Parser (C4): invoked once per voice when the
// sequencer enters a new row. It is idempotent across an unchanged effect
// word — a vibrato command held across many rows must not restart its
// phase — and otherwise decodes the word's nibbles and (re)initializes the
// matching effect record, enforcing the ownership invariants in VoiceState.
// ch and drv identify the voice's channel and synth driver, needed only by
// cmd 9 (Fine Pitch), which retunes a sustained note at parse time rather
// than waiting for the per-tick processor, and by cmd F (Kill), which writes
// a tremolo's base volume back to the carrier.
func Parse(v *VoiceState, cell tracker.PatternCell, ch int, drv *synth.SynthDriver) {
	if cell.Effect == v.LastEffect {
		applyContext(v, cell)
		return
	}
	v.LastEffect = cell.Effect
	applyContext(v, cell)

	cmd := cell.EffectCmd()
	s := cell.EffectS()
	d := cell.EffectD()
	tn := cell.EffectT()

	switch cmd {
	case 0x0:
		if cell.Note != tracker.NoteEmpty {
			v.Tremolo.Active = false
			if v.CarrierOwner == CarrierTremolo {
				v.CarrierOwner = CarrierNone
			}
			v.Retrigger.Active = false
			v.Vibrato.Active = false
			v.Generator.Active = false
			if v.PitchOwner == PitchVibrato || v.PitchOwner == PitchGenerator {
				v.PitchOwner = PitchNone
			}
		}

	case 0x1: // Arpeggio: style S, depth D, speed index T
		v.TakePitch(PitchArp)
		v.Arp = ArpState{
			Active:      true,
			Style:       s,
			Depth:       d,
			TargetTicks: ArpTickLUT[tn],
			TickCounter: 0,
			StepIndex:   0,
			BaseNote:    v.LastNote,
			BaseInst:    v.LastInst,
			BaseVol:     v.LastVol,
		}

	case 0x2: // Portamento: mode S, speed D
		v.TakePitch(PitchPorta)
		target := 0
		switch s {
		case 0:
			target = 127 * 16
		case 1:
			target = 0
		case 2:
			target = (int(v.LastNote) + int(tn)) * 16
		case 3:
			target = (int(v.LastNote) - int(tn)) * 16
		}
		v.Porta = PortaState{
			Active:      true,
			Mode:        s,
			Speed:       d,
			CurrentNote: int(v.LastNote) * 16,
			TargetNote:  target,
			Inst:        v.LastInst,
			Vol:         v.LastVol,
		}

	case 0x3: // Volume slide: mode S, speed D, target T
		v.TakeCarrier(CarrierVolSlide)
		speed := d
		if speed == 0 {
			speed = 1 // player.c:363's "magic number" default: ~32 rows at speed 1
		}
		target := int(tn) * 63 * 256 / 15
		speedFP := int(speed) * 84
		if s == 1 {
			speedFP = -speedFP
		} else if s == 2 && target < int(v.LastVol)*256 {
			speedFP = -speedFP
		}
		v.VolSlide = VolSlideState{
			Active:  true,
			SpeedFP: speedFP,
			Accum:   int(v.LastVol) * 256,
		}
		// Mode 2 uses target only to pick the slide direction here; the
		// ticker does not stop at it and slides on to the 0 or 63 clamp.
		_ = target

	case 0x4: // Vibrato: rate R, depth D, waveform T%3
		v.TakePitch(PitchVibrato)
		rate, depth := s, d
		if rate == 0 {
			rate = 4
		}
		if depth == 0 {
			depth = 2
		}
		v.Vibrato = VibratoState{
			Active:   true,
			Rate:     rate,
			Depth:    depth,
			Waveform: tn % 3,
			BaseNote: v.LastNote,
			BaseInst: v.LastInst,
			BaseVol:  v.LastVol,
		}

	case 0x5: // Note cut: after T ticks
		v.NoteCut = NoteCutState{Active: true, CutTick: int(tn)}

	case 0x6: // Auto-echo: V D T
		delayTicks := d
		if delayTicks == 0 {
			delayTicks = 1
		}
		v.NoteDelay = NoteDelayState{
			Active:     true,
			DelayTicks: int(delayTicks),
			Note:       cell.Note,
			Inst:       v.LastInst,
			Vol:        s * 4,
		}
		if v.NoteDelay.Note == tracker.NoteEmpty {
			v.NoteDelay.Note = v.LastNote + tn
		} else {
			v.NoteDelay.Note += tn
		}

	case 0x7: // Retrigger: every T ticks
		speed := tn
		if speed == 0 {
			speed = 3
		}
		v.Retrigger = RetriggerState{
			Active: true,
			Speed:  speed,
			Note:   v.LastNote,
			Inst:   v.LastInst,
			Vol:    v.LastVol,
		}

	case 0x8: // Tremolo: rate R, depth D, waveform T%3
		v.TakeCarrier(CarrierTremolo)
		base := v.LastVol
		if cell.Vol != 0 {
			base = cell.Vol
		}
		v.Tremolo = TremoloState{
			Active:   true,
			Rate:     s,
			Depth:    d,
			Waveform: tn % 3,
			BaseVol:  base,
		}

	case 0x9: // Fine pitch: detune D
		detune := int8(d)
		if d >= 8 {
			detune = int8(d) - 16
		}
		v.FinePitch = FinePitchState{Active: true, Detune: detune, Note: v.LastNote}
		// A bare fine-pitch word (no new note on this row) retunes the
		// sustaining note immediately; when the row also carries a note,
		// the caller's own NoteOn dispatch applies the detune instead.
		if cell.Note == tracker.NoteEmpty && drv != nil {
			drv.NoteOnDetuned(ch, v.LastNote, detune)
		}

	case 0xA: // Generator: scale S, range D, speed index T
		v.TakePitch(PitchGenerator)
		v.Generator = GeneratorState{
			Active:      true,
			Scale:       s,
			Range:       d,
			TargetTicks: ArpTickLUT[tn],
			BaseNote:    v.LastNote,
			BaseInst:    v.LastInst,
			BaseVol:     v.LastVol,
			Rng:         1,
		}

	case 0xF: // Kill: deactivate all, restore unmodulated base volume
		wasTremolo := v.CarrierOwner == CarrierTremolo
		baseVol := v.Tremolo.BaseVol
		v.DeactivatePitch()
		v.DeactivateCarrier()
		v.NoteCut.Active = false
		v.NoteDelay.Active = false
		v.Retrigger.Active = false
		v.FinePitch.Active = false
		if wasTremolo {
			v.LastVol = baseVol
			if drv != nil {
				drv.SetVolume(ch, baseVol)
			}
		}
	}
}

// applyContext folds the row's note/inst/vol into the voice's remembered
// context, per §4.3's "context overridden by this row's values if present
// and non-zero/non-255" rule.
func applyContext(v *VoiceState, cell tracker.PatternCell) {
	if cell.Note != tracker.NoteEmpty {
		v.LastNote = cell.Note
	}
	if cell.Inst != 0 {
		v.LastInst = cell.Inst
	}
	if cell.Vol != 0 {
		v.LastVol = cell.Vol
	}
}
