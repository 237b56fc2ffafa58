// Package fm is the concrete "external synthesizer": a software
// two-operator FM voice bank that renders PCM from the register writes the
// Synth Driver sends it, so cmd/tracker has something to
// actually make sound with. It implements synth.RegisterWriter and is not
// part of the core engine's test surface (per spec, audio synthesis itself
// is a Non-goal of the core).
package fm

import (
	"math"
	"sync"
)

// Register layout mirrors pkg/synth's reserved-register table (§6).
const (
	regFnumLo   = 0xA0
	regKeyOnHi  = 0xB0
	regLevel    = 0x40
	regAtDec    = 0x60
	regSusRel   = 0x80
	regFeedback = 0xC0
	regWave     = 0xE0

	channels = 9
)

var modOffset = [channels]uint8{0x00, 0x01, 0x02, 0x08, 0x09, 0x0A, 0x10, 0x11, 0x12}
var carOffset = [channels]uint8{0x03, 0x04, 0x05, 0x0B, 0x0C, 0x0D, 0x13, 0x14, 0x15}

// operator is one FM operator's runtime state: waveform select, ADSR rates
// decoded from its AtDec/SusRel registers, and its own phase/envelope.
type operator struct {
	gain     float64 // 0..1 linear, derived from the level register
	waveform uint8
	attack   uint8
	decay    uint8
	sustain  uint8
	release  uint8

	phase     float64
	envLevel  float64
	envStage  int // 0 attack, 1 decay, 2 sustain, 3 release, 4 idle
}

type voice struct {
	fnumLo  uint8
	bHi     uint8 // key-on(bit5) | block(bits2-4) | fnum-hi(bits0-1)
	keyOn   bool
	algo    uint8 // 0 = FM (serial), 1 = additive
	feedback uint8

	mod, car operator
}

func (v *voice) freqHz() float64 {
	fnum := uint16(v.fnumLo) | uint16(v.bHi&0x03)<<8
	block := (v.bHi >> 2) & 0x07
	// Standard OPL2 conversion: Freq = Fnum * 2^Block * (clock/72) / 2^20.
	return float64(fnum) * math.Pow(2, float64(block)) * 49716.0 / 1048576.0
}

// Chip is the software two-operator FM voice bank. Safe for concurrent use:
// WriteRegister is called from the engine goroutine, Render from oto's
// playback goroutine, guarded by mu.
type Chip struct {
	mu         sync.Mutex
	sampleRate float64
	voices     [channels]voice
}

// NewChip creates a chip rendering at sampleRate Hz.
func NewChip(sampleRate int) *Chip {
	c := &Chip{sampleRate: float64(sampleRate)}
	for i := range c.voices {
		c.voices[i].mod.envStage = 4
		c.voices[i].car.envStage = 4
	}
	return c
}

// WriteRegister implements synth.RegisterWriter: it decodes the byte into
// whichever voice/operator field it controls.
func (c *Chip) WriteRegister(reg, data byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case reg >= regFnumLo && reg < regFnumLo+channels:
		ch := reg - regFnumLo
		c.voices[ch].fnumLo = data

	case reg >= regKeyOnHi && reg < regKeyOnHi+channels:
		ch := reg - regKeyOnHi
		v := &c.voices[ch]
		v.bHi = data
		newKeyOn := data&0x20 != 0
		if newKeyOn && !v.keyOn {
			v.mod.phase, v.car.phase = 0, 0
			v.mod.envStage, v.car.envStage = 0, 0
			v.mod.envLevel, v.car.envLevel = 0, 0
		} else if !newKeyOn && v.keyOn {
			v.mod.envStage, v.car.envStage = 3, 3
		}
		v.keyOn = newKeyOn

	case reg >= regFeedback && reg < regFeedback+channels:
		ch := reg - regFeedback
		c.voices[ch].algo = data & 0x01
		c.voices[ch].feedback = (data >> 1) & 0x07

	default:
		c.writeOperatorField(reg, data)
	}
}

// writeOperatorField routes a register into the matching operator of
// whichever channel's mod/car offset it addresses.
func (c *Chip) writeOperatorField(reg, data byte) {
	for ch := 0; ch < channels; ch++ {
		v := &c.voices[ch]
		switch {
		case reg == regLevel+modOffset[ch]:
			v.mod.gain = levelToGain(data)
		case reg == regLevel+carOffset[ch]:
			v.car.gain = levelToGain(data)
		case reg == regAtDec+modOffset[ch]:
			v.mod.attack, v.mod.decay = data>>4, data&0xF
		case reg == regAtDec+carOffset[ch]:
			v.car.attack, v.car.decay = data>>4, data&0xF
		case reg == regSusRel+modOffset[ch]:
			v.mod.sustain, v.mod.release = data>>4, data&0xF
		case reg == regSusRel+carOffset[ch]:
			v.car.sustain, v.car.release = data>>4, data&0xF
		case reg == regWave+modOffset[ch]:
			v.mod.waveform = data & 0x07
		case reg == regWave+carOffset[ch]:
			v.car.waveform = data & 0x07
		}
	}
}

// levelToGain turns a $40+slot byte (top 2 bits KSL, bottom 6 bits
// attenuation) into a linear 0..1 gain: 0 attenuation is loudest.
func levelToGain(data byte) float64 {
	atten := data & 0x3F
	return float64(63-atten) / 63.0
}

// rateSamples converts a 0..15 OPL rate nibble into an envelope-segment
// duration in samples: rate 0 is held forever, rate 15 is near-instant.
// Modeled after the teacher's tick-fraction envelope rather than the real
// exponential OPL curve — this chip is a reference stand-in, not a
// bit-accurate emulator.
func (c *Chip) rateSamples(rate uint8) float64 {
	if rate == 0 {
		return math.Inf(1)
	}
	return c.sampleRate * (1.0 - float64(rate)/16.0) * 0.5
}

// advanceEnvelope steps op's ADSR state machine by one sample and returns
// its current level multiplier.
func (c *Chip) advanceEnvelope(op *operator) float64 {
	switch op.envStage {
	case 0: // attack
		d := c.rateSamples(op.attack)
		if math.IsInf(d, 1) {
			op.envLevel = 1
			op.envStage = 1
			break
		}
		op.envLevel += 1.0 / d
		if op.envLevel >= 1.0 {
			op.envLevel = 1.0
			op.envStage = 1
		}
	case 1: // decay
		sustainLevel := float64(op.sustain) / 15.0
		d := c.rateSamples(op.decay)
		if math.IsInf(d, 1) {
			op.envStage = 2
			break
		}
		op.envLevel -= (1.0 - sustainLevel) / d
		if op.envLevel <= sustainLevel {
			op.envLevel = sustainLevel
			op.envStage = 2
		}
	case 2: // sustain
		op.envLevel = float64(op.sustain) / 15.0
	case 3: // release
		d := c.rateSamples(op.release)
		if math.IsInf(d, 1) {
			op.envLevel = 0
			op.envStage = 4
			break
		}
		op.envLevel -= op.envLevel / d
		if op.envLevel <= 0.0005 {
			op.envLevel = 0
			op.envStage = 4
		}
	case 4: // idle
		op.envLevel = 0
	}
	return op.envLevel
}

// waveOf evaluates op's waveform at its current phase (0..1).
func waveOf(op *operator, phase float64) float64 {
	x := phase - math.Floor(phase)
	s := math.Sin(2 * math.Pi * x)
	switch op.waveform {
	case 1: // half sine (rectified)
		if s < 0 {
			return 0
		}
		return s
	case 2: // abs sine
		return math.Abs(s)
	case 3: // quarter sine, mirrored
		if math.Mod(x, 0.5) >= 0.25 {
			return 0
		}
		return math.Abs(s)
	default: // 0: full sine; others folded back to sine
		return s
	}
}

// Render fills buf with mono samples in -1..1, mixing all 9 voices. This is
// the only entry point called from oto's playback goroutine.
func (c *Chip) Render(buf []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range buf {
		var mix float64
		for ch := 0; ch < channels; ch++ {
			mix += c.renderVoiceSample(&c.voices[ch])
		}
		mix /= math.Sqrt(channels)
		if mix > 0.95 {
			mix = 0.95 + 0.05*math.Tanh((mix-0.95)*10)
		} else if mix < -0.95 {
			mix = -0.95 + 0.05*math.Tanh((mix+0.95)*10)
		}
		buf[i] = mix
	}
}

func (c *Chip) renderVoiceSample(v *voice) float64 {
	if v.mod.envStage == 4 && v.car.envStage == 4 && !v.keyOn {
		return 0
	}
	freq := v.freqHz()
	if freq <= 0 {
		return 0
	}
	modEnv := c.advanceEnvelope(&v.mod)
	carEnv := c.advanceEnvelope(&v.car)

	modInc := freq / c.sampleRate
	v.mod.phase += modInc
	modOut := waveOf(&v.mod, v.mod.phase) * v.mod.gain * modEnv

	carInc := freq / c.sampleRate
	if v.algo == 0 {
		// Serial FM: modulator output phase-modulates the carrier.
		fbIndex := float64(v.feedback) / 2.0
		v.car.phase += carInc
		sample := waveOf(&v.car, v.car.phase+modOut*fbIndex) * v.car.gain * carEnv
		return sample
	}
	// Additive: both operators sound independently and sum.
	v.car.phase += carInc
	carOut := waveOf(&v.car, v.car.phase) * v.car.gain * carEnv
	return (modOut + carOut) / 2.0
}
