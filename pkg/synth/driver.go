package synth

// RegisterWriter is the sink a SynthDriver writes suppressed register bytes
// through — the "shadow decides, sink executes" split the pack's register
// chip engines use (sid_engine.go's HandleWrite -> applyFrequencies/
// applyWaveforms; registers.go's typed RegisterMap). cmd/tracker wires this
// to synth/fm.Chip; tests wire it to a recording fake.
type RegisterWriter interface {
	WriteRegister(reg, data byte)
}

// fnumTable is the 12-entry f-num lookup calibrated for octave 4 at the
// native OPL2 3.58MHz clock, lifted from the original firmware's opl.c.
var fnumTable = [12]uint16{345, 365, 387, 410, 435, 460, 488, 517, 547, 580, 615, 651}

// modOffset and carOffset map a 0..8 channel index to its modulator/carrier
// operator-slot register offset, per opl.c's mod_offsets/car_offsets.
var modOffset = [Channels]uint8{0x00, 0x01, 0x02, 0x08, 0x09, 0x0A, 0x10, 0x11, 0x12}
var carOffset = [Channels]uint8{0x03, 0x04, 0x05, 0x0B, 0x0C, 0x0D, 0x13, 0x14, 0x15}

// Channels is the fixed voice count a driver addresses.
const Channels = 9

// Register bases, per §6's reserved-register table.
const (
	regAVE       = 0x20 // AVE (vibrato/tremolo/sustain/KSR/multiple)
	regLevel     = 0x40 // KSL / output level
	regAtDec     = 0x60 // attack/decay
	regSusRel    = 0x80 // sustain/release
	regFnumLo    = 0xA0 // f-num low byte
	regKeyOnHi   = 0xB0 // key-on / block / f-num high
	regFeedback  = 0xC0 // feedback/connection (algorithm)
	regWave      = 0xE0 // waveform select
	regWaveEnOff = 0x01 // waveform-select enable
	regRhythm    = 0xBD // rhythm/melodic mode
)

// SynthDriver is the Synth Driver (C1). It exclusively owns a 256-byte
// register shadow and suppresses any write that would not change the
// hardware value — required to keep the per-tick workload inside one vsync.
type SynthDriver struct {
	shadow [256]byte
	sink   RegisterWriter

	shadowB0   [Channels]uint8 // last B-register value (minus key-on) per channel
	shadowKslC [Channels]uint8 // carrier KSL bits, preserved across SetVolume
}

// NewSynthDriver creates a driver writing through sink.
func NewSynthDriver(sink RegisterWriter) *SynthDriver {
	d := &SynthDriver{sink: sink}
	d.Init()
	return d
}

// writeReg compares against the shadow and only forwards to the sink on an
// actual change — the shadow-suppression contract required by §4.1.
func (d *SynthDriver) writeReg(reg, data byte) {
	if d.shadow[reg] == data {
		return
	}
	d.shadow[reg] = data
	if d.sink != nil {
		d.sink.WriteRegister(reg, data)
	}
}

// clampNote clamps a MIDI-style note into 12..127 per §4.1.
func clampNote(midi uint8) uint8 {
	if midi < 12 {
		return 12
	}
	if midi > 127 {
		return 127
	}
	return midi
}

// midiToBlockFnum splits a clamped MIDI note into (block, f_num) per
// opl.c's midi_to_opl_freq: block = (N-12)/12 clamped to <=7, idx = (N-12)%12.
func midiToBlockFnum(midi uint8) (block uint8, fnum uint16) {
	midi = clampNote(midi)
	rel := int(midi) - 12
	block = uint8(rel / 12)
	if block > 7 {
		block = 7
	}
	idx := rel % 12
	return block, fnumTable[idx]
}

// writeFreq writes the A/B register pair for ch with the given block/f_num
// and key-on bit, updating shadowB0 to the block/f-num-high portion only.
func (d *SynthDriver) writeFreq(ch int, block uint8, fnum uint16, keyOn bool) {
	lo := byte(fnum & 0xFF)
	hi := byte((block << 2) | byte((fnum>>8)&0x03))
	if keyOn {
		hi |= 0x20
	}
	d.writeReg(regFnumLo+byte(ch), lo)
	d.writeReg(regKeyOnHi+byte(ch), hi)
	d.shadowB0[ch] = hi & 0x1F
}

// NoteOn strikes midi on channel ch: computes the frequency, writes the
// f-num pair with key-on set.
func (d *SynthDriver) NoteOn(ch int, midi uint8) {
	if ch < 0 || ch >= Channels {
		return
	}
	block, fnum := midiToBlockFnum(midi)
	d.writeFreq(ch, block, fnum, true)
}

// NoteOnDetuned strikes midi on channel ch but nudges the f-num toward the
// next semitone by detune/16ths, for the Fine Pitch effect (cmd 9). detune
// is in 1/16-semitone units, signed.
func (d *SynthDriver) NoteOnDetuned(ch int, midi uint8, detuneSixteenths int8) {
	if ch < 0 || ch >= Channels {
		return
	}
	block, fnum := midiToBlockFnum(midi)
	if detuneSixteenths != 0 {
		fnum = detunedFnum(clampNote(midi), block, fnum, detuneSixteenths)
	}
	d.writeFreq(ch, block, fnum, true)
}

// detunedFnum interpolates toward the neighboring semitone's f_num by a
// fraction of detuneSixteenths/16, staying within the current block.
func detunedFnum(midi, block uint8, fnum uint16, detuneSixteenths int8) uint16 {
	rel := int(midi) - 12
	idx := rel % 12
	var neighborIdx int
	if detuneSixteenths >= 0 {
		neighborIdx = idx + 1
	} else {
		neighborIdx = idx - 1
	}
	if neighborIdx < 0 || neighborIdx > 11 {
		return fnum
	}
	neighbor := int(fnumTable[neighborIdx])
	delta := neighbor - int(fnum)
	frac := int(detuneSixteenths)
	if frac < 0 {
		frac = -frac
	}
	offset := delta * frac / 16
	result := int(fnum) + offset
	if result < 0 {
		result = 0
	}
	if result > 0x3FF {
		result = 0x3FF
	}
	return uint16(result)
}

// NoteOff clears the key-on bit on ch while preserving block/f-num-high.
func (d *SynthDriver) NoteOff(ch int) {
	if ch < 0 || ch >= Channels {
		return
	}
	d.writeReg(regKeyOnHi+byte(ch), d.shadowB0[ch]&0x1F)
}

// SetPitch changes ch's frequency without re-triggering the envelope: the
// key-on bit is forced to stay set (the voice is assumed already sounding).
func (d *SynthDriver) SetPitch(ch int, midi uint8) {
	if ch < 0 || ch >= Channels {
		return
	}
	block, fnum := midiToBlockFnum(midi)
	d.writeFreq(ch, block, fnum, true)
}

// SetVolume maps v (0..127, velocity-style) to carrier attenuation
// 63 - (v>>1) and writes it into the carrier's level register, preserving
// that channel's KSL bits.
func (d *SynthDriver) SetVolume(ch int, v uint8) {
	if ch < 0 || ch >= Channels {
		return
	}
	vol := uint8(63 - (v >> 1))
	reg := regLevel + carOffset[ch]
	data := (d.shadowKslC[ch] & 0xC0) | (vol & 0x3F)
	d.writeReg(reg, data)
}

// SetPatch loads patch's modulator and carrier slot records plus the
// feedback/algorithm nibble onto channel ch.
func (d *SynthDriver) SetPatch(ch int, patch Patch) {
	if ch < 0 || ch >= Channels {
		return
	}
	mo, co := modOffset[ch], carOffset[ch]

	d.writeReg(regAVE+mo, patch.ModAVE)
	d.writeReg(regAVE+co, patch.CarAVE)

	d.writeReg(regLevel+mo, patch.ModKSL)
	d.shadowKslC[ch] = patch.CarKSL & 0xC0
	d.writeReg(regLevel+co, patch.CarKSL)

	d.writeReg(regAtDec+mo, patch.ModAtDec)
	d.writeReg(regAtDec+co, patch.CarAtDec)

	d.writeReg(regSusRel+mo, patch.ModSusRel)
	d.writeReg(regSusRel+co, patch.CarSusRel)

	d.writeReg(regWave+mo, patch.ModWave)
	d.writeReg(regWave+co, patch.CarWave)

	d.writeReg(regFeedback+byte(ch), patch.Feedback)
}

// SilenceAll writes zero to every channel's B-register: key-off without
// disturbing any other register (used by transport stop).
func (d *SynthDriver) SilenceAll() {
	for ch := 0; ch < Channels; ch++ {
		d.writeReg(regKeyOnHi+byte(ch), 0x00)
		d.shadowB0[ch] = 0
	}
}

// Panic is the user-safety operation: silences all 9 voices by writing zero
// to each $B0+ch. Idempotent, always safe to invoke.
func (d *SynthDriver) Panic() {
	d.SilenceAll()
}

// Init resets the shadow to the dirty sentinel (forcing the next writes
// through regardless of their value), clears the addressable register
// range, and re-establishes the two registers the original firmware always
// sets at boot: waveform-select enable and melodic (non-rhythm) mode.
func (d *SynthDriver) Init() {
	for i := range d.shadow {
		d.shadow[i] = 0xFF
	}
	d.shadowB0 = [Channels]uint8{}
	d.shadowKslC = [Channels]uint8{}

	d.SilenceAll()
	for reg := 0x01; reg <= 0xF5; reg++ {
		d.writeReg(byte(reg), 0x00)
	}
	d.writeReg(regWaveEnOff, 0x20)
	d.writeReg(regRhythm, 0x00)
}
