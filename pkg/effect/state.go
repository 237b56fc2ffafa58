package effect

import "github.com/rptracker/opl9trk/pkg/tracker"

// PitchKind identifies which effect currently owns a voice's pitch register.
// At most one of {Arp, Porta, Vibrato, Generator} may be active at a time
// (§3's ownership invariant).
type PitchKind int

const (
	PitchNone PitchKind = iota
	PitchArp
	PitchPorta
	PitchVibrato
	PitchGenerator
)

// CarrierKind identifies which effect currently owns a voice's carrier
// level register. At most one of {VolSlide, Tremolo} may be active.
type CarrierKind int

const (
	CarrierNone CarrierKind = iota
	CarrierVolSlide
	CarrierTremolo
)

// ArpState is the Arpeggio effect's per-voice runtime state.
type ArpState struct {
	Active        bool
	Style         uint8
	Depth         uint8
	TargetTicks   int
	TickCounter   int
	StepIndex     int
	BaseNote      uint8
	BaseInst      uint8
	BaseVol       uint8
}

// PortaState is the Portamento effect's per-voice runtime state. Mode is
// cmd 2's S nibble: 0 glides up to note 127, 1 down to note 0, 2 up by T
// semitones, 3 down by T semitones.
type PortaState struct {
	Active      bool
	Mode        uint8
	Speed       uint8
	CurrentNote int // in 16ths of a semitone; each step moves one semitone (16)
	TargetNote  int
	Inst        uint8
	Vol         uint8
}

// VolSlideState is the Volume Slide effect's per-voice runtime state. Accum
// is an 8.8 fixed-point accumulator per §9's design note.
type VolSlideState struct {
	Active bool
	SpeedFP int // 8.8 fixed point, signed
	Accum   int // 8.8 fixed point
}

// VibratoState is the Vibrato effect's per-voice runtime state.
type VibratoState struct {
	Active      bool
	Rate        uint8
	Depth       uint8
	Waveform    uint8
	TickCounter int
	Phase       int
	BaseNote    uint8
	BaseInst    uint8
	BaseVol     uint8
}

// NoteCutState is the Note Cut effect's per-voice runtime state.
type NoteCutState struct {
	Active      bool
	CutTick     int
	TickCounter int
}

// NoteDelayState is the Note Delay/Echo effect's per-voice runtime state.
type NoteDelayState struct {
	Active      bool
	DelayTicks  int
	TickCounter int
	Note        uint8
	Inst        uint8
	Vol         uint8
}

// RetriggerState is the Retrigger effect's per-voice runtime state.
type RetriggerState struct {
	Active      bool
	Speed       uint8
	TickCounter int
	Note        uint8
	Inst        uint8
	Vol         uint8
}

// TremoloState is the Tremolo effect's per-voice runtime state.
type TremoloState struct {
	Active      bool
	Rate        uint8
	Depth       uint8
	Waveform    uint8
	TickCounter int
	BaseVol     uint8
}

// FinePitchState is the Fine Pitch effect's per-voice runtime state: a
// static sub-semitone detune, applied when the effect is parsed and to each
// row note struck while it stays active (the per-tick processor does nothing
// with it).
type FinePitchState struct {
	Active bool
	Detune int8 // signed 16ths of a semitone
	Note   uint8
}

// GeneratorState is the scale-stepping Generator effect's per-voice runtime
// state.
type GeneratorState struct {
	Active      bool
	Scale       uint8
	Range       uint8
	TargetTicks int
	TickCounter int
	StepIndex   int
	BaseNote    uint8
	BaseInst    uint8
	BaseVol     uint8
	Rng         uint32 // xorshift seed, for random-walk variants
}

// VoiceState is the Effect State (C3): one per channel, holding the last
// decoded cell context plus every per-effect state machine. Only one
// pitch-owning and one carrier-owning effect may be Active at a time; the
// Deactivate* helpers enforce that when a new effect takes ownership.
type VoiceState struct {
	LastNote   uint8
	LastInst   uint8
	LastVol    uint8
	LastEffect uint16

	Peak           uint8
	ActiveMidiNote uint8

	PitchOwner   PitchKind
	CarrierOwner CarrierKind

	Arp       ArpState
	Porta     PortaState
	VolSlide  VolSlideState
	Vibrato   VibratoState
	NoteCut   NoteCutState
	NoteDelay NoteDelayState
	Retrigger RetriggerState
	Tremolo   TremoloState
	FinePitch FinePitchState
	Generator GeneratorState
}

// NewVoiceState returns a freshly-reset voice state with LastVol at max.
func NewVoiceState() *VoiceState {
	return &VoiceState{LastVol: tracker.VolumeMax}
}

// DeactivatePitch turns off whichever pitch effect currently owns the
// voice, without touching the synth register (the caller decides whether a
// register write follows). Used when a new pitch effect takes ownership, or
// by the F000 kill command which silences ornamentation but leaves pitch
// where it stood (per the original firmware's documented kill behavior).
func (v *VoiceState) DeactivatePitch() {
	v.Arp.Active = false
	v.Porta.Active = false
	v.Vibrato.Active = false
	v.Generator.Active = false
	v.PitchOwner = PitchNone
}

// DeactivateCarrier turns off whichever carrier effect currently owns the
// voice.
func (v *VoiceState) DeactivateCarrier() {
	v.VolSlide.Active = false
	v.Tremolo.Active = false
	v.CarrierOwner = CarrierNone
}

// TakePitch deactivates any other pitch owner and installs kind as the new
// owner.
func (v *VoiceState) TakePitch(kind PitchKind) {
	if v.PitchOwner != kind {
		v.DeactivatePitch()
	}
	v.PitchOwner = kind
}

// TakeCarrier deactivates any other carrier owner and installs kind as the
// new owner.
func (v *VoiceState) TakeCarrier(kind CarrierKind) {
	if v.CarrierOwner != kind {
		v.DeactivateCarrier()
	}
	v.CarrierOwner = kind
}
