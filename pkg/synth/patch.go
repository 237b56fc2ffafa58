// Package synth implements the Synth Driver (C1): it translates
// note/volume/patch/pitch operations into OPL2-class register writes with
// shadow suppression of redundant writes. The driver never synthesizes
// audio itself — per spec, the synthesizer is external; synth/fm supplies a
// concrete software stand-in for it.
package synth

// Patch holds one FM instrument's operator parameters: modulator slot,
// carrier slot, and the feedback/algorithm nibble. Mirrors the original
// firmware's OPL_Patch (instruments.h) field-for-field.
type Patch struct {
	ModAVE, ModKSL, ModAtDec, ModSusRel, ModWave uint8
	CarAVE, CarKSL, CarAtDec, CarSusRel, CarWave uint8
	Feedback                                     uint8
}

// PatchBank is the opaque "patch index -> patch record" collaborator the
// spec's Non-goals call out as external: the core depends only on this
// interface, never on any concrete bank's contents.
type PatchBank interface {
	GetPatch(index uint8) Patch
}
