package synth

// DefaultBank is a small built-in PatchBank offering a handful of generic FM
// timbres (an electric-piano-ish patch, a bass, a lead, a pad, a percussive
// hit) so cmd/tracker
// has something to play without needing a bundled patch file. Real patch
// banks are a file-format concern the spec calls out as external, per
// original_source/src/instruments.h's gm_bank; this is a stand-in, not a
// reimplementation of it.
type DefaultBank struct {
	patches []Patch
}

// NewDefaultBank builds the built-in bank.
func NewDefaultBank() *DefaultBank {
	return &DefaultBank{
		patches: []Patch{
			{ // 0: electric piano - fast attack, moderate decay, soft release
				ModAVE: 0x01, ModKSL: 0x00, ModAtDec: 0xF2, ModSusRel: 0x54, ModWave: 0,
				CarAVE: 0x00, CarKSL: 0x00, CarAtDec: 0xF3, CarSusRel: 0x65, CarWave: 0,
				Feedback: 0x04,
			},
			{ // 1: bass - punchy attack, short sustain
				ModAVE: 0x21, ModKSL: 0x00, ModAtDec: 0xF1, ModSusRel: 0xF3, ModWave: 0,
				CarAVE: 0x01, CarKSL: 0x00, CarAtDec: 0xF2, CarSusRel: 0x94, CarWave: 0,
				Feedback: 0x06,
			},
			{ // 2: lead - bright, sustained, square-ish carrier
				ModAVE: 0x31, ModKSL: 0x01, ModAtDec: 0xF3, ModSusRel: 0x76, ModWave: 1,
				CarAVE: 0x00, CarKSL: 0x00, CarAtDec: 0xF4, CarSusRel: 0x78, CarWave: 2,
				Feedback: 0x02,
			},
			{ // 3: pad - slow attack, long release
				ModAVE: 0x61, ModKSL: 0x00, ModAtDec: 0x52, ModSusRel: 0x47, ModWave: 3,
				CarAVE: 0x00, CarKSL: 0x00, CarAtDec: 0x53, CarSusRel: 0x38, CarWave: 3,
				Feedback: 0x01,
			},
			{ // 4: kick-like percussive hit - very fast attack and decay
				ModAVE: 0x01, ModKSL: 0x00, ModAtDec: 0xFF, ModSusRel: 0xF8, ModWave: 0,
				CarAVE: 0x00, CarKSL: 0x00, CarAtDec: 0xFF, CarSusRel: 0xF6, CarWave: 0,
				Feedback: 0x07,
			},
		},
	}
}

// GetPatch implements PatchBank. Indices beyond the built-in set wrap
// modulo the bank size rather than panicking.
func (b *DefaultBank) GetPatch(index uint8) Patch {
	return b.patches[int(index)%len(b.patches)]
}
