// Package effect implements the Effect State (C3), Effect Parser (C4), and
// Per-Tick Processor (C5): the per-voice effect state machines that sit
// between the Sequencer's row clock and the Synth Driver's register writes.
package effect

// ArpTickLUT maps the effect word's T nibble to ticks-per-arpeggio-step.
var ArpTickLUT = [16]int{1, 2, 3, 6, 9, 12, 18, 24, 30, 36, 42, 48, 60, 72, 84, 96}

// ArpOffset is the pure function §4.3 requires: a table lookup over
// style x (step_index mod cycle_len[style]) producing an integer semitone
// offset. depth parameterizes the styles that are depth-driven rather than
// fixed-interval (Up/Down/UpDown/Double); step 0 always yields 0 except for
// Down, whose cycle intentionally starts high (see design note on style 1).
func ArpOffset(style, depth uint8, stepIndex int) int {
	d := int(depth)
	switch style & 0xF {
	case 0: // Up: alternates root/depth
		cycle := [...]int{0, d}
		return cycle[stepIndex%len(cycle)]
	case 1: // Down: alternates depth/root (starts high, by design)
		cycle := [...]int{d, 0}
		return cycle[stepIndex%len(cycle)]
	case 2: // Major triad + octave
		cycle := [...]int{0, 4, 7, 12}
		return cycle[stepIndex%len(cycle)]
	case 3: // Minor triad + octave
		cycle := [...]int{0, 3, 7, 12}
		return cycle[stepIndex%len(cycle)]
	case 4: // Major 7th
		cycle := [...]int{0, 4, 7, 11}
		return cycle[stepIndex%len(cycle)]
	case 5: // Minor 7th
		cycle := [...]int{0, 3, 7, 10}
		return cycle[stepIndex%len(cycle)]
	case 6: // Sus4
		cycle := [...]int{0, 5, 7, 12}
		return cycle[stepIndex%len(cycle)]
	case 7: // Sus2
		cycle := [...]int{0, 2, 7, 12}
		return cycle[stepIndex%len(cycle)]
	case 8: // Diminished triad
		cycle := [...]int{0, 3, 6, 12}
		return cycle[stepIndex%len(cycle)]
	case 9: // Augmented triad
		cycle := [...]int{0, 4, 8, 12}
		return cycle[stepIndex%len(cycle)]
	case 10: // Power chord (root-fifth-octave)
		cycle := [...]int{0, 7, 12}
		return cycle[stepIndex%len(cycle)]
	case 11: // UpDown: rises to depth then falls below root
		cycle := [...]int{0, d, 0, -d}
		return cycle[stepIndex%len(cycle)]
	case 12: // Guitar-strum cycle, major flavor
		cycle := [...]int{0, 4, 7, 12, 7, 4}
		return cycle[stepIndex%len(cycle)]
	case 13: // Guitar-strum cycle, minor flavor
		cycle := [...]int{0, 3, 7, 12, 7, 3}
		return cycle[stepIndex%len(cycle)]
	case 14: // Double: hits root twice then depth twice
		cycle := [...]int{0, 0, d, d}
		return cycle[stepIndex%len(cycle)]
	default: // 15: Octave alternation
		cycle := [...]int{0, 12}
		return cycle[stepIndex%len(cycle)]
	}
}

// ScaleTable is the 8x16 generator scale-degree table: chromatic, major,
// natural minor, major pentatonic, minor pentatonic, whole-tone,
// diminished (octatonic), and fifths+octaves.
var ScaleTable = [8][16]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},         // chromatic
	{0, 2, 4, 5, 7, 9, 11, 12, 14, 16, 17, 19, 21, 23, 24, 26},     // major
	{0, 2, 3, 5, 7, 8, 10, 12, 14, 15, 17, 19, 20, 22, 24, 26},     // natural minor
	{0, 2, 4, 7, 9, 12, 14, 16, 19, 21, 24, 26, 28, 31, 33, 36},    // major pentatonic
	{0, 3, 5, 7, 10, 12, 15, 17, 19, 22, 24, 27, 29, 31, 34, 36},   // minor pentatonic
	{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30},    // whole-tone
	{0, 2, 3, 5, 6, 8, 9, 11, 12, 14, 15, 17, 18, 20, 21, 23},      // diminished
	{0, 7, 12, 19, 24, 31, 36, 43, 48, 55, 60, 67, 72, 79, 84, 91}, // fifths + octaves
}

// ScaleDegree looks up scale s's offset at range-limited step.
func ScaleDegree(scale uint8, step int) int {
	s := int(scale) % len(ScaleTable)
	row := ScaleTable[s]
	return row[step%len(row)]
}
