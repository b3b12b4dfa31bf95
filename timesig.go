package aidj

type (
	// TimeSignature is the host transport time signature. The sequencer grid
	// derives its number of cells per measure from it; see Steps. Denominator
	// is the note value of one beat (4 = quarter note, 8 = eighth note).
	TimeSignature struct {
		Numerator   int
		Denominator int
	}

	// StepAccent classifies a grid cell for display purposes: the start of a
	// beat group, a secondary subdivision, or neither.
	StepAccent int
)

const (
	AccentNone StepAccent = iota
	AccentBeat
	AccentStrong
)

// accentStepsPerBeat is the subdivision used for accent classification. It is
// deliberately fixed to 4 even for signatures whose display grid uses a
// coarser subdivision, so an eighth-note denominator draws fewer cells than
// it classifies.
const accentStepsPerBeat = 4

// StepsPerBeat returns how many grid cells one beat spans. Compound 9/8 is
// the one signature that sequences on the accent subdivision instead of the
// display one. Unrecognized denominators fall back to 4 rather than failing.
func (t TimeSignature) StepsPerBeat() int {
	switch t.Denominator {
	case 2:
		return 8
	case 8:
		if t.Numerator == 9 {
			return accentStepsPerBeat
		}
		return 2
	default:
		return 4
	}
}

// Steps returns the step count of one measure, Numerator * StepsPerBeat.
// The result is a pure derivation and may exceed MaxStepsPerMeasure; grid
// addressing clamps separately (see GridSteps).
func (t TimeSignature) Steps() int {
	return t.Numerator * t.StepsPerBeat()
}

// GridSteps returns the number of addressable cells in one measure, Steps
// clamped to the fixed pattern capacity.
func (t TimeSignature) GridSteps() int {
	n := t.Steps()
	if n < 1 {
		return accentStepsPerBeat * 4
	}
	if n > MaxStepsPerMeasure {
		return MaxStepsPerMeasure
	}
	return n
}

// Accent classifies the grid cell at index step. Compound signatures 6/8 and
// 9/8 group their accents by dotted beats: a strong accent every 12
// accent-subdivision steps, with secondary accents every 6 (6/8) or every 4
// (9/8) steps. All other signatures accent the start of each beat and its
// half-beat.
func (t TimeSignature) Accent(step int) StepAccent {
	if step < 0 {
		return AccentNone
	}
	// scale the display-grid index to the accent subdivision
	a := step * accentStepsPerBeat / t.StepsPerBeat()
	if t.Denominator == 8 {
		switch t.Numerator {
		case 6:
			return accentEvery(a, 12, 6)
		case 9:
			return accentEvery(a, 12, 4)
		}
	}
	return accentEvery(a, accentStepsPerBeat, accentStepsPerBeat/2)
}

func accentEvery(step, strong, beat int) StepAccent {
	if step%strong == 0 {
		return AccentStrong
	}
	if step%beat == 0 {
		return AccentBeat
	}
	return AccentNone
}
