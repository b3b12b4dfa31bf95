package aidj_test

import (
	"testing"

	aidj "github.com/Blackmvmba88/ai-dj"
)

func TestTimeSignatureSteps(t *testing.T) {
	tests := []struct {
		num, den int
		steps    int
	}{
		{2, 4, 8},
		{3, 4, 12},
		{4, 4, 16},
		{5, 4, 20},
		{6, 4, 24},
		{7, 4, 28},
		{2, 2, 16},
		{3, 2, 24},
		{4, 2, 32},
		{2, 8, 4},
		{5, 8, 10},
		{6, 8, 12},
		{7, 8, 14},
		{9, 8, 36},
		{4, 16, 16}, // unrecognized denominator falls back to 4 steps per beat
	}
	for _, test := range tests {
		sig := aidj.TimeSignature{Numerator: test.num, Denominator: test.den}
		if got := sig.Steps(); got != test.steps {
			t.Errorf("%d/%d: Steps() = %d, expected %d", test.num, test.den, got, test.steps)
		}
	}
}

func TestGridStepsCapped(t *testing.T) {
	sig := aidj.TimeSignature{Numerator: 9, Denominator: 8}
	if sig.Steps() <= aidj.MaxStepsPerMeasure {
		t.Fatalf("expected 9/8 to derive more steps than the grid holds")
	}
	if got := sig.GridSteps(); got != aidj.MaxStepsPerMeasure {
		t.Errorf("GridSteps() = %d, expected %d", got, aidj.MaxStepsPerMeasure)
	}
	sig = aidj.TimeSignature{Numerator: 3, Denominator: 4}
	if got := sig.GridSteps(); got != 12 {
		t.Errorf("GridSteps() = %d, expected 12", got)
	}
}

func TestAccents(t *testing.T) {
	tests := []struct {
		name   string
		sig    aidj.TimeSignature
		step   int
		accent aidj.StepAccent
	}{
		{"4/4 downbeat", aidj.TimeSignature{Numerator: 4, Denominator: 4}, 0, aidj.AccentStrong},
		{"4/4 beat", aidj.TimeSignature{Numerator: 4, Denominator: 4}, 4, aidj.AccentStrong},
		{"4/4 half-beat", aidj.TimeSignature{Numerator: 4, Denominator: 4}, 2, aidj.AccentBeat},
		{"4/4 offbeat", aidj.TimeSignature{Numerator: 4, Denominator: 4}, 3, aidj.AccentNone},
		{"3/4 beat", aidj.TimeSignature{Numerator: 3, Denominator: 4}, 8, aidj.AccentStrong},
		{"6/8 downbeat", aidj.TimeSignature{Numerator: 6, Denominator: 8}, 0, aidj.AccentStrong},
		{"6/8 dotted-quarter", aidj.TimeSignature{Numerator: 6, Denominator: 8}, 6, aidj.AccentStrong},
		{"6/8 quarter", aidj.TimeSignature{Numerator: 6, Denominator: 8}, 3, aidj.AccentBeat},
		{"6/8 sixteenth", aidj.TimeSignature{Numerator: 6, Denominator: 8}, 2, aidj.AccentNone},
	}
	for _, test := range tests {
		if got := test.sig.Accent(test.step); got != test.accent {
			t.Errorf("%s: Accent(%d) = %v, expected %v", test.name, test.step, got, test.accent)
		}
	}
}
