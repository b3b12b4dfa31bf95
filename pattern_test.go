package aidj_test

import (
	"testing"

	aidj "github.com/Blackmvmba88/ai-dj"
)

func TestToggleStep(t *testing.T) {
	p := aidj.NewPattern()
	p.ToggleStep(0, 3)
	if !p.Step(0, 3) {
		t.Fatalf("expected step to be active after toggle")
	}
	p.SetVelocity(0, 3, 0.5)
	p.ToggleStep(0, 3)
	if p.Step(0, 3) {
		t.Fatalf("expected step to be inactive after second toggle")
	}
	p.ToggleStep(0, 3)
	if got := p.Velocity(0, 3); got != aidj.DefaultVelocity {
		t.Errorf("expected velocity to reset to %v on reactivation, got %v", aidj.DefaultVelocity, got)
	}
}

func TestToggleStepPageCycle(t *testing.T) {
	p := aidj.NewPattern()
	p.UsePages = true
	for page := 1; page <= aidj.NumPages; page++ {
		p.ToggleStep(0, 0)
		if !p.Step(0, 0) || p.Page(0, 0) != page {
			t.Fatalf("after %d toggles expected active page %d, got active=%v page=%d",
				page, page, p.Step(0, 0), p.Page(0, 0))
		}
	}
	p.ToggleStep(0, 0)
	if p.Step(0, 0) || p.Page(0, 0) != 0 {
		t.Fatalf("expected cell to leave the cycle inactive and unassigned, got active=%v page=%d",
			p.Step(0, 0), p.Page(0, 0))
	}
}

func TestToggleStepJoinsCycleAtA(t *testing.T) {
	p := aidj.NewPattern()
	p.ToggleStep(0, 5) // activated while paging is off, page stays 0
	p.UsePages = true
	p.ToggleStep(0, 5)
	if !p.Step(0, 5) || p.Page(0, 5) != 1 {
		t.Fatalf("expected page-0 cell to join the cycle at page 1, got active=%v page=%d",
			p.Step(0, 5), p.Page(0, 5))
	}
}

func TestTriggersOn(t *testing.T) {
	p := aidj.NewPattern()
	p.UsePages = true
	p.ToggleStep(0, 0) // page 1
	p.ToggleStep(0, 1)
	p.ToggleStep(0, 1) // page 2
	p.Steps[0][2] = true // active, page 0
	for pass := 0; pass < 2*aidj.NumPages; pass++ {
		if got := p.TriggersOn(0, 0, pass); got != (pass%aidj.NumPages == 0) {
			t.Errorf("page 1 cell on pass %d: TriggersOn = %v", pass, got)
		}
		if got := p.TriggersOn(0, 1, pass); got != (pass%aidj.NumPages == 1) {
			t.Errorf("page 2 cell on pass %d: TriggersOn = %v", pass, got)
		}
		if !p.TriggersOn(0, 2, pass) {
			t.Errorf("page 0 cell should trigger on every pass, failed on %d", pass)
		}
	}
	if p.TriggersOn(0, 3, 0) {
		t.Errorf("inactive cell should never trigger")
	}
}

func TestSetNumMeasuresClearsDropped(t *testing.T) {
	p := aidj.NewPattern()
	p.SetNumMeasures(3)
	p.ToggleStep(2, 7)
	p.SetVelocity(2, 7, 0.3)
	p.SetNumMeasures(1)
	if p.NumMeasures != 1 {
		t.Fatalf("NumMeasures = %d, expected 1", p.NumMeasures)
	}
	p.SetNumMeasures(3)
	if p.Step(2, 7) {
		t.Errorf("expected dropped measure to come back empty")
	}
	if got := p.Velocity(2, 7); got != aidj.DefaultVelocity {
		t.Errorf("expected dropped measure velocity to reset, got %v", got)
	}
}

func TestSetNumMeasuresClamps(t *testing.T) {
	p := aidj.NewPattern()
	p.SetNumMeasures(0)
	if p.NumMeasures != 1 {
		t.Errorf("NumMeasures = %d, expected clamp to 1", p.NumMeasures)
	}
	p.SetNumMeasures(99)
	if p.NumMeasures != aidj.MaxMeasures {
		t.Errorf("NumMeasures = %d, expected clamp to %d", p.NumMeasures, aidj.MaxMeasures)
	}
}

func TestOutOfRangeAccessesAreInert(t *testing.T) {
	p := aidj.NewPattern()
	p.ToggleStep(-1, 0)
	p.ToggleStep(0, aidj.MaxStepsPerMeasure)
	p.SetVelocity(aidj.MaxMeasures, 0, 0.1)
	if p.Step(-1, 0) || p.Step(0, aidj.MaxStepsPerMeasure) {
		t.Errorf("out-of-range cells should read as inactive")
	}
	if got := p.Velocity(99, 99); got != aidj.DefaultVelocity {
		t.Errorf("out-of-range velocity = %v, expected %v", got, aidj.DefaultVelocity)
	}
}

func TestSetVelocityClamps(t *testing.T) {
	p := aidj.NewPattern()
	p.SetVelocity(0, 0, 1.5)
	if got := p.Velocity(0, 0); got != 1 {
		t.Errorf("velocity = %v, expected clamp to 1", got)
	}
	p.SetVelocity(0, 0, -0.5)
	if got := p.Velocity(0, 0); got != 0 {
		t.Errorf("velocity = %v, expected clamp to 0", got)
	}
}
