package aidj

const (
	MaxMeasures        = 4
	MaxStepsPerMeasure = 16

	// NumPages is the number of alternate trigger groups (pages A-D) a step
	// can cycle through when paging is enabled.
	NumPages = 4

	DefaultVelocity float32 = 0.8
)

// Pattern is the step grid of one track: a fixed matrix of on/off steps with
// parallel per-step velocities and page assignments, all addressed by the
// same (measure, step) coordinate. Only the first NumMeasures rows and the
// first TimeSignature.GridSteps() columns are meaningful; cells beyond that
// are retained but inert, so data reappears if the signature or measure
// count later grows back.
//
// A page assignment of 0 means unassigned; 1-4 are pages A-D. All mutations
// happen on the UI goroutine; the render path only reads (see deck.Track).
type Pattern struct {
	Steps       [MaxMeasures][MaxStepsPerMeasure]bool    `yaml:",flow"`
	Velocities  [MaxMeasures][MaxStepsPerMeasure]float32 `yaml:",flow"`
	Pages       [MaxMeasures][MaxStepsPerMeasure]int     `yaml:",flow"`
	NumMeasures int
	UsePages    bool `yaml:",omitempty"`
}

// NewPattern returns an empty one-measure pattern with all velocities at
// DefaultVelocity.
func NewPattern() Pattern {
	var p Pattern
	p.NumMeasures = 1
	for m := 0; m < MaxMeasures; m++ {
		for s := 0; s < MaxStepsPerMeasure; s++ {
			p.Velocities[m][s] = DefaultVelocity
		}
	}
	return p
}

func (p *Pattern) valid(measure, step int) bool {
	return measure >= 0 && measure < MaxMeasures && step >= 0 && step < MaxStepsPerMeasure
}

// Step reports whether the cell is active. Out-of-range coordinates read as
// inactive; invalid input is never an error.
func (p *Pattern) Step(measure, step int) bool {
	if !p.valid(measure, step) {
		return false
	}
	return p.Steps[measure][step]
}

// Velocity returns the cell velocity, DefaultVelocity when out of range.
func (p *Pattern) Velocity(measure, step int) float32 {
	if !p.valid(measure, step) {
		return DefaultVelocity
	}
	return p.Velocities[measure][step]
}

// Page returns the cell page assignment (0 = unassigned, 1-4 = A-D), 0 when
// out of range.
func (p *Pattern) Page(measure, step int) int {
	if !p.valid(measure, step) {
		return 0
	}
	return p.Pages[measure][step]
}

// SetVelocity sets the cell velocity, clamped to [0,1]. Out-of-range
// coordinates are a no-op.
func (p *Pattern) SetVelocity(measure, step int, velocity float32) {
	if !p.valid(measure, step) {
		return
	}
	if velocity < 0 {
		velocity = 0
	} else if velocity > 1 {
		velocity = 1
	}
	p.Velocities[measure][step] = velocity
}

// ToggleStep advances the cell one transition. With paging disabled the cell
// is a plain on/off toggle; with paging enabled it cycles
// off -> A -> B -> C -> D -> off, one page per call, never skipping. Entering
// the cycle and leaving it both reset the velocity to DefaultVelocity;
// leaving also clears the page assignment. A cell activated while paging was
// disabled keeps page 0 and joins the cycle at A on its next toggle.
func (p *Pattern) ToggleStep(measure, step int) {
	if !p.valid(measure, step) {
		return
	}
	if !p.UsePages {
		p.Steps[measure][step] = !p.Steps[measure][step]
		p.Velocities[measure][step] = DefaultVelocity
		return
	}
	switch {
	case !p.Steps[measure][step]:
		p.Steps[measure][step] = true
		p.Pages[measure][step] = 1
		p.Velocities[measure][step] = DefaultVelocity
	case p.Pages[measure][step] < NumPages:
		p.Pages[measure][step]++
	default:
		p.Steps[measure][step] = false
		p.Pages[measure][step] = 0
		p.Velocities[measure][step] = DefaultVelocity
	}
}

// SetNumMeasures clamps n to [1, MaxMeasures]. Shrinking clears every cell
// in the dropped measures; growing back afterwards reveals them empty.
func (p *Pattern) SetNumMeasures(n int) {
	if n < 1 {
		n = 1
	} else if n > MaxMeasures {
		n = MaxMeasures
	}
	for m := n; m < p.NumMeasures; m++ {
		for s := 0; s < MaxStepsPerMeasure; s++ {
			p.Steps[m][s] = false
			p.Pages[m][s] = 0
			p.Velocities[m][s] = DefaultVelocity
		}
	}
	p.NumMeasures = n
}

// ClampMeasure returns measure clamped to the valid viewport range
// [0, NumMeasures-1].
func (p *Pattern) ClampMeasure(measure int) int {
	if measure < 0 {
		return 0
	}
	if measure >= p.NumMeasures {
		return p.NumMeasures - 1
	}
	return measure
}

// TriggersOn reports whether the cell should retrigger on the given pass
// through the pattern. Without paging any active cell triggers every pass.
// With paging, a cell assigned page P triggers only on passes where
// pass mod NumPages selects P; unassigned active cells (page 0) trigger
// every pass, so patterns entered before paging was enabled keep sounding.
func (p *Pattern) TriggersOn(measure, step, pass int) bool {
	if !p.Step(measure, step) {
		return false
	}
	if !p.UsePages {
		return true
	}
	page := p.Pages[measure][step]
	if page == 0 {
		return true
	}
	if pass < 0 {
		pass = 0
	}
	return pass%NumPages+1 == page
}
