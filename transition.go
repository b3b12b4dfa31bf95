package aidj

// PendingTransition is a queued start/stop intent for one track. An arming
// control writes it; the render path consumes it exactly once, at step 0 of
// the next measure boundary, so starts and stops are always measure-aligned.
type PendingTransition int32

const (
	TransitionNone PendingTransition = iota
	StartOnNextMeasure
	StopOnNextMeasure
)

func (p PendingTransition) String() string {
	switch p {
	case StartOnNextMeasure:
		return "start-on-next-measure"
	case StopOnNextMeasure:
		return "stop-on-next-measure"
	default:
		return "none"
	}
}
