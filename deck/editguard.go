package deck

import "time"

// Quiescence windows after which the edit guard releases, from the kind of
// interaction: a single step click settles fast, a slider drag or measure
// navigation gets a longer window because more input is likely coming.
const (
	StepEditQuiescence   = 50 * time.Millisecond
	SliderEditQuiescence = 500 * time.Millisecond
)

// guardRetryInterval is how long an expiry waits before retrying when the
// model queue is full. Expiries must be delivered eventually or the display
// refresh would stay frozen until the next edit.
const guardRetryInterval = 10 * time.Millisecond

type (
	// editGuard suppresses the periodic engine-state pull into the display
	// fields while the user is mid-edit, so an in-flight click or drag is
	// never visually reverted by a concurrent refresh. Every edit bumps the
	// generation; the deferred clear carries the generation it was armed
	// with and only releases the guard if no newer edit has happened since.
	// Overlapping edits therefore extend the window instead of racing it.
	editGuard struct {
		editing    bool
		generation uint64
	}

	editGuardExpiredMsg struct {
		generation uint64
	}
)

// beginEdit raises the guard and schedules its release after the quiescence
// window. Model goroutine only.
func (m *Model) beginEdit(quiescence time.Duration) {
	m.guard.generation++
	m.guard.editing = true
	gen := m.guard.generation
	broker := m.broker
	var expire func()
	expire = func() {
		if !TrySend(broker.ToModel, MsgToModel{Data: editGuardExpiredMsg{generation: gen}}) {
			// queue full; keep retrying, a dropped expiry would leave the
			// guard up until the next edit
			time.AfterFunc(guardRetryInterval, expire)
		}
	}
	time.AfterFunc(quiescence, expire)
}

func (m *Model) handleGuardExpiry(msg editGuardExpiredMsg) {
	if msg.generation == m.guard.generation {
		m.guard.editing = false
	}
}

// Editing reports whether an edit guard window is currently active.
func (m *Model) Editing() bool { return m.guard.editing }
