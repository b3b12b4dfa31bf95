package deck

import "time"

// refreshInterval paces the periodic broker drain: often enough for the
// playhead display to track the engine, slow enough to stay invisible in a
// profile.
const refreshInterval = 50 * time.Millisecond

// Run is the model event loop. It drains the broker on a fixed tick and
// executes functions posted to exec, which is how front-ends marshal work
// onto the model goroutine. Run returns when CloseModel fires; it closes
// FinishedModel on the way out so waiters can join with a timeout.
func (m *Model) Run(exec <-chan func()) {
	defer close(m.broker.FinishedModel)
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.broker.CloseModel:
			m.ProcessMessages()
			return
		case f := <-exec:
			f()
		case <-ticker.C:
			m.ProcessMessages()
		}
	}
}
