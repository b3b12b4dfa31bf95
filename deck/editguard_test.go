package deck

import (
	"testing"
	"time"
)

// A full model queue must only delay a guard expiry, never lose it; a lost
// expiry would freeze the display refresh until the next edit.
func TestGuardExpiryRetriesWhenQueueFull(t *testing.T) {
	broker := NewBroker()
	m := NewModel(broker)
	for TrySend(broker.ToModel, MsgToModel{}) {
	}
	m.beginEdit(time.Millisecond)
	if !m.Editing() {
		t.Fatalf("guard should be up right after an edit")
	}
	time.Sleep(30 * time.Millisecond) // first delivery attempt hits the full queue
	m.ProcessMessages()
	deadline := time.Now().Add(time.Second)
	for m.Editing() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		m.ProcessMessages()
	}
	if m.Editing() {
		t.Fatalf("guard should release once the queue has room again")
	}
}
