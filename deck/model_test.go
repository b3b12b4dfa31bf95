package deck_test

import (
	"testing"
	"time"

	"github.com/Blackmvmba88/ai-dj/deck"
)

func sendStatus(broker *deck.Broker, step int, playing bool) {
	var status deck.EngineStatus
	status.NumTracks = 1
	status.Tracks[0] = deck.TrackStatus{Step: step, Playing: playing}
	deck.TrySend(broker.ToModel, deck.MsgToModel{HasStatus: true, Status: status})
}

func TestStatusUpdatesDisplay(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	track, _ := m.AddTrack("kick")
	sendStatus(broker, 5, true)
	m.ProcessMessages()
	d, ok := m.Display(track.ID)
	if !ok || d.Step != 5 || !d.Playing {
		t.Fatalf("expected display to mirror the engine status, got %+v", d)
	}
}

func TestEditGuardSuppressesStatus(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	track, _ := m.AddTrack("kick")
	sendStatus(broker, 5, true)
	m.ProcessMessages()

	m.ToggleStep(track.ID, 0)
	if !m.Editing() {
		t.Fatalf("expected the edit guard to be up after a toggle")
	}
	sendStatus(broker, 9, true)
	m.ProcessMessages()
	if d, _ := m.Display(track.ID); d.Step != 5 {
		t.Fatalf("status applied during an edit window, display step = %d", d.Step)
	}

	time.Sleep(deck.StepEditQuiescence + 20*time.Millisecond)
	m.ProcessMessages()
	if m.Editing() {
		t.Fatalf("expected the edit guard to be released after quiescence")
	}
	sendStatus(broker, 9, true)
	m.ProcessMessages()
	if d, _ := m.Display(track.ID); d.Step != 9 {
		t.Fatalf("status not applied after the guard released, display step = %d", d.Step)
	}
}

func TestOverlappingEditsExtendGuard(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	track, _ := m.AddTrack("kick")
	m.ToggleStep(track.ID, 0)
	time.Sleep(30 * time.Millisecond)
	m.ToggleStep(track.ID, 1)
	time.Sleep(35 * time.Millisecond) // the first timer has fired, its generation is stale
	m.ProcessMessages()
	if !m.Editing() {
		t.Fatalf("a stale expiry must not release the guard of a newer edit")
	}
	time.Sleep(30 * time.Millisecond)
	m.ProcessMessages()
	if m.Editing() {
		t.Fatalf("expected the guard released after the newer window passed")
	}
}

func TestToggleStepEditsViewedMeasure(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	track, _ := m.AddTrack("kick")
	m.SetNumMeasures(track.ID, 2)
	m.NextMeasure(track.ID)
	m.ToggleStep(track.ID, 3)
	if !track.Pattern.Step(1, 3) {
		t.Fatalf("expected the toggle to land in the viewed measure")
	}
	if track.Pattern.Step(0, 3) {
		t.Fatalf("measure 0 should be untouched")
	}
	d, _ := m.Display(track.ID)
	if !d.Pattern.Step(1, 3) {
		t.Fatalf("expected the display mirror to show the edit immediately")
	}
}

func TestMeasureNavigationClamps(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	track, _ := m.AddTrack("kick")
	m.NextMeasure(track.ID)
	if d, _ := m.Display(track.ID); d.ViewMeasure != 0 {
		t.Fatalf("viewport must clamp at the last measure, got %d", d.ViewMeasure)
	}
	m.SetNumMeasures(track.ID, 3)
	for i := 0; i < 5; i++ {
		m.NextMeasure(track.ID)
	}
	if d, _ := m.Display(track.ID); d.ViewMeasure != 2 {
		t.Fatalf("expected viewport clamped to 2, got %d", d.ViewMeasure)
	}
	for i := 0; i < 5; i++ {
		m.PrevMeasure(track.ID)
	}
	if d, _ := m.Display(track.ID); d.ViewMeasure != 0 {
		t.Fatalf("expected viewport clamped to 0, got %d", d.ViewMeasure)
	}
}

func TestShrinkingMeasuresClampsViewport(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	track, _ := m.AddTrack("kick")
	m.SetNumMeasures(track.ID, 4)
	m.NextMeasure(track.ID)
	m.NextMeasure(track.ID)
	m.NextMeasure(track.ID)
	m.SetNumMeasures(track.ID, 2)
	if d, _ := m.Display(track.ID); d.ViewMeasure != 1 {
		t.Fatalf("expected viewport pulled back to 1, got %d", d.ViewMeasure)
	}
}

func TestAddTrackLimit(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	for i := 0; i < deck.MaxTracks; i++ {
		if _, err := m.AddTrack("t"); err != nil {
			t.Fatalf("AddTrack %d failed: %v", i, err)
		}
	}
	if _, err := m.AddTrack("overflow"); err == nil {
		t.Fatalf("expected an error past %d tracks", deck.MaxTracks)
	}
}

func TestRemoveTrackReindexes(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	a, _ := m.AddTrack("a")
	b, _ := m.AddTrack("b")
	c, _ := m.AddTrack("c")
	if !m.RemoveTrack(b.ID) {
		t.Fatalf("RemoveTrack failed")
	}
	if _, ok := m.GetTrack(b.ID); ok {
		t.Fatalf("removed track still resolvable")
	}
	for _, want := range []*deck.Track{a, c} {
		got, ok := m.GetTrack(want.ID)
		if !ok || got != want {
			t.Fatalf("lookup broken after removal for track %v", want.Name)
		}
	}
	if m.RemoveTrack("no-such-id") {
		t.Fatalf("removing an unknown id should be a no-op")
	}
}

func TestTrackEventsDispatch(t *testing.T) {
	broker := deck.NewBroker()
	m := deck.NewModel(broker)
	track, _ := m.AddTrack("kick")
	var got []deck.TrackEvent
	m.OnTrackEvent(func(ev deck.TrackEvent) { got = append(got, ev) })
	deck.TrySend(broker.ToModel, deck.MsgToModel{
		Data: deck.TrackEvent{TrackID: track.ID, Kind: deck.PlayStateChanged, Value: true},
	})
	m.ProcessMessages()
	if len(got) != 1 || got[0].TrackID != track.ID || !got[0].Value {
		t.Fatalf("expected the event dispatched to the listener, got %v", got)
	}
}
