package deck

import (
	"testing"

	aidj "github.com/Blackmvmba88/ai-dj"
)

func drainEvents(broker *Broker) (events []TrackEvent) {
	for {
		select {
		case msg := <-broker.ToModel:
			if ev, ok := msg.Data.(TrackEvent); ok {
				events = append(events, ev)
			}
		default:
			return events
		}
	}
}

func trackWithAudio(broker *Broker) *Track {
	t := NewTrack(broker, "id", "test")
	t.StageBuffer(make(aidj.AudioBuffer, 64), 44100)
	t.commitStaging()
	return t
}

func TestPlayStateNotificationRequiresAudio(t *testing.T) {
	broker := NewBroker()
	track := NewTrack(broker, "id", "test")
	track.SetPlaying(true)
	if events := drainEvents(broker); len(events) != 0 {
		t.Fatalf("expected no events without loaded audio, got %v", events)
	}
	track = trackWithAudio(broker)
	track.SetPlaying(true)
	events := drainEvents(broker)
	if len(events) != 1 || events[0].Kind != PlayStateChanged || !events[0].Value {
		t.Fatalf("expected one PlayStateChanged(true) event, got %v", events)
	}
}

func TestPlayStateNotificationIsEdgeTriggered(t *testing.T) {
	broker := NewBroker()
	track := trackWithAudio(broker)
	track.SetPlaying(true)
	track.SetPlaying(true)
	track.SetPlaying(true)
	if events := drainEvents(broker); len(events) != 1 {
		t.Fatalf("expected a single event for repeated identical writes, got %d", len(events))
	}
}

func TestArmedToStopNotificationGatedOnSounding(t *testing.T) {
	broker := NewBroker()
	track := trackWithAudio(broker)
	track.SetArmedToStop(true)
	if events := drainEvents(broker); len(events) != 0 {
		t.Fatalf("expected no event while the track is not sounding, got %v", events)
	}
	track.SetArmedToStop(false)
	track.isCurrentlyPlaying.Store(true)
	track.SetArmedToStop(true)
	events := drainEvents(broker)
	if len(events) != 1 || events[0].Kind != ArmedToStopStateChanged {
		t.Fatalf("expected one ArmedToStopStateChanged event, got %v", events)
	}
}

func TestTakePendingConsumesExactlyOnce(t *testing.T) {
	broker := NewBroker()
	track := trackWithAudio(broker)
	track.SetPending(aidj.StartOnNextMeasure)
	if got := track.takePending(); got != aidj.StartOnNextMeasure {
		t.Fatalf("takePending = %v, expected StartOnNextMeasure", got)
	}
	if got := track.takePending(); got != aidj.TransitionNone {
		t.Fatalf("second takePending = %v, expected TransitionNone", got)
	}
}

func TestSetPendingRaisesArmedFlags(t *testing.T) {
	broker := NewBroker()
	track := trackWithAudio(broker)
	track.SetPending(aidj.StartOnNextMeasure)
	if !track.IsArmed() {
		t.Errorf("expected armed flag after queueing a start")
	}
	track.isCurrentlyPlaying.Store(true)
	track.SetPending(aidj.StopOnNextMeasure)
	if !track.IsArmedToStop() {
		t.Errorf("expected armed-to-stop flag after queueing a stop")
	}
}

func TestResetRevokesAudioButKeepsGrid(t *testing.T) {
	broker := NewBroker()
	track := trackWithAudio(broker)
	track.Pattern.ToggleStep(0, 3)
	track.SetVolume(0.2)
	track.SetMuted(true)
	track.Reset()
	if track.HasAudio() {
		t.Errorf("expected audio to be revoked")
	}
	if !track.Pattern.Step(0, 3) {
		t.Errorf("expected the grid to survive a reset")
	}
	if track.Volume() != 0.8 || track.Muted() {
		t.Errorf("expected mixer settings back at defaults")
	}
}

func TestStagingSwapPublishesBuffer(t *testing.T) {
	broker := NewBroker()
	track := NewTrack(broker, "id", "test")
	buf := make(aidj.AudioBuffer, 32)
	track.StageBuffer(buf, 48000)
	if !track.HasStagingData() || track.HasAudio() {
		t.Fatalf("staging should not be audible before the commit")
	}
	track.commitStaging()
	if track.HasStagingData() || !track.HasAudio() {
		t.Fatalf("expected the staged buffer to be active after the commit")
	}
	if track.sampleRate != 48000 || int(track.numSamples.Load()) != len(buf) {
		t.Errorf("committed sample rate %v and count %v do not match the staged buffer",
			track.sampleRate, track.numSamples.Load())
	}
}
