package deck

import (
	"math"
	"sync/atomic"

	aidj "github.com/Blackmvmba88/ai-dj"
)

type (
	// Track is the shared state of one track, the single source of truth
	// read by the render path on every audio block and edited by the UI.
	// There are no locks; correctness relies on a single-writer-per-field
	// discipline:
	//
	//   - The engine is the sole writer of the playback cursor (step,
	//     measure, readPos, pass) and the sole consumer of the pending
	//     transition and the staging flags.
	//   - The model is the sole writer of the grid (Pattern), the mixer
	//     settings and the arming flags.
	//
	// Every field read across that boundary is an independently-updated
	// atomic cell, so a concurrent write is never observed torn and nothing
	// ever blocks. The grid is not a cell; it crosses the boundary only as
	// value-copy messages (see patternMsg), never by a shared read.
	Track struct {
		ID         string
		Name       string // model-owned, display only
		SamplePath string // model-owned, for persistence

		// Pattern is the model's grid, written and read only on the model
		// goroutine. The engine never touches it; it plays from pattern, its
		// own copy, refreshed from the broker queue at block boundaries.
		Pattern aidj.Pattern

		pattern aidj.Pattern // engine-owned copy of the grid

		midiNote atomic.Int32
		volume   atomicFloat32
		pan      atomicFloat32

		isPlaying          atomic.Bool
		isArmed            atomic.Bool
		isArmedToStop      atomic.Bool
		isCurrentlyPlaying atomic.Bool
		enabled            atomic.Bool
		muted              atomic.Bool
		solo               atomic.Bool

		pending atomic.Int32

		// staging swap protocol: a producer fills stagingBuffer and
		// stagingSampleRate, then raises hasStagingData; the raise publishes
		// the buffer to the engine, which commits it at a block boundary.
		// swapRequested forces the commit even while the track is playing.
		hasStagingData    atomic.Bool
		swapRequested     atomic.Bool
		stagingBuffer     aidj.AudioBuffer
		stagingSampleRate float64

		// active sample; owned by the engine after commit. numSamples gates
		// every engine access, so the model can revoke the buffer by
		// zeroing it (see Reset).
		sampleBuffer aidj.AudioBuffer
		sampleRate   float64
		numSamples   atomic.Int32
		readPos      atomicFloat64

		// playback cursor, engine-owned; the fractional timing state lives
		// in the engine's master clock, which every playing track follows
		step        atomic.Int32
		measure     atomic.Int32
		pass        int
		stepGain    float32
		justStarted bool

		broker *Broker
	}

	atomicFloat32 struct{ bits atomic.Uint32 }
	atomicFloat64 struct{ bits atomic.Uint64 }
)

func (a *atomicFloat32) Load() float32   { return math.Float32frombits(a.bits.Load()) }
func (a *atomicFloat32) Store(v float32) { a.bits.Store(math.Float32bits(v)) }
func (a *atomicFloat64) Load() float64   { return math.Float64frombits(a.bits.Load()) }
func (a *atomicFloat64) Store(v float64) { a.bits.Store(math.Float64bits(v)) }

func NewTrack(broker *Broker, id, name string) *Track {
	t := &Track{ID: id, Name: name, broker: broker}
	t.Pattern = aidj.NewPattern()
	t.pattern = t.Pattern
	t.midiNote.Store(60)
	t.volume.Store(0.8)
	t.enabled.Store(true)
	t.sampleRate = 44100
	t.stepGain = 1
	return t
}

func (t *Track) Volume() float32     { return t.volume.Load() }
func (t *Track) SetVolume(v float32) { t.volume.Store(v) }
func (t *Track) Pan() float32        { return t.pan.Load() }
func (t *Track) SetPan(v float32)    { t.pan.Store(v) }
func (t *Track) Enabled() bool       { return t.enabled.Load() }
func (t *Track) SetEnabled(v bool)   { t.enabled.Store(v) }
func (t *Track) Muted() bool         { return t.muted.Load() }
func (t *Track) SetMuted(v bool)     { t.muted.Store(v) }
func (t *Track) Solo() bool          { return t.solo.Load() }
func (t *Track) SetSolo(v bool)      { t.solo.Store(v) }
func (t *Track) MIDINote() int       { return int(t.midiNote.Load()) }
func (t *Track) SetMIDINote(n int)   { t.midiNote.Store(int32(n)) }

func (t *Track) IsPlaying() bool          { return t.isPlaying.Load() }
func (t *Track) IsArmed() bool            { return t.isArmed.Load() }
func (t *Track) IsArmedToStop() bool      { return t.isArmedToStop.Load() }
func (t *Track) IsCurrentlyPlaying() bool { return t.isCurrentlyPlaying.Load() }

// HasAudio reports whether the track has a loaded, non-empty audio buffer.
// State-change notifications are suppressed without it.
func (t *Track) HasAudio() bool { return t.numSamples.Load() > 0 }

// Step and Measure return a snapshot of the playback cursor for display.
func (t *Track) Step() int    { return int(t.step.Load()) }
func (t *Track) Measure() int { return int(t.measure.Load()) }

// SetPlaying stores the playing flag. The notification fires only on an
// actual transition, only when the track has loaded audio and only when the
// track ends up in the playing state; delivery is deferred through the
// broker so the caller never executes listener code inline.
func (t *Track) SetPlaying(playing bool) {
	wasPlaying := t.isPlaying.Swap(playing)
	if wasPlaying != playing && t.HasAudio() && t.isPlaying.Load() {
		t.notify(PlayStateChanged, playing)
	}
}

// SetArmed stores the armed flag, with the same edge/content/playing gating
// as SetPlaying.
func (t *Track) SetArmed(armed bool) {
	wasArmed := t.isArmed.Swap(armed)
	if wasArmed != armed && t.HasAudio() && t.isPlaying.Load() {
		t.notify(ArmedStateChanged, armed)
	}
}

// SetArmedToStop stores the armed-to-stop flag; its notification is gated on
// the track actually sounding right now rather than the playing intent.
func (t *Track) SetArmedToStop(armedToStop bool) {
	was := t.isArmedToStop.Swap(armedToStop)
	if was != armedToStop && t.HasAudio() && t.isCurrentlyPlaying.Load() {
		t.notify(ArmedToStopStateChanged, armedToStop)
	}
}

// NotifyStopped reports an unconditional stop to the listeners, deferred to
// the model goroutine. The engine uses it when a stop transition fires.
func (t *Track) NotifyStopped() {
	t.notify(PlayStateChanged, false)
}

func (t *Track) notify(kind TrackEventKind, value bool) {
	TrySend(t.broker.ToModel, MsgToModel{Data: TrackEvent{TrackID: t.ID, Kind: kind, Value: value}})
}

// Pending returns the queued start/stop intent.
func (t *Track) Pending() aidj.PendingTransition {
	return aidj.PendingTransition(t.pending.Load())
}

// SetPending queues a start/stop intent; the engine consumes it at step 0 of
// the next measure boundary.
func (t *Track) SetPending(p aidj.PendingTransition) {
	t.pending.Store(int32(p))
	switch p {
	case aidj.StartOnNextMeasure:
		t.SetArmed(true)
	case aidj.StopOnNextMeasure:
		t.SetArmedToStop(true)
	}
}

// takePending consumes the intent exactly once: it returns the queued value
// and resets it to none in a single atomic exchange.
func (t *Track) takePending() aidj.PendingTransition {
	return aidj.PendingTransition(t.pending.Swap(int32(aidj.TransitionNone)))
}

// StageBuffer hands a replacement audio buffer to the track. The caller
// gives up ownership of buf. The engine commits it at a safe block
// boundary; while the track is sounding, the commit waits for the next
// measure boundary or an explicit RequestSwap, whichever comes first, so
// the active buffer never changes mid-measure without being asked to.
func (t *Track) StageBuffer(buf aidj.AudioBuffer, sampleRate float64) {
	t.stagingBuffer = buf
	t.stagingSampleRate = sampleRate
	t.hasStagingData.Store(true)
}

// HasStagingData reports whether a staged buffer is awaiting its swap.
func (t *Track) HasStagingData() bool { return t.hasStagingData.Load() }

// RequestSwap asks the engine to commit the staged buffer at the next block
// boundary even if the track is currently sounding.
func (t *Track) RequestSwap() { t.swapRequested.Store(true) }

// SwapRequested reports whether an immediate swap has been requested.
func (t *Track) SwapRequested() bool { return t.swapRequested.Load() }

// commitStaging moves the staged buffer into the active buffer. Engine only,
// block boundary only.
func (t *Track) commitStaging() {
	t.sampleBuffer = t.stagingBuffer
	t.sampleRate = t.stagingSampleRate
	t.stagingBuffer = nil
	t.readPos.Store(0)
	t.numSamples.Store(int32(len(t.sampleBuffer)))
	t.hasStagingData.Store(false)
	t.swapRequested.Store(false)
}

// Reset returns the playback and mixer state to defaults and revokes the
// audio buffer. The sequencer grid is deliberately left untouched. The
// buffer memory itself is released by the engine once it observes the
// zeroed sample count, so the model never frees what the engine may still
// be reading.
func (t *Track) Reset() {
	t.readPos.Store(0)
	t.numSamples.Store(0)
	t.enabled.Store(true)
	t.muted.Store(false)
	t.solo.Store(false)
	t.volume.Store(0.8)
	t.pan.Store(0)
}

// State snapshots the persisted per-track layout.
func (t *Track) State() aidj.TrackState {
	return aidj.TrackState{
		ID:         t.ID,
		Name:       t.Name,
		MIDINote:   t.MIDINote(),
		Volume:     t.Volume(),
		Pan:        t.Pan(),
		SamplePath: t.SamplePath,
		Sequencer:  t.Pattern,
	}
}

// SetState restores the persisted per-track layout. Model goroutine only.
func (t *Track) SetState(s aidj.TrackState) {
	if s.ID != "" {
		t.ID = s.ID
	}
	t.Name = s.Name
	t.SamplePath = s.SamplePath
	t.SetMIDINote(s.MIDINote)
	t.SetVolume(s.Volume)
	t.SetPan(s.Pan)
	t.Pattern = s.Sequencer
	if t.Pattern.NumMeasures < 1 {
		t.Pattern.NumMeasures = 1
	}
}
