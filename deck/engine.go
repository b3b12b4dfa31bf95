package deck

import (
	"math"

	"github.com/viterin/vek/vek32"

	aidj "github.com/Blackmvmba88/ai-dj"
)

type (
	// Engine is the real-time render path of the deck, run by the host audio
	// callback. It advances the master step clock from the host tempo and
	// time signature, consumes pending start/stop transitions at measure
	// boundaries, retriggers track samples on active grid cells and mixes
	// the result into the output buffer. It is controlled by messages from
	// the model via the broker and reports back with a per-block status
	// snapshot. Nothing here blocks, allocates or runs listener code.
	Engine struct {
		tracks      []*Track
		sampleRate  float64
		bpm         float64
		timeSig     aidj.TimeSignature
		hostPlaying bool

		// master clock; all per-track cursors follow it while their track
		// plays, so measure boundaries are common to every track
		stepAccum      float64
		samplesPerStep float64
		songStep       int
		songMeasure    int

		scratchL []float32
		scratchR []float32

		broker *Broker
	}

	// EngineProcessContext is the context given to the engine when
	// processing audio: the host-side MIDI events of the current block and
	// the host transport (tempo, time signature, running state). All calls
	// must be cheap and non-blocking.
	EngineProcessContext interface {
		NextEvent(frame int) (event MIDINoteEvent, ok bool)
		FinishBlock(frame int)
		BPM() (bpm float64, ok bool)
		TimeSignature() (sig aidj.TimeSignature, ok bool)
		HostPlaying() bool
	}

	// MIDINoteEvent is a MIDI event triggering or releasing a note. Frame is
	// relative to the start of the current buffer.
	MIDINoteEvent struct {
		Frame    int
		On       bool
		Channel  int
		Note     byte
		Velocity byte
	}
)

// scratchFrames bounds how many frames are mixed per inner iteration; longer
// host buffers are processed in slices of this size.
const scratchFrames = 8192

func NewEngine(broker *Broker, sampleRate float64) *Engine {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &Engine{
		broker:     broker,
		sampleRate: sampleRate,
		bpm:        126,
		timeSig:    aidj.TimeSignature{Numerator: 4, Denominator: 4},
		scratchL:   make([]float32, scratchFrames),
		scratchR:   make([]float32, scratchFrames),
	}
}

// SongStep and SongMeasure expose the master clock for tests and status.
func (e *Engine) SongStep() int    { return e.songStep }
func (e *Engine) SongMeasure() int { return e.songMeasure }

// Process renders one block of audio into buffer. The context tells the
// engine the host transport state and which MIDI events happen during the
// block.
func (e *Engine) Process(buffer aidj.AudioBuffer, ctx EngineProcessContext) {
	e.processMessages()
	e.updateTransport(ctx)
	e.drainMIDI(ctx)

	for i := range buffer {
		buffer[i] = [2]float32{}
	}

	for _, t := range e.tracks {
		e.maintainBuffers(t)
	}

	frame := 0
	for frame < len(buffer) {
		n := len(buffer) - frame
		if e.hostPlaying {
			if e.stepAccum >= e.samplesPerStep {
				e.stepAccum -= e.samplesPerStep
				e.advanceStep()
			}
			until := int(math.Ceil(e.samplesPerStep - e.stepAccum))
			if until < 1 {
				until = 1
			}
			if until < n {
				n = until
			}
		}
		if n > scratchFrames {
			n = scratchFrames
		}
		e.mix(buffer[frame : frame+n])
		if e.hostPlaying {
			e.stepAccum += float64(n)
		}
		frame += n
	}

	e.sendStatus()
	ctx.FinishBlock(len(buffer))
}

func (e *Engine) processMessages() {
loop:
	for {
		select {
		case msg := <-e.broker.ToEngine:
			switch m := msg.(type) {
			case tracksMsg:
				e.tracks = m.tracks
				for i, t := range m.tracks {
					if i < len(m.patterns) {
						t.pattern = m.patterns[i]
					}
				}
			case patternMsg:
				for _, t := range e.tracks {
					if t.ID == m.trackID {
						t.pattern = m.pattern
						break
					}
				}
			default:
				// ignore unknown messages
			}
		default:
			break loop
		}
	}
}

func (e *Engine) updateTransport(ctx EngineProcessContext) {
	if bpm, ok := ctx.BPM(); ok && bpm > 0 {
		e.bpm = bpm
	}
	if sig, ok := ctx.TimeSignature(); ok && sig.Numerator > 0 {
		e.timeSig = sig
	}
	samplesPerBeat := e.sampleRate * 60 / e.bpm
	e.samplesPerStep = samplesPerBeat / float64(e.timeSig.StepsPerBeat())

	wasPlaying := e.hostPlaying
	e.hostPlaying = ctx.HostPlaying()
	if e.hostPlaying && !wasPlaying {
		// transport started: restart the master clock and treat the first
		// sample as a measure boundary, so queued transitions fire at once
		e.stepAccum = 0
		e.songStep = 0
		e.songMeasure = 0
		e.measureBoundary()
	}
	if !e.hostPlaying && wasPlaying {
		for _, t := range e.tracks {
			e.stopTrack(t, false)
		}
	}
}

func (e *Engine) drainMIDI(ctx EngineProcessContext) {
	frame := 0
	for {
		ev, ok := ctx.NextEvent(frame)
		if !ok {
			return
		}
		frame = ev.Frame
		if !ev.On {
			continue
		}
		for _, t := range e.tracks {
			if t.MIDINote() != int(ev.Note) {
				continue
			}
			// clip-launch behaviour: a note toggles the track, quantized
			// to the next measure boundary
			if t.IsCurrentlyPlaying() {
				t.SetPending(aidj.StopOnNextMeasure)
			} else {
				t.SetPending(aidj.StartOnNextMeasure)
			}
		}
	}
}

// maintainBuffers commits staged audio and releases revoked buffers. Block
// boundary only; a staged buffer of a sounding track waits for the measure
// boundary unless the swap was explicitly requested.
func (e *Engine) maintainBuffers(t *Track) {
	if t.numSamples.Load() == 0 && t.sampleBuffer != nil {
		t.sampleBuffer = nil
	}
	if !t.hasStagingData.Load() {
		return
	}
	if t.stagingSampleRate <= 0 {
		t.stagingBuffer = nil
		t.hasStagingData.Store(false)
		t.swapRequested.Store(false)
		e.sendAlert(Alert{Name: "InvalidSampleRate", Priority: Error,
			Message: "a staged sample has an invalid sample rate and was dropped"})
		return
	}
	if !t.isCurrentlyPlaying.Load() || t.swapRequested.Load() {
		t.commitStaging()
	}
}

// sendAlert reports a render-path fault to the model. The engine cannot
// return errors from the host callback, so faults travel as alert messages;
// a full queue drops the alert rather than blocking.
func (e *Engine) sendAlert(a Alert) {
	TrySend(e.broker.ToModel, MsgToModel{Data: a})
}

func (e *Engine) advanceStep() {
	e.songStep++
	if e.songStep >= e.timeSig.GridSteps() {
		e.songStep = 0
		e.songMeasure++
		e.measureBoundary()
	}
	for _, t := range e.tracks {
		if !t.isCurrentlyPlaying.Load() {
			continue
		}
		if t.justStarted {
			// started on this very tick; it already sits on step 0
			t.justStarted = false
			continue
		}
		step := int(t.step.Load()) + 1
		if step >= e.timeSig.GridSteps() {
			step = 0
			measure := int(t.measure.Load()) + 1
			numMeasures := t.pattern.NumMeasures
			if numMeasures < 1 {
				numMeasures = 1
			}
			if measure >= numMeasures {
				measure = 0
				t.pass++
			}
			t.measure.Store(int32(measure))
		}
		t.step.Store(int32(step))
		e.triggerStep(t)
	}
}

// measureBoundary runs the once-per-measure duties: consuming pending
// transitions and committing measure-aligned staging swaps.
func (e *Engine) measureBoundary() {
	for _, t := range e.tracks {
		switch t.takePending() {
		case aidj.StartOnNextMeasure:
			e.startTrack(t)
		case aidj.StopOnNextMeasure:
			e.stopTrack(t, true)
		}
		if t.hasStagingData.Load() && t.isCurrentlyPlaying.Load() && t.stagingSampleRate > 0 {
			t.commitStaging()
		}
	}
}

func (e *Engine) startTrack(t *Track) {
	t.step.Store(0)
	t.measure.Store(0)
	t.pass = 0
	t.readPos.Store(0)
	t.stepGain = 1
	t.justStarted = true
	t.isCurrentlyPlaying.Store(true)
	t.SetPlaying(true)
	t.SetArmed(false)
	e.triggerStep(t)
}

func (e *Engine) stopTrack(t *Track, notify bool) {
	if !t.isCurrentlyPlaying.Swap(false) {
		return
	}
	t.step.Store(0)
	t.measure.Store(0)
	t.readPos.Store(0)
	t.SetPlaying(false)
	t.SetArmedToStop(false)
	if notify {
		t.NotifyStopped()
	}
}

// triggerStep retriggers the track sample if the grid cell under the cursor
// is active on the current pass.
func (e *Engine) triggerStep(t *Track) {
	measure, step := int(t.measure.Load()), int(t.step.Load())
	if !t.pattern.TriggersOn(measure, step, t.pass) {
		return
	}
	if !t.HasAudio() {
		return
	}
	t.readPos.Store(0)
	t.stepGain = t.pattern.Velocity(measure, step)
}

func (e *Engine) mix(out aidj.AudioBuffer) {
	anySolo := false
	for _, t := range e.tracks {
		if t.solo.Load() {
			anySolo = true
			break
		}
	}
	n := len(out)
	for _, t := range e.tracks {
		if !t.isCurrentlyPlaying.Load() || !t.enabled.Load() || t.muted.Load() {
			continue
		}
		if anySolo && !t.solo.Load() {
			continue
		}
		samples := int(t.numSamples.Load())
		if samples <= 0 || len(t.sampleBuffer) < samples {
			continue
		}
		ratio := t.sampleRate / e.sampleRate
		pos := t.readPos.Load()
		length := float64(samples)
		for i := 0; i < n; i++ {
			frame := t.sampleBuffer[int(pos)]
			e.scratchL[i] = frame[0]
			e.scratchR[i] = frame[1]
			pos += ratio
			if pos >= length {
				pos -= length
			}
		}
		t.readPos.Store(pos)
		gain := t.volume.Load() * t.stepGain
		gainL, gainR := panGains(gain, t.pan.Load())
		vek32.MulNumber_Inplace(e.scratchL[:n], gainL)
		vek32.MulNumber_Inplace(e.scratchR[:n], gainR)
		for i := 0; i < n; i++ {
			out[i][0] += e.scratchL[i]
			out[i][1] += e.scratchR[i]
		}
	}
}

// panGains maps a pan position in [-1, 1] to per-channel gains; the center
// is unity on both sides, full left/right silences the opposite channel.
func panGains(gain, pan float32) (l, r float32) {
	l, r = gain, gain
	if pan > 0 {
		l *= 1 - pan
	} else if pan < 0 {
		r *= 1 + pan
	}
	return l, r
}

func (e *Engine) sendStatus() {
	status := EngineStatus{
		SongStep:    e.songStep,
		SongMeasure: e.songMeasure,
		NumTracks:   len(e.tracks),
	}
	for i, t := range e.tracks {
		if i >= MaxTracks {
			break
		}
		status.Tracks[i] = TrackStatus{
			Step:    int(t.step.Load()),
			Measure: int(t.measure.Load()),
			Playing: t.isCurrentlyPlaying.Load(),
		}
	}
	TrySend(e.broker.ToModel, MsgToModel{HasStatus: true, Status: status})
}
