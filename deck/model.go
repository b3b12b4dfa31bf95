package deck

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	aidj "github.com/Blackmvmba88/ai-dj"
)

type (
	// Model is the UI-side half of the deck. It owns the track registry and
	// every editable field (grids, measure counts, mixer settings), mirrors
	// the engine status into display fields and dispatches track events to
	// listeners. All methods must be called from a single goroutine, the
	// one running Run; the engine is reached only through the shared track
	// atomics and the broker.
	Model struct {
		broker  *Broker
		tracks  []*Track
		index   map[string]int
		display []TrackDisplay

		guard     editGuard
		alerts    []Alert
		listeners []func(TrackEvent)

		bpm     float64
		timeSig aidj.TimeSignature

		filePath         string
		changedSinceSave bool
	}

	// TrackDisplay is the UI mirror of one track: the grid as last pulled
	// from shared state, the playback cursor as last reported by the engine
	// and the viewport measure the user is looking at. While an edit guard
	// is active the mirror is frozen, so a repaint mid-edit cannot show a
	// stale cell.
	TrackDisplay struct {
		Pattern     aidj.Pattern
		Step        int
		Measure     int
		Playing     bool
		ViewMeasure int
	}
)

func NewModel(broker *Broker) *Model {
	return &Model{
		broker:  broker,
		index:   make(map[string]int),
		bpm:     126,
		timeSig: aidj.TimeSignature{Numerator: 4, Denominator: 4},
	}
}

func (m *Model) Broker() *Broker { return m.broker }

func (m *Model) BPM() float64 { return m.bpm }
func (m *Model) SetBPM(bpm float64) {
	if bpm > 0 {
		m.bpm = bpm
		m.changedSinceSave = true
	}
}

func (m *Model) TimeSignature() aidj.TimeSignature { return m.timeSig }
func (m *Model) SetTimeSignature(sig aidj.TimeSignature) {
	if sig.Numerator > 0 && sig.Denominator > 0 {
		m.timeSig = sig
		m.changedSinceSave = true
	}
}

func (m *Model) FilePath() string       { return m.filePath }
func (m *Model) ChangedSinceSave() bool { return m.changedSinceSave }

// AddTrack creates a new track with a fresh identifier and announces the new
// track list to the engine.
func (m *Model) AddTrack(name string) (*Track, error) {
	if len(m.tracks) >= MaxTracks {
		return nil, fmt.Errorf("all %d track slots are in use", MaxTracks)
	}
	t := NewTrack(m.broker, uuid.NewString(), name)
	m.index[t.ID] = len(m.tracks)
	m.tracks = append(m.tracks, t)
	m.display = append(m.display, TrackDisplay{Pattern: t.Pattern})
	m.changedSinceSave = true
	m.pushTracks()
	return t, nil
}

// RemoveTrack deletes a track by id; removing an unknown id is a no-op.
func (m *Model) RemoveTrack(id string) bool {
	i, ok := m.index[id]
	if !ok {
		return false
	}
	m.tracks = append(m.tracks[:i], m.tracks[i+1:]...)
	m.display = append(m.display[:i], m.display[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.tracks); j++ {
		m.index[m.tracks[j].ID] = j
	}
	m.changedSinceSave = true
	m.pushTracks()
	return true
}

// GetTrack looks a track up by id. A miss is reported to the caller, which
// should degrade to a placeholder state rather than fault.
func (m *Model) GetTrack(id string) (*Track, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return m.tracks[i], true
}

func (m *Model) Tracks() []*Track { return m.tracks }

// Display returns the UI mirror for a track. On a lookup miss it returns a
// neutral single-measure display so callers can still paint something.
func (m *Model) Display(id string) (TrackDisplay, bool) {
	i, ok := m.index[id]
	if !ok {
		return TrackDisplay{Pattern: aidj.NewPattern()}, false
	}
	return m.display[i], true
}

// pushTracks hands the engine a fresh copy of the track list along with a
// snapshot of every grid. The copies are allocated here, on the UI side; the
// engine just swaps them in.
func (m *Model) pushTracks() {
	tracks := make([]*Track, len(m.tracks))
	copy(tracks, m.tracks)
	patterns := make([]aidj.Pattern, len(m.tracks))
	for i, t := range m.tracks {
		patterns[i] = t.Pattern
	}
	TrySend(m.broker.ToEngine, any(tracksMsg{tracks: tracks, patterns: patterns}))
}

// pushPattern sends the engine a value copy of one track's grid. Called after
// every grid edit, so the engine always plays from the latest copy and never
// reads the grid the model writes.
func (m *Model) pushPattern(t *Track) {
	TrySend(m.broker.ToEngine, any(patternMsg{trackID: t.ID, pattern: t.Pattern}))
}

// ToggleStep advances the cell under the viewport measure one transition of
// its cycle (see aidj.Pattern.ToggleStep) and freezes the display mirror for
// the step quiescence window.
func (m *Model) ToggleStep(id string, step int) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.beginEdit(StepEditQuiescence)
	t := m.tracks[i]
	measure := m.display[i].ViewMeasure
	t.Pattern.ToggleStep(measure, step)
	m.display[i].Pattern = t.Pattern
	m.pushPattern(t)
	m.changedSinceSave = true
}

// SetStepVelocity sets the velocity of a cell under the viewport measure.
func (m *Model) SetStepVelocity(id string, step int, velocity float32) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.beginEdit(SliderEditQuiescence)
	t := m.tracks[i]
	t.Pattern.SetVelocity(m.display[i].ViewMeasure, step, velocity)
	m.display[i].Pattern = t.Pattern
	m.pushPattern(t)
	m.changedSinceSave = true
}

// SetNumMeasures changes the measure count of a track, clamped to [1, 4].
// Shrinking clears the dropped measures for good; the viewport is clamped
// back into range if it pointed past the new end.
func (m *Model) SetNumMeasures(id string, n int) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.beginEdit(SliderEditQuiescence)
	t := m.tracks[i]
	t.Pattern.SetNumMeasures(n)
	m.display[i].Pattern = t.Pattern
	m.display[i].ViewMeasure = t.Pattern.ClampMeasure(m.display[i].ViewMeasure)
	m.pushPattern(t)
	m.changedSinceSave = true
}

// SetCurrentMeasure moves the viewport; a pure display change, clamped and
// independent of the playback cursor.
func (m *Model) SetCurrentMeasure(id string, measure int) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.beginEdit(SliderEditQuiescence)
	m.display[i].ViewMeasure = m.tracks[i].Pattern.ClampMeasure(measure)
}

// NextMeasure and PrevMeasure move the viewport by one measure, clamped at
// the ends; manual navigation does not wrap around, unlike the playback
// cursor.
func (m *Model) NextMeasure(id string) {
	if i, ok := m.index[id]; ok {
		m.SetCurrentMeasure(id, m.display[i].ViewMeasure+1)
	}
}

func (m *Model) PrevMeasure(id string) {
	if i, ok := m.index[id]; ok {
		m.SetCurrentMeasure(id, m.display[i].ViewMeasure-1)
	}
}

// SetUsePages switches the step-cell semantics between plain on/off and
// paged cycling. Existing page assignments are preserved either way; cells
// keep their data and are merely reinterpreted when redisplayed.
func (m *Model) SetUsePages(id string, usePages bool) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.tracks[i].Pattern.UsePages = usePages
	m.display[i].Pattern = m.tracks[i].Pattern
	m.pushPattern(m.tracks[i])
	m.changedSinceSave = true
}

// LoadSample reads a wav file and stages it as the track audio. The engine
// commits the buffer at the next safe boundary; forceSwap commits it at the
// next block even while the track is sounding.
func (m *Model) LoadSample(id, path string, forceSwap bool) error {
	t, ok := m.GetTrack(id)
	if !ok {
		return fmt.Errorf("no track with id %v", id)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		m.AddAlert(Alert{Name: "LoadSample", Priority: Error,
			Message: fmt.Sprintf("reading sample: %v", err)})
		return err
	}
	buf, sampleRate, err := aidj.ParseWav(data)
	if err != nil {
		m.AddAlert(Alert{Name: "LoadSample", Priority: Error,
			Message: fmt.Sprintf("decoding sample %v: %v", path, err)})
		return err
	}
	t.SamplePath = path
	t.StageBuffer(buf, sampleRate)
	if forceSwap {
		t.RequestSwap()
	}
	m.changedSinceSave = true
	return nil
}

// ArmStart and ArmStop queue a measure-aligned start/stop for a track.
func (m *Model) ArmStart(id string) {
	if t, ok := m.GetTrack(id); ok {
		t.SetPending(aidj.StartOnNextMeasure)
	}
}

func (m *Model) ArmStop(id string) {
	if t, ok := m.GetTrack(id); ok {
		t.SetPending(aidj.StopOnNextMeasure)
	}
}

// OnTrackEvent registers a listener for track state-change events. The
// listener runs on the model goroutine, never on the render thread.
func (m *Model) OnTrackEvent(fn func(TrackEvent)) {
	m.listeners = append(m.listeners, fn)
}

// ProcessMessages drains the broker queue: engine status snapshots refresh
// the display mirrors unless an edit guard is active, track events are
// dispatched to listeners, and expired guard generations release the guard.
func (m *Model) ProcessMessages() {
loop:
	for {
		select {
		case msg := <-m.broker.ToModel:
			if msg.HasStatus && !m.guard.editing {
				m.applyStatus(msg.Status)
			}
			switch d := msg.Data.(type) {
			case TrackEvent:
				for _, fn := range m.listeners {
					fn(d)
				}
			case Alert:
				m.AddAlert(d)
			case editGuardExpiredMsg:
				m.handleGuardExpiry(d)
			}
		default:
			break loop
		}
	}
}

func (m *Model) applyStatus(status EngineStatus) {
	for i, t := range m.tracks {
		d := &m.display[i]
		d.Pattern = t.Pattern
		if i < MaxTracks {
			d.Step = status.Tracks[i].Step
			d.Measure = status.Tracks[i].Measure
			d.Playing = status.Tracks[i].Playing
		}
	}
}

// Project snapshots the full persisted state.
func (m *Model) Project() aidj.Project {
	p := aidj.Project{BPM: m.bpm, TimeSignature: m.timeSig}
	for _, t := range m.tracks {
		p.Tracks = append(p.Tracks, t.State())
	}
	return p
}

// SetProject replaces the whole deck state from a persisted project.
func (m *Model) SetProject(p aidj.Project) {
	if p.BPM > 0 {
		m.bpm = p.BPM
	}
	if p.TimeSignature.Numerator > 0 {
		m.timeSig = p.TimeSignature
	}
	m.tracks = m.tracks[:0]
	m.display = m.display[:0]
	m.index = make(map[string]int)
	for _, ts := range p.Tracks {
		if len(m.tracks) >= MaxTracks {
			m.AddAlert(Alert{Name: "TooManyTracks", Priority: Warning,
				Message: fmt.Sprintf("project has more than %d tracks; extra tracks were dropped", MaxTracks)})
			break
		}
		id := ts.ID
		if id == "" {
			id = uuid.NewString()
		}
		t := NewTrack(m.broker, id, ts.Name)
		t.SetState(ts)
		m.index[t.ID] = len(m.tracks)
		m.tracks = append(m.tracks, t)
		m.display = append(m.display, TrackDisplay{Pattern: t.Pattern})
		if ts.SamplePath != "" {
			m.LoadSample(t.ID, ts.SamplePath, true)
		}
	}
	m.pushTracks()
}
