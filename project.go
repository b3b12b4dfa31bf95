package aidj

// Project is the persisted state of the whole deck: the tempo, the transport
// time signature and one entry per track. This is exactly what a project
// file or a plugin state chunk contains; everything else (cursors, staging
// flags, edit guards) is transient and re-derived.
type Project struct {
	BPM           float64
	TimeSignature TimeSignature `yaml:",flow"`
	Tracks        []TrackState
}

// TrackState is the persisted per-track layout: identity, mixer settings and
// the sequencer grid. The grid round-trips bit-exactly: step booleans,
// velocities, page indices, NumMeasures and UsePages, nothing more.
type TrackState struct {
	ID         string
	Name       string `yaml:",omitempty"`
	MIDINote   int
	Volume     float32
	Pan        float32
	SamplePath string `yaml:",omitempty"`
	Sequencer  Pattern
}

// Copy returns a deep copy of the project. TrackState is all value fields,
// so copying the slice is enough.
func (p *Project) Copy() Project {
	tracks := make([]TrackState, len(p.Tracks))
	copy(tracks, p.Tracks)
	return Project{BPM: p.BPM, TimeSignature: p.TimeSignature, Tracks: tracks}
}
