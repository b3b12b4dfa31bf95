package deck

import (
	"time"

	aidj "github.com/Blackmvmba88/ai-dj"
)

type (
	// Broker is the centralized message broker of the deck. It joins the two
	// scheduling domains: the engine, run by the host audio callback, and the
	// model, run by the UI event loop. Communication is one channel per
	// recipient; every send from the engine side is non-blocking (see
	// TrySend), so the render path can never dead-lock or stall on a full
	// queue. The engine only ever enqueues value-copy messages, never
	// closures capturing live state.
	//
	// For closing goroutines, CloseEngine has a capacity of 1 so a closure
	// request can always be posted without blocking; if the channel is full,
	// someone else already requested it and dropping the message is fine.
	// FinishedEngine is closed (never sent to) when the engine loop has
	// cleaned up, so waiters can combine it with a timeout.
	Broker struct {
		ToModel  chan MsgToModel
		ToEngine chan any

		CloseEngine    chan struct{}
		CloseModel     chan struct{}
		FinishedEngine chan struct{}
		FinishedModel  chan struct{}
	}

	// MsgToModel is a message sent to the model. The engine status is passed
	// every block, so it is not boxed, to avoid allocations on the render
	// path. Infrequent messages (track events, alerts, edit guard expiries)
	// travel boxed in Data; pointer and small value types cast to any
	// without allocating.
	MsgToModel struct {
		HasStatus bool
		Status    EngineStatus

		Data any
	}

	// EngineStatus is the per-block snapshot of the playback side: the
	// master clock position and each track's cursor. It is a plain value
	// copy; the model mirrors it into its display fields unless an edit
	// guard is active.
	EngineStatus struct {
		SongStep    int
		SongMeasure int
		NumTracks   int
		Tracks      [MaxTracks]TrackStatus
	}

	// TrackStatus is one track's slice of the EngineStatus snapshot.
	TrackStatus struct {
		Step    int
		Measure int
		Playing bool
	}

	// TrackEvent reports an edge-triggered track state change. The engine
	// enqueues these instead of invoking callbacks, so no UI work ever runs
	// on the render thread; the model dispatches them to listeners on its
	// own goroutine.
	TrackEvent struct {
		TrackID string
		Kind    TrackEventKind
		Value   bool
	}

	TrackEventKind int

	// tracksMsg replaces the engine's track list. Sent by the model whenever
	// tracks are added, removed or reloaded; the slice and the grid
	// snapshots are allocated on the UI side and handed over whole, so the
	// engine never reads a grid the model may still be writing.
	tracksMsg struct {
		tracks   []*Track
		patterns []aidj.Pattern
	}

	// patternMsg carries a value copy of one track's grid to the engine.
	// Sent after every grid edit; the engine plays from its latest copy.
	patternMsg struct {
		trackID string
		pattern aidj.Pattern
	}
)

const (
	PlayStateChanged TrackEventKind = iota
	ArmedStateChanged
	ArmedToStopStateChanged
)

// MaxTracks is the fixed number of track slots in the deck, matching the
// fixed-size arrays carried in EngineStatus.
const MaxTracks = 8

func NewBroker() *Broker {
	return &Broker{
		ToModel:        make(chan MsgToModel, 1024),
		ToEngine:       make(chan any, 1024),
		CloseEngine:    make(chan struct{}, 1),
		CloseModel:     make(chan struct{}, 1),
		FinishedEngine: make(chan struct{}),
		FinishedModel:  make(chan struct{}),
	}
}

// TrySend is a helper function to send a value to a channel if it is not
// full. It is guaranteed to be non-blocking. Returns true if the value was
// sent, false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received
// from a channel, or timing out after t. ok will be false if the timeout
// occurred or if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
