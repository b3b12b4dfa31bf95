package deck

import aidj "github.com/Blackmvmba88/ai-dj"

type (
	// MIDIContext is an EngineProcessContext backed by a MIDI input driver
	// that can enumerate and open devices.
	MIDIContext interface {
		EngineProcessContext
		InputDevices(yield func(MIDIDevice) bool)
		TryToOpenBy(namePrefix string, takeFirst bool)
		HasDeviceOpen() bool
		Close()
	}

	MIDIDevice interface {
		Open() error
		String() string
	}

	// NullProcessContext is an EngineProcessContext with no MIDI input and a
	// fixed transport, used for offline rendering and builds without a MIDI
	// driver. Zero-valued fields read as "not provided": the engine keeps its
	// own tempo and time signature then.
	NullProcessContext struct {
		BPMValue float64
		Sig      aidj.TimeSignature
		Playing  bool
	}
)

func (NullProcessContext) NextEvent(frame int) (event MIDINoteEvent, ok bool) {
	return MIDINoteEvent{}, false
}
func (NullProcessContext) FinishBlock(frame int) {}
func (c NullProcessContext) BPM() (bpm float64, ok bool) {
	return c.BPMValue, c.BPMValue > 0
}
func (c NullProcessContext) TimeSignature() (sig aidj.TimeSignature, ok bool) {
	return c.Sig, c.Sig.Numerator > 0 && c.Sig.Denominator > 0
}
func (c NullProcessContext) HostPlaying() bool { return c.Playing }

func (NullProcessContext) InputDevices(yield func(MIDIDevice) bool) {}
func (NullProcessContext) TryToOpenBy(namePrefix string, take bool) {}
func (NullProcessContext) HasDeviceOpen() bool                      { return false }
func (NullProcessContext) Close()                                   {}
