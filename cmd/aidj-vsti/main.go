//go:build plugin

package main

import (
	"time"

	"pipelined.dev/audio/vst2"

	aidj "github.com/Blackmvmba88/ai-dj"
	"github.com/Blackmvmba88/ai-dj/deck"
)

type VSTIProcessContext struct {
	events     []vst2.MIDIEvent
	eventIndex int
	host       vst2.Host
}

func (c *VSTIProcessContext) NextEvent(frame int) (event deck.MIDINoteEvent, ok bool) {
	for c.eventIndex < len(c.events) {
		ev := c.events[c.eventIndex]
		c.eventIndex++
		switch {
		case ev.Data[0] >= 0x80 && ev.Data[0] < 0x90:
			channel := ev.Data[0] - 0x80
			return deck.MIDINoteEvent{Frame: int(ev.DeltaFrames), On: false, Channel: int(channel), Note: ev.Data[1], Velocity: ev.Data[2]}, true
		case ev.Data[0] >= 0x90 && ev.Data[0] < 0xA0:
			channel := ev.Data[0] - 0x90
			return deck.MIDINoteEvent{Frame: int(ev.DeltaFrames), On: true, Channel: int(channel), Note: ev.Data[1], Velocity: ev.Data[2]}, true
		default:
			// ignore all other MIDI messages
		}
	}
	return deck.MIDINoteEvent{}, false
}

func (c *VSTIProcessContext) FinishBlock(frame int) {
	c.events = c.events[:0] // reset buffer, but keep the allocated memory
	c.eventIndex = 0
}

func (c *VSTIProcessContext) BPM() (bpm float64, ok bool) {
	timeInfo := c.host.GetTimeInfo(vst2.TempoValid)
	if timeInfo == nil || timeInfo.Flags&vst2.TempoValid == 0 || timeInfo.Tempo == 0 {
		return 0, false
	}
	return timeInfo.Tempo, true
}

func (c *VSTIProcessContext) TimeSignature() (sig aidj.TimeSignature, ok bool) {
	timeInfo := c.host.GetTimeInfo(vst2.TimeSigValid)
	if timeInfo == nil || timeInfo.Flags&vst2.TimeSigValid == 0 || timeInfo.TimeSigNumerator == 0 {
		return aidj.TimeSignature{}, false
	}
	return aidj.TimeSignature{
		Numerator:   int(timeInfo.TimeSigNumerator),
		Denominator: int(timeInfo.TimeSigDenominator),
	}, true
}

func (c *VSTIProcessContext) HostPlaying() bool {
	timeInfo := c.host.GetTimeInfo(0)
	return timeInfo != nil && timeInfo.Flags&vst2.TransportPlaying != 0
}

func init() {
	var (
		version = int32(100)
	)
	vst2.PluginAllocator = func(h vst2.Host) (vst2.Plugin, vst2.Dispatcher) {
		broker := deck.NewBroker()
		model := deck.NewModel(broker)
		engine := deck.NewEngine(broker, 44100)
		exec := make(chan func(), 16)
		go model.Run(exec)
		context := VSTIProcessContext{host: h}
		buf := make(aidj.AudioBuffer, 1024)
		return vst2.Plugin{
				UniqueID:       PLUGIN_ID,
				Version:        version,
				InputChannels:  0,
				OutputChannels: 2,
				Name:           PLUGIN_NAME,
				Vendor:         "Blackmvmba88/ai-dj",
				Category:       vst2.PluginCategorySynth,
				Flags:          vst2.PluginIsSynth,
				ProcessFloatFunc: func(in, out vst2.FloatBuffer) {
					left := out.Channel(0)
					right := out.Channel(1)
					if len(buf) < out.Frames {
						buf = append(buf, make(aidj.AudioBuffer, out.Frames-len(buf))...)
					}
					buf = buf[:out.Frames]
					engine.Process(buf, &context)
					for i := 0; i < out.Frames; i++ {
						left[i], right[i] = buf[i][0], buf[i][1]
					}
				},
			}, vst2.Dispatcher{
				CanDoFunc: func(pcds vst2.PluginCanDoString) vst2.CanDoResponse {
					switch pcds {
					case vst2.PluginCanReceiveEvents, vst2.PluginCanReceiveMIDIEvent, vst2.PluginCanReceiveTimeInfo:
						return vst2.YesCanDo
					}
					return vst2.NoCanDo
				},
				ProcessEventsFunc: func(ev *vst2.EventsPtr) {
					for i := 0; i < ev.NumEvents(); i++ {
						a := ev.Event(i)
						switch v := a.(type) {
						case *vst2.MIDIEvent:
							context.events = append(context.events, *v)
						}
					}
				},
				CloseFunc: func() {
					deck.TrySend(broker.CloseModel, struct{}{})
					deck.TimeoutReceive(broker.FinishedModel, 3*time.Second)
				},
				GetChunkFunc: func(isPreset bool) []byte {
					retChn := make(chan []byte)
					exec <- func() { retChn <- model.MarshalProject() }
					return <-retChn
				},
				SetChunkFunc: func(data []byte, isPreset bool) {
					exec <- func() { model.UnmarshalProject(data) }
				},
			}
	}
}

func main() {}
