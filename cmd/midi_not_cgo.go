//go:build !cgo

package cmd

import (
	"github.com/Blackmvmba88/ai-dj/deck"
)

func NewMidiContext() deck.MIDIContext {
	// with no cgo, we cannot use MIDI, so return a null context
	return deck.NullProcessContext{Playing: true}
}
