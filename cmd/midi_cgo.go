//go:build cgo

package cmd

import (
	"github.com/Blackmvmba88/ai-dj/deck"
	"github.com/Blackmvmba88/ai-dj/deck/gomidi"
)

func NewMidiContext() deck.MIDIContext {
	return gomidi.NewContext()
}
