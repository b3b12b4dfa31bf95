package aidj

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ParseWav decodes a RIFF/WAVE file into an AudioBuffer, returning the buffer
// and the file sample rate. 16-bit PCM and 32-bit IEEE float are accepted,
// mono or stereo; mono is duplicated to both channels. This is the reverse of
// AudioBuffer.Wav and accepts everything it produces.
func ParseWav(data []byte) (AudioBuffer, float64, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE file")
	}
	var (
		format      uint16
		numChannels int
		sampleRate  float64
		bits        int
		raw         []byte
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("fmt chunk too short")
			}
			format = binary.LittleEndian.Uint16(data[body:])
			numChannels = int(binary.LittleEndian.Uint16(data[body+2:]))
			sampleRate = float64(binary.LittleEndian.Uint32(data[body+4:]))
			bits = int(binary.LittleEndian.Uint16(data[body+14:]))
		case "data":
			raw = data[body : body+size]
		}
		pos = body + size
		if size%2 == 1 { // chunks are word aligned
			pos++
		}
	}
	if raw == nil {
		return nil, 0, fmt.Errorf("no data chunk")
	}
	if numChannels < 1 || numChannels > 2 {
		return nil, 0, fmt.Errorf("unsupported channel count %d", numChannels)
	}
	var samples []float32
	switch {
	case format == 1 && bits == 16:
		samples = make([]float32, len(raw)/2)
		for i := range samples {
			v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
			samples[i] = float32(v) / math.MaxInt16
		}
	case format == 3 && bits == 32:
		samples = make([]float32, len(raw)/4)
		for i := range samples {
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	default:
		return nil, 0, fmt.Errorf("unsupported wav format %d with %d bits", format, bits)
	}
	frames := len(samples) / numChannels
	buf := make(AudioBuffer, frames)
	if numChannels == 1 {
		for i := 0; i < frames; i++ {
			buf[i] = [2]float32{samples[i], samples[i]}
		}
	} else {
		for i := 0; i < frames; i++ {
			buf[i] = [2]float32{samples[i*2], samples[i*2+1]}
		}
	}
	return buf, sampleRate, nil
}
