package oto

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	aidj "github.com/Blackmvmba88/ai-dj"
)

type (
	// OtoContext wraps the ebitengine/oto context as an aidj.AudioContext.
	// There should be at most one per process.
	OtoContext struct {
		context *oto.Context
	}

	otoPlayer struct {
		player *oto.Player
	}

	// sourceReader adapts an aidj.AudioSource to the io.Reader the oto
	// player pulls from, converting stereo float32 frames to the little
	// endian byte stream of the output format.
	sourceReader struct {
		source aidj.AudioSource
		buf    aidj.AudioBuffer
	}
)

const otoBufferSize = 8192

func NewContext() (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   44100,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferSize * time.Second / 44100,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

// Play starts playing the source and returns a handle to stop or wait for
// the playback.
func (c *OtoContext) Play(r aidj.AudioSource) aidj.CloserWaiter {
	player := c.context.NewPlayer(&sourceReader{source: r})
	player.Play()
	return otoPlayer{player: player}
}

func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o otoPlayer) Close() error { return o.player.Close() }

func (o otoPlayer) Wait() {
	for o.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}

const frameBytes = 8 // 2 channels * 4 bytes

func (s *sourceReader) Read(p []byte) (int, error) {
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	if cap(s.buf) < frames {
		s.buf = make(aidj.AudioBuffer, frames)
	}
	s.buf = s.buf[:frames]
	n, err := s.source.ReadAudio(s.buf)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(p[i*frameBytes:], math.Float32bits(s.buf[i][0]))
		binary.LittleEndian.PutUint32(p[i*frameBytes+4:], math.Float32bits(s.buf[i][1]))
	}
	return n * frameBytes, err
}
