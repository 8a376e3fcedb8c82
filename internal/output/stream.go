// Package output adapts a *mixer.Mixer to a PCM io.Reader so it can be
// handed to an audio backend's player, the same way a game engine feeds
// decoded samples to its sound device.
package output

import (
	"time"

	"github.com/bareroseaudio/mixer"
	"github.com/bareroseaudio/mixer/internal/control"
)

// Stream implements io.Reader by pulling interleaved stereo frames from
// a Mixer and converting them to 16-bit little-endian PCM, the format
// ebiten/v2/audio.Context.NewPlayer expects. This is the mix thread: the
// only goroutine that may call Stream.Read for a given Mixer.
type Stream struct {
	m   *mixer.Mixer
	buf []float32 // reused float scratch, sized to the largest Read seen
}

// NewStream wraps m. sampleRate is informational only (the caller's
// audio.Context already fixed it); it's kept so Stream can size its
// initial scratch buffer sensibly.
func NewStream(m *mixer.Mixer, sampleRate int) *Stream {
	return &Stream{m: m, buf: make([]float32, 0, sampleRate/10*2)}
}

// Read fills p with 16-bit stereo PCM mixed fresh from the underlying
// Mixer. len(p) must be a multiple of 4 (one stereo int16 frame);
// ebiten's audio player guarantees this in practice.
func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}

	if cap(s.buf) < frames*2 {
		s.buf = make([]float32, frames*2)
	}
	buf := s.buf[:frames*2]

	start := time.Now()
	s.m.Mix(buf, frames)
	control.RecordMix(time.Since(start))

	for i := 0; i < frames*2; i++ {
		v := buf[i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		sample := int16(v * 32767)
		p[i*2] = byte(sample)
		p[i*2+1] = byte(sample >> 8)
	}

	return frames * 4, nil
}
