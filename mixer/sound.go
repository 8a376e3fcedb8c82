package mixer

// Zalloc is the zero-initializing float32 allocator used by NewSound and
// NewMixer. It is a package-level hook rather than a constructor argument
// so existing callers pick up a replacement without an API change — the
// equivalent of atomix's ATOMIX_ZALLOC(S) override. The default simply
// zero-allocates with make; override it to route through an arena, a
// pool, or to simulate allocator exhaustion in tests.
//
// Zalloc must return a slice of exactly n zeroed float32s, or nil to
// signal failure.
var Zalloc = func(n int) []float32 {
	return make([]float32, n)
}

// Sound is an immutable, owned PCM buffer shared by zero or more Layers.
// It is safe for concurrent read access from any number of mixer threads
// once constructed; it must not be destroyed while a Layer still
// references it.
type Sound struct {
	channels int
	length   int32 // frames, always a multiple of 4
	samples  []float32
}

// ceil4 rounds n up to the next multiple of 4.
func ceil4(n int32) int32 {
	return (n + 3) &^ 3
}

// NewSound copies length frames of interleaved float32 PCM (1 or 2
// channels) into a new, immutable Sound. length is rounded up to a
// multiple of 4 frames with the padding zero-filled; data must contain
// at least length*channels samples.
//
// Returns ErrBadArgument if channels is not 1 or 2, data is empty, or
// length < 1. Returns ErrAllocFailure if the configured Zalloc hook
// fails.
func NewSound(channels int, data []float32, length int32) (*Sound, error) {
	if channels < 1 || channels > 2 || len(data) == 0 || length < 1 {
		return nil, ErrBadArgument
	}

	rlen := ceil4(length)
	samples := Zalloc(int(rlen) * channels)
	if samples == nil {
		return nil, ErrAllocFailure
	}

	n := int(length) * channels
	if n > len(data) {
		n = len(data)
	}
	copy(samples, data[:n])

	return &Sound{
		channels: channels,
		length:   rlen,
		samples:  samples,
	}, nil
}

// Length returns the sound's length in frames, always a multiple of 4.
func (s *Sound) Length() int32 {
	return s.length
}

// Channels returns the sound's channel count, 1 (mono) or 2 (stereo).
func (s *Sound) Channels() int {
	return s.channels
}
