package mixer

import (
	"math"
	"sync/atomic"
)

// defaultLayerBits is atomix's ATOMIX_LBITS default: 256 layers.
const defaultLayerBits = 8

// Option configures a Mixer at construction time. These stand in for
// the specification's build-time options (layer_bits, disable_simd,
// disable_clip) as functional options, since Go has no preprocessor.
type Option func(*mixerOptions)

type mixerOptions struct {
	layerBits   int
	scalar      bool
	disableClip bool
}

// WithLayerBits sets the layer count to 2^bits (default 8, i.e. 256
// layers). Must be between 1 and 24.
func WithLayerBits(bits int) Option {
	return func(o *mixerOptions) { o.layerBits = bits }
}

// WithScalarMode switches the mix loop to the scalar path: cursor and
// fade advance one frame at a time instead of in blocks of four, and no
// carry buffer is used. Equivalent to the specification's disable_simd.
func WithScalarMode() Option {
	return func(o *mixerOptions) { o.scalar = true }
}

// WithClipDisabled skips the final [-1, +1] clamp pass on mixed output.
// Equivalent to the specification's disable_clip.
func WithClipDisabled() Option {
	return func(o *mixerOptions) { o.disableClip = true }
}

// Mixer owns a fixed-size pool of Layers, a global output volume, and a
// default fade length for new layers. Exactly one goroutine ("the mix
// thread") may call Mix; exactly one other goroutine ("the control
// thread") may call every other method. The two may run concurrently;
// no further concurrency is supported.
type Mixer struct {
	layers []layer
	mask   uint32

	volume atomic.Uint32 // packed float32, see loadVolume/storeVolume

	defaultFade int32  // plain; control-thread owned
	nextID      uint32 // plain; control-thread owned

	scalar bool
	clip   bool

	// carry holds up to 3 stereo frames (6 floats) produced by a
	// previous Mix call but not yet delivered to the caller. Touched
	// only by the mix thread; unused in scalar mode.
	carry   []float32
	carryN  int
	scratch []float32 // reused accumulator, grown on demand
}

// NewMixer creates a Mixer with every layer FREE. volume may be any
// float, including negative. defaultFade is clamped to 0 if negative
// and masked to a multiple of 4; it applies only to layers allocated
// afterwards via Play.
//
// Returns ErrAllocFailure if the configured Zalloc hook fails.
func NewMixer(volume float32, defaultFade int32, opts ...Option) (*Mixer, error) {
	o := mixerOptions{layerBits: defaultLayerBits}
	for _, opt := range opts {
		opt(&o)
	}

	l := 1 << uint(o.layerBits)
	carry := Zalloc(6)
	if carry == nil {
		return nil, ErrAllocFailure
	}

	if defaultFade < 0 {
		defaultFade = 0
	} else {
		defaultFade &^= 3
	}

	m := &Mixer{
		layers:      make([]layer, l),
		mask:        uint32(l - 1),
		defaultFade: defaultFade,
		scalar:      o.scalar,
		clip:        !o.disableClip,
		carry:       carry,
	}
	m.storeVolume(volume)
	return m, nil
}

func (m *Mixer) loadVolume() float32 {
	return math.Float32frombits(m.volume.Load())
}

func (m *Mixer) storeVolume(v float32) {
	m.volume.Store(math.Float32bits(v))
}

// Play allocates a layer playing snd from its first frame to its last,
// in the given initial state, with the mixer's current default fade.
// gain may be any float, including negative; pan is clamped to
// [-1, +1]. Returns the new handle, or 0 with ErrNoSlot if every layer
// is occupied, or ErrBadArgument if snd is nil or state is invalid.
func (m *Mixer) Play(snd *Sound, state LayerState, gain, pan float32) (uint32, error) {
	if snd == nil {
		return 0, ErrBadArgument
	}
	return m.PlayAdv(snd, state, gain, pan, 0, snd.Length(), m.defaultFade)
}

// PlayAdv is Play with an explicit playback window [start, end) and a
// per-layer fade length, overriding the mixer's default. start may be
// negative for pre-roll silence; end can exceed snd's length to loop
// through it more than once per LOOP cycle. Both are masked to
// multiples of 4. Fails with ErrBadArgument if end-start < 4 or end < 4.
func (m *Mixer) PlayAdv(snd *Sound, state LayerState, gain, pan float32, start, end, fade int32) (uint32, error) {
	if snd == nil || !state.valid() {
		return 0, ErrBadArgument
	}
	if end-start < 4 || end < 4 {
		return 0, ErrBadArgument
	}

	l := uint32(len(m.layers))
	for i := uint32(0); i < l; i++ {
		id := m.nextID
		m.nextID++
		lay := &m.layers[id&m.mask]

		if lay.flag.Load() == uint32(free) {
			if id == 0 {
				id = l
			}

			fmax := fade
			if fmax < 0 {
				fmax = 0
			} else {
				fmax &^= 3
			}

			lay.id = id
			lay.snd = snd
			lay.start = start &^ 3
			lay.end = end &^ 3
			lay.fmax = fmax
			if state >= Play {
				lay.fade = 0
			} else {
				lay.fade = fmax
			}

			lay.storeGain(gainPanPair(gain, pan))
			lay.cursor.Store(lay.start)
			lay.flag.Store(uint32(state))
			return id, nil
		}
	}
	return 0, ErrNoSlot
}

// layerFor validates handle against the slot's stored id and state,
// returning the layer on success or nil on ErrInvalidHandle. Per
// spec, a layer in STOP is treated as already-invalid for mutation:
// only HALT, PLAY, and LOOP accept SetGainPan/SetCursor/SetState.
func (m *Mixer) layerFor(handle uint32) *layer {
	if handle == 0 {
		return nil
	}
	lay := &m.layers[handle&m.mask]
	if lay.id != handle {
		return nil
	}
	if lay.flag.Load() <= uint32(Stop) {
		return nil
	}
	return lay
}

// SetGainPan updates the gain and pan of the layer addressed by handle.
// Returns ErrInvalidHandle if the handle is stale or the layer is FREE
// or STOP.
func (m *Mixer) SetGainPan(handle uint32, gain, pan float32) error {
	lay := m.layerFor(handle)
	if lay == nil {
		return ErrInvalidHandle
	}
	lay.storeGain(gainPanPair(gain, pan))
	return nil
}

// SetCursor moves the playback cursor of the layer addressed by handle,
// clamped to [start, end] and masked to a multiple of 4. This races
// with the mix thread's own cursor advance by design: the mix thread's
// next compare-and-swap may discard either side's update, so SetCursor
// is best-effort. Returns ErrInvalidHandle if the handle is stale or
// the layer is FREE or STOP.
func (m *Mixer) SetCursor(handle uint32, cursor int32) error {
	lay := m.layerFor(handle)
	if lay == nil {
		return ErrInvalidHandle
	}
	switch {
	case cursor < lay.start:
		cursor = lay.start
	case cursor > lay.end:
		cursor = lay.end
	default:
		cursor &^= 3
	}
	lay.cursor.Store(cursor)
	return nil
}

// SetState attempts to transition the layer addressed by handle to the
// given state via a single compare-and-swap from its currently observed
// state. Succeeds trivially if the layer is already in that state.
// There is no retry: if the mix thread changes the flag concurrently,
// the call fails with ErrInvalidHandle even though the handle may still
// be valid. Returns ErrBadArgument if state is not one of STOP, HALT,
// PLAY, or LOOP.
func (m *Mixer) SetState(handle uint32, state LayerState) error {
	if !state.valid() {
		return ErrBadArgument
	}
	if handle == 0 {
		return ErrInvalidHandle
	}
	lay := &m.layers[handle&m.mask]
	if lay.id != handle {
		return ErrInvalidHandle
	}

	prev := lay.flag.Load()
	if prev <= uint32(Stop) {
		return ErrInvalidHandle
	}
	if LayerState(prev) == state {
		return nil
	}
	if lay.flag.CompareAndSwap(prev, uint32(state)) {
		return nil
	}
	return ErrInvalidHandle
}

// SetVolume sets the mixer's global output volume, applied to every
// layer on its next Mix call. May be any float, including negative.
func (m *Mixer) SetVolume(volume float32) {
	m.storeVolume(volume)
}

// SetDefaultFade sets the fade length applied to layers allocated by
// future Play calls (PlayAdv is unaffected, as it always takes an
// explicit fade). Negative values clamp to 0; the result is masked to
// a multiple of 4.
func (m *Mixer) SetDefaultFade(fade int32) {
	if fade < 0 {
		fade = 0
	} else {
		fade &^= 3
	}
	m.defaultFade = fade
}

// StopAll transitions every non-FREE layer to STOP, triggering a
// fade-out (if its fade length is nonzero) and eventual release on the
// mix thread's next visit. Every outstanding handle is invalidated by
// this call, even ones that were HALTed — this unconditionally
// overwrites HALT, which can resurrect a fade-out on a layer that had
// already fully faded (see DESIGN.md).
func (m *Mixer) StopAll() {
	for i := range m.layers {
		lay := &m.layers[i]
		if lay.flag.Load() > uint32(Stop) {
			lay.flag.Store(uint32(Stop))
		}
	}
}

// HaltAll attempts to transition every currently playing or looping
// layer to HALT via a single compare-and-swap each; layers already
// stopped, halted, or free are left untouched. Best-effort: a layer
// whose flag changes between the load and the CAS is simply skipped.
func (m *Mixer) HaltAll() {
	for i := range m.layers {
		lay := &m.layers[i]
		if f := lay.flag.Load(); f > uint32(Halt) {
			lay.flag.CompareAndSwap(f, uint32(Halt))
		}
	}
}

// PlayAll attempts to resume every halted layer via a single
// compare-and-swap each. Has no effect on layers that are free,
// stopped, playing, or looping.
func (m *Mixer) PlayAll() {
	for i := range m.layers {
		m.layers[i].flag.CompareAndSwap(uint32(Halt), uint32(Play))
	}
}

// ActiveLayers returns an approximate count of non-FREE layers. It is a
// snapshot that may be stale the instant it returns, suitable for
// monitoring/metrics rather than control-flow decisions.
func (m *Mixer) ActiveLayers() int {
	n := 0
	for i := range m.layers {
		if m.layers[i].flag.Load() != uint32(free) {
			n++
		}
	}
	return n
}

// LayerCount returns the fixed number of layer slots, 2^layerBits.
func (m *Mixer) LayerCount() int {
	return len(m.layers)
}
