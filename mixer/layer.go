package mixer

import (
	"math"
	"sync/atomic"
)

// LayerState is the playback state of a Layer.
type LayerState uint8

const (
	// free is the sentinel state indicating a slot is available for
	// allocation. A layer in this state has no observable obligations;
	// its other fields are undefined. Never returned to callers.
	free LayerState = 0

	// Stop fades the layer out (if fmax > 0) and then frees the slot.
	Stop LayerState = 1
	// Halt fades the layer out (if fmax > 0) but never frees the slot;
	// it waits for a later state change (see DESIGN.md's HALT note).
	Halt LayerState = 2
	// Play fades the layer in, plays once, and frees the slot at end.
	Play LayerState = 3
	// Loop fades the layer in and loops between start and end forever.
	Loop LayerState = 4
)

// layer is one slot of the mixer's fixed-size layer array. flag, cursor,
// and gain are the only fields ever written concurrently; they are
// accessed with acquire/release or compare-and-swap. All other fields
// are written only while flag == free and read only while flag != free —
// the release-store of flag is what publishes them to the mix thread.
//
// flag is specified as an atomic 8-bit value; sync/atomic has no 8-bit
// atomic wrapper type, so it is carried here as atomic.Uint32 over the
// same {0..4} state space. This is a representation detail only — no
// behavior depends on the field being narrower than 32 bits.
type layer struct {
	id   uint32 // handle currently bound to this slot, or 0 if never used
	flag atomic.Uint32
	cursor atomic.Int32
	gain   atomic.Uint64 // packed gainPair, see loadGain/storeGain

	snd *Sound // bound sound; written only while flag == free

	start, end int32 // playback window, end-start >= 4, masked to multiples of 4
	fade       int32 // remaining fade counter, owned by the mix thread
	fmax       int32 // fade duration in frames, masked to multiples of 4; 0 disables fading
}

func packGain(g gainPair) uint64 {
	lo := uint64(math.Float32bits(g.left))
	hi := uint64(math.Float32bits(g.right))
	return lo | hi<<32
}

func unpackGain(v uint64) gainPair {
	return gainPair{
		left:  math.Float32frombits(uint32(v)),
		right: math.Float32frombits(uint32(v >> 32)),
	}
}

func (l *layer) loadGain() gainPair {
	return unpackGain(l.gain.Load())
}

func (l *layer) storeGain(g gainPair) {
	l.gain.Store(packGain(g))
}

func (s LayerState) valid() bool {
	return s >= Stop && s <= Loop
}
