package mixer

import (
	"errors"
	"testing"
)

func constSound(t *testing.T, channels int, frames int32, value float32) *Sound {
	t.Helper()
	data := make([]float32, int(frames)*channels)
	for i := range data {
		data[i] = value
	}
	snd, err := NewSound(channels, data, frames)
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}
	return snd
}

func TestMixSilenceOnEmptyMixer(t *testing.T) {
	m, err := NewMixer(0.5, 0)
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}

	out := make([]float32, 128)
	n := m.Mix(out, 64)
	if n != 64 {
		t.Fatalf("Mix returned %d, want 64", n)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
}

func TestMixMonoConstant(t *testing.T) {
	m, err := NewMixer(1.0, 0, WithScalarMode())
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 1, 8, 1.0)

	if _, err := m.Play(snd, Play, 1.0, 0.0); err != nil {
		t.Fatalf("Play: %v", err)
	}

	out := make([]float32, 16)
	m.Mix(out, 8)
	for i := 0; i < 8; i++ {
		if out[i*2] != 0.5 || out[i*2+1] != 0.5 {
			t.Fatalf("frame %d = (%v, %v), want (0.5, 0.5)", i, out[i*2], out[i*2+1])
		}
	}
}

func TestMixStereoPanFullRight(t *testing.T) {
	m, err := NewMixer(1.0, 0, WithScalarMode())
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 2, 4, 1.0)

	if _, err := m.Play(snd, Play, 1.0, 1.0); err != nil {
		t.Fatalf("Play: %v", err)
	}

	out := make([]float32, 8)
	m.Mix(out, 4)
	want := []float32{0, 1, 0, 1, 0, 1, 0, 1}
	for i, v := range out {
		if v != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestMixLoopWraparound(t *testing.T) {
	// Clipping is disabled: with gain 2 the expected samples reach 4.
	m, err := NewMixer(1.0, 0, WithScalarMode(), WithClipDisabled())
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd, err := NewSound(1, []float32{1, 2, 3, 4}, 4)
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}

	if _, err := m.PlayAdv(snd, Loop, 2.0, 0.0, 0, 8, 0); err != nil {
		t.Fatalf("PlayAdv: %v", err)
	}

	out := make([]float32, 16)
	m.Mix(out, 8)
	wantLeft := []float32{1, 2, 3, 4, 1, 2, 3, 4}
	for i, want := range wantLeft {
		if out[i*2] != want {
			t.Fatalf("left[%d] = %v, want %v", i, out[i*2], want)
		}
	}
}

func TestFadeInScalar(t *testing.T) {
	m, err := NewMixer(1.0, 0, WithScalarMode())
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 1, 64, 1.0)

	// gain=1, pan=0 => per-channel gain of 0.5 (see GainPan); the ramp
	// itself still rises linearly in steps of fmax^-1, just scaled by
	// that 0.5 like every other sample this layer produces.
	if _, err := m.PlayAdv(snd, Play, 1.0, 0.0, 0, 64, 4); err != nil {
		t.Fatalf("PlayAdv: %v", err)
	}

	out := make([]float32, 8)
	m.Mix(out, 4)
	want := []float32{0, 0.125, 0.25, 0.375}
	for i, w := range want {
		if out[i*2] != w {
			t.Fatalf("left[%d] = %v, want %v", i, out[i*2], w)
		}
	}
}

func TestFadeInBlockGranularity(t *testing.T) {
	m, err := NewMixer(1.0, 0) // block (SIMD-style) mode is the default
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 1, 64, 1.0)

	if _, err := m.PlayAdv(snd, Play, 1.0, 0.0, 0, 64, 16); err != nil {
		t.Fatalf("PlayAdv: %v", err)
	}

	out := make([]float32, 32)
	m.Mix(out, 16)

	// Block mode recomputes the fade multiplier once per 4-frame group,
	// not once per frame: every frame within a group shares one value.
	wantPerBlock := []float32{0, 0.125, 0.25, 0.375}
	for block := 0; block < 4; block++ {
		for frame := 0; frame < 4; frame++ {
			i := block*4 + frame
			if out[i*2] != wantPerBlock[block] {
				t.Fatalf("block %d frame %d left = %v, want %v", block, frame, out[i*2], wantPerBlock[block])
			}
		}
	}
}

func TestStopTriggersFadeOutThenInvalidatesHandle(t *testing.T) {
	m, err := NewMixer(1.0, 0, WithScalarMode())
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 1, 64, 1.0)

	handle, err := m.PlayAdv(snd, Play, 2.0, 0.0, 0, 64, 8)
	if err != nil {
		t.Fatalf("PlayAdv: %v", err)
	}

	// Run the fade-in to completion (8 frames at fmax=8).
	warmup := make([]float32, 16)
	m.Mix(warmup, 8)

	if err := m.SetState(handle, Stop); err != nil {
		t.Fatalf("SetState(Stop): %v", err)
	}

	out := make([]float32, 16)
	m.Mix(out, 8)

	// gain=2, pan=0 => per-channel gain of 1.0, so the ramp runs from
	// 1.0 down in steps of 1/8.
	for i := 0; i < 8; i++ {
		want := float32(8-i) / 8
		if out[i*2] != want {
			t.Fatalf("left[%d] = %v, want %v", i, out[i*2], want)
		}
	}

	if err := m.SetGainPan(handle, 1.0, 0.0); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("SetGainPan after full stop-fade: got %v, want ErrInvalidHandle", err)
	}
}

func TestNoSlotExhaustion(t *testing.T) {
	m, err := NewMixer(1.0, 0, WithLayerBits(2)) // L=4
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 1, 4, 1.0)

	var handles []uint32
	var errs []error
	for i := 0; i < 6; i++ {
		h, err := m.Play(snd, Play, 1.0, 0.0)
		handles = append(handles, h)
		errs = append(errs, err)
	}

	for i := 0; i < 4; i++ {
		if handles[i] == 0 || errs[i] != nil {
			t.Fatalf("call %d: handle=%d err=%v, want a valid handle", i, handles[i], errs[i])
		}
	}
	for i := 4; i < 6; i++ {
		if handles[i] != 0 || !errors.Is(errs[i], ErrNoSlot) {
			t.Fatalf("call %d: handle=%d err=%v, want (0, ErrNoSlot)", i, handles[i], errs[i])
		}
	}
}

func TestSetStateInvalidHandle(t *testing.T) {
	m, err := NewMixer(1.0, 0)
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	if err := m.SetState(0, Play); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("SetState(0, ...) = %v, want ErrInvalidHandle", err)
	}
	if err := m.SetState(12345, Play); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("SetState(stale handle) = %v, want ErrInvalidHandle", err)
	}
}

func TestSetStateRejectsBadState(t *testing.T) {
	m, err := NewMixer(1.0, 0)
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 1, 4, 1.0)
	handle, err := m.Play(snd, Play, 1.0, 0.0)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := m.SetState(handle, LayerState(99)); !errors.Is(err, ErrBadArgument) {
		t.Fatalf("SetState(99) = %v, want ErrBadArgument", err)
	}
}

func TestHaltAllThenPlayAllResumes(t *testing.T) {
	m, err := NewMixer(1.0, 0, WithScalarMode())
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 1, 64, 1.0)
	handle, err := m.PlayAdv(snd, Play, 1.0, 0.0, 0, 64, 0)
	if err != nil {
		t.Fatalf("PlayAdv: %v", err)
	}

	m.HaltAll()
	out := make([]float32, 8)
	m.Mix(out, 4)
	for _, v := range out {
		if v != 0 {
			t.Fatalf("halted layer produced non-silence: %v", out)
		}
	}

	m.PlayAll()
	m.Mix(out, 4)
	for i := 0; i < 4; i++ {
		if out[i*2] != 0.5 {
			t.Fatalf("resumed layer left[%d] = %v, want 0.5", i, out[i*2])
		}
	}

	if err := m.SetGainPan(handle, 1.0, 0.0); err != nil {
		t.Fatalf("handle should still be valid after halt/resume: %v", err)
	}
}

func TestStopAllOverwritesHalt(t *testing.T) {
	// Decided open question: StopAll unconditionally stores STOP over
	// HALT, invalidating the handle immediately even though the layer
	// itself lingers in the pool until the mix thread frees it.
	m, err := NewMixer(1.0, 0, WithScalarMode())
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	snd := constSound(t, 1, 64, 1.0)
	handle, err := m.Play(snd, Halt, 1.0, 0.0)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}

	m.StopAll()

	if err := m.SetGainPan(handle, 1.0, 0.0); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("SetGainPan after StopAll over HALT: got %v, want ErrInvalidHandle", err)
	}
}
