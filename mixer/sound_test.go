package mixer

import "testing"

func TestNewSoundRejectsBadArguments(t *testing.T) {
	if _, err := NewSound(3, []float32{1, 2}, 4); err != ErrBadArgument {
		t.Errorf("channels=3: got %v, want ErrBadArgument", err)
	}
	if _, err := NewSound(1, nil, 4); err != ErrBadArgument {
		t.Errorf("empty data: got %v, want ErrBadArgument", err)
	}
	if _, err := NewSound(1, []float32{1}, 0); err != ErrBadArgument {
		t.Errorf("length=0: got %v, want ErrBadArgument", err)
	}
}

func TestNewSoundRoundsLengthToMultipleOf4(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5}
	snd, err := NewSound(1, data, 5)
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}
	if snd.Length() != 8 {
		t.Errorf("Length() = %d, want 8", snd.Length())
	}
	if snd.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", snd.Channels())
	}
}

func TestNewSoundAllocFailure(t *testing.T) {
	old := Zalloc
	defer func() { Zalloc = old }()
	Zalloc = func(n int) []float32 { return nil }

	if _, err := NewSound(1, []float32{1, 2, 3, 4}, 4); err != ErrAllocFailure {
		t.Errorf("got %v, want ErrAllocFailure", err)
	}
}
