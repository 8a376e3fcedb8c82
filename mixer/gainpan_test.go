package mixer

import "testing"

func TestGainPan(t *testing.T) {
	tests := []struct {
		name       string
		gain, pan  float32
		left, right float32
	}{
		{"center", 1.0, 0.0, 0.5, 0.5},
		{"full right", 1.0, 1.0, 0.0, 1.0},
		{"full left", 1.0, -1.0, 1.0, 0.0},
		{"clamped beyond right", 1.0, 2.0, 0.0, 1.0},
		{"clamped beyond left", 1.0, -2.0, 1.0, 0.0},
		{"double gain center", 2.0, 0.0, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := GainPan(tt.gain, tt.pan)
			if left != tt.left || right != tt.right {
				t.Errorf("GainPan(%v, %v) = (%v, %v), want (%v, %v)",
					tt.gain, tt.pan, left, right, tt.left, tt.right)
			}
		})
	}
}
