package blend

import "testing"

func TestDiv255Rounds(t *testing.T) {
	for x := uint32(0); x <= 255*255; x++ {
		want := (x*2 + 255) / 510 // round(x/255)
		if got := div255(x); got != want {
			t.Fatalf("div255(%d) = %d, want %d", x, got, want)
		}
	}
}

func TestMulDiv255(t *testing.T) {
	tests := []struct {
		a, b, want byte
	}{
		{0, 0, 0},
		{255, 255, 255},
		{0, 255, 0},
		{255, 0, 0},
		{128, 128, 64},  // 64.25
		{200, 100, 78},  // 78.43
		{1, 255, 1},
		{127, 127, 63},  // 63.25
		{255, 128, 128}, // identity
	}
	for _, tt := range tests {
		if got := mulDiv255(tt.a, tt.b); got != tt.want {
			t.Errorf("mulDiv255(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLerp255Endpoints(t *testing.T) {
	for a := range 256 {
		for _, b := range []byte{0, 77, 255} {
			if got := lerp255(byte(a), b, 0); got != byte(a) {
				t.Fatalf("lerp255(%d, %d, 0) = %d", a, b, got)
			}
			if got := lerp255(byte(a), b, 255); got != b {
				t.Fatalf("lerp255(%d, %d, 255) = %d", a, b, got)
			}
		}
	}
}

func TestUnit(t *testing.T) {
	tests := []struct {
		in   float64
		want byte
	}{
		{-1, 0}, {0, 0}, {0.5, 128}, {1, 255}, {3, 255}, {0.2, 51},
	}
	for _, tt := range tests {
		if got := Unit(tt.in); got != tt.want {
			t.Errorf("Unit(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
