package blend

import "testing"

func TestSourceAlpha(t *testing.T) {
	tests := []struct {
		name    string
		dst     [4]byte
		src     [4]byte
		opacity byte
		want    [4]byte
	}{
		{"opaque source", [4]byte{10, 20, 30, 255}, [4]byte{200, 100, 50, 255}, 255, [4]byte{200, 100, 50, 255}},
		{"transparent source", [4]byte{10, 20, 30, 255}, [4]byte{200, 100, 50, 0}, 255, [4]byte{10, 20, 30, 255}},
		{"zero opacity", [4]byte{10, 20, 30, 255}, [4]byte{200, 100, 50, 255}, 0, [4]byte{10, 20, 30, 255}},
		{"half opacity", [4]byte{0, 0, 0, 255}, [4]byte{255, 255, 255, 255}, 128, [4]byte{128, 128, 128, 255}},
		{"alpha channel onto clear", [4]byte{0, 0, 0, 0}, [4]byte{255, 0, 0, 128}, 255, [4]byte{128, 0, 0, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := tt.dst
			SourceAlpha(dst[:], tt.src[:], tt.opacity)
			if dst != tt.want {
				t.Errorf("SourceAlpha = %v, want %v", dst, tt.want)
			}
		})
	}
}

func TestSourceAlphaKeepsOpaqueDestination(t *testing.T) {
	for sa := range 256 {
		dst := [4]byte{1, 2, 3, 255}
		SourceAlpha(dst[:], []byte{9, 9, 9, byte(sa)}, 255)
		if dst[3] != 255 {
			t.Fatalf("src alpha %d: dst alpha = %d, want 255", sa, dst[3])
		}
	}
}

func TestSourceAlphaCombined(t *testing.T) {
	dst := [4]byte{0, 0, 0, 255}
	SourceAlphaCombined(dst[:], []byte{255, 255, 255, 255}, 128)
	// alpha channel is dst*(1-sa) + sa*sa
	if dst[0] != 128 || dst[3] != 191 {
		t.Errorf("SourceAlphaCombined = %v, want [128 128 128 191]", dst)
	}
}

func TestGet(t *testing.T) {
	for _, m := range []Mode{ModeSeparate, ModeCombined, Mode(99)} {
		if Get(m) == nil {
			t.Errorf("Get(%v) = nil", m)
		}
	}
	if ModeCombined.String() != "combined" || Mode(99).String() != "unknown" {
		t.Error("unexpected Mode names")
	}
}
