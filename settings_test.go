package redact

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		want error
	}{
		{"defaults", Settings{Alpha: 1}, nil},
		{"zero alpha", Settings{}, nil},
		{"alpha above one", Settings{Alpha: 1.01}, ErrInvalidAlpha},
		{"alpha NaN", Settings{Alpha: math.NaN()}, ErrInvalidAlpha},
		{"relative", Settings{Alpha: 1, RelativeX: 1, RelativeY: 0.5}, nil},
		{"relative negative", Settings{Alpha: 1, RelativeY: -0.1}, ErrInvalidRelative},
		{"overlay size", Settings{Alpha: 1, OverlayWidth: 10}, nil},
		{"overlay size negative", Settings{Alpha: 1, OverlayHeight: -1}, ErrInvalidOverlaySize},
		{"negative offsets allowed", Settings{Alpha: 1, OffsetX: -50, OffsetY: -50}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSettingsShift(t *testing.T) {
	s := Settings{OffsetX: 3, OffsetY: -4, RelativeX: 0.5, RelativeY: 0.1}
	dx, dy := s.shift(101, 50)
	if dx != 53 || dy != 1 {
		t.Errorf("shift = (%d,%d), want (53,1)", dx, dy)
	}
}

func TestSettingsGenerations(t *testing.T) {
	eng, _ := newTestEngine(t)
	s0 := eng.Settings()

	if err := eng.SetAlpha(0.5); err != nil {
		t.Fatal(err)
	}
	s1 := eng.Settings()
	if s1.Generation != s0.Generation+1 {
		t.Errorf("Generation = %d, want %d", s1.Generation, s0.Generation+1)
	}
	if s1.sourceGen != s0.sourceGen || s1.geometryGen != s0.geometryGen {
		t.Error("alpha change bumped source or geometry generation")
	}

	if err := eng.SetOffset(1, 2); err != nil {
		t.Fatal(err)
	}
	s2 := eng.Settings()
	if s2.geometryGen != s2.Generation || s2.sourceGen != s1.sourceGen {
		t.Errorf("offset change: geometryGen=%d sourceGen=%d gen=%d", s2.geometryGen, s2.sourceGen, s2.Generation)
	}

	if err := eng.SetLocation("x.png"); err != nil {
		t.Fatal(err)
	}
	s3 := eng.Settings()
	if s3.sourceGen != s3.Generation || s3.geometryGen != s2.geometryGen {
		t.Errorf("location change: sourceGen=%d geometryGen=%d gen=%d", s3.sourceGen, s3.geometryGen, s3.Generation)
	}

	// Rejected updates publish nothing.
	if err := eng.SetRelative(2, 0); !errors.Is(err, ErrInvalidRelative) {
		t.Errorf("SetRelative(2,0) = %v, want ErrInvalidRelative", err)
	}
	if err := eng.SetOverlaySize(-1, 0); !errors.Is(err, ErrInvalidOverlaySize) {
		t.Errorf("SetOverlaySize(-1,0) = %v, want ErrInvalidOverlaySize", err)
	}
	if got := eng.Settings().Generation; got != s3.Generation {
		t.Errorf("Generation after rejected updates = %d, want %d", got, s3.Generation)
	}
}

func TestSettingsConcurrentPublish(t *testing.T) {
	eng, _ := newTestEngine(t)
	const workers, perWorker = 8, 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				var err error
				switch i % 3 {
				case 0:
					err = eng.SetAlpha(float64(i%10) / 10)
				case 1:
					err = eng.SetOffset(w, i)
				default:
					err = eng.ReloadOverlay()
				}
				if err != nil {
					t.Errorf("publish: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if got := eng.Settings().Generation; got != workers*perWorker {
		t.Errorf("Generation = %d, want %d (lost updates)", got, workers*perWorker)
	}
}
