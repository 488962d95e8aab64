package redact

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/redact/overlay"
	"github.com/gogpu/redact/region"
)

// recordingCompositor records every call made by the engine.
type recordingCompositor struct {
	begins     int
	bases      int
	ends       int
	closed     bool
	overlays   []*overlay.Image
	current    *overlay.Image
	regions    []region.Rect
	alphas     []float64
	width      int
	height     int
	failBegin  error
	failRegion error

	// failOverlay fails the next non-nil SetOverlay once.
	failOverlay error
}

func (c *recordingCompositor) Begin(w, h int) error {
	if c.failBegin != nil {
		return c.failBegin
	}
	c.begins++
	c.width, c.height = w, h
	c.regions = c.regions[:0]
	c.alphas = c.alphas[:0]
	return nil
}

func (c *recordingCompositor) DrawBase(*Frame) error { c.bases++; return nil }

func (c *recordingCompositor) SetOverlay(img *overlay.Image) error {
	if img != nil && c.failOverlay != nil {
		err := c.failOverlay
		c.failOverlay = nil
		return err
	}
	c.overlays = append(c.overlays, img)
	c.current = img
	return nil
}

func (c *recordingCompositor) HasOverlay() bool { return c.current != nil }

func (c *recordingCompositor) DrawRegion(box region.Rect, alpha float64) error {
	if c.failRegion != nil {
		return c.failRegion
	}
	c.regions = append(c.regions, box)
	c.alphas = append(c.alphas, alpha)
	return nil
}

func (c *recordingCompositor) End() error   { c.ends++; return nil }
func (c *recordingCompositor) Close() error { c.closed = true; return nil }

func testOverlay(t *testing.T) *overlay.Image {
	t.Helper()
	img, err := overlay.New(2, 2)
	if err != nil {
		t.Fatalf("overlay.New: %v", err)
	}
	return img
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	path := filepath.Join(t.TempDir(), "mask.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *recordingCompositor) {
	t.Helper()
	rc := &recordingCompositor{}
	eng, err := New(append([]Option{WithCompositor(rc), WithSeed(1)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng, rc
}

func TestNewDefaults(t *testing.T) {
	eng, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer eng.Close()

	if got := eng.Population().Len(); got != region.DefaultRegions {
		t.Errorf("regions = %d, want %d", got, region.DefaultRegions)
	}
	if got := eng.Population().Period(); got != region.DefaultPeriod {
		t.Errorf("period = %d, want %d", got, region.DefaultPeriod)
	}
	if _, ok := eng.Compositor().(*SoftwareCompositor); !ok {
		t.Errorf("default compositor = %T, want *SoftwareCompositor", eng.Compositor())
	}
	if a := eng.Settings().Alpha; a != 1 {
		t.Errorf("default alpha = %v, want 1", a)
	}
}

func TestNewInvalidAlpha(t *testing.T) {
	for _, a := range []float64{-0.1, 1.5} {
		if _, err := New(WithAlpha(a)); !errors.Is(err, ErrInvalidAlpha) {
			t.Errorf("New(WithAlpha(%v)) error = %v, want ErrInvalidAlpha", a, err)
		}
	}
}

func TestStepBeforeStart(t *testing.T) {
	eng, _ := newTestEngine(t)
	if _, err := eng.Step(context.Background(), NewFrame(4, 4)); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Step before Start = %v, want ErrNotStarted", err)
	}
}

func TestStartInvalidSize(t *testing.T) {
	eng, _ := newTestEngine(t)
	for _, size := range [][2]int{{0, 1}, {1, 0}, {-5, 10}} {
		if err := eng.Start(size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Start(%d,%d) = %v, want ErrInvalidSize", size[0], size[1], err)
		}
	}
}

func TestStepNilFrameAndCanceledContext(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.Start(10, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Step(context.Background(), nil); !errors.Is(err, ErrNilFrame) {
		t.Errorf("Step(nil) = %v, want ErrNilFrame", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Step(ctx, NewFrame(10, 10)); !errors.Is(err, context.Canceled) {
		t.Errorf("Step(canceled) = %v, want context.Canceled", err)
	}
}

func TestStepWithoutOverlayDrawsBaseOnly(t *testing.T) {
	eng, rc := newTestEngine(t, WithRegions(50))
	if err := eng.Start(640, 480); err != nil {
		t.Fatal(err)
	}
	stats, err := eng.Step(context.Background(), NewFrame(640, 480))
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if rc.begins != 1 || rc.bases != 1 || rc.ends != 1 {
		t.Errorf("calls begin/base/end = %d/%d/%d, want 1/1/1", rc.begins, rc.bases, rc.ends)
	}
	if len(rc.regions) != 0 || stats.Visible != 0 || stats.Skipped != 0 {
		t.Errorf("drew %d regions (stats %+v) without overlay", len(rc.regions), stats)
	}
	if stats.Frame != 1 || !stats.Rotated || stats.Phase != 0 {
		t.Errorf("stats = %+v, want first frame rotated at phase 0", stats)
	}
}

func TestStepDrawsOnlyValidClampedBoxes(t *testing.T) {
	const w, h = 1920, 1080
	eng, rc := newTestEngine(t)
	if err := eng.SetOverlayImage(testOverlay(t)); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(w, h); err != nil {
		t.Fatal(err)
	}

	for step := 0; step < 10; step++ {
		stats, err := eng.Step(context.Background(), NewFrame(w, h))
		if err != nil {
			t.Fatalf("Step %d: %v", step, err)
		}
		if stats.Visible+stats.Skipped != region.DefaultRegions {
			t.Errorf("visible+skipped = %d, want %d", stats.Visible+stats.Skipped, region.DefaultRegions)
		}
		if len(rc.regions) != stats.Visible {
			t.Errorf("drew %d regions, stats.Visible = %d", len(rc.regions), stats.Visible)
		}
		for _, box := range rc.regions {
			clip, ok := region.Clamp(box, w, h)
			if !ok || !region.Window(w, h).Contains(clip) {
				t.Fatalf("drew box %v with invalid clip %v", box, clip)
			}
		}
	}
}

func TestStepFullCycleRotatesOnce(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.SetOverlayImage(testOverlay(t)); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(1920, 1080); err != nil {
		t.Fatal(err)
	}

	rotations := 0
	for i := 0; i < region.DefaultPeriod; i++ {
		stats, err := eng.Step(context.Background(), NewFrame(8, 8))
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if stats.Rotated {
			rotations++
		}
		if want := float64(i) / region.DefaultPeriod; stats.Phase != want {
			t.Fatalf("step %d phase = %v, want %v", i, stats.Phase, want)
		}
	}
	if rotations != 1 {
		t.Errorf("rotations over one period = %d, want 1", rotations)
	}
	if got := eng.Population().Rotations(); got != 1 {
		t.Errorf("Population().Rotations() = %d, want 1", got)
	}
}

func TestStepAppliesOffsetAndRelative(t *testing.T) {
	fixed := region.R(10, 20, 30, 40)
	gen := region.GeneratorFunc(func(int, int) region.Rect { return fixed })
	eng, rc := newTestEngine(t, WithRegions(1), WithGenerator(gen))
	if err := eng.SetOverlayImage(testOverlay(t)); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetOffset(5, -3); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetRelative(0.5, 0.25); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(200, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Step(context.Background(), NewFrame(200, 100)); err != nil {
		t.Fatal(err)
	}
	// dx = 0.5*200 + 5, dy = 0.25*100 - 3
	want := fixed.Translate(105, 22)
	if len(rc.regions) != 1 || rc.regions[0] != want {
		t.Errorf("regions = %v, want [%v]", rc.regions, want)
	}

	// A shift that pushes the box out of the window skips it.
	if err := eng.SetOffset(1000, 0); err != nil {
		t.Fatal(err)
	}
	stats, err := eng.Step(context.Background(), NewFrame(200, 100))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Visible != 0 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 skipped", stats)
	}
}

func TestStepAlpha(t *testing.T) {
	eng, rc := newTestEngine(t, WithRegions(20), WithAlpha(0.25))
	if err := eng.SetOverlayImage(testOverlay(t)); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(100, 100); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetAlpha(0.75); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Step(context.Background(), NewFrame(100, 100)); err != nil {
		t.Fatal(err)
	}
	for _, a := range rc.alphas {
		if a != 0.75 {
			t.Fatalf("alpha = %v, want 0.75", a)
		}
	}
	if err := eng.SetAlpha(2); !errors.Is(err, ErrInvalidAlpha) {
		t.Errorf("SetAlpha(2) = %v, want ErrInvalidAlpha", err)
	}
	if a := eng.Settings().Alpha; a != 0.75 {
		t.Errorf("alpha after rejected update = %v, want 0.75", a)
	}
}

func TestStepLoadsOverlayFromLocation(t *testing.T) {
	path := writePNG(t, 8, 4)
	eng, rc := newTestEngine(t, WithLocation(path))
	if err := eng.SetOverlaySize(16, 0); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(100, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Step(context.Background(), NewFrame(100, 100)); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if rc.current == nil {
		t.Fatal("overlay not installed")
	}
	if rc.current.Width != 16 || rc.current.Height != 4 {
		t.Errorf("overlay = %dx%d, want 16x4", rc.current.Width, rc.current.Height)
	}
	// Unchanged settings do not reload.
	n := len(rc.overlays)
	if _, err := eng.Step(context.Background(), NewFrame(100, 100)); err != nil {
		t.Fatal(err)
	}
	if len(rc.overlays) != n {
		t.Errorf("overlay reloaded without a settings change")
	}
	// ReloadOverlay forces a reload.
	if err := eng.ReloadOverlay(); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Step(context.Background(), NewFrame(100, 100)); err != nil {
		t.Fatal(err)
	}
	if len(rc.overlays) != n+2 {
		t.Errorf("SetOverlay calls = %d, want %d (release + install)", len(rc.overlays), n+2)
	}
}

func TestStepLoadFailureKeepsBase(t *testing.T) {
	eng, rc := newTestEngine(t)
	if err := eng.SetOverlayImage(testOverlay(t)); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(100, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Step(context.Background(), NewFrame(100, 100)); err != nil {
		t.Fatal(err)
	}

	missing := filepath.Join(t.TempDir(), "missing.png")
	if err := eng.SetOverlayImage(nil); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetLocation(missing); err != nil {
		t.Fatal(err)
	}
	stats, err := eng.Step(context.Background(), NewFrame(100, 100))

	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Step error = %v, want *LoadError", err)
	}
	if le.Path != missing {
		t.Errorf("LoadError.Path = %q, want %q", le.Path, missing)
	}
	if !errors.Is(err, overlay.ErrOpen) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error chain %v lacks ErrOpen / fs.ErrNotExist", err)
	}
	if rc.HasOverlay() {
		t.Error("old overlay survived a failed reload")
	}
	if rc.bases != 2 || rc.ends != 2 {
		t.Errorf("base/end = %d/%d, want 2/2", rc.bases, rc.ends)
	}
	if stats.Visible != 0 || stats.Frame != 2 {
		t.Errorf("stats = %+v, want frame 2 with no boxes", stats)
	}

	// The failure is reported once; the next frame is clean.
	if _, err := eng.Step(context.Background(), NewFrame(100, 100)); err != nil {
		t.Errorf("Step after failed load = %v, want nil", err)
	}
}

func TestStepClearOverlay(t *testing.T) {
	eng, rc := newTestEngine(t, WithRegions(10))
	if err := eng.SetOverlayImage(testOverlay(t)); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(50, 50); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Step(context.Background(), NewFrame(50, 50)); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetOverlayImage(nil); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetLocation(""); err != nil {
		t.Fatal(err)
	}
	stats, err := eng.Step(context.Background(), NewFrame(50, 50))
	if err != nil {
		t.Fatal(err)
	}
	if rc.HasOverlay() || stats.Visible != 0 {
		t.Errorf("overlay still drawn after clearing: %+v", stats)
	}
}

func TestStepCompositorError(t *testing.T) {
	eng, rc := newTestEngine(t)
	if err := eng.SetOverlayImage(testOverlay(t)); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(100, 100); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("device lost")
	rc.failRegion = boom
	_, err := eng.Step(context.Background(), NewFrame(100, 100))
	if !errors.Is(err, boom) {
		t.Fatalf("Step error = %v, want wrapped device lost", err)
	}
	if got, want := err.Error(), "redact: frame 1: device lost"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}

	rc.failRegion = nil
	stats, err := eng.Step(context.Background(), NewFrame(100, 100))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if stats.Frame != 2 {
		t.Errorf("Frame = %d, want 2", stats.Frame)
	}
}

func TestStepRetriesFailedOverlayInstall(t *testing.T) {
	eng, rc := newTestEngine(t)
	img := testOverlay(t)
	if err := eng.SetOverlayImage(img); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(100, 100); err != nil {
		t.Fatal(err)
	}
	oom := errors.New("create texture: out of memory")
	rc.failOverlay = oom

	_, err := eng.Step(context.Background(), NewFrame(100, 100))
	if !errors.Is(err, oom) {
		t.Fatalf("Step error = %v, want wrapped out of memory", err)
	}
	var le *LoadError
	if errors.As(err, &le) {
		t.Fatalf("Step error = %v, want compositor error, not *LoadError", err)
	}
	if rc.HasOverlay() {
		t.Fatal("overlay installed after failed SetOverlay")
	}

	stats, err := eng.Step(context.Background(), NewFrame(100, 100))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !rc.HasOverlay() {
		t.Fatal("overlay not installed on retry")
	}
	if stats.Frame != 1 {
		t.Errorf("Frame = %d, want 1", stats.Frame)
	}
	if got := len(rc.regions); got != stats.Visible {
		t.Errorf("drawn regions = %d, want %d", got, stats.Visible)
	}

	for range 4 {
		if _, err := eng.Step(context.Background(), NewFrame(100, 100)); err != nil {
			t.Fatal(err)
		}
	}
	installs := 0
	for _, o := range rc.overlays {
		if o != nil {
			installs++
		}
	}
	if installs != 1 {
		t.Errorf("overlay installs = %d, want 1", installs)
	}
}

func TestResize(t *testing.T) {
	eng, rc := newTestEngine(t, WithRegions(5))
	if err := eng.Start(100, 100); err != nil {
		t.Fatal(err)
	}
	if err := eng.Resize(320, 240); err != nil {
		t.Fatal(err)
	}
	if w, h := eng.Size(); w != 320 || h != 240 {
		t.Errorf("Size = %dx%d, want 320x240", w, h)
	}
	if _, err := eng.Step(context.Background(), NewFrame(10, 10)); err != nil {
		t.Fatal(err)
	}
	if rc.width != 320 || rc.height != 240 {
		t.Errorf("Begin(%d,%d), want 320x240", rc.width, rc.height)
	}
	if err := eng.Resize(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(0,10) = %v, want ErrInvalidSize", err)
	}
}

func TestClose(t *testing.T) {
	eng, rc := newTestEngine(t)
	if err := eng.Start(10, 10); err != nil {
		t.Fatal(err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !rc.closed {
		t.Error("compositor not closed")
	}
	if err := eng.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v, want ErrClosed", err)
	}
	if _, err := eng.Step(context.Background(), NewFrame(10, 10)); !errors.Is(err, ErrClosed) {
		t.Errorf("Step after Close = %v, want ErrClosed", err)
	}
	if err := eng.Start(10, 10); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
}

func TestEngineSoftwareEndToEnd(t *testing.T) {
	const w, h = 64, 48
	ov := testOverlay(t)
	for i := 0; i < len(ov.Pix); i += 4 {
		ov.Pix[i], ov.Pix[i+3] = 255, 255 // opaque red
	}
	big := region.GeneratorFunc(func(int, int) region.Rect { return region.R(-10, -10, 100, 100) })
	eng, err := New(WithRegions(1), WithGenerator(big))
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()
	if err := eng.SetOverlayImage(ov); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(w, h); err != nil {
		t.Fatal(err)
	}

	base := NewFrame(w, h)
	base.Clear(color.NRGBA{B: 255, A: 255})
	if _, err := eng.Step(context.Background(), base); err != nil {
		t.Fatal(err)
	}
	target := eng.Compositor().(*SoftwareCompositor).Target()
	if got := target.Pixel(w/2, h/2); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("center pixel = %v, want opaque red", got)
	}
}
