// Package redact overlays a moving population of redaction boxes onto
// video frames.
//
// An Engine owns a population of rectangles (1000 by default) that is
// re-randomized every period frames (300 by default). Between rotations
// every box slides linearly from its previous position to its target, so
// boxes drift smoothly across the picture. Each frame the engine
// interpolates every box, clips it to the window, drops boxes that fall
// completely outside, and hands the survivors to a Compositor which draws
// the base frame followed by the overlay bitmap stretched into each box.
//
// # Quick Start
//
//	eng, err := redact.New(redact.WithSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	if err := eng.SetLocation("mask.png"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := eng.Start(1920, 1080); err != nil {
//	    log.Fatal(err)
//	}
//	for frame := range frames {
//	    stats, err := eng.Step(ctx, frame)
//	    ...
//	}
//
// The default compositor renders on the CPU into a Frame. For hardware
// rendering pass a compositor from the gpu sub-package:
//
//	c, err := gpu.NewCompositor(gpu.Config{Backend: "vulkan"})
//	eng, err := redact.New(redact.WithCompositor(c))
//
// # Concurrency
//
// Start, Resize, Step and Close belong to the rendering goroutine. The
// Set* methods may be called from any goroutine: each publishes a new
// immutable Settings snapshot which Step picks up at the next frame
// boundary.
//
// # Logging
//
// The package is silent by default. Call SetLogger with a *slog.Logger to
// enable diagnostics; the logger is forwarded to GPU compositors.
package redact
