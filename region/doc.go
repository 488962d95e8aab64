// Package region implements the geometry of a redaction population:
// integer rectangles, the rotating set of previous/target boxes, the
// random position generator, edge interpolation and window clamping.
//
// Nothing in this package touches the GPU. A frame is produced by
// advancing a [Population], interpolating each region at the returned
// phase and clamping the result against the window:
//
//	pop := region.NewPopulation(region.DefaultRegions, region.DefaultPeriod, region.NewRandomGenerator(1))
//	pop.Bootstrap(1920, 1080)
//
//	phase, _ := pop.Advance(1920, 1080)
//	for i := range pop.Len() {
//	    box := region.Interpolate(pop.Previous(i), pop.Target(i), phase)
//	    if clipped, ok := region.Clamp(box, 1920, 1080); ok {
//	        draw(clipped)
//	    }
//	}
package region
