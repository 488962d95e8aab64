// Package blend implements the per-pixel compositing used by the software
// compositor. Pixels are 8-bit straight-alpha RGBA, the same layout the
// GPU render target uses, so the CPU path reproduces the fixed-function
// blend state bit for bit up to rounding.
//
// Division by 255 avoids the integer divide with the rounding identity
//
//	x/255 ≈ (t + (t >> 8)) >> 8, where t = x + 128
//
// which is exact round-to-nearest for every product of two bytes.
//
// References:
//   - Alpha blending without division: https://arxiv.org/abs/2202.02864
//   - Alvy Ray Smith's technical memos: http://alvyray.com/Memos/
package blend

// div255 divides x by 255 rounding to nearest.
// Valid for 0 <= x <= 255*255.
func div255(x uint32) uint32 {
	t := x + 128
	return (t + (t >> 8)) >> 8
}

// mulDiv255 returns round(a*b/255).
func mulDiv255(a, b byte) byte {
	return byte(div255(uint32(a) * uint32(b)))
}

// lerp255 returns round((a*(255-t) + b*t) / 255), the byte blend of a
// toward b by weight t.
func lerp255(a, b, t byte) byte {
	return byte(div255(uint32(a)*uint32(255-t) + uint32(b)*uint32(t)))
}

// Unit converts a [0, 1] weight to a byte, clamping out-of-range input.
func Unit(f float64) byte {
	switch {
	case f <= 0 || f != f:
		return 0
	case f >= 1:
		return 255
	default:
		return byte(f*255 + 0.5)
	}
}
