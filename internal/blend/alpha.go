package blend

// SourceAlpha composites a straight-alpha source pixel over a destination
// pixel with an extra global opacity. The effective source alpha is
// sa = src.a * opacity, and channels combine as
//
//	color: src * sa + dst * (1 - sa)
//	alpha: sa       + da  * (1 - sa)
//
// This is the fixed-function state (SRC_ALPHA, ONE_MINUS_SRC_ALPHA) for
// color with (ONE, ONE_MINUS_SRC_ALPHA) for alpha.
func SourceAlpha(dst, src []byte, opacity byte) {
	sa := mulDiv255(src[3], opacity)
	dst[0] = lerp255(dst[0], src[0], sa)
	dst[1] = lerp255(dst[1], src[1], sa)
	dst[2] = lerp255(dst[2], src[2], sa)
	dst[3] = sa + mulDiv255(dst[3], 255-sa)
}

// SourceAlphaCombined is SourceAlpha for targets without separate alpha
// blending: the alpha channel is blended with the color factors.
func SourceAlphaCombined(dst, src []byte, opacity byte) {
	sa := mulDiv255(src[3], opacity)
	dst[0] = lerp255(dst[0], src[0], sa)
	dst[1] = lerp255(dst[1], src[1], sa)
	dst[2] = lerp255(dst[2], src[2], sa)
	dst[3] = lerp255(dst[3], sa, sa)
}

// Func is the signature shared by the pixel operators in this package.
// dst and src hold at least four bytes in RGBA order.
type Func func(dst, src []byte, opacity byte)

// Mode selects a pixel operator.
type Mode uint8

const (
	// ModeSeparate is SourceAlpha.
	ModeSeparate Mode = iota
	// ModeCombined is SourceAlphaCombined.
	ModeCombined
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeSeparate:
		return "separate"
	case ModeCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// Get returns the operator for m, defaulting to SourceAlpha.
func Get(m Mode) Func {
	switch m {
	case ModeCombined:
		return SourceAlphaCombined
	default:
		return SourceAlpha
	}
}
