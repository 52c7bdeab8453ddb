package lane

import (
	"fmt"
	"math"
)

// Type describes the element format and lane count of a Vector.
type Type struct {
	// Floating selects IEEE floating point elements. When false the
	// elements are integers.
	Floating bool

	// Sign marks signed elements. Floating types are always signed.
	Sign bool

	// Norm marks normalized integers: the maximum code represents 1.0
	// and arithmetic saturates.
	Norm bool

	// Width is the element bit width (8, 16, 32 or 64).
	Width int

	// Length is the number of lanes.
	Length int
}

// Float32 returns a 32-bit float type with n lanes.
func Float32(n int) Type {
	return Type{Floating: true, Sign: true, Width: 32, Length: n}
}

// Unorm8 returns an 8-bit unsigned normalized type with n lanes.
func Unorm8(n int) Type {
	return Type{Norm: true, Width: 8, Length: n}
}

// Unorm16 returns a 16-bit unsigned normalized type with n lanes.
func Unorm16(n int) Type {
	return Type{Norm: true, Width: 16, Length: n}
}

// Snorm8 returns an 8-bit signed normalized type with n lanes.
func Snorm8(n int) Type {
	return Type{Sign: true, Norm: true, Width: 8, Length: n}
}

// Int returns a plain signed integer type of the given width with n lanes.
func Int(width, n int) Type {
	return Type{Sign: true, Width: width, Length: n}
}

// WithLength returns a copy of t with n lanes.
func (t Type) WithLength(n int) Type {
	t.Length = n
	return t
}

// Valid reports whether t describes a supported element format.
func (t Type) Valid() bool {
	if t.Length <= 0 {
		return false
	}
	if t.Floating {
		return t.Width == 16 || t.Width == 32 || t.Width == 64
	}
	switch t.Width {
	case 8, 16, 32:
		return true
	case 64:
		// Norm codes above 2^53 lose precision in float64 lanes.
		return !t.Norm
	}
	return false
}

// Max returns the largest representable element value.
func (t Type) Max() float64 {
	switch {
	case t.Floating && t.Width == 64:
		return math.MaxFloat64
	case t.Floating:
		return math.MaxFloat32
	case t.Sign:
		return math.Exp2(float64(t.Width-1)) - 1
	default:
		return math.Exp2(float64(t.Width)) - 1
	}
}

// Min returns the smallest representable element value. Signed normalized
// types are symmetric, so -1.0 maps to -Max.
func (t Type) Min() float64 {
	switch {
	case t.Floating:
		return -t.Max()
	case t.Sign && t.Norm:
		return -t.Max()
	case t.Sign:
		return -math.Exp2(float64(t.Width - 1))
	default:
		return 0
	}
}

// One returns the element value representing 1.0.
func (t Type) One() float64 {
	if t.Norm {
		return t.Max()
	}
	return 1
}

// MaskOnes returns the element value a builder stores in a set mask lane:
// all bits set, which reads as -1 for signed and floating kinds.
func (t Type) MaskOnes() float64 {
	if t.Floating || t.Sign {
		return -1
	}
	return t.Max()
}

// Normalize applies the type's rounding and range rules to v.
func (t Type) Normalize(v float64) float64 {
	if t.Floating {
		if t.Width == 64 {
			return v
		}
		// Half floats are carried at float32 precision.
		return float64(float32(v))
	}

	v = math.Round(v)
	if t.Norm {
		return clamp(v, t.Min(), t.Max())
	}
	return t.wrap(v)
}

// wrap reduces an integral value modulo 2^Width into the type's range.
func (t Type) wrap(v float64) float64 {
	if v >= t.Min() && v <= t.Max() {
		return v
	}
	span := math.Exp2(float64(t.Width))
	v = math.Mod(v, span)
	if v < 0 {
		v += span
	}
	if t.Sign && v > t.Max() {
		v -= span
	}
	return v
}

// String returns a short name such as "unorm8x16" or "f32x4".
func (t Type) String() string {
	var kind string
	switch {
	case t.Floating:
		kind = "f"
	case t.Norm && t.Sign:
		kind = "snorm"
	case t.Norm:
		kind = "unorm"
	case t.Sign:
		kind = "i"
	default:
		kind = "u"
	}
	return fmt.Sprintf("%s%dx%d", kind, t.Width, t.Length)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
