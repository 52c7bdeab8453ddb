package lane

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Number is the set of Go element types a Vector can be loaded from or
// stored to.
type Number interface {
	constraints.Integer | constraints.Float
}

// Vector is an immutable batch of lanes of one Type.
// Vectors are always handled by pointer; two distinct pointers are two
// distinct values even when their lanes compare equal.
type Vector struct {
	typ   Type
	lanes []float64
}

// NewVector creates a vector of type t from lane values.
// Each value is normalized to t. It panics if len(values) != t.Length.
func NewVector(t Type, values []float64) *Vector {
	if len(values) != t.Length {
		panic(fmt.Sprintf("lane: %d values for %s", len(values), t))
	}
	v := &Vector{typ: t, lanes: make([]float64, t.Length)}
	for i, x := range values {
		v.lanes[i] = t.Normalize(x)
	}
	return v
}

// Splat creates a vector with all lanes set to x.
func Splat(t Type, x float64) *Vector {
	v := &Vector{typ: t, lanes: make([]float64, t.Length)}
	x = t.Normalize(x)
	for i := range v.lanes {
		v.lanes[i] = x
	}
	return v
}

// Load creates a vector of type t from the first t.Length elements of src.
// Element values are taken as lane codes: a byte 255 in an Unorm8 vector is
// 1.0, a float32 0.5 in a Float32 vector is 0.5.
func Load[T Number](t Type, src []T) *Vector {
	if len(src) < t.Length {
		panic(fmt.Sprintf("lane: load of %s from %d elements", t, len(src)))
	}
	v := &Vector{typ: t, lanes: make([]float64, t.Length)}
	for i := range v.lanes {
		v.lanes[i] = t.Normalize(float64(src[i]))
	}
	return v
}

// Store writes the lanes of v into the first v.Len() elements of dst.
func Store[T Number](v *Vector, dst []T) {
	if len(dst) < len(v.lanes) {
		panic(fmt.Sprintf("lane: store of %s into %d elements", v.typ, len(dst)))
	}
	for i, x := range v.lanes {
		dst[i] = T(x)
	}
}

// Type returns the vector's lane type.
func (v *Vector) Type() Type {
	return v.typ
}

// Len returns the number of lanes.
func (v *Vector) Len() int {
	return len(v.lanes)
}

// Lane returns the value of lane i.
func (v *Vector) Lane(i int) float64 {
	return v.lanes[i]
}

// Lanes returns a copy of all lane values.
func (v *Vector) Lanes() []float64 {
	out := make([]float64, len(v.lanes))
	copy(out, v.lanes)
	return out
}

// Equal reports whether v and other have the same type and lane values.
func (v *Vector) Equal(other *Vector) bool {
	if v == other {
		return true
	}
	if v == nil || other == nil || v.typ != other.typ {
		return false
	}
	for i := range v.lanes {
		if v.lanes[i] != other.lanes[i] {
			return false
		}
	}
	return true
}

// String formats the vector as its type followed by its lanes.
func (v *Vector) String() string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s%v", v.typ, v.lanes)
}
