package lane

import (
	"fmt"
	"math"
)

// Context evaluates vector operations for one lane Type.
//
// Every method returns a new *Vector computed immediately, so a Context can
// be handed to code that only knows how to emit operations and the result
// is the evaluated batch. Zero and One are created once per Context and
// returned by identity on every call.
//
// A Context is not safe for concurrent use; create one per goroutine.
type Context struct {
	typ  Type
	zero *Vector
	one  *Vector
}

// NewContext creates a Context for vectors of type t.
// It panics if t is not a valid lane type.
func NewContext(t Type) *Context {
	if !t.Valid() {
		panic(fmt.Sprintf("lane: invalid type %+v", t))
	}
	return &Context{
		typ:  t,
		zero: Splat(t, 0),
		one:  Splat(t, t.One()),
	}
}

// Type returns the lane type the context operates on.
func (c *Context) Type() Type {
	return c.typ
}

// Zero returns the all-zero vector.
func (c *Context) Zero() *Vector {
	return c.zero
}

// One returns the vector with every lane set to 1.0 in the lane type.
func (c *Context) One() *Vector {
	return c.one
}

// Splat returns a vector with every lane set to x.
func (c *Context) Splat(x float64) *Vector {
	return Splat(c.typ, x)
}

// Add performs element-wise addition. Normalized types saturate.
func (c *Context) Add(a, b *Vector) *Vector {
	return c.binary(a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction. Normalized types saturate.
func (c *Context) Sub(a, b *Vector) *Vector {
	return c.binary(a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication.
// For normalized types the product is rescaled: (a * b) / max, rounded.
func (c *Context) Mul(a, b *Vector) *Vector {
	if c.typ.Norm {
		scale := c.typ.Max()
		return c.binary(a, b, func(x, y float64) float64 { return x * y / scale })
	}
	return c.binary(a, b, func(x, y float64) float64 { return x * y })
}

// Min performs element-wise minimum.
func (c *Context) Min(a, b *Vector) *Vector {
	return c.binary(a, b, math.Min)
}

// Max performs element-wise maximum.
func (c *Context) Max(a, b *Vector) *Vector {
	return c.binary(a, b, math.Max)
}

// Comp computes 1 - a for each element (the complement, e.g. inverse alpha).
func (c *Context) Comp(a *Vector) *Vector {
	one := c.typ.One()
	return c.unary(a, func(x float64) float64 { return one - x })
}

// And combines two masks: a lane is set when it is set in both.
func (c *Context) And(a, b *Vector) *Vector {
	ones := c.typ.MaskOnes()
	return c.binary(a, b, func(x, y float64) float64 {
		if x != 0 && y != 0 {
			return ones
		}
		return 0
	})
}

// Select picks a's lane where mask is set and b's lane elsewhere.
func (c *Context) Select(mask, a, b *Vector) *Vector {
	c.check(mask)
	c.check(a)
	c.check(b)
	out := &Vector{typ: c.typ, lanes: make([]float64, c.typ.Length)}
	for i := range out.lanes {
		if mask.lanes[i] != 0 {
			out.lanes[i] = a.lanes[i]
		} else {
			out.lanes[i] = b.lanes[i]
		}
	}
	return out
}

// SelectChannels picks a's lane at every storage position p of each pixel
// with channels[p] set and b's lane elsewhere.
func (c *Context) SelectChannels(channels [4]bool, a, b *Vector) *Vector {
	c.checkPixels()
	c.check(a)
	c.check(b)
	out := &Vector{typ: c.typ, lanes: make([]float64, c.typ.Length)}
	for i := range out.lanes {
		if channels[i%4] {
			out.lanes[i] = a.lanes[i]
		} else {
			out.lanes[i] = b.lanes[i]
		}
	}
	return out
}

// Broadcast copies storage position channel of every pixel into all four
// positions of that pixel.
func (c *Context) Broadcast(a *Vector, channel int) *Vector {
	if channel < 0 || channel > 3 {
		panic(fmt.Sprintf("lane: broadcast of channel %d", channel))
	}
	c.checkPixels()
	c.check(a)
	out := &Vector{typ: c.typ, lanes: make([]float64, c.typ.Length)}
	for i := range out.lanes {
		out.lanes[i] = a.lanes[i&^3+channel]
	}
	return out
}

// ChannelMask returns a constant mask with every storage position p of each
// pixel set when channels[p] is true.
func (c *Context) ChannelMask(channels [4]bool) *Vector {
	c.checkPixels()
	ones := c.typ.MaskOnes()
	out := &Vector{typ: c.typ, lanes: make([]float64, c.typ.Length)}
	for i := range out.lanes {
		if channels[i%4] {
			out.lanes[i] = ones
		}
	}
	return out
}

// Name is a no-op for evaluated vectors.
func (c *Context) Name(v *Vector, _ string) *Vector {
	return v
}

func (c *Context) unary(a *Vector, f func(float64) float64) *Vector {
	c.check(a)
	out := &Vector{typ: c.typ, lanes: make([]float64, c.typ.Length)}
	for i, x := range a.lanes {
		out.lanes[i] = c.typ.Normalize(f(x))
	}
	return out
}

func (c *Context) binary(a, b *Vector, f func(x, y float64) float64) *Vector {
	c.check(a)
	c.check(b)
	out := &Vector{typ: c.typ, lanes: make([]float64, c.typ.Length)}
	for i := range out.lanes {
		out.lanes[i] = c.typ.Normalize(f(a.lanes[i], b.lanes[i]))
	}
	return out
}

func (c *Context) check(v *Vector) {
	if v == nil {
		panic("lane: nil vector")
	}
	if v.typ != c.typ {
		panic(fmt.Sprintf("lane: %s operand in %s context", v.typ, c.typ))
	}
}

func (c *Context) checkPixels() {
	if c.typ.Length%4 != 0 {
		panic(fmt.Sprintf("lane: %s is not a whole number of pixels", c.typ))
	}
}
