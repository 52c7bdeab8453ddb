// Package lane provides packed lane vectors and a CPU vector builder for
// batch pixel blending.
//
// A Vector holds a batch of pixels in Array-of-Structures (AoS) layout, four
// channels per pixel in storage order:
//
//	[C0, C1, C2, C3, C0, C1, C2, C3, ...]
//
// Every element is described by a Type: bit width, signedness, integer or
// floating point, and whether integers are normalized (the maximum code
// represents 1.0). Lanes are carried as float64 values in the type's own
// domain, so an 8-bit unorm lane holds 0..255 and a float lane holds the
// float value. All arithmetic re-applies the type's rounding and saturation
// rules, which makes a Context behave like a vector unit of that type.
//
// # Design Philosophy
//
//   - Values are immutable: every operation returns a new *Vector
//   - *Vector identity is meaningful; callers compare pointers to skip work
//   - Keep loops simple so the compiler can vectorize them
//
// # Usage Example
//
//	typ := lane.Unorm8(16) // 4 RGBA pixels
//	ctx := lane.NewContext(typ)
//	src := lane.Load(typ, srcBytes)
//	dst := lane.Load(typ, dstBytes)
//	out := ctx.Add(ctx.Mul(src, ctx.One()), ctx.Mul(dst, ctx.Comp(src)))
//	lane.Store(out, dstBytes)
package lane
