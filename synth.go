package ggblend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gg-blend/internal/format"
)

// Inputs are the operands of one blend for one render target.
type Inputs[V comparable] struct {
	Target RenderTarget

	// Format is the color-buffer format. It decides whether the write
	// mask covers every stored channel.
	Format gputypes.TextureFormat

	// Src and Dst are the fragment color and the current color-buffer
	// contents.
	Src, Dst V

	// Mask is an optional per-lane mask; the zero V means none.
	Mask V

	// Const is the blend constant color, already in storage order.
	Const V

	// Swizzle maps R, G, B, A to storage positions.
	Swizzle Swizzle
}

// factorSwizzle says how a resolved factor is spread over the channels.
type factorSwizzle uint8

const (
	// swizzleRGBA uses each channel of the resolved vector as is.
	swizzleRGBA factorSwizzle = iota
	// swizzleAAAA broadcasts the alpha channel into every channel.
	swizzleAAAA
)

// synth holds the operands and the values derived from them during one
// blend. Each derived slot is computed at most once.
type synth[V comparable] struct {
	b Builder[V]

	src      V
	dst      V
	constant V

	invSrc   V
	invDst   V
	invConst V
	saturate V

	alphaPos int

	err error
}

// Build emits the blend of in.Src and in.Dst for in.Target into b and
// returns the resulting vector.
//
// Build never stops early: configuration errors (invalid or dual-source
// factors, invalid functions) substitute zero for the offending value,
// are logged, and the first one is returned with the result. Callers that
// validated the target with RenderTarget.Validate never see an error.
func Build[V comparable](b Builder[V], in Inputs[V]) (V, error) {
	var zero V

	if !in.Swizzle.Valid() {
		return zero, fmt.Errorf("ggblend: invalid swizzle %v", in.Swizzle)
	}
	desc, ok := format.Lookup(in.Format)
	if !ok {
		return zero, fmt.Errorf("%w: %v", ErrUnknownFormat, in.Format)
	}

	s := &synth[V]{
		b:        b,
		src:      in.Src,
		dst:      in.Dst,
		constant: in.Const,
		alphaPos: int(in.Swizzle[3]),
	}
	rt := in.Target

	var result V
	if !rt.Enabled {
		result = in.Src
	} else {
		srcTerm := s.factorTerm(in.Src, rt.RGBSrcFactor, rt.AlphaSrcFactor)
		dstTerm := s.factorTerm(in.Dst, rt.RGBDstFactor, rt.AlphaDstFactor)
		srcTerm = b.Name(srcTerm, "src_term")
		dstTerm = b.Name(dstTerm, "dst_term")

		if rt.RGBFunc == rt.AlphaFunc {
			result = s.function(rt.RGBFunc, srcTerm, dstTerm)
		} else {
			rgb := s.function(rt.RGBFunc, srcTerm, dstTerm)
			alpha := s.function(rt.AlphaFunc, srcTerm, dstTerm)
			result = s.merge(rgb, alpha, swizzleRGBA)
		}
	}

	mask := in.Mask
	if !format.ColormaskFull(desc, uint8(rt.WriteMask)) {
		colorMask := b.ChannelMask(format.MaskChannels(uint8(rt.WriteMask), in.Swizzle))
		colorMask = b.Name(colorMask, "color_mask")
		if mask != zero {
			mask = b.And(colorMask, mask)
		} else {
			mask = colorMask
		}
	}

	if mask != zero {
		result = b.Select(mask, result, in.Dst)
	}

	return result, s.err
}

// BuildTarget is Build for render target rt of state.
func BuildTarget[V comparable](b Builder[V], state *State, rt int, in Inputs[V]) (V, error) {
	var zero V
	if state == nil {
		return zero, ErrNilState
	}
	target, err := state.Target(rt)
	if err != nil {
		return zero, err
	}
	in.Target = target
	return Build(b, in)
}

// factorTerm weights operand by the RGB and alpha factors of one term.
func (s *synth[V]) factorTerm(operand V, rgbFactor, alphaFactor BlendFactor) V {
	rgb := s.factor(rgbFactor, false)
	alpha := s.factor(alphaFactor, true)
	weight := s.merge(rgb, alpha, factorSwizzleOf(rgbFactor))
	return s.b.Mul(operand, weight)
}

// factor resolves f to an operand vector, before any channel swizzle.
func (s *synth[V]) factor(f BlendFactor, alpha bool) V {
	b := s.b
	switch f {
	case FactorZero:
		return b.Zero()
	case FactorOne:
		return b.One()
	case FactorSrcColor, FactorSrcAlpha:
		return s.src
	case FactorDstColor, FactorDstAlpha:
		return s.dst
	case FactorSrcAlphaSaturate:
		if alpha {
			return b.One()
		}
		var zero V
		if s.saturate == zero {
			s.saturate = b.Min(s.src, s.inverseDst())
		}
		return s.saturate
	case FactorConstColor, FactorConstAlpha:
		return s.constant
	case FactorInvSrcColor, FactorInvSrcAlpha:
		var zero V
		if s.invSrc == zero {
			s.invSrc = b.Comp(s.src)
		}
		return s.invSrc
	case FactorInvDstColor, FactorInvDstAlpha:
		return s.inverseDst()
	case FactorInvConstColor, FactorInvConstAlpha:
		var zero V
		if s.invConst == zero {
			s.invConst = b.Comp(s.constant)
		}
		return s.invConst
	case FactorSrc1Color, FactorSrc1Alpha, FactorInvSrc1Color, FactorInvSrc1Alpha:
		s.fail(ErrDualSourceUnsupported, slog.String("factor", f.String()))
		return b.Zero()
	default:
		s.fail(ErrInvalidFactor, slog.Int("factor", int(f)))
		return b.Zero()
	}
}

func (s *synth[V]) inverseDst() V {
	var zero V
	if s.invDst == zero {
		s.invDst = s.b.Comp(s.dst)
	}
	return s.invDst
}

// factorSwizzleOf classifies f by the channel its alpha-path value comes
// from.
func factorSwizzleOf(f BlendFactor) factorSwizzle {
	switch f {
	case FactorSrcAlpha, FactorDstAlpha, FactorConstAlpha, FactorSrcAlphaSaturate, FactorSrc1Alpha,
		FactorInvSrcAlpha, FactorInvDstAlpha, FactorInvConstAlpha, FactorInvSrc1Alpha:
		return swizzleAAAA
	default:
		return swizzleRGBA
	}
}

// merge returns rgb (alpha-broadcast for swizzleAAAA) with the alpha
// storage position taken from alpha.
func (s *synth[V]) merge(rgb, alpha V, sw factorSwizzle) V {
	merged := rgb
	if sw == swizzleAAAA {
		merged = s.b.Broadcast(rgb, s.alphaPos)
	}
	if rgb != alpha {
		var channels [4]bool
		channels[s.alphaPos] = true
		merged = s.b.SelectChannels(channels, alpha, merged)
	}
	return merged
}

// function combines the source and destination terms.
func (s *synth[V]) function(f BlendFunc, srcTerm, dstTerm V) V {
	b := s.b
	switch f {
	case FuncAdd:
		return b.Add(srcTerm, dstTerm)
	case FuncSubtract:
		return b.Sub(srcTerm, dstTerm)
	case FuncReverseSubtract:
		return b.Sub(dstTerm, srcTerm)
	case FuncMin:
		return b.Min(srcTerm, dstTerm)
	case FuncMax:
		return b.Max(srcTerm, dstTerm)
	default:
		s.fail(ErrInvalidFunc, slog.Int("func", int(f)))
		return b.Zero()
	}
}

// fail records the first configuration error and logs every one.
func (s *synth[V]) fail(err error, attr slog.Attr) {
	Logger().LogAttrs(context.Background(), slog.LevelError, "blend configuration error",
		slog.String("error", err.Error()), attr)
	if s.err == nil {
		s.err = fmt.Errorf("%w (%s)", err, attr)
	}
}
