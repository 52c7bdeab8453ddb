package ggblend

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// ErrNoGPUFactor is returned when a RenderTarget uses a factor WebGPU
// cannot express in that component.
var ErrNoGPUFactor = errors.New("ggblend: blend factor has no WebGPU equivalent")

// WebGPU names the same factor for the color and alpha components; the
// channel it is read from follows from the component it sits in.
var fromGPUFactor = map[gputypes.BlendFactor]BlendFactor{
	gputypes.BlendFactorZero:              FactorZero,
	gputypes.BlendFactorOne:               FactorOne,
	gputypes.BlendFactorSrc:               FactorSrcColor,
	gputypes.BlendFactorOneMinusSrc:       FactorInvSrcColor,
	gputypes.BlendFactorSrcAlpha:          FactorSrcAlpha,
	gputypes.BlendFactorOneMinusSrcAlpha:  FactorInvSrcAlpha,
	gputypes.BlendFactorDst:               FactorDstColor,
	gputypes.BlendFactorOneMinusDst:       FactorInvDstColor,
	gputypes.BlendFactorDstAlpha:          FactorDstAlpha,
	gputypes.BlendFactorOneMinusDstAlpha:  FactorInvDstAlpha,
	gputypes.BlendFactorSrcAlphaSaturated: FactorSrcAlphaSaturate,
	gputypes.BlendFactorConstant:          FactorConstColor,
	gputypes.BlendFactorOneMinusConstant:  FactorInvConstColor,
}

var toGPUFactor = map[BlendFactor]gputypes.BlendFactor{
	FactorZero:             gputypes.BlendFactorZero,
	FactorOne:              gputypes.BlendFactorOne,
	FactorSrcColor:         gputypes.BlendFactorSrc,
	FactorSrcAlpha:         gputypes.BlendFactorSrcAlpha,
	FactorDstColor:         gputypes.BlendFactorDst,
	FactorDstAlpha:         gputypes.BlendFactorDstAlpha,
	FactorConstColor:       gputypes.BlendFactorConstant,
	FactorConstAlpha:       gputypes.BlendFactorConstant,
	FactorSrcAlphaSaturate: gputypes.BlendFactorSrcAlphaSaturated,
	FactorInvSrcColor:      gputypes.BlendFactorOneMinusSrc,
	FactorInvSrcAlpha:      gputypes.BlendFactorOneMinusSrcAlpha,
	FactorInvDstColor:      gputypes.BlendFactorOneMinusDst,
	FactorInvDstAlpha:      gputypes.BlendFactorOneMinusDstAlpha,
	FactorInvConstColor:    gputypes.BlendFactorOneMinusConstant,
	FactorInvConstAlpha:    gputypes.BlendFactorOneMinusConstant,
}

var fromGPUOperation = map[gputypes.BlendOperation]BlendFunc{
	gputypes.BlendOperationAdd:             FuncAdd,
	gputypes.BlendOperationSubtract:        FuncSubtract,
	gputypes.BlendOperationReverseSubtract: FuncReverseSubtract,
	gputypes.BlendOperationMin:             FuncMin,
	gputypes.BlendOperationMax:             FuncMax,
}

var toGPUOperation = map[BlendFunc]gputypes.BlendOperation{
	FuncAdd:             gputypes.BlendOperationAdd,
	FuncSubtract:        gputypes.BlendOperationSubtract,
	FuncReverseSubtract: gputypes.BlendOperationReverseSubtract,
	FuncMin:             gputypes.BlendOperationMin,
	FuncMax:             gputypes.BlendOperationMax,
}

// FromColorTarget converts a WebGPU color target to a RenderTarget.
func FromColorTarget(ct gputypes.ColorTargetState) (RenderTarget, error) {
	return FromBlendState(ct.Blend, ct.WriteMask)
}

// FromBlendState converts a WebGPU blend state and write mask to a
// RenderTarget. A nil blend state disables blending. Undefined fields take
// the WebGPU defaults: operation add, source factor one, destination
// factor zero.
func FromBlendState(b *gputypes.BlendState, mask gputypes.ColorWriteMask) (RenderTarget, error) {
	rt := RenderTarget{WriteMask: ColorMask(mask & gputypes.ColorWriteMaskAll)}
	if b == nil {
		return rt, nil
	}
	rt.Enabled = true

	var err error
	if rt.RGBSrcFactor, rt.RGBDstFactor, rt.RGBFunc, err = fromComponent(b.Color); err != nil {
		return RenderTarget{}, fmt.Errorf("color: %w", err)
	}
	if rt.AlphaSrcFactor, rt.AlphaDstFactor, rt.AlphaFunc, err = fromComponent(b.Alpha); err != nil {
		return RenderTarget{}, fmt.Errorf("alpha: %w", err)
	}
	return rt, nil
}

func fromComponent(c gputypes.BlendComponent) (src, dst BlendFactor, fn BlendFunc, err error) {
	if src, err = fromFactor(c.SrcFactor, FactorOne); err != nil {
		return
	}
	if dst, err = fromFactor(c.DstFactor, FactorZero); err != nil {
		return
	}
	if c.Operation == gputypes.BlendOperationUndefined {
		return src, dst, FuncAdd, nil
	}
	fn, ok := fromGPUOperation[c.Operation]
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %s", ErrInvalidFunc, c.Operation)
	}
	return src, dst, fn, nil
}

func fromFactor(f gputypes.BlendFactor, undefined BlendFactor) (BlendFactor, error) {
	if f == gputypes.BlendFactorUndefined {
		return undefined, nil
	}
	if bf, ok := fromGPUFactor[f]; ok {
		return bf, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidFactor, f)
}

// ColorTarget converts rt to a WebGPU color target for format f.
// In the color component WebGPU's constant factor is the constant's RGB, so
// const_alpha and inv_const_alpha there fail with ErrNoGPUFactor; in the
// alpha component they map to the constant factor. Dual-source factors have
// no WebGPU equivalent.
func (rt RenderTarget) ColorTarget(f gputypes.TextureFormat) (gputypes.ColorTargetState, error) {
	ct := gputypes.ColorTargetState{
		Format:    f,
		WriteMask: gputypes.ColorWriteMask(rt.WriteMask & MaskAll),
	}
	if !rt.Enabled {
		return ct, nil
	}
	if err := rt.Validate(); err != nil {
		return gputypes.ColorTargetState{}, err
	}
	for _, f := range [...]BlendFactor{rt.RGBSrcFactor, rt.RGBDstFactor} {
		if f == FactorConstAlpha || f == FactorInvConstAlpha {
			return gputypes.ColorTargetState{}, fmt.Errorf("%w: %s as a color factor", ErrNoGPUFactor, f)
		}
	}

	ct.Blend = &gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: toGPUFactor[rt.RGBSrcFactor],
			DstFactor: toGPUFactor[rt.RGBDstFactor],
			Operation: toGPUOperation[rt.RGBFunc],
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: toGPUFactor[rt.AlphaSrcFactor],
			DstFactor: toGPUFactor[rt.AlphaDstFactor],
			Operation: toGPUOperation[rt.AlphaFunc],
		},
	}
	return ct, nil
}

// StateFromColorTargets builds a State from the color targets of a WebGPU
// render pipeline. Blending is independent unless every target uses the
// same descriptor.
func StateFromColorTargets(targets []gputypes.ColorTargetState) (*State, error) {
	if len(targets) > MaxRenderTargets {
		return nil, fmt.Errorf("%w: %d color targets", ErrInvalidTarget, len(targets))
	}
	s := &State{}
	for i, ct := range targets {
		rt, err := FromColorTarget(ct)
		if err != nil {
			return nil, fmt.Errorf("color target %d: %w", i, err)
		}
		s.Targets[i] = rt
		if rt != s.Targets[0] {
			s.IndependentBlend = true
		}
	}
	return s, nil
}

// Replace writes the source unchanged.
func Replace() RenderTarget {
	return preset(FactorOne, FactorZero, FactorOne, FactorZero, FuncAdd)
}

// AlphaBlending is straight-alpha source-over:
// color = src*srcA + dst*(1-srcA), alpha = src + dst*(1-srcA).
func AlphaBlending() RenderTarget {
	return preset(FactorSrcAlpha, FactorInvSrcAlpha, FactorOne, FactorInvSrcAlpha, FuncAdd)
}

// Premultiplied is premultiplied source-over: src + dst*(1-srcA).
func Premultiplied() RenderTarget {
	return preset(FactorOne, FactorInvSrcAlpha, FactorOne, FactorInvSrcAlpha, FuncAdd)
}

// Additive sums source and destination.
func Additive() RenderTarget {
	return preset(FactorOne, FactorOne, FactorOne, FactorOne, FuncAdd)
}

// Multiply is the premultiplied multiply mode:
// color = src*dst + dst*(1-srcA), alpha = src + dst*(1-srcA).
func Multiply() RenderTarget {
	return preset(FactorDstColor, FactorInvSrcAlpha, FactorOne, FactorInvSrcAlpha, FuncAdd)
}

// Darken keeps the smaller of source and destination per channel.
func Darken() RenderTarget {
	return preset(FactorOne, FactorOne, FactorOne, FactorOne, FuncMin)
}

// Lighten keeps the larger of source and destination per channel.
func Lighten() RenderTarget {
	return preset(FactorOne, FactorOne, FactorOne, FactorOne, FuncMax)
}

// Presets maps preset names to their render targets.
var Presets = map[string]func() RenderTarget{
	"replace":       Replace,
	"alpha":         AlphaBlending,
	"premultiplied": Premultiplied,
	"additive":      Additive,
	"multiply":      Multiply,
	"darken":        Darken,
	"lighten":       Lighten,
}

func preset(rgbSrc, rgbDst, alphaSrc, alphaDst BlendFactor, fn BlendFunc) RenderTarget {
	return RenderTarget{
		Enabled:        true,
		RGBSrcFactor:   rgbSrc,
		RGBDstFactor:   rgbDst,
		AlphaSrcFactor: alphaSrc,
		AlphaDstFactor: alphaDst,
		RGBFunc:        fn,
		AlphaFunc:      fn,
		WriteMask:      MaskAll,
	}
}
