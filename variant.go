package ggblend

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gg-blend/internal/format"
	"github.com/gogpu/gg-blend/internal/lane"
	"github.com/gogpu/gg-blend/internal/wgslgen"
)

// ShaderTarget selects the shading language of a variant's shader.
type ShaderTarget = wgslgen.Target

// Shader targets.
const (
	ShaderWGSL  = wgslgen.TargetWGSL
	ShaderSPIRV = wgslgen.TargetSPIRV
	ShaderGLSL  = wgslgen.TargetGLSL
	ShaderMSL   = wgslgen.TargetMSL
)

// Variant blends pixels of one color format with one render target
// descriptor. Variants are created by a Compiler and are safe for
// concurrent use.
//
// Spans hold four channels per pixel in the format's storage order, so a
// bgra8unorm span starts with blue. Channels a format does not store are
// padding: they are blended like the others but never reach the format.
type Variant struct {
	key    uint64
	target RenderTarget
	desc   format.Description
	logger *slog.Logger

	// shaders[0] is the unmasked shader, shaders[1] takes coverage.
	shaders [2]shaderSet
}

type shaderSet struct {
	once sync.Once
	wgsl string
	err  error

	mu       sync.Mutex
	compiled map[ShaderTarget][]byte
}

func newVariant(key uint64, target RenderTarget, desc format.Description, logger *slog.Logger) *Variant {
	return &Variant{
		key:    key,
		target: target,
		desc:   desc,
		logger: logger,
	}
}

// Target returns the render target descriptor the variant blends with.
func (v *Variant) Target() RenderTarget {
	return v.target
}

// Format returns the color format the variant blends into.
func (v *Variant) Format() gputypes.TextureFormat {
	return v.desc.Format
}

// FunctionName returns the name of the WGSL blend function.
func (v *Variant) FunctionName() string {
	return fmt.Sprintf("blend_%016x", v.key)
}

// BlendSpan blends src into dst for 8-bit formats. sRGB formats are
// blended on linear values. coverage, when non-nil, holds one byte per
// pixel: pixels with zero coverage keep dst. constant is the blend
// constant color.
func (v *Variant) BlendSpan(dst, src, coverage []byte, constant gg.RGBA) error {
	if v.desc.Kind != format.KindUnorm8 {
		return fmt.Errorf("%w: %s is not an 8-bit format", ErrSpanKind, v.desc.Name)
	}
	pixels, err := spanPixels(len(dst), len(src), coverage)
	if err != nil || pixels == 0 {
		return err
	}

	if v.desc.SRGB {
		alpha := v.desc.AlphaPosition()
		d := make([]float32, len(dst))
		s := make([]float32, len(src))
		format.DecodePixels(d, dst, alpha)
		format.DecodePixels(s, src, alpha)
		out, err := blendLanes(v, v.laneType(pixels), d, s, coverage, constant)
		if out == nil {
			return err
		}
		lane.Store(out, d)
		format.EncodePixels(dst, d, alpha)
		return err
	}

	out, err := blendLanes(v, v.laneType(pixels), dst, src, coverage, constant)
	if out == nil {
		return err
	}
	lane.Store(out, dst)
	return err
}

// laneType returns the lane type blends of v run in. sRGB formats blend
// decoded linear values as floats.
func (v *Variant) laneType(pixels int) lane.Type {
	if v.desc.SRGB {
		return lane.Float32(pixels * 4)
	}
	return v.desc.LaneType(pixels)
}

// BlendSpanF32 blends src into dst for floating-point formats.
// coverage is as for BlendSpan.
func (v *Variant) BlendSpanF32(dst, src []float32, coverage []byte, constant gg.RGBA) error {
	if v.desc.Kind != format.KindFloat32 {
		return fmt.Errorf("%w: %s is not a float format", ErrSpanKind, v.desc.Name)
	}
	pixels, err := spanPixels(len(dst), len(src), coverage)
	if err != nil || pixels == 0 {
		return err
	}
	out, err := blendLanes(v, v.laneType(pixels), dst, src, coverage, constant)
	if out == nil {
		return err
	}
	lane.Store(out, dst)
	return err
}

// blendLanes evaluates the variant over one span on the CPU.
func blendLanes[T lane.Number](v *Variant, t lane.Type, dst, src []T, coverage []byte, constant gg.RGBA) (*lane.Vector, error) {
	ctx := lane.NewContext(t)
	in := Inputs[*lane.Vector]{
		Target:  v.target,
		Format:  v.desc.Format,
		Src:     lane.Load(t, src),
		Dst:     lane.Load(t, dst),
		Const:   constantLanes(t, constant, v.desc.Swizzle),
		Swizzle: Swizzle(v.desc.Swizzle),
	}
	if coverage != nil {
		in.Mask = coverageLanes(t, coverage)
	}
	out, err := Build[*lane.Vector](ctx, in)
	if out == nil {
		if err == nil {
			err = fmt.Errorf("ggblend: %s produced no result", v.desc.Name)
		}
		return nil, err
	}
	return out, err
}

// constantLanes replicates c, scaled to the lane type, into every pixel in
// storage order.
func constantLanes(t lane.Type, c gg.RGBA, swizzle [4]uint8) *lane.Vector {
	channels := [4]float64{c.R, c.G, c.B, c.A}
	values := make([]float64, t.Length)
	for p := 0; p < t.Length; p += 4 {
		for ch, x := range channels {
			values[p+int(swizzle[ch])] = x * t.One()
		}
	}
	return lane.NewVector(t, values)
}

// coverageLanes expands one coverage byte per pixel to a lane mask.
func coverageLanes(t lane.Type, coverage []byte) *lane.Vector {
	values := make([]float64, t.Length)
	for i := range values {
		if coverage[i/4] != 0 {
			values[i] = t.MaskOnes()
		}
	}
	return lane.NewVector(t, values)
}

func spanPixels(dst, src int, coverage []byte) (int, error) {
	if dst != src {
		return 0, fmt.Errorf("%w: dst %d, src %d", ErrSpanLength, dst, src)
	}
	if dst%4 != 0 {
		return 0, fmt.Errorf("%w: %d elements is not a whole number of pixels", ErrSpanLength, dst)
	}
	pixels := dst / 4
	if coverage != nil && len(coverage) != pixels {
		return 0, fmt.Errorf("%w: %d coverage values for %d pixels", ErrSpanLength, len(coverage), pixels)
	}
	return pixels, nil
}

// WGSL returns the variant's compute shader in WGSL.
// The shader layout is described by wgslgen.ComputeShader.
func (v *Variant) WGSL() (string, error) {
	s := v.emit(false)
	return s.wgsl, s.err
}

// Shader returns the variant's compute shader compiled for target.
// Compiled code is cached per target.
func (v *Variant) Shader(target ShaderTarget) ([]byte, error) {
	return v.compile(false, target)
}

// MaskedShader is Shader for the shader that also binds per-pixel
// coverage.
func (v *Variant) MaskedShader(target ShaderTarget) ([]byte, error) {
	return v.compile(true, target)
}

func (v *Variant) compile(masked bool, target ShaderTarget) ([]byte, error) {
	s := v.emit(masked)
	if s.err != nil {
		return nil, s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if code, ok := s.compiled[target]; ok {
		return code, nil
	}
	code, err := wgslgen.Compile(s.wgsl, target)
	if err != nil {
		return nil, fmt.Errorf("ggblend: %s shader for %s: %w", target, v.desc.Name, err)
	}
	if s.compiled == nil {
		s.compiled = make(map[ShaderTarget][]byte)
	}
	s.compiled[target] = code
	v.logger.Debug("ggblend: compiled shader",
		"function", v.FunctionName(),
		"target", target.String(),
		"masked", masked,
		"bytes", len(code))
	return code, nil
}

// emit records the blend into a WGSL emitter once per mask mode.
func (v *Variant) emit(masked bool) *shaderSet {
	idx := 0
	if masked {
		idx = 1
	}
	s := &v.shaders[idx]
	s.once.Do(func() {
		e := wgslgen.NewEmitter(v.laneType(1))
		ops := e.Declare(masked)
		result, err := Build[wgslgen.Value](e, Inputs[wgslgen.Value]{
			Target:  v.target,
			Format:  v.desc.Format,
			Src:     ops.Src,
			Dst:     ops.Dst,
			Mask:    ops.Mask,
			Const:   ops.Constant,
			Swizzle: Swizzle(v.desc.Swizzle),
		})
		if err != nil {
			s.err = err
			return
		}
		name := v.FunctionName()
		s.wgsl = wgslgen.ComputeShader(name, e.Function(name, result), masked)
	})
	return s
}
