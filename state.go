package ggblend

import (
	"errors"
	"fmt"
	"strings"
)

// Blend state errors.
var (
	// ErrNilState is returned when a nil *State is compiled.
	ErrNilState = errors.New("ggblend: blend state is nil")

	// ErrInvalidTarget is returned for a render target index outside [0, MaxRenderTargets).
	ErrInvalidTarget = errors.New("ggblend: render target out of range")

	// ErrInvalidFactor is reported for a BlendFactor outside the enumeration.
	ErrInvalidFactor = errors.New("ggblend: invalid blend factor")

	// ErrInvalidFunc is reported for a BlendFunc outside the enumeration.
	ErrInvalidFunc = errors.New("ggblend: invalid blend function")

	// ErrDualSourceUnsupported is reported for SRC1 factors, which need a
	// second source color this blender does not take.
	ErrDualSourceUnsupported = errors.New("ggblend: dual-source blend factors are not supported")
)

// MaxRenderTargets is the number of color attachments a State describes.
const MaxRenderTargets = 8

// BlendFactor selects the weight applied to a blend operand.
type BlendFactor uint8

const (
	FactorZero BlendFactor = iota
	FactorOne
	FactorSrcColor
	FactorSrcAlpha
	FactorDstColor
	FactorDstAlpha
	FactorConstColor
	FactorConstAlpha
	FactorSrcAlphaSaturate
	FactorSrc1Color
	FactorSrc1Alpha
	FactorInvSrcColor
	FactorInvSrcAlpha
	FactorInvDstColor
	FactorInvDstAlpha
	FactorInvConstColor
	FactorInvConstAlpha
	FactorInvSrc1Color
	FactorInvSrc1Alpha

	factorCount
)

var factorNames = [factorCount]string{
	FactorZero:             "zero",
	FactorOne:              "one",
	FactorSrcColor:         "src_color",
	FactorSrcAlpha:         "src_alpha",
	FactorDstColor:         "dst_color",
	FactorDstAlpha:         "dst_alpha",
	FactorConstColor:       "const_color",
	FactorConstAlpha:       "const_alpha",
	FactorSrcAlphaSaturate: "src_alpha_saturate",
	FactorSrc1Color:        "src1_color",
	FactorSrc1Alpha:        "src1_alpha",
	FactorInvSrcColor:      "inv_src_color",
	FactorInvSrcAlpha:      "inv_src_alpha",
	FactorInvDstColor:      "inv_dst_color",
	FactorInvDstAlpha:      "inv_dst_alpha",
	FactorInvConstColor:    "inv_const_color",
	FactorInvConstAlpha:    "inv_const_alpha",
	FactorInvSrc1Color:     "inv_src1_color",
	FactorInvSrc1Alpha:     "inv_src1_alpha",
}

// String returns the factor name, e.g. "inv_src_alpha".
func (f BlendFactor) String() string {
	if f < factorCount {
		return factorNames[f]
	}
	return fmt.Sprintf("BlendFactor(%d)", uint8(f))
}

// Valid reports whether f is a member of the enumeration.
func (f BlendFactor) Valid() bool {
	return f < factorCount
}

// DualSource reports whether f reads the second source color.
func (f BlendFactor) DualSource() bool {
	switch f {
	case FactorSrc1Color, FactorSrc1Alpha, FactorInvSrc1Color, FactorInvSrc1Alpha:
		return true
	}
	return false
}

// ParseBlendFactor returns the factor named s.
func ParseBlendFactor(s string) (BlendFactor, error) {
	for f, name := range factorNames {
		if name == s {
			return BlendFactor(f), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFactor, s)
}

// BlendFunc combines the weighted source and destination terms.
type BlendFunc uint8

const (
	FuncAdd BlendFunc = iota
	FuncSubtract
	FuncReverseSubtract
	FuncMin
	FuncMax

	funcCount
)

var funcNames = [funcCount]string{
	FuncAdd:             "add",
	FuncSubtract:        "subtract",
	FuncReverseSubtract: "reverse_subtract",
	FuncMin:             "min",
	FuncMax:             "max",
}

// String returns the function name, e.g. "reverse_subtract".
func (f BlendFunc) String() string {
	if f < funcCount {
		return funcNames[f]
	}
	return fmt.Sprintf("BlendFunc(%d)", uint8(f))
}

// Valid reports whether f is a member of the enumeration.
func (f BlendFunc) Valid() bool {
	return f < funcCount
}

// ParseBlendFunc returns the function named s.
func ParseBlendFunc(s string) (BlendFunc, error) {
	for f, name := range funcNames {
		if name == s {
			return BlendFunc(f), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFunc, s)
}

// IsCommutative reports whether (a f b) == (b f a).
func IsCommutative(f BlendFunc) bool {
	switch f {
	case FuncAdd, FuncMin, FuncMax:
		return true
	default:
		return false
	}
}

// IsReversed reports whether one of rgb and alpha subtracts and the other
// reverse-subtracts, so the two channels disagree on operand order.
func IsReversed(rgb, alpha BlendFunc) bool {
	if rgb == alpha {
		return false
	}
	return (rgb == FuncSubtract && alpha == FuncReverseSubtract) ||
		(rgb == FuncReverseSubtract && alpha == FuncSubtract)
}

// ColorMask selects which color channels a render target writes.
type ColorMask uint8

const (
	MaskR ColorMask = 1 << iota
	MaskG
	MaskB
	MaskA

	MaskNone ColorMask = 0
	MaskRGB            = MaskR | MaskG | MaskB
	MaskAll            = MaskRGB | MaskA
)

// String returns the enabled channels as letters, e.g. "rgb" or "-".
func (m ColorMask) String() string {
	if m&MaskAll == 0 {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "rgba" {
		if m&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// ParseColorMask parses channel letters ("rgba", "rb", "-") into a mask.
func ParseColorMask(s string) (ColorMask, error) {
	if s == "-" || s == "" {
		return MaskNone, nil
	}
	var m ColorMask
	for _, c := range strings.ToLower(s) {
		i := strings.IndexRune("rgba", c)
		if i < 0 {
			return 0, fmt.Errorf("ggblend: invalid color mask channel %q", c)
		}
		m |= 1 << i
	}
	return m, nil
}

// Swizzle maps output channel R, G, B, A to its storage position within a
// pixel.
type Swizzle [4]uint8

var (
	// SwizzleRGBA is the identity channel order.
	SwizzleRGBA = Swizzle{0, 1, 2, 3}
	// SwizzleBGRA stores blue first and red third.
	SwizzleBGRA = Swizzle{2, 1, 0, 3}
)

// Valid reports whether every entry addresses one of four positions.
func (s Swizzle) Valid() bool {
	for _, p := range s {
		if p > 3 {
			return false
		}
	}
	return true
}

// RenderTarget is the blend descriptor of one color attachment.
type RenderTarget struct {
	Enabled bool

	RGBSrcFactor   BlendFactor
	AlphaSrcFactor BlendFactor
	RGBDstFactor   BlendFactor
	AlphaDstFactor BlendFactor

	RGBFunc   BlendFunc
	AlphaFunc BlendFunc

	WriteMask ColorMask
}

// Validate checks that every factor and function is in range and
// supported.
func (rt RenderTarget) Validate() error {
	if !rt.Enabled {
		return nil
	}
	for _, f := range [...]BlendFactor{rt.RGBSrcFactor, rt.AlphaSrcFactor, rt.RGBDstFactor, rt.AlphaDstFactor} {
		if !f.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidFactor, uint8(f))
		}
		if f.DualSource() {
			return fmt.Errorf("%w: %s", ErrDualSourceUnsupported, f)
		}
	}
	for _, f := range [...]BlendFunc{rt.RGBFunc, rt.AlphaFunc} {
		if !f.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidFunc, uint8(f))
		}
	}
	return nil
}

// String describes the target in a compact form, useful in logs.
func (rt RenderTarget) String() string {
	if !rt.Enabled {
		return fmt.Sprintf("disabled mask=%s", rt.WriteMask)
	}
	return fmt.Sprintf("rgb=%s(%s*src, %s*dst) a=%s(%s*src, %s*dst) mask=%s",
		rt.RGBFunc, rt.RGBSrcFactor, rt.RGBDstFactor,
		rt.AlphaFunc, rt.AlphaSrcFactor, rt.AlphaDstFactor,
		rt.WriteMask)
}

// State is the blend state of a pipeline.
type State struct {
	// IndependentBlend selects a separate descriptor per target. When
	// false, every target uses Targets[0].
	IndependentBlend bool

	Targets [MaxRenderTargets]RenderTarget
}

// NewState returns a State using rt for every render target.
func NewState(rt RenderTarget) *State {
	return &State{Targets: [MaxRenderTargets]RenderTarget{rt}}
}

// Target returns the descriptor render target i blends with.
func (s *State) Target(i int) (RenderTarget, error) {
	if i < 0 || i >= MaxRenderTargets {
		return RenderTarget{}, fmt.Errorf("%w: %d", ErrInvalidTarget, i)
	}
	if !s.IndependentBlend {
		i = 0
	}
	return s.Targets[i], nil
}

// Validate checks every descriptor in use.
func (s *State) Validate() error {
	if s == nil {
		return ErrNilState
	}
	n := MaxRenderTargets
	if !s.IndependentBlend {
		n = 1
	}
	for i := range n {
		if err := s.Targets[i].Validate(); err != nil {
			return fmt.Errorf("render target %d: %w", i, err)
		}
	}
	return nil
}
