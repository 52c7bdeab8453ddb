// Package ggblend implements fixed-function framebuffer blending for Go.
//
// # Overview
//
// ggblend turns a GPU blend state (per render target: source and
// destination factors, a combine function and a write mask, separately for
// color and alpha) into vector code. The same synthesizer drives two
// backends: a CPU lane backend that blends pixel spans immediately, and a
// WGSL backend that emits a compute shader which naga compiles to SPIR-V,
// GLSL or MSL.
//
// # Quick Start
//
//	import "github.com/gogpu/gg-blend"
//
//	// Premultiplied source-over into an RGBA image
//	state := ggblend.NewState(ggblend.Premultiplied())
//	err := ggblend.BlendImage(dst, src, state)
//
//	// Reuse compiled variants across calls
//	c := ggblend.NewCompiler()
//	defer c.Close()
//	v, err := c.Compile(state, 0, gputypes.TextureFormatBGRA8Unorm)
//	err = v.BlendSpan(dstRow, srcRow, nil, gg.RGBA{})
//	spirv, err := v.Shader(ggblend.ShaderSPIRV)
//
// # Blend Model
//
// For each enabled render target the result is
//
//	rgb   = func_rgb(src*rgbSrcFactor, dst*rgbDstFactor)
//	alpha = func_a(src*alphaSrcFactor, dst*alphaDstFactor)
//
// followed by the write mask: channels the mask disables keep the
// destination. Disabled targets pass the source through, still masked.
// Factors are resolved once per blend and shared between terms, so a state
// such as (src_alpha, inv_src_alpha) computes 1-src once.
//
// # Pixel Layout
//
// Pixels are processed four channels at a time in the format's storage
// order. BGRA formats are handled through a swizzle rather than a
// conversion, and sRGB formats blend on linear values.
//
// # Custom Backends
//
// Build works over any Builder implementation, so blends can be emitted to
// other IRs. The synthesizer compares handles by identity to avoid merging
// a value with itself.
//
// # Logging
//
// ggblend is silent by default. Use SetLogger to receive debug output and
// configuration errors.
package ggblend

// Version is the current version of the library.
const Version = "0.1.0"
