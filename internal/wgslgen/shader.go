package wgslgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
)

// Names of the blend function parameters.
const (
	ParamSrc      = "src"
	ParamDst      = "dst"
	ParamConstant = "blend_constant"
	ParamMask     = "mask"
)

// WorkgroupSize is the compute shader workgroup width.
const WorkgroupSize = 64

// Target selects the shading language Compile produces.
type Target uint8

const (
	// TargetWGSL returns the WGSL source unchanged.
	TargetWGSL Target = iota
	// TargetSPIRV produces a SPIR-V binary.
	TargetSPIRV
	// TargetGLSL produces GLSL 3.30 source.
	TargetGLSL
	// TargetMSL produces Metal Shading Language source.
	TargetMSL
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetWGSL:
		return "wgsl"
	case TargetSPIRV:
		return "spirv"
	case TargetGLSL:
		return "glsl"
	case TargetMSL:
		return "msl"
	default:
		return fmt.Sprintf("Target(%d)", t)
	}
}

// ParseTarget returns the target named s.
func ParseTarget(s string) (Target, error) {
	for t := TargetWGSL; t <= TargetMSL; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("wgslgen: unknown target %q", s)
}

// ErrInvalidShader is returned when naga rejects generated code.
var ErrInvalidShader = errors.New("wgslgen: invalid shader")

// Operands declares the blend function parameters on e. The mask
// parameter is only declared when masked is set; otherwise Mask is zero.
type Operands struct {
	Src, Dst, Constant, Mask Value
}

// Declare declares the blend function parameters in their canonical order.
func (e *Emitter) Declare(masked bool) Operands {
	ops := Operands{
		Src:      e.Param(ParamSrc),
		Dst:      e.Param(ParamDst),
		Constant: e.Param(ParamConstant),
	}
	if masked {
		ops.Mask = e.MaskParam(ParamMask)
	}
	return ops
}

// ComputeShader returns a WGSL module holding fn and a compute entry point
// that applies it to every pixel of the bound buffers:
//
//	@group(0) @binding(0) src_pixels: array<vec4<f32>> (read)
//	@group(0) @binding(1) dst_pixels: array<vec4<f32>> (read)
//	@group(0) @binding(2) out_pixels: array<vec4<f32>> (read_write)
//	@group(0) @binding(3) params: uniform { blend_constant, count }
//	@group(0) @binding(4) coverage: array<u32> (read, masked only)
//
// fn is the name of the function produced by Emitter.Function and fnSource
// its text.
func ComputeShader(fn, fnSource string, masked bool) string {
	var sb strings.Builder

	sb.WriteString("struct BlendParams {\n")
	sb.WriteString("    blend_constant: vec4<f32>,\n")
	sb.WriteString("    count: u32,\n")
	sb.WriteString("}\n\n")
	sb.WriteString("@group(0) @binding(0) var<storage, read> src_pixels: array<vec4<f32>>;\n")
	sb.WriteString("@group(0) @binding(1) var<storage, read> dst_pixels: array<vec4<f32>>;\n")
	sb.WriteString("@group(0) @binding(2) var<storage, read_write> out_pixels: array<vec4<f32>>;\n")
	sb.WriteString("@group(0) @binding(3) var<uniform> params: BlendParams;\n")
	if masked {
		sb.WriteString("@group(0) @binding(4) var<storage, read> coverage: array<u32>;\n")
	}
	sb.WriteByte('\n')
	sb.WriteString(fnSource)
	sb.WriteByte('\n')

	fmt.Fprintf(&sb, "@compute @workgroup_size(%d)\n", WorkgroupSize)
	sb.WriteString("fn main(@builtin(global_invocation_id) gid: vec3<u32>) {\n")
	sb.WriteString("    let i = gid.x;\n")
	sb.WriteString("    if (i >= params.count) {\n")
	sb.WriteString("        return;\n")
	sb.WriteString("    }\n")
	if masked {
		sb.WriteString("    let m = vec4<bool>(coverage[i] != 0u);\n")
		fmt.Fprintf(&sb, "    out_pixels[i] = %s(src_pixels[i], dst_pixels[i], params.blend_constant, m);\n", fn)
	} else {
		fmt.Fprintf(&sb, "    out_pixels[i] = %s(src_pixels[i], dst_pixels[i], params.blend_constant);\n", fn)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Compile translates WGSL source to target.
func Compile(source string, target Target) ([]byte, error) {
	switch target {
	case TargetWGSL:
		if _, err := lower(source); err != nil {
			return nil, err
		}
		return []byte(source), nil
	case TargetSPIRV:
		if _, err := lower(source); err != nil {
			return nil, err
		}
		code, err := naga.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("%w: spirv: %w", ErrInvalidShader, err)
		}
		return code, nil
	case TargetGLSL:
		module, err := lower(source)
		if err != nil {
			return nil, err
		}
		code, _, err := glsl.Compile(module, glsl.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("wgslgen: glsl: %w", err)
		}
		return []byte(code), nil
	case TargetMSL:
		module, err := lower(source)
		if err != nil {
			return nil, err
		}
		code, _, err := msl.Compile(module, msl.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("wgslgen: msl: %w", err)
		}
		return []byte(code), nil
	default:
		return nil, fmt.Errorf("wgslgen: unknown target %v", target)
	}
}

// lower parses and validates source.
func lower(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	problems, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShader, problems[0].Message)
	}
	return module, nil
}
