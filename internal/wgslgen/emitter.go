// Package wgslgen emits blend code as WGSL.
//
// An Emitter records vector operations as WGSL let-bindings over
// vec4<f32> values, one pixel per value. The recorded statements are
// wrapped into a blend function and, optionally, a compute shader that
// blends a whole buffer of pixels. naga lowers the WGSL to its IR and
// generates SPIR-V, GLSL or MSL from it.
package wgslgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gg-blend/internal/lane"
)

// Value is a handle to a value recorded by an Emitter.
// The zero Value means "no value".
type Value int

// WGSL types of recorded values.
const (
	typeColor = "vec4<f32>"
	typeMask  = "vec4<bool>"
)

// binding is one named value. expr is a format string whose verbs are
// filled with the current names of args when the code is rendered, so
// renames apply to earlier uses.
type binding struct {
	name  string
	typ   string
	expr  string
	args  []Value
	param bool
}

// Emitter records blend operations as WGSL statements.
// An Emitter is not safe for concurrent use.
type Emitter struct {
	values []binding
	names  map[string]int

	zero Value
	one  Value

	// clampLo is the lower saturation bound of add, sub and mul, empty
	// when arithmetic is unclamped.
	clampLo string
}

// NewEmitter creates an empty Emitter for pixels of lane type t. Only the
// lane kind matters: normalized integer kinds saturate add, sub and mul to
// their range, as the CPU backend does, while float kinds do not.
func NewEmitter(t lane.Type) *Emitter {
	e := &Emitter{names: make(map[string]int)}
	if t.Norm && !t.Floating {
		e.clampLo = "0.0"
		if t.Sign {
			e.clampLo = "-1.0"
		}
	}
	return e
}

// Param declares a vec4<f32> function parameter and returns its value.
func (e *Emitter) Param(name string) Value {
	return e.add(binding{name: e.unique(name), typ: typeColor, param: true})
}

// MaskParam declares a vec4<bool> function parameter and returns its value.
func (e *Emitter) MaskParam(name string) Value {
	return e.add(binding{name: e.unique(name), typ: typeMask, param: true})
}

// Zero returns vec4<f32>(0.0), recorded once.
func (e *Emitter) Zero() Value {
	if e.zero == 0 {
		e.zero = e.let(typeColor, "vec4<f32>(0.0)")
	}
	return e.zero
}

// One returns vec4<f32>(1.0), recorded once.
func (e *Emitter) One() Value {
	if e.one == 0 {
		e.one = e.let(typeColor, "vec4<f32>(1.0)")
	}
	return e.one
}

func (e *Emitter) Add(a, b Value) Value {
	return e.let(typeColor, e.saturate("%s + %s"), a, b)
}

func (e *Emitter) Sub(a, b Value) Value {
	return e.let(typeColor, e.saturate("%s - %s"), a, b)
}

func (e *Emitter) Mul(a, b Value) Value {
	return e.let(typeColor, e.saturate("%s * %s"), a, b)
}

func (e *Emitter) Min(a, b Value) Value {
	return e.let(typeColor, "min(%s, %s)", a, b)
}

func (e *Emitter) Max(a, b Value) Value {
	return e.let(typeColor, "max(%s, %s)", a, b)
}

// Comp records 1.0 - a.
func (e *Emitter) Comp(a Value) Value {
	return e.let(typeColor, "%s - %s", e.One(), a)
}

// And records the component-wise AND of two masks.
func (e *Emitter) And(a, b Value) Value {
	return e.let(typeMask, "%s & %s", a, b)
}

// Select records select(b, a, mask): a where mask is true.
func (e *Emitter) Select(mask, a, b Value) Value {
	return e.let(typeColor, "select(%s, %s, %s)", b, a, mask)
}

func (e *Emitter) SelectChannels(channels [4]bool, a, b Value) Value {
	return e.let(typeColor, "select(%s, %s, "+boolVec(channels)+")", b, a)
}

// Broadcast records a scalar swizzle such as a.wwww.
func (e *Emitter) Broadcast(a Value, channel int) Value {
	if channel < 0 || channel > 3 {
		panic(fmt.Sprintf("wgslgen: broadcast of channel %d", channel))
	}
	c := string("xyzw"[channel])
	return e.let(typeColor, "%s."+strings.Repeat(c, 4), a)
}

func (e *Emitter) ChannelMask(channels [4]bool) Value {
	return e.let(typeMask, boolVec(channels))
}

// Name renames the binding of v. Parameters keep their names.
func (e *Emitter) Name(v Value, name string) Value {
	b := e.get(v)
	if b.param || b.name == name {
		return v
	}
	delete(e.names, b.name)
	b.name = e.unique(name)
	e.names[b.name] = int(v)
	return v
}

// Len returns the number of recorded values, parameters included.
func (e *Emitter) Len() int {
	return len(e.values)
}

// Statements returns the recorded let-bindings, one per line.
func (e *Emitter) Statements() []string {
	var out []string
	for _, b := range e.values {
		if b.param {
			continue
		}
		out = append(out, fmt.Sprintf("let %s: %s = %s;", b.name, b.typ, e.render(b)))
	}
	return out
}

// Function wraps the recorded statements into a WGSL function returning
// result. Parameters are declared in the order they were created.
func (e *Emitter) Function(name string, result Value) string {
	var sb strings.Builder

	var params []string
	for _, b := range e.values {
		if b.param {
			params = append(params, b.name+": "+b.typ)
		}
	}
	fmt.Fprintf(&sb, "fn %s(%s) -> %s {\n", name, strings.Join(params, ", "), typeColor)
	for _, stmt := range e.Statements() {
		sb.WriteString("    ")
		sb.WriteString(stmt)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "    return %s;\n}\n", e.ref(result))
	return sb.String()
}

// saturate wraps expr in a clamp to the lane range of normalized kinds.
func (e *Emitter) saturate(expr string) string {
	if e.clampLo == "" {
		return expr
	}
	return "clamp(" + expr + ", vec4<f32>(" + e.clampLo + "), vec4<f32>(1.0))"
}

func (e *Emitter) add(b binding) Value {
	e.values = append(e.values, b)
	v := Value(len(e.values))
	e.names[b.name] = int(v)
	return v
}

func (e *Emitter) let(typ, expr string, args ...Value) Value {
	for _, a := range args {
		e.get(a)
	}
	return e.add(binding{name: e.unique("v" + strconv.Itoa(len(e.values)+1)), typ: typ, expr: expr, args: args})
}

// ref returns the current name of v.
func (e *Emitter) ref(v Value) string {
	return e.get(v).name
}

func (e *Emitter) render(b binding) string {
	if len(b.args) == 0 {
		return b.expr
	}
	names := make([]any, len(b.args))
	for i, a := range b.args {
		names[i] = e.ref(a)
	}
	return fmt.Sprintf(b.expr, names...)
}

func (e *Emitter) get(v Value) *binding {
	if v <= 0 || int(v) > len(e.values) {
		panic(fmt.Sprintf("wgslgen: invalid value %d", v))
	}
	return &e.values[v-1]
}

func (e *Emitter) unique(name string) string {
	if _, taken := e.names[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if _, taken := e.names[candidate]; !taken {
			return candidate
		}
	}
}

func boolVec(channels [4]bool) string {
	parts := make([]string, 4)
	for i, on := range channels {
		parts[i] = strconv.FormatBool(on)
	}
	return "vec4<bool>(" + strings.Join(parts, ", ") + ")"
}
