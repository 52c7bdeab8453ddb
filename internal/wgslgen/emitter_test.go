package wgslgen

import (
	"maps"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/gogpu/gg-blend/internal/lane"
)

func TestEmitterStatements(t *testing.T) {
	e := NewEmitter(lane.Float32(4))
	ops := e.Declare(false)

	inv := e.Comp(ops.Src)
	a := e.Broadcast(ops.Src, 3)
	term := e.Mul(ops.Src, a)
	e.Name(term, "src_term")
	sum := e.Add(term, e.Mul(ops.Dst, inv))

	want := []string{
		"let v4: vec4<f32> = vec4<f32>(1.0);",
		"let v5: vec4<f32> = v4 - src;",
		"let v6: vec4<f32> = src.wwww;",
		"let src_term: vec4<f32> = src * v6;",
		"let v8: vec4<f32> = dst * v5;",
		"let v9: vec4<f32> = src_term + v8;",
	}
	got := e.Statements()
	if len(got) != len(want) {
		t.Fatalf("Statements() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement %d = %q, want %q", i, got[i], want[i])
		}
	}
	if sum != Value(e.Len()) {
		t.Errorf("last value = %d, want %d", sum, e.Len())
	}
}

func TestEmitterConstantsRecordedOnce(t *testing.T) {
	e := NewEmitter(lane.Float32(4))
	if e.Zero() != e.Zero() {
		t.Error("Zero() returned different values")
	}
	if e.One() != e.One() {
		t.Error("One() returned different values")
	}
	if e.Zero() == e.One() {
		t.Error("Zero() and One() share a value")
	}
	if n := len(e.Statements()); n != 2 {
		t.Errorf("recorded %d statements, want 2", n)
	}
}

func TestEmitterNameAfterUse(t *testing.T) {
	e := NewEmitter(lane.Float32(4))
	ops := e.Declare(false)
	v := e.Min(ops.Src, ops.Dst)
	w := e.Max(v, ops.Constant)
	e.Name(v, "lo")

	stmts := e.Statements()
	if stmts[0] != "let lo: vec4<f32> = min(src, dst);" {
		t.Errorf("renamed binding = %q", stmts[0])
	}
	if stmts[1] != "let v5: vec4<f32> = max(lo, blend_constant);" {
		t.Errorf("use of renamed binding = %q", stmts[1])
	}
	if e.ref(w) != "v5" {
		t.Errorf("ref(w) = %q, want v5", e.ref(w))
	}
}

func TestEmitterNameCollision(t *testing.T) {
	e := NewEmitter(lane.Float32(4))
	ops := e.Declare(false)
	a := e.Name(e.Add(ops.Src, ops.Dst), "term")
	b := e.Name(e.Sub(ops.Src, ops.Dst), "term")
	if e.ref(a) != "term" || e.ref(b) != "term_1" {
		t.Errorf("names = %q, %q; want term, term_1", e.ref(a), e.ref(b))
	}
}

func TestEmitterNameRepeated(t *testing.T) {
	e := NewEmitter(lane.Float32(4))
	ops := e.Declare(false)
	vals := []Value{
		e.Name(e.Add(ops.Src, ops.Dst), "term"),
		e.Name(e.Sub(ops.Src, ops.Dst), "term"),
		e.Name(e.Mul(ops.Src, ops.Dst), "term"),
	}
	want := []string{"term", "term_1", "term_2"}
	for i, v := range vals {
		if e.ref(v) != want[i] {
			t.Errorf("value %d named %q, want %q", i, e.ref(v), want[i])
		}
	}

	// Renaming back to a name the value already has keeps it.
	e.Name(vals[1], "term_1")
	if e.ref(vals[1]) != "term_1" {
		t.Errorf("rename to own name gave %q", e.ref(vals[1]))
	}
}

func TestEmitterSaturation(t *testing.T) {
	tests := []struct {
		name string
		typ  lane.Type
		want []string
	}{
		{"float", lane.Float32(4), []string{
			"let v4: vec4<f32> = src + dst;",
			"let v5: vec4<f32> = src - dst;",
			"let v6: vec4<f32> = src * dst;",
			"let v7: vec4<f32> = min(src, dst);",
		}},
		{"unorm8", lane.Unorm8(4), []string{
			"let v4: vec4<f32> = clamp(src + dst, vec4<f32>(0.0), vec4<f32>(1.0));",
			"let v5: vec4<f32> = clamp(src - dst, vec4<f32>(0.0), vec4<f32>(1.0));",
			"let v6: vec4<f32> = clamp(src * dst, vec4<f32>(0.0), vec4<f32>(1.0));",
			"let v7: vec4<f32> = min(src, dst);",
		}},
		{"snorm8", lane.Snorm8(4), []string{
			"let v4: vec4<f32> = clamp(src + dst, vec4<f32>(-1.0), vec4<f32>(1.0));",
			"let v5: vec4<f32> = clamp(src - dst, vec4<f32>(-1.0), vec4<f32>(1.0));",
			"let v6: vec4<f32> = clamp(src * dst, vec4<f32>(-1.0), vec4<f32>(1.0));",
			"let v7: vec4<f32> = min(src, dst);",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmitter(tt.typ)
			ops := e.Declare(false)
			e.Add(ops.Src, ops.Dst)
			e.Sub(ops.Src, ops.Dst)
			e.Mul(ops.Src, ops.Dst)
			e.Min(ops.Src, ops.Dst)
			got := strings.Join(e.Statements(), "\n")
			if want := strings.Join(tt.want, "\n"); got != want {
				t.Errorf("Statements() =\n%s\nwant\n%s", got, want)
			}
		})
	}
}

func TestEmitterNameKeepsParams(t *testing.T) {
	e := NewEmitter(lane.Float32(4))
	ops := e.Declare(false)
	if got := e.Name(ops.Src, "renamed"); got != ops.Src {
		t.Errorf("Name(param) = %d, want %d", got, ops.Src)
	}
	if e.ref(ops.Src) != ParamSrc {
		t.Errorf("param renamed to %q", e.ref(ops.Src))
	}
}

func TestEmitterMasks(t *testing.T) {
	e := NewEmitter(lane.Float32(4))
	ops := e.Declare(true)
	cm := e.ChannelMask([4]bool{true, false, true, false})
	m := e.And(cm, ops.Mask)
	sel := e.SelectChannels([4]bool{false, false, false, true}, ops.Src, ops.Dst)
	e.Select(m, sel, ops.Dst)

	want := []string{
		"let v5: vec4<bool> = vec4<bool>(true, false, true, false);",
		"let v6: vec4<bool> = v5 & mask;",
		"let v7: vec4<f32> = select(dst, src, vec4<bool>(false, false, false, true));",
		"let v8: vec4<f32> = select(dst, v7, v6);",
	}
	got := e.Statements()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Statements() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestEmitterFunction(t *testing.T) {
	e := NewEmitter(lane.Float32(4))
	ops := e.Declare(true)
	r := e.Add(ops.Src, ops.Dst)
	src := e.Function("blend", r)

	if !strings.HasPrefix(src, "fn blend(src: vec4<f32>, dst: vec4<f32>, blend_constant: vec4<f32>, mask: vec4<bool>) -> vec4<f32> {\n") {
		t.Errorf("unexpected signature:\n%s", src)
	}
	if !strings.Contains(src, "    let v5: vec4<f32> = src + dst;\n") {
		t.Errorf("missing statement:\n%s", src)
	}
	if !strings.HasSuffix(src, "    return v5;\n}\n") {
		t.Errorf("missing return:\n%s", src)
	}
}

func TestEmitterPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(e *Emitter)
	}{
		{"zero value", func(e *Emitter) { e.Add(0, e.One()) }},
		{"unknown value", func(e *Emitter) { e.Comp(42) }},
		{"broadcast channel", func(e *Emitter) { e.Broadcast(e.One(), 4) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(NewEmitter(lane.Float32(4)))
		})
	}
}

// evaluate runs the recorded arithmetic on one pixel per value.
func evaluate(t *testing.T, e *Emitter, params map[Value][4]float64) map[Value][4]float64 {
	t.Helper()
	lo := 0.0
	if e.clampLo != "" {
		var err error
		if lo, err = strconv.ParseFloat(e.clampLo, 64); err != nil {
			t.Fatal(err)
		}
	}
	vals := maps.Clone(params)
	for i, b := range e.values {
		if b.param {
			continue
		}
		var out [4]float64
		saturated := false
		var op func(x, y float64) float64
		switch b.expr {
		case "vec4<f32>(0.0)":
		case "vec4<f32>(1.0)":
			out = [4]float64{1, 1, 1, 1}
		case e.saturate("%s + %s"):
			op, saturated = func(x, y float64) float64 { return x + y }, true
		case e.saturate("%s - %s"):
			op, saturated = func(x, y float64) float64 { return x - y }, true
		case e.saturate("%s * %s"):
			op, saturated = func(x, y float64) float64 { return x * y }, true
		case "%s - %s":
			op = func(x, y float64) float64 { return x - y }
		case "min(%s, %s)":
			op = math.Min
		case "max(%s, %s)":
			op = math.Max
		default:
			t.Fatalf("cannot evaluate %q", b.expr)
		}
		if op != nil {
			a, c := vals[b.args[0]], vals[b.args[1]]
			for ch := range out {
				out[ch] = op(a[ch], c[ch])
				if saturated && e.clampLo != "" {
					out[ch] = min(max(out[ch], lo), 1)
				}
			}
		}
		vals[Value(i+1)] = out
	}
	return vals
}

func TestEmitterMatchesLaneBackend(t *testing.T) {
	u8 := lane.Unorm8(4)
	srcCodes := []float64{200, 100, 50, 255}
	dstCodes := []float64{150, 20, 128, 255}

	ctx := lane.NewContext(u8)
	cs, cd := lane.NewVector(u8, srcCodes), lane.NewVector(u8, dstCodes)
	cpu := []*lane.Vector{
		ctx.Add(cs, cd),
		ctx.Sub(cd, cs),
		ctx.Mul(cs, cd),
		ctx.Comp(cs),
		ctx.Sub(ctx.Add(cs, cs), cd),
	}

	e := NewEmitter(u8)
	ops := e.Declare(false)
	gpu := []Value{
		e.Add(ops.Src, ops.Dst),
		e.Sub(ops.Dst, ops.Src),
		e.Mul(ops.Src, ops.Dst),
		e.Comp(ops.Src),
		e.Sub(e.Add(ops.Src, ops.Src), ops.Dst),
	}

	var src, dst [4]float64
	for i := range 4 {
		src[i], dst[i] = srcCodes[i]/255, dstCodes[i]/255
	}
	vals := evaluate(t, e, map[Value][4]float64{ops.Src: src, ops.Dst: dst})

	for i := range cpu {
		got := vals[gpu[i]]
		for ch := range 4 {
			want := cpu[i].Lane(ch) / 255
			if math.Abs(got[ch]-want) > 0.5/255 {
				t.Errorf("op %d channel %d: shader %v, lanes %v", i, ch, got[ch]*255, cpu[i].Lane(ch))
			}
		}
	}
}
