package lane

import (
	"math/rand"
	"testing"
)

func vec(t Type, values ...float64) *Vector {
	return NewVector(t, values)
}

func TestContext_Arithmetic(t *testing.T) {
	f := Float32(4)
	ctx := NewContext(f)
	a := vec(f, 10, 20, 30, 40)
	b := vec(f, 1, 2, 3, 4)

	tests := []struct {
		name string
		got  *Vector
		want *Vector
	}{
		{"add", ctx.Add(a, b), vec(f, 11, 22, 33, 44)},
		{"sub", ctx.Sub(a, b), vec(f, 9, 18, 27, 36)},
		{"reverse sub", ctx.Sub(b, a), vec(f, -9, -18, -27, -36)},
		{"min", ctx.Min(a, b), b},
		{"max", ctx.Max(a, b), a},
		{"mul", ctx.Mul(a, b), vec(f, 10, 40, 90, 160)},
		{"comp", ctx.Comp(b), vec(f, 0, -1, -2, -3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestContext_Unorm8Saturates(t *testing.T) {
	u := Unorm8(4)
	ctx := NewContext(u)
	a := vec(u, 200, 100, 0, 255)
	b := vec(u, 100, 200, 1, 255)

	tests := []struct {
		name string
		got  *Vector
		want *Vector
	}{
		{"add clamps high", ctx.Add(a, b), vec(u, 255, 255, 1, 255)},
		{"sub clamps low", ctx.Sub(a, b), vec(u, 100, 0, 0, 0)},
		{"mul rescales", ctx.Mul(a, b), vec(u, 78, 78, 0, 255)},
		{"comp", ctx.Comp(a), vec(u, 55, 155, 255, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestContext_MulByOneIsIdentity(t *testing.T) {
	for _, typ := range []Type{Unorm8(64), Unorm16(64), Float32(64)} {
		t.Run(typ.String(), func(t *testing.T) {
			ctx := NewContext(typ)
			rng := rand.New(rand.NewSource(42))
			values := make([]float64, typ.Length)
			for i := range values {
				if typ.Floating {
					values[i] = rng.Float64()
				} else {
					values[i] = float64(rng.Intn(int(typ.Max()) + 1))
				}
			}
			a := NewVector(typ, values)
			if got := ctx.Mul(a, ctx.One()); !got.Equal(a) {
				t.Errorf("a*1 = %v, want %v", got, a)
			}
			if got := ctx.Mul(a, ctx.Zero()); !got.Equal(ctx.Zero()) {
				t.Errorf("a*0 = %v, want zero", got)
			}
		})
	}
}

func TestContext_ZeroOneIdentity(t *testing.T) {
	ctx := NewContext(Unorm8(8))
	if ctx.Zero() != ctx.Zero() {
		t.Error("Zero() should return the same vector on every call")
	}
	if ctx.One() != ctx.One() {
		t.Error("One() should return the same vector on every call")
	}
	if ctx.One().Lane(0) != 255 {
		t.Errorf("One() lane = %v, want 255", ctx.One().Lane(0))
	}
}

func TestContext_Broadcast(t *testing.T) {
	u := Unorm8(8)
	ctx := NewContext(u)
	a := vec(u, 1, 2, 3, 4, 5, 6, 7, 8)

	tests := []struct {
		channel int
		want    *Vector
	}{
		{0, vec(u, 1, 1, 1, 1, 5, 5, 5, 5)},
		{2, vec(u, 3, 3, 3, 3, 7, 7, 7, 7)},
		{3, vec(u, 4, 4, 4, 4, 8, 8, 8, 8)},
	}

	for _, tt := range tests {
		if got := ctx.Broadcast(a, tt.channel); !got.Equal(tt.want) {
			t.Errorf("Broadcast(%d) = %v, want %v", tt.channel, got, tt.want)
		}
	}
}

func TestContext_SelectChannels(t *testing.T) {
	u := Unorm8(8)
	ctx := NewContext(u)
	a := Splat(u, 5)
	b := Splat(u, 9)

	got := ctx.SelectChannels([4]bool{true, false, true, false}, a, b)
	want := vec(u, 5, 9, 5, 9, 5, 9, 5, 9)
	if !got.Equal(want) {
		t.Errorf("SelectChannels() = %v, want %v", got, want)
	}
}

func TestContext_MaskOps(t *testing.T) {
	f := Float32(8)
	ctx := NewContext(f)

	color := ctx.ChannelMask([4]bool{true, true, true, false})
	input := vec(f, -1, -1, -1, -1, 0, 0, 0, 0)
	mask := ctx.And(color, input)

	want := vec(f, -1, -1, -1, 0, 0, 0, 0, 0)
	if !mask.Equal(want) {
		t.Fatalf("And() = %v, want %v", mask, want)
	}

	got := ctx.Select(mask, Splat(f, 0.25), Splat(f, 0.75))
	wantSel := vec(f, 0.25, 0.25, 0.25, 0.75, 0.75, 0.75, 0.75, 0.75)
	if !got.Equal(wantSel) {
		t.Errorf("Select() = %v, want %v", got, wantSel)
	}
}

func TestContext_TypeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched lane types")
		}
	}()
	ctx := NewContext(Unorm8(4))
	ctx.Add(ctx.One(), Splat(Float32(4), 1))
}

func TestContext_BroadcastPartialPixelPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a lane count that is not a multiple of 4")
		}
	}()
	ctx := NewContext(Float32(6))
	ctx.Broadcast(ctx.One(), 3)
}

func BenchmarkContext_Mul(b *testing.B) {
	ctx := NewContext(Unorm8(64))
	x := Splat(ctx.Type(), 200)
	y := Splat(ctx.Type(), 100)
	b.ReportAllocs()
	for b.Loop() {
		_ = ctx.Mul(x, y)
	}
}
