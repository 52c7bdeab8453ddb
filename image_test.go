package ggblend

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// randomPremultiplied fills an RGBA image with valid premultiplied pixels.
func randomPremultiplied(r *rand.Rand, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		a := uint8(r.IntN(256))
		for c := range 3 {
			img.Pix[i+c] = uint8(r.IntN(int(a) + 1))
		}
		img.Pix[i+3] = a
	}
	return img
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestBlendImageMatchesSourceOver(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	const w, h = 37, 29
	src := randomPremultiplied(r, w, h)
	dst := randomPremultiplied(r, w, h)

	want := image.NewRGBA(dst.Bounds())
	copy(want.Pix, dst.Pix)
	xdraw.Draw(want, want.Bounds(), src, image.Point{}, xdraw.Over)

	if err := BlendImage(dst, src, NewState(Premultiplied()), WithWorkers(3)); err != nil {
		t.Fatalf("BlendImage() error = %v", err)
	}
	for i := range dst.Pix {
		if d := absDiff(dst.Pix[i], want.Pix[i]); d > 1 {
			t.Fatalf("byte %d = %d, draw.Over gives %d", i, dst.Pix[i], want.Pix[i])
		}
	}
}

func TestBlendImageOverGGLayer(t *testing.T) {
	dc := gg.NewContext(16, 16)
	defer func() { _ = dc.Close() }()
	dc.SetRGBA(0, 0, 1, 0.5)
	dc.DrawRectangle(0, 0, 16, 16)
	if err := dc.Fill(); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, xdraw.Src)
	if err := BlendImage(dst, dc.Image(), NewState(Premultiplied())); err != nil {
		t.Fatalf("BlendImage() error = %v", err)
	}

	got := dst.RGBAAt(8, 8)
	if absDiff(got.R, 127) > 2 || got.G != 0 || absDiff(got.B, 128) > 2 || got.A != 255 {
		t.Errorf("half blue over red = %v, want about {127 0 128 255}", got)
	}
}

func TestBlendImageCoverage(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src := image.NewUniform(color.RGBA{G: 200, A: 255})
	cov := image.NewAlpha(image.Rect(0, 0, 2, 2))
	cov.SetAlpha(1, 1, color.Alpha{A: 255})

	if err := BlendImage(dst, src, NewState(Replace()), WithCoverage(cov)); err != nil {
		t.Fatalf("BlendImage() error = %v", err)
	}
	for y := range 4 {
		for x := range 4 {
			covered := x >= 2 && y >= 2
			got := dst.RGBAAt(x, y)
			if covered && got != (color.RGBA{G: 200, A: 255}) {
				t.Errorf("covered pixel (%d,%d) = %v", x, y, got)
			}
			if !covered && got != (color.RGBA{}) {
				t.Errorf("uncovered pixel (%d,%d) = %v", x, y, got)
			}
		}
	}
}

func TestBlendImageScalesSource(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	if err := BlendImage(dst, src, NewState(Replace())); err != nil {
		t.Fatalf("BlendImage() error = %v", err)
	}
	for i, b := range dst.Pix {
		if b < 254 {
			t.Fatalf("byte %d = %d, want 255", i, b)
		}
	}
}

func TestBlendImageSubImage(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 4, 4))
	dst := full.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)
	src := image.NewUniform(color.RGBA{R: 9, G: 9, B: 9, A: 9})

	if err := BlendImage(dst, src, NewState(Additive())); err != nil {
		t.Fatalf("BlendImage() error = %v", err)
	}
	if got := full.RGBAAt(3, 3); got != (color.RGBA{R: 9, G: 9, B: 9, A: 9}) {
		t.Errorf("inside = %v", got)
	}
	if got := full.RGBAAt(1, 1); got != (color.RGBA{}) {
		t.Errorf("outside = %v", got)
	}
}

func TestCompilerBlendImageSRGB(t *testing.T) {
	c := NewCompiler(WithConstant(gg.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 0.5}))
	defer c.Close()

	rt := RenderTarget{
		Enabled:        true,
		RGBSrcFactor:   FactorConstColor,
		AlphaSrcFactor: FactorConstAlpha,
		RGBDstFactor:   FactorInvConstColor,
		AlphaDstFactor: FactorInvConstAlpha,
		WriteMask:      MaskAll,
	}
	white := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	newBlack := func() *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		xdraw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, xdraw.Src)
		return img
	}

	linear := newBlack()
	if err := c.BlendImage(linear, white, NewState(rt)); err != nil {
		t.Fatalf("BlendImage() error = %v", err)
	}
	srgb := newBlack()
	if err := c.BlendImage(srgb, white, NewState(rt), WithSRGB(true)); err != nil {
		t.Fatalf("BlendImage(srgb) error = %v", err)
	}

	if got := linear.RGBAAt(0, 0).R; got != 128 {
		t.Errorf("linear blend = %d, want 128", got)
	}
	if got := srgb.RGBAAt(0, 0).R; absDiff(got, 188) > 1 {
		t.Errorf("srgb blend = %d, want about 188", got)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want a variant per format", c.Size())
	}
}

func TestBlendImageErrors(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := BlendImage(dst, dst, nil); err == nil {
		t.Error("BlendImage(nil state) succeeded")
	}
	dual := Premultiplied()
	dual.RGBSrcFactor = FactorSrc1Alpha
	if err := BlendImage(dst, dst, NewState(dual)); err == nil {
		t.Error("BlendImage(dual source) succeeded")
	}
}

func BenchmarkBlendImage(b *testing.B) {
	r := rand.New(rand.NewPCG(3, 4))
	src := randomPremultiplied(r, 256, 256)
	dst := randomPremultiplied(r, 256, 256)
	c := NewCompiler()
	defer c.Close()
	state := NewState(Premultiplied())

	for b.Loop() {
		_ = c.BlendImage(dst, src, state)
	}
}
