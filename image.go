package ggblend

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

// minBandRows is the smallest number of rows one worker blends at a time.
const minBandRows = 8

// BlendImage blends src into dst with render target 0 of state.
//
// image.RGBA holds premultiplied colors and the blend operates on the
// stored values, so premultiplied blend states (see Premultiplied) give
// Porter-Duff results. src is converted to RGBA and, when its size differs
// from dst, scaled to it. The call uses a temporary Compiler; callers
// blending repeatedly should keep a Compiler and use its BlendImage.
func BlendImage(dst *image.RGBA, src image.Image, state *State, opts ...Option) error {
	c := NewCompiler(opts...)
	defer c.Close()
	return c.BlendImage(dst, src, state)
}

// BlendImage blends src into dst with render target 0 of state. opts
// override the Compiler's options for this call.
func (c *Compiler) BlendImage(dst *image.RGBA, src image.Image, state *State, opts ...Option) error {
	o := c.opts
	for _, opt := range opts {
		opt(&o)
	}

	f := gputypes.TextureFormatRGBA8Unorm
	if o.srgb {
		f = gputypes.TextureFormatRGBA8UnormSrgb
	}
	v, err := c.Compile(state, 0, f)
	if err != nil {
		return err
	}

	bounds := dst.Bounds()
	if bounds.Empty() {
		return nil
	}
	w, h := bounds.Dx(), bounds.Dy()

	s := toRGBA(src, w, h)
	var cov *image.Alpha
	if o.coverage != nil {
		cov = toAlpha(o.coverage, w, h)
	}

	o.log().Debug("ggblend: blending image",
		"width", w,
		"height", h,
		"format", v.desc.Name,
		"masked", cov != nil)

	return c.workers().Bands(h, minBandRows, func(lo, hi int) error {
		for y := lo; y < hi; y++ {
			d := dst.Pix[dst.PixOffset(bounds.Min.X, bounds.Min.Y+y):][:w*4]
			sp := s.Pix[s.PixOffset(0, y):][:w*4]
			var cp []byte
			if cov != nil {
				cp = cov.Pix[cov.PixOffset(0, y):][:w]
			}
			if err := v.BlendSpan(d, sp, cp, o.constant); err != nil {
				return fmt.Errorf("ggblend: row %d: %w", y, err)
			}
		}
		return nil
	})
}

// toRGBA returns src as a w×h RGBA image anchored at the origin.
// Uniform images are drawn, never scaled.
func toRGBA(src image.Image, w, h int) *image.RGBA {
	sb := src.Bounds()
	if img, ok := src.(*image.RGBA); ok && sb.Min == (image.Point{}) && sb.Dx() == w && sb.Dy() == h {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if _, uniform := src.(*image.Uniform); uniform || (sb.Dx() == w && sb.Dy() == h) {
		xdraw.Draw(out, out.Bounds(), src, sb.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(out, out.Bounds(), src, sb, xdraw.Src, nil)
	}
	return out
}

// toAlpha returns a as a w×h alpha image anchored at the origin. Coverage
// is scaled without filtering so zero stays zero.
func toAlpha(a *image.Alpha, w, h int) *image.Alpha {
	ab := a.Bounds()
	if ab.Min == (image.Point{}) && ab.Dx() == w && ab.Dy() == h {
		return a
	}
	out := image.NewAlpha(image.Rect(0, 0, w, h))
	if ab.Dx() == w && ab.Dy() == h {
		xdraw.Draw(out, out.Bounds(), a, ab.Min, xdraw.Src)
	} else {
		xdraw.NearestNeighbor.Scale(out, out.Bounds(), a, ab, xdraw.Src, nil)
	}
	return out
}
