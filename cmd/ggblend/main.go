// Command ggblend blends two images with a fixed-function blend state, or
// prints the shader a blend state compiles to.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/term"

	ggblend "github.com/gogpu/gg-blend"
	"github.com/gogpu/gg-blend/internal/format"
	"github.com/gogpu/gg-blend/internal/wgslgen"
)

func main() {
	var (
		srcPath = flag.String("src", "", "source image (PNG or JPEG); empty draws a demo layer")
		dstPath = flag.String("dst", "", "destination image (PNG or JPEG); empty draws a demo layer")
		preset  = flag.String("preset", "premultiplied", "blend preset: "+strings.Join(presetNames(), ", "))
		mask    = flag.String("mask", "rgba", "write mask channels, e.g. rgb or - for none")
		fmtName = flag.String("format", "rgba8unorm", "color format for -emit")
		srgb    = flag.Bool("srgb", false, "blend images as sRGB")
		output  = flag.String("out", "blend.png", "output PNG file")
		emit    = flag.String("emit", "", "print the shader for wgsl, spirv, glsl or msl instead of blending")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		ggblend.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	newTarget, ok := ggblend.Presets[*preset]
	if !ok {
		log.Fatalf("Unknown preset %q (want one of %s)", *preset, strings.Join(presetNames(), ", "))
	}
	rt := newTarget()
	writeMask, err := ggblend.ParseColorMask(*mask)
	if err != nil {
		log.Fatalf("Invalid mask: %v", err)
	}
	rt.WriteMask = writeMask
	state := ggblend.NewState(rt)

	if *emit != "" {
		if err := emitShader(state, *fmtName, *emit); err != nil {
			log.Fatalf("Failed to emit shader: %v", err)
		}
		return
	}

	const width, height = 512, 512
	dst, err := loadOrDraw(*dstPath, width, height, drawDestination)
	if err != nil {
		log.Fatalf("Failed to load destination: %v", err)
	}
	bounds := dst.Bounds()
	src, err := loadOrDraw(*srcPath, bounds.Dx(), bounds.Dy(), drawSource)
	if err != nil {
		log.Fatalf("Failed to load source: %v", err)
	}

	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(out, out.Bounds(), dst, bounds.Min, xdraw.Src)
	if err := ggblend.BlendImage(out, src, state, ggblend.WithSRGB(*srgb)); err != nil {
		log.Fatalf("Failed to blend: %v", err)
	}

	if err := savePNG(*output, out); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Blend saved to %s (%dx%d, %s)\n", *output, bounds.Dx(), bounds.Dy(), rt)
}

func presetNames() []string {
	names := make([]string, 0, len(ggblend.Presets))
	for name := range ggblend.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func emitShader(state *ggblend.State, formatName, targetName string) error {
	desc, ok := format.ByName(formatName)
	if !ok {
		return fmt.Errorf("unknown format %q", formatName)
	}
	target, err := wgslgen.ParseTarget(targetName)
	if err != nil {
		return err
	}
	if target == ggblend.ShaderSPIRV && term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("refusing to write SPIR-V to a terminal; redirect stdout")
	}

	c := ggblend.NewCompiler()
	defer c.Close()
	v, err := c.Compile(state, 0, desc.Format)
	if err != nil {
		return err
	}
	code, err := v.Shader(target)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(code)
	return err
}

func loadOrDraw(path string, w, h int, draw func(dc *gg.Context, w, h int)) (image.Image, error) {
	if path == "" {
		dc := gg.NewContext(w, h)
		defer func() { _ = dc.Close() }()
		draw(dc, w, h)
		return dc.Image(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// drawDestination paints an opaque backdrop with colored bars.
func drawDestination(dc *gg.Context, w, h int) {
	dc.ClearWithColor(gg.RGBA{R: 0.95, G: 0.95, B: 0.9, A: 1})
	colors := []gg.RGBA{
		{R: 0.9, G: 0.2, B: 0.2, A: 1},
		{R: 0.2, G: 0.7, B: 0.3, A: 1},
		{R: 0.2, G: 0.3, B: 0.9, A: 1},
	}
	bar := float64(h) / float64(2*len(colors))
	for i, c := range colors {
		dc.SetRGBA(c.R, c.G, c.B, c.A)
		dc.DrawRectangle(0, bar*float64(2*i+1)-bar/2, float64(w), bar)
		_ = dc.Fill()
	}
}

// drawSource paints translucent circles on a transparent layer.
func drawSource(dc *gg.Context, w, h int) {
	cx, cy := float64(w)/2, float64(h)/2
	r := float64(min(w, h)) / 4

	dc.SetRGBA(1, 0.6, 0, 0.7)
	dc.DrawCircle(cx-r/2, cy, r)
	_ = dc.Fill()

	dc.SetRGBA(0, 0.6, 1, 0.5)
	dc.DrawCircle(cx+r/2, cy, r)
	_ = dc.Fill()
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
