// Package format describes color-buffer pixel formats for blending:
// which channels a format stores, where they sit in memory, and which lane
// type a batch of its pixels is blended in.
package format

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gg-blend/internal/lane"
)

// Write-mask bits, in R, G, B, A order.
const (
	MaskR uint8 = 1 << iota
	MaskG
	MaskB
	MaskA
)

// Kind is the element format pixels of a Description are blended in.
type Kind uint8

const (
	// KindUnorm8 blends 8-bit normalized integers.
	KindUnorm8 Kind = iota
	// KindUnorm16 blends 16-bit normalized integers.
	KindUnorm16
	// KindFloat32 blends 32-bit floats. Half-float formats use it too.
	KindFloat32
)

// Description is the channel layout of a color-buffer format.
type Description struct {
	Format gputypes.TextureFormat
	Name   string

	// Stored reports, for R, G, B and A, whether the format keeps the
	// channel. Channels a format drops are padding for masking purposes.
	Stored [4]bool

	// Swizzle maps output channel R, G, B, A to its storage position.
	Swizzle [4]uint8

	Kind Kind

	// SRGB marks formats whose color channels are sRGB encoded; blending
	// happens on linear values.
	SRGB bool

	BytesPerPixel int
}

var (
	rgba = [4]uint8{0, 1, 2, 3}
	bgra = [4]uint8{2, 1, 0, 3}

	allChannels = [4]bool{true, true, true, true}
)

var descriptions = []Description{
	{
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Name:          "rgba8unorm",
		Stored:        allChannels,
		Swizzle:       rgba,
		Kind:          KindUnorm8,
		BytesPerPixel: 4,
	},
	{
		Format:        gputypes.TextureFormatRGBA8UnormSrgb,
		Name:          "rgba8unorm-srgb",
		Stored:        allChannels,
		Swizzle:       rgba,
		Kind:          KindUnorm8,
		SRGB:          true,
		BytesPerPixel: 4,
	},
	{
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Name:          "bgra8unorm",
		Stored:        allChannels,
		Swizzle:       bgra,
		Kind:          KindUnorm8,
		BytesPerPixel: 4,
	},
	{
		Format:        gputypes.TextureFormatBGRA8UnormSrgb,
		Name:          "bgra8unorm-srgb",
		Stored:        allChannels,
		Swizzle:       bgra,
		Kind:          KindUnorm8,
		SRGB:          true,
		BytesPerPixel: 4,
	},
	{
		Format:        gputypes.TextureFormatR8Unorm,
		Name:          "r8unorm",
		Stored:        [4]bool{true, false, false, false},
		Swizzle:       rgba,
		Kind:          KindUnorm8,
		BytesPerPixel: 1,
	},
	{
		Format:        gputypes.TextureFormatRG8Unorm,
		Name:          "rg8unorm",
		Stored:        [4]bool{true, true, false, false},
		Swizzle:       rgba,
		Kind:          KindUnorm8,
		BytesPerPixel: 2,
	},
	{
		Format:        gputypes.TextureFormatRGBA16Float,
		Name:          "rgba16float",
		Stored:        allChannels,
		Swizzle:       rgba,
		Kind:          KindFloat32,
		BytesPerPixel: 8,
	},
	{
		Format:        gputypes.TextureFormatRGBA32Float,
		Name:          "rgba32float",
		Stored:        allChannels,
		Swizzle:       rgba,
		Kind:          KindFloat32,
		BytesPerPixel: 16,
	},
	{
		Format:        gputypes.TextureFormatR32Float,
		Name:          "r32float",
		Stored:        [4]bool{true, false, false, false},
		Swizzle:       rgba,
		Kind:          KindFloat32,
		BytesPerPixel: 4,
	},
}

var byFormat = func() map[gputypes.TextureFormat]int {
	m := make(map[gputypes.TextureFormat]int, len(descriptions))
	for i, d := range descriptions {
		m[d.Format] = i
	}
	return m
}()

// Lookup returns the description of f.
func Lookup(f gputypes.TextureFormat) (Description, bool) {
	i, ok := byFormat[f]
	if !ok {
		return Description{}, false
	}
	return descriptions[i], true
}

// ByName returns the description with the given WebGPU-style name,
// e.g. "bgra8unorm".
func ByName(name string) (Description, bool) {
	for _, d := range descriptions {
		if d.Name == name {
			return d, true
		}
	}
	return Description{}, false
}

// All returns every known description.
func All() []Description {
	out := make([]Description, len(descriptions))
	copy(out, descriptions)
	return out
}

// ColormaskFull reports whether writeMask enables every channel d stores.
// Channels d does not store are ignored.
func ColormaskFull(d Description, writeMask uint8) bool {
	for ch, stored := range d.Stored {
		if stored && writeMask&(1<<ch) == 0 {
			return false
		}
	}
	return true
}

// MaskChannels places each channel enabled in writeMask at its storage
// position under swizzle.
func MaskChannels(writeMask uint8, swizzle [4]uint8) [4]bool {
	var out [4]bool
	for ch := range 4 {
		if writeMask&(1<<ch) != 0 {
			out[swizzle[ch]&3] = true
		}
	}
	return out
}

// LaneType returns the lane type of a batch of pixels of d.
// Batches are always four channels per pixel.
func (d Description) LaneType(pixels int) lane.Type {
	n := pixels * 4
	switch d.Kind {
	case KindUnorm16:
		return lane.Unorm16(n)
	case KindFloat32:
		return lane.Float32(n)
	default:
		return lane.Unorm8(n)
	}
}

// AlphaPosition returns the storage position of the alpha channel.
func (d Description) AlphaPosition() int {
	return int(d.Swizzle[3])
}
