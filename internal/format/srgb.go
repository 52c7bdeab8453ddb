package format

import "math"

// sRGB transfer tables. Blending sRGB formats happens on linear values, so
// every pixel is decoded on load and encoded on store.
var (
	// srgbToLinear maps an sRGB byte to linear [0,1].
	srgbToLinear [256]float32

	// linearToSRGB maps linear [0,1] quantized to 12 bits to an sRGB byte.
	linearToSRGB [4096]uint8
)

func init() {
	for i := range 256 {
		srgbToLinear[i] = float32(decodeSRGB(float64(i) / 255.0))
	}
	for i := range 4096 {
		s := encodeSRGB(float64(i) / 4095.0)
		linearToSRGB[i] = quantize8(s)
	}
}

// SRGBToLinear8 decodes an sRGB byte to a linear value in [0,1].
func SRGBToLinear8(s uint8) float32 {
	return srgbToLinear[s]
}

// LinearToSRGB8 encodes a linear value to an sRGB byte.
// Input outside [0,1] is clamped.
func LinearToSRGB8(l float32) uint8 {
	if l <= 0 {
		return linearToSRGB[0]
	}
	if l >= 1 {
		return linearToSRGB[4095]
	}
	return linearToSRGB[int(l*4095.0+0.5)]
}

// DecodePixels converts packed RGBA8 sRGB pixels to linear float lanes.
// Alpha is stored linearly and only rescaled. alphaPos is the storage
// position of alpha within each pixel.
func DecodePixels(dst []float32, src []byte, alphaPos int) {
	for i, b := range src {
		if i&3 == alphaPos {
			dst[i] = float32(b) / 255.0
		} else {
			dst[i] = srgbToLinear[b]
		}
	}
}

// EncodePixels converts linear float lanes back to packed RGBA8 sRGB pixels.
func EncodePixels(dst []byte, src []float32, alphaPos int) {
	for i, l := range src {
		if i&3 == alphaPos {
			dst[i] = quantize8(float64(l))
		} else {
			dst[i] = LinearToSRGB8(l)
		}
	}
}

func decodeSRGB(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func encodeSRGB(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

func quantize8(v float64) uint8 {
	x := int(v*255.0 + 0.5)
	if x < 0 {
		x = 0
	}
	if x > 255 {
		x = 255
	}
	return uint8(x) //nolint:gosec // G115: clamped to [0,255]
}
