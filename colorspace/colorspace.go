// Package colorspace converts colors between sRGB and CIELAB.
package colorspace

import "math"

// D65 reference white in XYZ, normalized to Y = 1.
const (
	refX = 0.95047
	refY = 1.0
	refZ = 1.08883
)

// RGBToLab converts an 8-bit sRGB color to CIELAB (D65 illuminant).
// L is in [0, 100]; a and b are unbounded chroma axes.
func RGBToLab(r, g, b uint8) (float64, float64, float64) {
	rl := linearize(float64(r) / 255.0)
	gl := linearize(float64(g) / 255.0)
	bl := linearize(float64(b) / 255.0)

	x := 0.4124564*rl + 0.3575761*gl + 0.1804375*bl
	y := 0.2126729*rl + 0.7151522*gl + 0.0721750*bl
	z := 0.0193339*rl + 0.1191920*gl + 0.9503041*bl

	fx := labF(x / refX)
	fy := labF(y / refY)
	fz := labF(z / refZ)

	return 116.0*fy - 16.0, 500.0 * (fx - fy), 200.0 * (fy - fz)
}

// LabToRGB converts a CIELAB color back to 8-bit sRGB. Each channel is
// clamped to [0, 255] and rounded to the nearest integer, so out-of-gamut
// Lab points map to the closest representable sRGB color.
func LabToRGB(l, a, b float64) (uint8, uint8, uint8) {
	fy := (l + 16.0) / 116.0
	fx := fy + a/500.0
	fz := fy - b/200.0

	x := refX * labFInv(fx)
	y := refY * labFInv(fy)
	z := refZ * labFInv(fz)

	rl := 3.2404542*x - 1.5371385*y - 0.4985314*z
	gl := -0.9692660*x + 1.8760108*y + 0.0415560*z
	bl := 0.0556434*x - 0.2040259*y + 1.0572252*z

	return quantize(delinearize(rl)), quantize(delinearize(gl)), quantize(delinearize(bl))
}

// Distance returns the CIE76 color difference between two Lab colors,
// the plain Euclidean distance in Lab space.
func Distance(l1, a1, b1, l2, a2, b2 float64) float64 {
	dl := l1 - l2
	da := a1 - a2
	db := b1 - b2
	return math.Sqrt(dl*dl + da*da + db*db)
}

// linearize decodes an sRGB gamma-compressed channel in [0, 1].
func linearize(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// delinearize applies sRGB gamma compression to a linear channel.
func delinearize(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3.0*delta*delta) + 4.0/29.0
}

func labFInv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3.0 * delta * delta * (t - 4.0/29.0)
}

func quantize(v float64) uint8 {
	scaled := math.Round(v * 255.0)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
