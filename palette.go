package hyperspectral

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const paletteSize = 256

var (
	// DefaultColors is the default color gradient, from blue to yellow.
	DefaultColors = []color.Color{
		color.RGBA{R: 0, G: 0, B: 255, A: 255},
		color.RGBA{R: 255, G: 255, B: 0, A: 255},
	}

	// NaNColor is the color of missing samples.
	NaNColor = color.RGBA{R: 100, G: 100, B: 100, A: 255}
)

// PaletteTable returns a 256 entry lookup table that interpolates between
// colors. Colors are evenly spaced between thresholdLow and thresholdHigh,
// which are fractions of the table. Entries below thresholdLow take the first
// color and entries above thresholdHigh take the last. A non-zero gamma bends
// the table towards the first color.
func PaletteTable(colors []color.Color, thresholdLow, thresholdHigh, gamma float64) []color.RGBA {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	stops := make([]colorful.Color, len(colors))
	for i, c := range colors {
		stops[i], _ = colorful.MakeColor(c)
	}

	table := make([]color.RGBA, paletteSize)
	for i := range table {
		t := applyGamma(float64(i)/(paletteSize-1), gamma)
		var c colorful.Color
		switch {
		case len(stops) == 1 || t <= thresholdLow:
			c = stops[0]
		case t >= thresholdHigh:
			c = stops[len(stops)-1]
		default:
			position := (t - thresholdLow) / (thresholdHigh - thresholdLow) * float64(len(stops)-1)
			k := min(int(position), len(stops)-2)
			c = stops[k].BlendRgb(stops[k+1], position-float64(k))
		}
		r, g, b := c.Clamped().RGB255()
		table[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return table
}

// applyGamma maps t in [0, 1] through an exponential curve with strength
// gamma/4. A gamma of zero is the identity.
func applyGamma(t, gamma float64) float64 {
	if gamma == 0 {
		return t
	}
	g := gamma / 4
	return math.Expm1(g*t) / math.Expm1(g)
}

// Colorize returns an image of r with samples mapped through lut, with
// levelLow mapping to the first entry and levelHigh to the last. Missing
// samples are NaNColor. Row zero of r is the bottom row of the image.
func Colorize(r *Raster, levelLow, levelHigh float64, lut []color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	scale := float64(len(lut))
	if levelHigh != levelLow {
		scale /= levelHigh - levelLow
	}
	for y := range r.Height {
		for x := range r.Width {
			value := r.At(x, y)
			c := NaNColor
			if !math.IsNaN(value) {
				index := math.Floor((value - levelLow) * scale)
				c = lut[int(min(max(index, 0), float64(len(lut)-1)))]
			}
			img.SetRGBA(x, r.Height-1-y, c)
		}
	}
	return img
}
