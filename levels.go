package hyperspectral

import "math"

const (
	maxLevelsSamples = 1 << 16

	defaultLevelLow  = 0
	defaultLevelHigh = 255
)

// Levels returns the display range of r, ignoring NaNs. Large rasters are
// subsampled by repeatedly taking every second row and column until they
// contain at most 65536 samples. If the range is degenerate, including when r
// contains only NaNs, it returns 0, 255.
func Levels(r *Raster) (float64, float64) {
	stride := 1
	for viewLength(r.Width, stride)*viewLength(r.Height, stride) > maxLevelsSamples {
		stride *= 2
	}

	low, high := math.Inf(1), math.Inf(-1)
	for y := 0; y < r.Height; y += stride {
		row := r.Data[y*r.Width : (y+1)*r.Width]
		for x := 0; x < r.Width; x += stride {
			value := row[x]
			if math.IsNaN(value) {
				continue
			}
			low = min(low, value)
			high = max(high, value)
		}
	}

	if low >= high {
		return defaultLevelLow, defaultLevelHigh
	}
	return low, high
}

// viewLength returns the length of a view of n elements taking every stride-th
// element starting at zero.
func viewLength(n, stride int) int {
	return (n + stride - 1) / stride
}
