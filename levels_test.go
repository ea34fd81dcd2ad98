package hyperspectral

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func newTestRaster(rows [][]float64) *Raster {
	r := NewRaster(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, value := range row {
			r.Set(x, y, value)
		}
	}
	return r
}

func TestLevels(t *testing.T) {
	nan := math.NaN()
	for _, tc := range []struct {
		name         string
		raster       *Raster
		expectedLow  float64
		expectedHigh float64
	}{
		{
			name:         "simple",
			raster:       newTestRaster([][]float64{{1, 2}, {3, 4}}),
			expectedLow:  1,
			expectedHigh: 4,
		},
		{
			name:         "nan",
			raster:       newTestRaster([][]float64{{nan, -2}, {7.5, nan}}),
			expectedLow:  -2,
			expectedHigh: 7.5,
		},
		{
			name:         "constant",
			raster:       newTestRaster([][]float64{{3, 3, 3}, {3, nan, 3}}),
			expectedLow:  0,
			expectedHigh: 255,
		},
		{
			name:         "all_nan",
			raster:       NewRaster(4, 3),
			expectedLow:  0,
			expectedHigh: 255,
		},
		{
			name:         "empty",
			raster:       NewRaster(0, 0),
			expectedLow:  0,
			expectedHigh: 255,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			low, high := Levels(tc.raster)
			assert.Equal(t, tc.expectedLow, low)
			assert.Equal(t, tc.expectedHigh, high)
		})
	}
}

func TestLevelsNoSubsampling(t *testing.T) {
	// 256x256 is exactly the largest size that is not subsampled.
	r := NewRaster(256, 256)
	for i := range r.Data {
		r.Data[i] = 10
	}
	r.Set(255, 255, -1)
	r.Set(1, 0, 99)
	low, high := Levels(r)
	assert.Equal(t, -1.0, low)
	assert.Equal(t, 99.0, high)
}

func TestLevelsSubsampling(t *testing.T) {
	r := NewRaster(300, 300)
	for i := range r.Data {
		r.Data[i] = 10
	}
	// Odd rows and columns are skipped by the first halving.
	r.Set(1, 0, 1000)
	r.Set(0, 1, -1000)
	r.Set(2, 2, 20)
	r.Set(298, 4, 5)
	low, high := Levels(r)
	assert.Equal(t, 5.0, low)
	assert.Equal(t, 20.0, high)

	assert.Equal(t, 150, viewLength(300, 2))
	assert.Equal(t, 75, viewLength(300, 4))
	assert.Equal(t, 2, viewLength(3, 2))
}

func TestLevelsSubsamplingWithinBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(0, 0))
	for _, size := range [][2]int{{257, 256}, {512, 512}, {1000, 70}, {1, 70000}} {
		raster := NewRaster(size[0], size[1])
		trueLow, trueHigh := math.Inf(1), math.Inf(-1)
		for i := range raster.Data {
			if r.IntN(10) == 0 {
				continue
			}
			value := r.NormFloat64()
			raster.Data[i] = value
			trueLow = min(trueLow, value)
			trueHigh = max(trueHigh, value)
		}
		low, high := Levels(raster)
		assert.True(t, trueLow <= low)
		assert.True(t, low < high)
		assert.True(t, high <= trueHigh)
	}
}
