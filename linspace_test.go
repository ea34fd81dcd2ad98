package hyperspectral_test

import (
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-hyperspectral"
)

func TestValuesToLinspace(t *testing.T) {
	nan := math.NaN()
	for _, tc := range []struct {
		name       string
		values     []float64
		expected   hyperspectral.Linspace
		expectedOK bool
	}{
		{
			name: "nil",
		},
		{
			name:   "all_nan",
			values: []float64{nan, nan},
		},
		{
			name:   "all_infinite",
			values: []float64{math.Inf(1), math.Inf(-1)},
		},
		{
			name:       "infinite",
			values:     []float64{0, math.Inf(1), 1, 2, math.Inf(-1)},
			expected:   hyperspectral.Linspace{Start: 0, End: 2, Count: 3},
			expectedOK: true,
		},
		{
			name:       "single",
			values:     []float64{3.5},
			expected:   hyperspectral.Linspace{Start: 3.5, End: 3.5, Count: 1},
			expectedOK: true,
		},
		{
			name:       "single_repeated_with_nan",
			values:     []float64{2, nan, 2, 2},
			expected:   hyperspectral.Linspace{Start: 2, End: 2, Count: 1},
			expectedOK: true,
		},
		{
			name:       "two",
			values:     []float64{1, 0, 1, 0},
			expected:   hyperspectral.Linspace{Start: 0, End: 1, Count: 2},
			expectedOK: true,
		},
		{
			name:       "regular",
			values:     []float64{0, 1, 2, 3, 4},
			expected:   hyperspectral.Linspace{Start: 0, End: 4, Count: 5},
			expectedOK: true,
		},
		{
			name:       "unordered_with_gap",
			values:     []float64{10, 0, 2, 8, 4},
			expected:   hyperspectral.Linspace{Start: 0, End: 10, Count: 6},
			expectedOK: true,
		},
		{
			name:       "jitter",
			values:     []float64{0, 0.0001, 1, 2.005, 3, 3.0001, 4},
			expected:   hyperspectral.Linspace{Start: 0, End: 4, Count: 5},
			expectedOK: true,
		},
		{
			name:       "fractional_step",
			values:     []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7},
			expected:   hyperspectral.Linspace{Start: 0.1, End: 0.7, Count: 7},
			expectedOK: true,
		},
		{
			name:       "large_first_gap",
			values:     []float64{0, 10, 11, 12},
			expected:   hyperspectral.Linspace{Start: 0, End: 12, Count: 4},
			expectedOK: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, ok := hyperspectral.ValuesToLinspace(tc.values)
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestValuesToLinspaceRegular(t *testing.T) {
	r := rand.New(rand.NewPCG(0, 0))
	for i := range 256 {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			start := 200*r.Float64() - 100
			step := 0.01 + 10*r.Float64()
			n := 2 + r.IntN(200)
			values := make([]float64, n)
			for j := range values {
				values[j] = start + float64(j)*step
			}
			r.Shuffle(len(values), func(i, j int) {
				values[i], values[j] = values[j], values[i]
			})
			actual, ok := hyperspectral.ValuesToLinspace(values)
			assert.True(t, ok)
			assert.Equal(t, hyperspectral.Linspace{
				Start: start,
				End:   start + float64(n-1)*step,
				Count: n,
			}, actual)
		})
	}
}

func TestIndexValues(t *testing.T) {
	for _, tc := range []struct {
		name     string
		values   []float64
		linspace hyperspectral.Linspace
		expected []int
	}{
		{
			name:     "grid_points",
			values:   []float64{0, 0.5, 1, 1.5, 2},
			linspace: hyperspectral.Linspace{Start: 0, End: 2, Count: 5},
			expected: []int{0, 1, 2, 3, 4},
		},
		{
			name:     "near_grid_points",
			values:   []float64{9.9, 12.1, 13.8, 10.2},
			linspace: hyperspectral.Linspace{Start: 10, End: 14, Count: 3},
			expected: []int{0, 1, 2, 0},
		},
		{
			name:     "out_of_range",
			values:   []float64{-2, 6},
			linspace: hyperspectral.Linspace{Start: 0, End: 4, Count: 5},
			expected: []int{-2, 6},
		},
		{
			name:     "nan",
			values:   []float64{math.NaN(), 4},
			linspace: hyperspectral.Linspace{Start: 0, End: 4, Count: 5},
			expected: []int{-1, 4},
		},
		{
			name:     "infinite",
			values:   []float64{math.Inf(1), 2, math.Inf(-1)},
			linspace: hyperspectral.Linspace{Start: 0, End: 4, Count: 5},
			expected: []int{-1, 2, -1},
		},
		{
			name:     "huge",
			values:   []float64{1e300, -1e300},
			linspace: hyperspectral.Linspace{Start: 0, End: 4, Count: 5},
			expected: []int{1 << 30, -1 << 30},
		},
		{
			name:     "single_point",
			values:   []float64{5, -3, 1000, math.NaN()},
			linspace: hyperspectral.Linspace{Start: 5, End: 5, Count: 1},
			expected: []int{0, 0, 0, 0},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, hyperspectral.IndexValues(tc.values, tc.linspace))
		})
	}
}

func TestIndexValuesLinspaceValues(t *testing.T) {
	for _, linspace := range []hyperspectral.Linspace{
		{Start: 0, End: 1, Count: 2},
		{Start: -3, End: 7, Count: 11},
		{Start: 0.1, End: 0.7, Count: 7},
		{Start: 1000, End: 1003.5, Count: 36},
	} {
		expected := make([]int, linspace.Count)
		for i := range expected {
			expected[i] = i
		}
		assert.Equal(t, expected, hyperspectral.IndexValues(linspace.Values(), linspace))
	}
}

func TestLinspaceExtent(t *testing.T) {
	for _, tc := range []struct {
		linspace      hyperspectral.Linspace
		expectedStart float64
		expectedEnd   float64
	}{
		{
			linspace:      hyperspectral.Linspace{Start: 0, End: 4, Count: 5},
			expectedStart: -0.5,
			expectedEnd:   4.5,
		},
		{
			linspace:      hyperspectral.Linspace{Start: 10, End: 20, Count: 3},
			expectedStart: 7.5,
			expectedEnd:   22.5,
		},
		{
			linspace:      hyperspectral.Linspace{Start: 2, End: 2, Count: 1},
			expectedStart: 1.5,
			expectedEnd:   2.5,
		},
	} {
		start, end := tc.linspace.Extent()
		assert.Equal(t, tc.expectedStart, start)
		assert.Equal(t, tc.expectedEnd, end)
	}
}
