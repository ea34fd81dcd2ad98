package hyperspectral

import (
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"
)

// A Linspace is an evenly spaced set of Count positions from Start to End
// inclusive. Count is 1 if and only if Start == End.
type Linspace struct {
	Start float64
	End   float64
	Count int
}

// ValuesToLinspace returns the Linspace that best explains values. Values can
// be missing (NaN or infinite), unordered, repeated, and slightly inexact. The
// minimum and maximum values are kept as limits. It returns false if values
// contains no finite values.
func ValuesToLinspace(values []float64) (Linspace, bool) {
	distinct := make([]float64, 0, len(values))
	for _, value := range values {
		if isFinite(value) {
			distinct = append(distinct, value)
		}
	}
	if len(distinct) == 0 {
		return Linspace{}, false
	}
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	minValue, maxValue := distinct[0], distinct[len(distinct)-1]
	if len(distinct) == 1 {
		return Linspace{Start: minValue, End: minValue, Count: 1}, true
	}

	// Differences at or below minAbsDiff are jitter around a single position.
	minAbsDiff := (maxValue - minValue) / float64(len(distinct)*100)
	diffs := make([]float64, 0, len(distinct)-1)
	for i := 1; i < len(distinct); i++ {
		if diff := distinct[i] - distinct[i-1]; diff > minAbsDiff {
			diffs = append(diffs, diff)
		}
	}
	if len(diffs) == 0 {
		return Linspace{Start: minValue, End: maxValue, Count: 2}, true
	}

	// Allow for a one percent mismatch with the first real gap.
	firstValid := diffs[0]
	steps := diffs[:0]
	for _, diff := range diffs {
		if diff < firstValid*1.01 {
			steps = append(steps, diff)
		}
	}
	step := stats.Mean(steps)

	return Linspace{
		Start: minValue,
		End:   maxValue,
		Count: int(math.RoundToEven((maxValue-minValue)/step)) + 1,
	}, true
}

// Step returns the distance between consecutive positions of l. A
// single-point Linspace has a step of 1.
func (l Linspace) Step() float64 {
	if l.Count <= 1 {
		return 1
	}
	return (l.End - l.Start) / float64(l.Count-1)
}

// Values returns the positions of l.
func (l Linspace) Values() []float64 {
	values := make([]float64, l.Count)
	for i := range values {
		values[i] = l.Start + float64(i)*l.Step()
	}
	if l.Count > 1 {
		values[l.Count-1] = l.End
	}
	return values
}

// Extent returns the coordinate range covered by l's cells. Cell i spans one
// step centered on position i.
func (l Linspace) Extent() (float64, float64) {
	shift := l.Step() / 2
	return l.Start - shift, l.End + shift
}

// maxIndex bounds the magnitude of indexes returned by IndexValues.
const maxIndex = 1 << 30

// IndexValues maps values to indexes in l. Indexes are not clamped to l, so
// values outside l map to indexes outside [0, l.Count), but their magnitude
// is at most maxIndex. Non-finite values map to -1.
func IndexValues(values []float64, l Linspace) []int {
	indexes := make([]int, len(values))
	if l.Count <= 1 {
		return indexes
	}
	scale := float64(l.Count-1) / (l.End - l.Start)
	for i, value := range values {
		position := math.RoundToEven((value - l.Start) * scale)
		if !isFinite(position) {
			indexes[i] = -1
			continue
		}
		indexes[i] = int(min(max(position, -maxIndex), maxIndex))
	}
	return indexes
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
