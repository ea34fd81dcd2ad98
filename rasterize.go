package hyperspectral

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidGrid     = errors.New("invalid grid")
	ErrLengthMismatch  = errors.New("length mismatch")
	ErrNoData          = errors.New("no data")
)

// An OutOfRangePolicy determines what happens to samples whose indexes fall
// outside the raster.
type OutOfRangePolicy int

const (
	OutOfRangeError OutOfRangePolicy = iota
	OutOfRangeDrop
	OutOfRangeClip
)

// A CollisionPolicy determines how multiple samples that map to the same cell
// are combined.
type CollisionPolicy int

const (
	CollisionLast CollisionPolicy = iota
	CollisionMean
)

type rasterizeOptions struct {
	outOfRange OutOfRangePolicy
	collision  CollisionPolicy
	gridX      *Linspace
	gridY      *Linspace
}

// A RasterizeOption sets an option on Rasterize.
type RasterizeOption func(*rasterizeOptions)

// WithOutOfRange sets the policy for samples outside the raster. The default
// is OutOfRangeError.
func WithOutOfRange(outOfRange OutOfRangePolicy) RasterizeOption {
	return func(o *rasterizeOptions) {
		o.outOfRange = outOfRange
	}
}

// WithCollision sets the policy for samples that map to the same cell. The
// default is CollisionLast, where the last sample wins.
func WithCollision(collision CollisionPolicy) RasterizeOption {
	return func(o *rasterizeOptions) {
		o.collision = collision
	}
}

// WithGrids sets explicit grids instead of inferring them from the
// coordinates.
func WithGrids(gridX, gridY Linspace) RasterizeOption {
	return func(o *rasterizeOptions) {
		o.gridX = &gridX
		o.gridY = &gridY
	}
}

// Rasterize scatters values into a new Image at the positions given by xs and
// ys. Rows with a NaN or infinite coordinate are ignored. Cells that receive no value are
// NaN.
func Rasterize(xs, ys, values []float64, options ...RasterizeOption) (*Image, error) {
	o := rasterizeOptions{}
	for _, option := range options {
		option(&o)
	}

	if len(xs) != len(ys) || len(xs) != len(values) {
		return nil, fmt.Errorf("%d x coordinates, %d y coordinates, %d values: %w", len(xs), len(ys), len(values), ErrLengthMismatch)
	}

	// Drop rows with missing coordinates before mapping them to indexes.
	validXs := make([]float64, 0, len(xs))
	validYs := make([]float64, 0, len(ys))
	validValues := make([]float64, 0, len(values))
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		validXs = append(validXs, xs[i])
		validYs = append(validYs, ys[i])
		validValues = append(validValues, values[i])
	}

	gridX, gridY, err := o.grids(validXs, validYs)
	if err != nil {
		return nil, err
	}

	raster := NewRaster(gridX.Count, gridY.Count)
	var counts []int
	if o.collision == CollisionMean {
		counts = make([]int, len(raster.Data))
	}
	written := make([]bool, len(raster.Data))

	indexesX := IndexValues(validXs, gridX)
	indexesY := IndexValues(validYs, gridY)
	for i, value := range validValues {
		x, y := indexesX[i], indexesY[i]
		if !raster.Contains(x, y) {
			switch o.outOfRange {
			case OutOfRangeDrop:
				rasterizeDroppedSamples.Inc()
				continue
			case OutOfRangeClip:
				x = min(max(x, 0), raster.Width-1)
				y = min(max(y, 0), raster.Height-1)
			default:
				return nil, fmt.Errorf("(%g, %g) maps to (%d, %d) outside %dx%d raster: %w", validXs[i], validYs[i], x, y, raster.Width, raster.Height, ErrIndexOutOfRange)
			}
		}

		index := x + y*raster.Width
		if written[index] {
			rasterizeCollisions.Inc()
		}
		written[index] = true

		switch o.collision {
		case CollisionMean:
			if counts[index] == 0 {
				raster.Data[index] = value
			} else {
				raster.Data[index] += (value - raster.Data[index]) / float64(counts[index]+1)
			}
			counts[index]++
		default:
			raster.Data[index] = value
		}
	}

	levelLow, levelHigh := Levels(raster)
	return &Image{
		Raster:    raster,
		X:         gridX,
		Y:         gridY,
		LevelLow:  levelLow,
		LevelHigh: levelHigh,
	}, nil
}

// grids returns the explicit grids if set, otherwise it infers them from xs
// and ys.
func (o *rasterizeOptions) grids(xs, ys []float64) (Linspace, Linspace, error) {
	if o.gridX != nil && o.gridY != nil {
		if o.gridX.Count < 1 || o.gridY.Count < 1 {
			return Linspace{}, Linspace{}, fmt.Errorf("empty grid: %w", ErrNoData)
		}
		if err := o.gridX.validate(); err != nil {
			return Linspace{}, Linspace{}, fmt.Errorf("x: %w", err)
		}
		if err := o.gridY.validate(); err != nil {
			return Linspace{}, Linspace{}, fmt.Errorf("y: %w", err)
		}
		return *o.gridX, *o.gridY, nil
	}
	gridX, ok := ValuesToLinspace(xs)
	if !ok {
		return Linspace{}, Linspace{}, fmt.Errorf("x: %w", ErrNoData)
	}
	gridY, ok := ValuesToLinspace(ys)
	if !ok {
		return Linspace{}, Linspace{}, fmt.Errorf("y: %w", ErrNoData)
	}
	return gridX, gridY, nil
}

func (l Linspace) validate() error {
	switch {
	case !isFinite(l.Start) || !isFinite(l.End):
		return fmt.Errorf("%g to %g: %w", l.Start, l.End, ErrInvalidGrid)
	case (l.Count == 1) != (l.Start == l.End):
		return fmt.Errorf("%d positions from %g to %g: %w", l.Count, l.Start, l.End, ErrInvalidGrid)
	default:
		return nil
	}
}
