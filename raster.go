package hyperspectral

import (
	"math"
	"slices"
)

// A Raster is a two dimensional array of samples stored in row-major order.
// Rows are indexed by Y, columns by X. NaN represents a missing sample.
type Raster struct {
	Width  int
	Height int
	Data   []float64
}

// NewRaster returns a new Raster of the given size filled with NaNs.
func NewRaster(width, height int) *Raster {
	data := make([]float64, width*height)
	for i := range data {
		data[i] = math.NaN()
	}
	return &Raster{
		Width:  width,
		Height: height,
		Data:   data,
	}
}

// At returns the sample at x, y.
func (r *Raster) At(x, y int) float64 {
	return r.Data[x+y*r.Width]
}

// Set sets the sample at x, y.
func (r *Raster) Set(x, y int, value float64) {
	r.Data[x+y*r.Width] = value
}

// Contains returns whether x, y is inside r.
func (r *Raster) Contains(x, y int) bool {
	return 0 <= x && x < r.Width && 0 <= y && y < r.Height
}

// Clone returns a copy of r that does not share its storage.
func (r *Raster) Clone() *Raster {
	return &Raster{
		Width:  r.Width,
		Height: r.Height,
		Data:   slices.Clone(r.Data),
	}
}

// Rows returns r's samples as a slice of rows. The rows share r's storage.
func (r *Raster) Rows() [][]float64 {
	rows := make([][]float64, r.Height)
	for y := range rows {
		rows[y] = r.Data[y*r.Width : (y+1)*r.Width]
	}
	return rows
}

// An Image is a rasterized scalar together with the grids that locate its
// cells in coordinate space and its display levels.
type Image struct {
	Raster    *Raster
	X         Linspace
	Y         Linspace
	LevelLow  float64
	LevelHigh float64
}

// A Rect is an axis-aligned rectangle in coordinate space.
type Rect struct {
	Left   float64
	Bottom float64
	Width  float64
	Height float64
}

// Clone returns a copy of i with its own Raster.
func (i *Image) Clone() *Image {
	clone := *i
	clone.Raster = i.Raster.Clone()
	return &clone
}

// Rect returns the area covered by i in coordinate space. Cell centers lie on
// the grid positions, so the area extends half a step beyond each end of each
// grid.
func (i *Image) Rect() Rect {
	left, right := i.X.Extent()
	bottom, top := i.Y.Extent()
	return Rect{
		Left:   left,
		Bottom: bottom,
		Width:  right - left,
		Height: top - bottom,
	}
}
