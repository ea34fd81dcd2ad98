package hyperspectral_test

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-hyperspectral"
)

func TestReprojector_Transform(t *testing.T) {
	reprojector, err := hyperspectral.NewReprojector("epsg:4326", "epsg:3857")
	assert.NoError(t, err)

	nan := math.NaN()
	xs, ys, err := reprojector.Transform(
		[]float64{0, 180, nan, 0},
		[]float64{0, 0, 10, nan},
	)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(xs))
	assert.Equal(t, 4, len(ys))

	assert.True(t, math.Abs(xs[0]) < 1e-6)
	assert.True(t, math.Abs(ys[0]) < 1e-6)
	assert.True(t, math.Abs(xs[1]-20037508.342789244) < 1e-3)
	assert.True(t, math.Abs(ys[1]) < 1e-6)
	for i := 2; i < 4; i++ {
		assert.True(t, math.IsNaN(xs[i]))
		assert.True(t, math.IsNaN(ys[i]))
	}

	_, _, err = reprojector.Transform([]float64{0}, nil)
	assert.IsError(t, err, hyperspectral.ErrLengthMismatch)
}

func TestImagePlot_Reprojector(t *testing.T) {
	reprojector, err := hyperspectral.NewReprojector("epsg:4326", "epsg:3857")
	assert.NoError(t, err)

	imagePlot, err := hyperspectral.NewImagePlot(hyperspectral.WithReprojector(reprojector))
	assert.NoError(t, err)
	imagePlot.SetData(&hyperspectral.Table{
		Wavenumbers: []float64{1},
		Spectra:     [][]float64{{1}, {2}, {3}},
		MetaNames:   []string{"lon", "lat"},
		Metas:       [][]float64{{0, 0}, {90, 0}, {180, 0}},
	})

	img, err := imagePlot.Image(t.Context(), imagePlot.DefaultSettings())
	assert.NoError(t, err)
	assert.Equal(t, 3, img.X.Count)
	assert.Equal(t, 1, img.Y.Count)
	assert.True(t, math.Abs(img.X.End-20037508.342789244) < 1e-3)
	assertEqualRows(t, [][]float64{{1, 2, 3}}, img.Raster.Rows())
}
