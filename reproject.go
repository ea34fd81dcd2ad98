package hyperspectral

import (
	"math"

	"github.com/twpayne/go-proj/v10"
)

// A Reprojector transforms map coordinates between coordinate reference
// systems. X is easting or longitude and Y is northing or latitude, whatever
// the axis order of the CRS definitions.
type Reprojector struct {
	pj *proj.PJ
}

// NewReprojector returns a new Reprojector from sourceCRS to targetCRS, for
// example "epsg:4326" and "epsg:3035".
func NewReprojector(sourceCRS, targetCRS string) (*Reprojector, error) {
	pj, err := proj.NewCRSToCRS(sourceCRS, targetCRS, nil)
	if err != nil {
		return nil, err
	}
	normalizedPJ, err := pj.NormalizeForVisualization()
	if err != nil {
		return nil, err
	}
	return &Reprojector{
		pj: normalizedPJ,
	}, nil
}

// Transform returns xs and ys transformed. Coordinates where either xs or ys
// is NaN are returned as NaN.
func (r *Reprojector) Transform(xs, ys []float64) ([]float64, []float64, error) {
	if len(xs) != len(ys) {
		return nil, nil, ErrLengthMismatch
	}

	indexes := make([]int, 0, len(xs))
	coordsFlat := make([]float64, 0, 2*len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		indexes = append(indexes, i)
		coordsFlat = append(coordsFlat, xs[i], ys[i])
	}
	coords := make([][]float64, len(indexes))
	for i := range coords {
		coords[i] = coordsFlat[2*i : 2*i+2]
	}

	if len(coords) > 0 {
		if err := r.pj.ForwardFloat64Slices(coords); err != nil {
			return nil, nil, err
		}
	}

	transformedXs := make([]float64, len(xs))
	transformedYs := make([]float64, len(ys))
	for i := range transformedXs {
		transformedXs[i] = math.NaN()
		transformedYs[i] = math.NaN()
	}
	for i, index := range indexes {
		transformedXs[index] = coords[i][0]
		transformedYs[index] = coords[i][1]
	}
	return transformedXs, transformedYs, nil
}
