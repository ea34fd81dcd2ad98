package hyperspectral

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/floats"
)

var ErrUnknownAttribute = errors.New("unknown attribute")

// A Table is a row-oriented hyperspectral dataset. Each row has a spectrum,
// with one value per wavenumber, and a value for each meta attribute. Meta
// attributes, such as map coordinates, are the candidates for image axes.
type Table struct {
	Wavenumbers []float64
	Spectra     [][]float64
	MetaNames   []string
	Metas       [][]float64
}

// Len returns the number of rows in t.
func (t *Table) Len() int {
	return len(t.Spectra)
}

// Column returns a copy of the meta attribute column name.
func (t *Table) Column(name string) ([]float64, error) {
	index := slices.Index(t.MetaNames, name)
	if index < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownAttribute)
	}
	column := make([]float64, len(t.Metas))
	for i, metas := range t.Metas {
		column[i] = metas[index]
	}
	return column, nil
}

// Integrals returns the sum of each row's spectrum.
func (t *Table) Integrals() []float64 {
	integrals := make([]float64, len(t.Spectra))
	for i, spectrum := range t.Spectra {
		integrals[i] = floats.Sum(spectrum)
	}
	return integrals
}

// DefaultAxes returns the default axis attributes for t: the first meta
// attribute for X and the second, if any, for Y.
func (t *Table) DefaultAxes() (string, string) {
	switch len(t.MetaNames) {
	case 0:
		return "", ""
	case 1:
		return t.MetaNames[0], t.MetaNames[0]
	default:
		return t.MetaNames[0], t.MetaNames[1]
	}
}

// Checksum returns a checksum of t's domain, its meta attribute names and
// wavenumbers. Tables with equal checksums have the same columns.
func (t *Table) Checksum() uint64 {
	digest := xxhash.New()
	var buf [8]byte
	for _, name := range t.MetaNames {
		_, _ = digest.WriteString(name)
		_, _ = digest.Write([]byte{0})
	}
	_, _ = digest.Write([]byte{0})
	for _, wavenumber := range t.Wavenumbers {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(wavenumber))
		_, _ = digest.Write(buf[:])
	}
	return digest.Sum64()
}
