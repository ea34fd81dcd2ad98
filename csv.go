package hyperspectral

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var errEmptyCSV = errors.New("empty CSV")

// ReadCSV reads a Table from r. The first record is a header. Columns whose
// header is a number are spectral channels at that wavenumber, all other
// columns are meta attributes. Empty cells, "?", and "nan" are missing values.
func ReadCSV(r io.Reader) (*Table, error) {
	csvReader := csv.NewReader(r)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	switch {
	case errors.Is(err, io.EOF):
		return nil, errEmptyCSV
	case err != nil:
		return nil, err
	}

	table := &Table{}
	var spectralColumns, metaColumns []int
	for column, name := range header {
		name = strings.TrimSpace(name)
		if wavenumber, err := strconv.ParseFloat(name, 64); err == nil {
			table.Wavenumbers = append(table.Wavenumbers, wavenumber)
			spectralColumns = append(spectralColumns, column)
		} else {
			table.MetaNames = append(table.MetaNames, name)
			metaColumns = append(metaColumns, column)
		}
	}

	for {
		record, err := csvReader.Read()
		switch {
		case errors.Is(err, io.EOF):
			return table, nil
		case err != nil:
			return nil, err
		}
		line, _ := csvReader.FieldPos(0)

		spectrum := make([]float64, len(spectralColumns))
		for i, column := range spectralColumns {
			if spectrum[i], err = parseCSVValue(record[column]); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, header[column], err)
			}
		}
		metas := make([]float64, len(metaColumns))
		for i, column := range metaColumns {
			if metas[i], err = parseCSVValue(record[column]); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, header[column], err)
			}
		}
		table.Spectra = append(table.Spectra, spectrum)
		table.Metas = append(table.Metas, metas)
	}
}

func parseCSVValue(s string) (float64, error) {
	switch s = strings.TrimSpace(s); strings.ToLower(s) {
	case "", "?", "nan":
		return math.NaN(), nil
	default:
		return strconv.ParseFloat(s, 64)
	}
}
