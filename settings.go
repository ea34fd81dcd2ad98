package hyperspectral

import (
	"errors"
	"fmt"
)

const maxGamma = 20

var ErrInvalidSettings = errors.New("invalid settings")

// ImageSettings are the display settings of an image. Empty attributes are
// replaced by the defaults for the current table.
type ImageSettings struct {
	ThresholdLow  float64
	ThresholdHigh float64
	Gamma         float64
	AttrX         string
	AttrY         string
}

// DefaultImageSettings returns the default ImageSettings.
func DefaultImageSettings() ImageSettings {
	return ImageSettings{
		ThresholdLow:  0,
		ThresholdHigh: 1,
	}
}

// Validate returns an error if s is invalid.
func (s ImageSettings) Validate() error {
	switch {
	case s.ThresholdLow < 0 || s.ThresholdLow > 1:
		return fmt.Errorf("low threshold %g: %w", s.ThresholdLow, ErrInvalidSettings)
	case s.ThresholdHigh < 0 || s.ThresholdHigh > 1:
		return fmt.Errorf("high threshold %g: %w", s.ThresholdHigh, ErrInvalidSettings)
	case s.ThresholdLow > s.ThresholdHigh:
		return fmt.Errorf("low threshold %g above high threshold %g: %w", s.ThresholdLow, s.ThresholdHigh, ErrInvalidSettings)
	case s.Gamma < 0 || s.Gamma > maxGamma:
		return fmt.Errorf("gamma %g: %w", s.Gamma, ErrInvalidSettings)
	default:
		return nil
	}
}

// WithAxes returns a copy of s with the given axis attributes.
func (s ImageSettings) WithAxes(attrX, attrY string) ImageSettings {
	s.AttrX = attrX
	s.AttrY = attrY
	return s
}
