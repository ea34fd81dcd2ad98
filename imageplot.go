package hyperspectral

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// An imageKey identifies a cached image of the current table.
type imageKey struct {
	attrX string
	attrY string
}

// An ImagePlot computes images of the integrals of a table's spectra over two
// of its meta attributes.
type ImagePlot struct {
	mutex            sync.Mutex
	table            *Table
	checksum         uint64
	attrX            string
	attrY            string
	cacheSize        int
	colors           []color.Color
	rasterizeOptions []RasterizeOption
	reprojector      *Reprojector
	imageCache       *lru.Cache[imageKey, *Image]
}

// An ImagePlotOption sets an option on an ImagePlot.
type ImagePlotOption func(*ImagePlot)

// NewImagePlot returns a new ImagePlot with the given options.
func NewImagePlot(options ...ImagePlotOption) (*ImagePlot, error) {
	p := &ImagePlot{
		cacheSize: 16,
		colors:    DefaultColors,
	}
	for _, option := range options {
		option(p)
	}

	var err error
	p.imageCache, err = lru.New[imageKey, *Image](p.cacheSize)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// WithCacheSize sets the number of images cached.
func WithCacheSize(cacheSize int) ImagePlotOption {
	return func(p *ImagePlot) {
		p.cacheSize = cacheSize
	}
}

// WithColors sets the color gradient used by Render.
func WithColors(colors ...color.Color) ImagePlotOption {
	return func(p *ImagePlot) {
		p.colors = colors
	}
}

// WithRasterizeOptions sets the options passed to Rasterize.
func WithRasterizeOptions(rasterizeOptions ...RasterizeOption) ImagePlotOption {
	return func(p *ImagePlot) {
		p.rasterizeOptions = rasterizeOptions
	}
}

// WithReprojector sets a Reprojector applied to the axis coordinates before
// they are rasterized.
func WithReprojector(reprojector *Reprojector) ImagePlotOption {
	return func(p *ImagePlot) {
		p.reprojector = reprojector
	}
}

// SetData sets p's table. If table's domain differs from the previous table's
// then the default axes are reset. A nil table clears p.
func (p *ImagePlot) SetData(table *Table) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.imageCache.Purge()

	if table == nil {
		p.table = nil
		return
	}

	checksum := table.Checksum()
	if p.table == nil || checksum != p.checksum {
		p.attrX, p.attrY = table.DefaultAxes()
	}
	p.table = table
	p.checksum = checksum
}

// DefaultSettings returns the default ImageSettings for p's current table.
func (p *ImagePlot) DefaultSettings() ImageSettings {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return DefaultImageSettings().WithAxes(p.attrX, p.attrY)
}

// Image returns the image of p's table for settings. Images are cached, and
// each call returns a copy that the caller may modify.
func (p *ImagePlot) Image(ctx context.Context, settings ImageSettings) (*Image, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.table == nil {
		return nil, ErrNoData
	}

	key := imageKey{
		attrX: settings.AttrX,
		attrY: settings.AttrY,
	}
	if key.attrX == "" {
		key.attrX = p.attrX
	}
	if key.attrY == "" {
		key.attrY = p.attrY
	}

	if img, ok := p.imageCache.Get(key); ok {
		imageCacheHits.Inc()
		return img.Clone(), nil
	}

	imageCacheMisses.Inc()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := p.computeImage(key)
	if err != nil {
		return nil, err
	}

	if eviction := p.imageCache.Add(key, img); eviction {
		imageCacheEvictions.Inc()
	}

	return img.Clone(), nil
}

// Render returns the image of p's table for settings, colored.
func (p *ImagePlot) Render(ctx context.Context, settings ImageSettings) (*image.RGBA, *Image, error) {
	img, err := p.Image(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	lut := PaletteTable(p.colors, settings.ThresholdLow, settings.ThresholdHigh, settings.Gamma)
	return Colorize(img.Raster, img.LevelLow, img.LevelHigh, lut), img, nil
}

// computeImage rasterizes the integrals of p's table over the axes in key.
func (p *ImagePlot) computeImage(key imageKey) (*Image, error) {
	xs, err := p.table.Column(key.attrX)
	if err != nil {
		return nil, err
	}
	ys, err := p.table.Column(key.attrY)
	if err != nil {
		return nil, err
	}

	if p.reprojector != nil {
		if xs, ys, err = p.reprojector.Transform(xs, ys); err != nil {
			return nil, fmt.Errorf("reproject: %w", err)
		}
	}

	return Rasterize(xs, ys, p.table.Integrals(), p.rasterizeOptions...)
}
