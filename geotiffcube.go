package hyperspectral

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	"github.com/maypok86/otter/v2"
	"golang.org/x/image/tiff/lzw"
)

const (
	compressionNone = 1
	compressionLZW  = 5

	sampleFormatIEEEFP = 3
)

var (
	ErrOutOfBounds = errors.New("out of bounds")

	errShortRead = errors.New("short read")
)

// A TileCoord is a tile coordinate.
type TileCoord struct {
	C int // Column.
	R int // Row.
}

// A geoTIFFFile is the subset of fs.File that a GeoTIFFCube needs.
type geoTIFFFile interface {
	io.ReaderAt
	io.ReadSeeker
	io.Closer
}

// A GeoTIFFCube is an open hyperspectral GeoTIFF file. Each pixel holds one
// 32-bit floating point sample per spectral band.
type GeoTIFFCube struct {
	file                      geoTIFFFile
	byteOrder                 binary.ByteOrder
	imageWidth                int
	imageLength               int
	bands                     int
	tileWidth                 int
	tileLength                int
	tilesAcross               int
	tilesDown                 int
	compression               uint16
	tileOffsets               []uint64
	tileByteCounts            []uint64
	tileSampleCount           int
	tileByteCountUncompressed int
	tileCacheSizeBytes        int
	tileSamplesCache          *otter.Cache[TileCoord, []float32]
	noData                    float32
	hasNoData                 bool
	scaleX                    float64
	scaleY                    float64
	translateX                float64
	translateY                float64
	srid                      int
	wavenumbers               []float64
}

// A GeoTIFFCubeOption sets an option on a GeoTIFFCube.
type GeoTIFFCubeOption func(*GeoTIFFCube)

// A geoTIFFCubeIFD is a struct into which github.com/google/tiff can
// unmarshal an IFD.
type geoTIFFCubeIFD struct {
	ImageWidth                uint32    `tiff:"field,tag=256"`
	ImageLength               uint32    `tiff:"field,tag=257"`
	BitsPerSample             []uint16  `tiff:"field,tag=258"`
	Compression               uint16    `tiff:"field,tag=259"`
	PhotometricInterpretation uint16    `tiff:"field,tag=262"`
	SamplesPerPixel           uint16    `tiff:"field,tag=277"`
	PlanarConfiguration       uint16    `tiff:"field,tag=284"`
	Predictor                 uint16    `tiff:"field,tag=317"`
	TileWidth                 uint32    `tiff:"field,tag=322"`
	TileLength                uint32    `tiff:"field,tag=323"`
	TileOffsets               []uint64  `tiff:"field,tag=324"`
	TileByteCounts            []uint64  `tiff:"field,tag=325"`
	SampleFormat              []uint16  `tiff:"field,tag=339"`
	ModelPixelScaleTag        []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag          []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag        []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag        []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag         string    `tiff:"field,tag=34737"`
	GDALNoData                string    `tiff:"field,tag=42113"`
}

// NewGeoTIFFCube returns a new GeoTIFFCube.
func NewGeoTIFFCube(fsys fs.FS, filename string, options ...GeoTIFFCubeOption) (*GeoTIFFCube, error) {
	var err error
	ok := false

	c := &GeoTIFFCube{
		tileCacheSizeBytes: 64 << 20, // 64MB.
	}
	for _, option := range options {
		option(c)
	}

	file, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	if c.file, ok = file.(geoTIFFFile); !ok {
		_ = file.Close()
		return nil, errors.ErrUnsupported
	}
	ok = false
	defer func() {
		if !ok {
			_ = c.file.Close()
		}
	}()

	if c.byteOrder, err = readByteOrder(c.file); err != nil {
		return nil, err
	}

	tiffTIFF, err := tiff.Parse(c.file, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}

	if len(tiffTIFF.IFDs()) != 1 {
		return nil, fmt.Errorf("found %d IFDs, expected 1", len(tiffTIFF.IFDs()))
	}

	var ifd geoTIFFCubeIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	if err := ifd.check(); err != nil {
		return nil, err
	}

	c.imageWidth = int(ifd.ImageWidth)
	c.imageLength = int(ifd.ImageLength)
	c.bands = int(ifd.SamplesPerPixel)
	c.compression = ifd.Compression
	c.tileWidth = int(ifd.TileWidth)
	c.tileLength = int(ifd.TileLength)
	c.tilesAcross = (c.imageWidth + c.tileWidth - 1) / c.tileWidth
	c.tilesDown = (c.imageLength + c.tileLength - 1) / c.tileLength
	tilesPerImage := c.tilesAcross * c.tilesDown
	if len(ifd.TileByteCounts) != tilesPerImage || len(ifd.TileOffsets) != tilesPerImage {
		return nil, errors.New("incorrect number of tile byte counts or offsets")
	}
	c.tileOffsets = ifd.TileOffsets
	c.tileByteCounts = ifd.TileByteCounts
	c.tileSampleCount = c.tileWidth * c.tileLength * c.bands
	c.tileByteCountUncompressed = 4 * c.tileSampleCount

	if noData := strings.TrimRight(ifd.GDALNoData, "\x00 "); noData != "" {
		noDataFloat64, err := strconv.ParseFloat(noData, 32)
		if err != nil {
			return nil, fmt.Errorf("GDAL no data: %w", err)
		}
		c.noData = float32(noDataFloat64)
		c.hasNoData = true
	}

	c.scaleX, c.scaleY = ifd.ModelPixelScaleTag[0], ifd.ModelPixelScaleTag[1]
	c.translateX, c.translateY = ifd.ModelTiepointTag[3], ifd.ModelTiepointTag[4]

	if len(ifd.GeoKeyDirectoryTag) != 0 {
		parsedGeoKeys, err := ParseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, []byte(ifd.GeoASCIIParamsTag))
		if err != nil {
			return nil, fmt.Errorf("geo keys: %w", err)
		}
		c.srid = parsedGeoKeys.SRID()
	}

	switch {
	case c.wavenumbers == nil:
		c.wavenumbers = make([]float64, c.bands)
		for i := range c.wavenumbers {
			c.wavenumbers[i] = float64(i + 1)
		}
	case len(c.wavenumbers) != c.bands:
		return nil, fmt.Errorf("%d wavenumbers for %d bands", len(c.wavenumbers), c.bands)
	}

	tileCacheCount := max(c.tileCacheSizeBytes/c.tileByteCountUncompressed, 1)
	c.tileSamplesCache, err = otter.New(&otter.Options[TileCoord, []float32]{
		MaximumSize: tileCacheCount,
	})
	if err != nil {
		return nil, err
	}

	ok = true
	return c, nil
}

// WithTileCacheSize sets the size of the decoded tile cache in bytes.
func WithTileCacheSize(tileCacheSize int) GeoTIFFCubeOption {
	return func(c *GeoTIFFCube) {
		c.tileCacheSizeBytes = tileCacheSize
	}
}

// WithWavenumbers sets the wavenumbers of the bands. The default is 1, 2, 3,
// and so on.
func WithWavenumbers(wavenumbers []float64) GeoTIFFCubeOption {
	return func(c *GeoTIFFCube) {
		c.wavenumbers = wavenumbers
	}
}

// check returns an error if ifd describes an unsupported layout.
func (ifd *geoTIFFCubeIFD) check() error {
	switch {
	case ifd.SamplesPerPixel == 0:
		return errors.New("no samples per pixel")
	case len(ifd.BitsPerSample) != int(ifd.SamplesPerPixel):
		return fmt.Errorf("%d bits per sample values for %d samples per pixel", len(ifd.BitsPerSample), ifd.SamplesPerPixel)
	case len(ifd.SampleFormat) != int(ifd.SamplesPerPixel):
		return fmt.Errorf("%d sample formats for %d samples per pixel", len(ifd.SampleFormat), ifd.SamplesPerPixel)
	case ifd.Compression != compressionNone && ifd.Compression != compressionLZW:
		return fmt.Errorf("compression %d: %w", ifd.Compression, errors.ErrUnsupported)
	case ifd.PlanarConfiguration > 1:
		return fmt.Errorf("planar configuration %d: %w", ifd.PlanarConfiguration, errors.ErrUnsupported)
	case ifd.Predictor > 1:
		return fmt.Errorf("predictor %d: %w", ifd.Predictor, errors.ErrUnsupported)
	case ifd.TileWidth == 0 || ifd.TileLength == 0:
		return fmt.Errorf("not tiled: %w", errors.ErrUnsupported)
	case len(ifd.ModelPixelScaleTag) != 3 || ifd.ModelPixelScaleTag[0] <= 0 || ifd.ModelPixelScaleTag[1] <= 0:
		return fmt.Errorf("model pixel scale %v: %w", ifd.ModelPixelScaleTag, errors.ErrUnsupported)
	case len(ifd.ModelTiepointTag) != 6 || ifd.ModelTiepointTag[0] != 0 || ifd.ModelTiepointTag[1] != 0:
		return fmt.Errorf("model tiepoint %v: %w", ifd.ModelTiepointTag, errors.ErrUnsupported)
	}
	for i := range ifd.BitsPerSample {
		if ifd.BitsPerSample[i] != 32 || ifd.SampleFormat[i] != sampleFormatIEEEFP {
			return fmt.Errorf("band %d: %d bit sample format %d: %w", i, ifd.BitsPerSample[i], ifd.SampleFormat[i], errors.ErrUnsupported)
		}
	}
	return nil
}

// Close closes c.
func (c *GeoTIFFCube) Close() error {
	return c.file.Close()
}

// Size returns the width and length of c in pixels.
func (c *GeoTIFFCube) Size() (int, int) {
	return c.imageWidth, c.imageLength
}

// Bands returns the number of spectral bands in c.
func (c *GeoTIFFCube) Bands() int {
	return c.bands
}

// SRID returns c's SRID, or zero if it is not known.
func (c *GeoTIFFCube) SRID() int {
	return c.srid
}

// MapCoord returns the map coordinates of the center of the pixel at col,
// row.
func (c *GeoTIFFCube) MapCoord(col, row int) (float64, float64) {
	return c.translateX + (float64(col)+0.5)*c.scaleX, c.translateY - (float64(row)+0.5)*c.scaleY
}

// Spectrum returns the spectrum of the pixel at col, row. No data samples
// are NaN.
func (c *GeoTIFFCube) Spectrum(ctx context.Context, col, row int) ([]float64, error) {
	if col < 0 || c.imageWidth <= col || row < 0 || c.imageLength <= row {
		return nil, fmt.Errorf("(%d, %d): %w", col, row, ErrOutOfBounds)
	}
	tileCoord := TileCoord{
		C: col / c.tileWidth,
		R: row / c.tileLength,
	}
	tileSamples, err := c.getTileSamplesCached(ctx, tileCoord)
	if err != nil {
		return nil, err
	}
	return c.tileSpectrum(tileSamples, col%c.tileWidth, row%c.tileLength), nil
}

// Table returns every pixel of c as a Table row, with meta attributes map_x
// and map_y. Rows are in row-major pixel order.
func (c *GeoTIFFCube) Table(ctx context.Context) (*Table, error) {
	pixels := c.imageWidth * c.imageLength
	table := &Table{
		Wavenumbers: c.wavenumbers,
		Spectra:     make([][]float64, pixels),
		MetaNames:   []string{"map_x", "map_y"},
		Metas:       make([][]float64, pixels),
	}
	metasFlat := make([]float64, 2*pixels)

	// Populate rows one tile at a time.
	for r := range c.tilesDown {
		for tc := range c.tilesAcross {
			tileSamples, err := c.getTileSamplesCached(ctx, TileCoord{C: tc, R: r})
			if err != nil {
				return nil, err
			}
			for localRow := range c.tileLength {
				row := r*c.tileLength + localRow
				if row >= c.imageLength {
					break
				}
				for localCol := range c.tileWidth {
					col := tc*c.tileWidth + localCol
					if col >= c.imageWidth {
						break
					}
					index := col + row*c.imageWidth
					table.Spectra[index] = c.tileSpectrum(tileSamples, localCol, localRow)
					metas := metasFlat[2*index : 2*index+2]
					metas[0], metas[1] = c.MapCoord(col, row)
					table.Metas[index] = metas
				}
			}
		}
	}

	return table, nil
}

// getCompressedTileData returns the compressed tile data for the tile at
// tileCoord.
func (c *GeoTIFFCube) getCompressedTileData(tileCoord TileCoord) ([]byte, error) {
	tileIndex := tileCoord.C + c.tilesAcross*tileCoord.R
	tileByteCount := c.tileByteCounts[tileIndex]
	tileOffset := c.tileOffsets[tileIndex]
	compressedData := make([]byte, tileByteCount)
	switch n, err := c.file.ReadAt(compressedData, int64(tileOffset)); {
	case n == int(tileByteCount):
		return compressedData, nil
	case err != nil:
		return nil, err
	default:
		return nil, errShortRead
	}
}

// decompressTileData decompresses the tile data in compressedData.
func (c *GeoTIFFCube) decompressTileData(compressedData []byte) ([]byte, error) {
	if c.compression == compressionNone {
		if len(compressedData) < c.tileByteCountUncompressed {
			return nil, errShortRead
		}
		return compressedData, nil
	}
	tileData := make([]byte, c.tileByteCountUncompressed)
	r := lzw.NewReader(bytes.NewReader(compressedData), lzw.MSB, 8)
	defer r.Close()
	if _, err := io.ReadFull(r, tileData); err != nil {
		return nil, err
	}
	return tileData, nil
}

// decodeTileData decodes tileData.
func (c *GeoTIFFCube) decodeTileData(tileData []byte) []float32 {
	tileSamples := make([]float32, c.tileSampleCount)
	for i := range c.tileSampleCount {
		b := c.byteOrder.Uint32(tileData[i*4 : (i+1)*4])
		tileSamples[i] = math.Float32frombits(b)
	}
	return tileSamples
}

// getTileSamples returns the tile samples at tileCoord.
func (c *GeoTIFFCube) getTileSamples(ctx context.Context, tileCoord TileCoord) ([]float32, error) {
	geoTIFFTileLoads.Inc()

	compressedTileData, err := c.getCompressedTileData(tileCoord)
	if err != nil {
		return nil, err
	}

	tileData, err := c.decompressTileData(compressedTileData)
	if err != nil {
		return nil, err
	}
	return c.decodeTileData(tileData), nil
}

// getTileSamplesCached returns the tile at tileCoord using c's cache.
func (c *GeoTIFFCube) getTileSamplesCached(ctx context.Context, tileCoord TileCoord) ([]float32, error) {
	return c.tileSamplesCache.Get(ctx, tileCoord, otter.LoaderFunc[TileCoord, []float32](c.getTileSamples))
}

// tileSpectrum returns the spectrum from tileSamples at localCol, localRow.
func (c *GeoTIFFCube) tileSpectrum(tileSamples []float32, localCol, localRow int) []float64 {
	offset := c.bands * (localCol + localRow*c.tileWidth)
	spectrum := make([]float64, c.bands)
	for i, sample := range tileSamples[offset : offset+c.bands] {
		if c.hasNoData && sample == c.noData {
			spectrum[i] = math.NaN()
		} else {
			spectrum[i] = float64(sample)
		}
	}
	return spectrum
}

// readByteOrder returns the byte order declared in the TIFF header of r.
func readByteOrder(r io.ReaderAt) (binary.ByteOrder, error) {
	header := make([]byte, 2)
	if _, err := r.ReadAt(header, 0); err != nil {
		return nil, err
	}
	switch string(header) {
	case "II":
		return binary.LittleEndian, nil
	case "MM":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("byte order %q: %w", header, errors.ErrUnsupported)
	}
}
