package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/twpayne/go-hyperspectral"
)

var (
	outOfRangePolicies = map[string]hyperspectral.OutOfRangePolicy{
		"error": hyperspectral.OutOfRangeError,
		"drop":  hyperspectral.OutOfRangeDrop,
		"clip":  hyperspectral.OutOfRangeClip,
	}
	collisionPolicies = map[string]hyperspectral.CollisionPolicy{
		"last": hyperspectral.CollisionLast,
		"mean": hyperspectral.CollisionMean,
	}
)

func run() error {
	attrX := flag.String("x", "", "x axis attribute (default: first meta attribute)")
	attrY := flag.String("y", "", "y axis attribute (default: second meta attribute)")
	thresholdLow := flag.Float64("low", 0, "low color threshold, between 0 and 1")
	thresholdHigh := flag.Float64("high", 1, "high color threshold, between 0 and 1")
	gamma := flag.Float64("gamma", 0, "gamma, between 0 and 20")
	scale := flag.Int("scale", 1, "scale output by `factor`")
	sourceCRS := flag.String("source-crs", "", "CRS of the axis attributes (default: GeoTIFF CRS, if any)")
	targetCRS := flag.String("target-crs", "", "reproject axis attributes to `crs`")
	outOfRange := flag.String("out-of-range", "error", "out of range sample policy (error, drop, or clip)")
	collision := flag.String("collision", "last", "colliding sample policy (last or mean)")
	wavenumbers := flag.String("wavenumbers", "", "comma-separated GeoTIFF band wavenumbers")
	flag.Parse()

	if flag.NArg() != 2 {
		return errors.New("syntax: hyperspectral-image [flags] input.{csv,tif} output.{png,tif}")
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	outOfRangePolicy, ok := outOfRangePolicies[*outOfRange]
	if !ok {
		return fmt.Errorf("%s: invalid out of range policy", *outOfRange)
	}
	collisionPolicy, ok := collisionPolicies[*collision]
	if !ok {
		return fmt.Errorf("%s: invalid collision policy", *collision)
	}

	ctx := context.Background()

	table, srid, err := readTable(ctx, inputPath, *wavenumbers)
	if err != nil {
		return err
	}

	imagePlotOptions := []hyperspectral.ImagePlotOption{
		hyperspectral.WithRasterizeOptions(
			hyperspectral.WithOutOfRange(outOfRangePolicy),
			hyperspectral.WithCollision(collisionPolicy),
		),
	}
	if *targetCRS != "" {
		if *sourceCRS == "" && srid != 0 {
			*sourceCRS = "epsg:" + strconv.Itoa(srid)
		}
		if *sourceCRS == "" {
			return errors.New("target CRS requires a source CRS")
		}
		reprojector, err := hyperspectral.NewReprojector(*sourceCRS, *targetCRS)
		if err != nil {
			return err
		}
		imagePlotOptions = append(imagePlotOptions, hyperspectral.WithReprojector(reprojector))
	}

	imagePlot, err := hyperspectral.NewImagePlot(imagePlotOptions...)
	if err != nil {
		return err
	}
	imagePlot.SetData(table)

	settings := imagePlot.DefaultSettings()
	settings.ThresholdLow = *thresholdLow
	settings.ThresholdHigh = *thresholdHigh
	settings.Gamma = *gamma
	if *attrX != "" {
		settings.AttrX = *attrX
	}
	if *attrY != "" {
		settings.AttrY = *attrY
	}

	rgba, img, err := imagePlot.Render(ctx, settings)
	if err != nil {
		return err
	}

	var output image.Image = rgba
	if *scale > 1 {
		bounds := rgba.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, *scale*bounds.Dx(), *scale*bounds.Dy()))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), rgba, bounds, draw.Src, nil)
		output = scaled
	}

	if err := writeImage(outputPath, output); err != nil {
		return err
	}

	rect := img.Rect()
	fmt.Printf("x: %s %g..%g (%d)\n", settings.AttrX, img.X.Start, img.X.End, img.X.Count)
	fmt.Printf("y: %s %g..%g (%d)\n", settings.AttrY, img.Y.Start, img.Y.End, img.Y.Count)
	fmt.Printf("extent: %g %g %g %g\n", rect.Left, rect.Bottom, rect.Left+rect.Width, rect.Bottom+rect.Height)
	fmt.Printf("levels: %g %g\n", img.LevelLow, img.LevelHigh)

	return nil
}

// readTable reads a table from a CSV or GeoTIFF file. For GeoTIFF files it
// also returns the file's SRID.
func readTable(ctx context.Context, path, wavenumbers string) (*hyperspectral.Table, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, 0, err
		}
		defer file.Close()
		table, err := hyperspectral.ReadCSV(file)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
		return table, 0, nil
	case ".tif", ".tiff":
		var options []hyperspectral.GeoTIFFCubeOption
		if wavenumbers != "" {
			values, err := parseFloats(wavenumbers)
			if err != nil {
				return nil, 0, err
			}
			options = append(options, hyperspectral.WithWavenumbers(values))
		}
		cube, err := hyperspectral.NewGeoTIFFCube(os.DirFS(filepath.Dir(path)), filepath.Base(path), options...)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
		defer cube.Close()
		table, err := cube.Table(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
		return table, cube.SRID(), nil
	default:
		return nil, 0, fmt.Errorf("%s: unsupported input format", path)
	}
}

func writeImage(path string, img image.Image) (err error) {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = png.Encode
	case ".tif", ".tiff":
		encode = func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{
				Compression: tiff.Deflate,
			})
		}
	default:
		return fmt.Errorf("%s: unsupported output format", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()
	return encode(file, img)
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	values := make([]float64, len(fields))
	for i, field := range fields {
		value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
