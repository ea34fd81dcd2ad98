package hyperspectral

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imageCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperspectral_image_cache_hits_total",
		Help: "The total number of hits on the image cache",
	})
	imageCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperspectral_image_cache_misses_total",
		Help: "The total number of misses on the image cache",
	})
	imageCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperspectral_image_cache_evictions_total",
		Help: "The total number of evictions from the image cache",
	})
	rasterizeDroppedSamples = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperspectral_rasterize_dropped_samples_total",
		Help: "The total number of samples dropped because they fell outside the raster",
	})
	rasterizeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperspectral_rasterize_collisions_total",
		Help: "The total number of samples written to an already populated cell",
	})
	geoTIFFTileLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperspectral_geotiff_tile_cache_loads_total",
		Help: "The total number of GeoTIFF tiles read and decoded",
	})
)
