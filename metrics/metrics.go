// Package metrics holds the Prometheus collectors of the tile layer and the image fetcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Refreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_refreshes_total",
		Help: "Total number of layer refresh cycles",
	})

	TilesDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_tiles_discovered_total",
		Help: "Total number of tiles that became visible",
	})

	TilesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_tiles_evicted_total",
		Help: "Total number of tiles evicted by cleanup",
	})

	SearchVisits = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tilestream_search_visits",
		Help:    "Tiles expanded by one visibility search",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	ActiveTiles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tilestream_active_tiles",
		Help: "Tiles currently registered per layer",
	}, []string{"layer"})

	PooledTiles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tilestream_pooled_tiles",
		Help: "Free tile resources per layer",
	}, []string{"layer"})

	ImageRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tilestream_image_requests_total",
		Help: "Total number of image requests by kind",
	}, []string{"kind"})

	ImageCancels = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_image_cancels_total",
		Help: "Total number of image requests cancelled on eviction",
	})

	FetchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tilestream_fetch_results_total",
		Help: "Completed fetches by outcome",
	}, []string{"outcome"})

	FetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tilestream_fetch_latency_seconds",
		Help:    "Latency of tile image fetches in seconds",
		Buckets: prometheus.DefBuckets,
	})

	FetchInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tilestream_fetch_inflight",
		Help: "Image requests started and not yet dispatched or cancelled",
	})
)
