package sortedconv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	unmarshalTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "sortedconv_unmarshal_total",
		Help: "The total number of sorted containers reconstructed, by container kind and population path",
	}, []string{"kind", "path"})

	unmarshalElements = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "sortedconv_unmarshal_elements",
		Help:    "The number of elements per reconstructed sorted container",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), //nolint:mnd
	}, []string{"kind"})
)

func observe(kind string, path Path, elements int) {
	unmarshalTotal.WithLabelValues(kind, path.String()).Inc()
	unmarshalElements.WithLabelValues(kind).Observe(float64(elements))
}
