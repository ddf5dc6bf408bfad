package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGraphAdapterCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewGraphAdapter(reg, "connectome", "graph", nil)

	a.HashComputed("sum")
	a.HashComputed("sum")
	a.ValueComputed("sum")
	a.CacheHit("cached")
	a.CacheMiss("cached")
	a.Contention("mykey")

	assert.Equal(t, float64(2), testutil.ToFloat64(a.hashesComputed.WithLabelValues("sum")))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.valuesComputed.WithLabelValues("sum")))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.cacheHits.WithLabelValues("cached")))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.cacheMisses.WithLabelValues("cached")))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.contentions.WithLabelValues("mykey")))
}
