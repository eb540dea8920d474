// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/velalabs/vela/log"
)

const namespace = "vela"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics creates a new instance of the Prometheus service and
// sets the implementation as the default metrics services
func InitializePrometheusMetrics() {
	// don't allow for reset
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	registry   *prometheus.Registry
	counters   sync.Map
	counterVec sync.Map
	histograms sync.Map
	gauges     sync.Map
}

func newPrometheusMetrics() Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	return &prometheusMetrics{registry: registry}
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

func (o *prometheusMetrics) Dump(w io.Writer) error {
	families, err := o.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	if item, ok := o.counters.Load(name); ok {
		return item.(CountMeter)
	}
	meter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	})
	o.register(meter)
	item, _ := o.counters.LoadOrStore(name, &promCountMeter{meter})
	return item.(CountMeter)
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	if item, ok := o.counterVec.Load(name); ok {
		return item.(CountVecMeter)
	}
	meter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	}, labels)
	o.register(meter)
	item, _ := o.counterVec.LoadOrStore(name, &promCountVecMeter{meter})
	return item.(CountVecMeter)
}

func (o *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	if item, ok := o.histograms.Load(name); ok {
		return item.(HistogramMeter)
	}
	floatBuckets := make([]float64, 0, len(buckets))
	for _, bucket := range buckets {
		floatBuckets = append(floatBuckets, float64(bucket))
	}
	meter := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floatBuckets,
	})
	o.register(meter)
	item, _ := o.histograms.LoadOrStore(name, &promHistogramMeter{meter})
	return item.(HistogramMeter)
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	if item, ok := o.gauges.Load(name); ok {
		return item.(GaugeMeter)
	}
	meter := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
	})
	o.register(meter)
	item, _ := o.gauges.LoadOrStore(name, &promGaugeMeter{meter})
	return item.(GaugeMeter)
}

func (o *prometheusMetrics) register(c prometheus.Collector) {
	if err := o.registry.Register(c); err != nil {
		logger.Warn("unable to register metric", "err", err)
	}
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (c *promHistogramMeter) Observe(i int64) {
	c.histogram.Observe(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (c *promGaugeMeter) Add(i int64) {
	c.gauge.Add(float64(i))
}

func (c *promGaugeMeter) Set(i int64) {
	c.gauge.Set(float64(i))
}
