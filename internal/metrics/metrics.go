package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts catalog ingestion and batch propagation outcomes. It
// satisfies tardis.Recorder.
type Recorder struct {
	records       *prometheus.CounterVec
	propagations  *prometheus.CounterVec
	batchDuration prometheus.Histogram
	catalogSize   prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tardis_catalog_records_total",
				Help: "Catalog records read, by result.",
			},
			[]string{"result"},
		),
		propagations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tardis_propagations_total",
				Help: "Satellite propagations, by result.",
			},
			[]string{"result"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tardis_batch_duration_seconds",
				Help:    "Duration of a catalog-wide propagation in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		catalogSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tardis_catalog_entries",
				Help: "Satellites in the loaded catalog.",
			},
		),
	}
	for _, c := range []prometheus.Collector{r.records, r.propagations, r.batchDuration, r.catalogSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// ObserveRecord counts one catalog record.
func (r *Recorder) ObserveRecord(ok bool) {
	r.records.WithLabelValues(result(ok)).Inc()
}

// ObserveBatch records one PropagateAll run.
func (r *Recorder) ObserveBatch(d time.Duration, ok, failed int) {
	r.batchDuration.Observe(d.Seconds())
	r.propagations.WithLabelValues(result(true)).Add(float64(ok))
	r.propagations.WithLabelValues(result(false)).Add(float64(failed))
}

// SetCatalogSize reports the number of entries after a (re)load.
func (r *Recorder) SetCatalogSize(n int) {
	r.catalogSize.Set(float64(n))
}

// Handler returns the Prometheus metrics HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
