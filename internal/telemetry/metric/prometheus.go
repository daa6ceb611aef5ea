package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "projconf"

// Cache lookup results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Registry holds all application metrics.
//
// A nil *Registry is valid and records nothing, so callers never need to
// check whether metrics are enabled.
type Registry struct {
	reg *prometheus.Registry

	ResolutionsTotal *prometheus.CounterVec
	FragmentsLoaded  prometheus.Gauge
	LoadErrors       prometheus.Counter
	GlobDuration     prometheus.Histogram
	CacheRequests    *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolution calls by operation",
		}, []string{"op"}),
		FragmentsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fragments_loaded",
			Help:      "Fragments in the most recently loaded stack",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Fragment stack loads that failed",
		}),
		GlobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "glob_duration_seconds",
			Help:      "Time spent expanding one wildcard level key",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Instance cache lookups by result",
		}, []string{"result"}),
	}

	r.reg.MustRegister(
		r.ResolutionsTotal,
		r.FragmentsLoaded,
		r.LoadErrors,
		r.GlobDuration,
		r.CacheRequests,
	)
	return r
}

// Register adds extra collectors to the registry.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	if r == nil {
		return nil
	}
	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// ObserveResolution counts one call of op.
func (r *Registry) ObserveResolution(op string) {
	if r == nil {
		return
	}
	r.ResolutionsTotal.WithLabelValues(op).Inc()
}

// ObserveLoad records the outcome of a fragment stack load.
func (r *Registry) ObserveLoad(fragments int, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.LoadErrors.Inc()
		return
	}
	r.FragmentsLoaded.Set(float64(fragments))
}

// ObserveGlob records the duration of one wildcard expansion.
func (r *Registry) ObserveGlob(d time.Duration) {
	if r == nil {
		return
	}
	r.GlobDuration.Observe(d.Seconds())
}

// ObserveCache counts one cache lookup.
func (r *Registry) ObserveCache(hit bool) {
	if r == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	r.CacheRequests.WithLabelValues(result).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(r *Registry) http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("# metrics not enabled\n"))
		})
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
