// Package metrics expone las métricas Prometheus del registry.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        prometheus.Gauge

	// Dominio
	discoverOutcomes *prometheus.CounterVec
	evictedRowsTotal prometheus.Counter
	rateLimitedTotal prometheus.Counter
)

// Register inicializa las métricas y devuelve el handler de /metrics.
// replaySize (opcional) publica el tamaño del cache anti-replay como gauge.
// Idempotente: el once evita doble registro bajo wiring repetido (tests).
func Register(reg prometheus.Registerer, replaySize func() int) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		})

		discoverOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nodereg_discover_results_total",
			Help: "Resultados de la pipeline de discover por token",
		}, []string{"outcome"})

		evictedRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nodereg_evicted_rows_total",
			Help: "Filas podadas por el eviction worker",
		})

		rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nodereg_rate_limited_total",
			Help: "Requests rechazadas por rate limiting",
		})

		reg.MustRegister(
			httpRequestsTotal, httpRequestDuration, httpInflight,
			discoverOutcomes, evictedRowsTotal, rateLimitedTotal,
		)

		if replaySize != nil {
			reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "nodereg_replay_fingerprints",
				Help: "Huellas vivas en el cache anti-replay",
			}, func() float64 { return float64(replaySize()) }))
		}
	})

	return promhttp.Handler()
}

// RecordDiscoverOutcome cuenta un resultado de la pipeline ("success" o token de error).
func RecordDiscoverOutcome(outcome string) {
	if discoverOutcomes != nil {
		discoverOutcomes.WithLabelValues(outcome).Inc()
	}
}

// RecordEvicted suma filas podadas.
func RecordEvicted(n int64) {
	if evictedRowsTotal != nil {
		evictedRowsTotal.Add(float64(n))
	}
}

// RecordRateLimited cuenta un 429.
func RecordRateLimited() {
	if rateLimitedTotal != nil {
		rateLimitedTotal.Inc()
	}
}

// statusRecorder captura el status code para las métricas HTTP.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Middleware instrumenta cada request con counter, histograma e inflight.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httpRequestsTotal == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
