package control

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics use only bounded label values (HTTP method/route/status, a
// fixed rejection-reason enum) to keep cardinality predictable under
// hostile traffic.
var (
	mixDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mixer_mix_duration_seconds",
		Help:    "Time spent in Mixer.Mix per call",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01},
	})

	activeLayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mixer_active_layers",
		Help: "Current number of non-free layers",
	})

	layersExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mixer_layers_exhausted_total",
		Help: "Play/PlayAdv calls that failed with ErrNoSlot",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "control_connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // "rate_limit", "origin", "ws_limit"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "control_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "control_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "control_websocket_connections_active",
		Help: "Currently open meter WebSocket connections",
	})
)

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordMix records one Mix call's wall-clock duration.
func RecordMix(d time.Duration) {
	mixDuration.Observe(d.Seconds())
}

// UpdateActiveLayers sets the active-layer gauge to n.
func UpdateActiveLayers(n int) {
	activeLayers.Set(float64(n))
}

// RecordLayerExhausted increments the ErrNoSlot counter.
func RecordLayerExhausted() {
	layersExhausted.Inc()
}

// recordConnectionRejected increments the rejection counter for reason.
func recordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records one HTTP request's route, status and latency.
func RecordRequest(method, route string, status int, d time.Duration) {
	requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
	requestTotal.WithLabelValues(method, route, http.StatusText(status)).Inc()
}

// UpdateWSConnections sets the meter-socket connection gauge.
func UpdateWSConnections(n int) {
	wsConnectionsActive.Set(float64(n))
}

// ObservabilityConfig configures the internal debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be localhost in production
	BasicAuthUser string // optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults: enabled, localhost-only.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the pprof/metrics debug server in its own
// goroutine and returns immediately.
//
// CRITICAL: this MUST bind to localhost only. pprof's /debug/pprof/profile
// lets any caller who can reach it pin a CPU core for the duration of the
// profile, which would starve the mix thread if exposed on the public
// listener alongside the control-plane API.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("MIXER_ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("debug server starting on %s (pprof + metrics)", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
