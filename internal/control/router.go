package control

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bareroseaudio/mixer"
)

// RouterConfig contains everything NewRouter needs to build the control
// plane's HTTP handler. Constructing it is free of side effects (no
// listeners, no goroutines), which keeps it safe to reuse in tests with
// httptest.NewServer.
type RouterConfig struct {
	// Mixer is the live mixer instance being controlled (required).
	Mixer MixerAPI

	// Sounds maps sound names (as used in POST /api/play) to decoded
	// buffers, typically loaded at startup via soundload.LoadDir.
	Sounds map[string]*mixer.Sound

	// Meter is the optional hub backing GET /ws; nil disables it.
	Meter *MeterHub

	// RateLimiter is an optional pre-built limiter; if nil one is
	// constructed from RateLimitConfig (or its defaults).
	RateLimiter *IPRateLimiter

	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default allowed CORS origins.
	CORSOrigins []string

	// DisableLogging turns off the request logger middleware, useful
	// for benchmarks and quiet test output.
	DisableLogging bool
}

// NewRouter builds the control plane's chi.Mux. No network listener is
// opened here, and the MeterHub's own Run loop, if used, must be started
// separately by the caller. When cfg.RateLimiter is nil, the limiter
// built here starts its own cleanup goroutine, which the returned router
// gives no way to stop.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rlCfg)
	}
	r.Use(rateLimiter.Middleware)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Use(withMetrics)

	h := &routerHandlers{mixer: cfg.Mixer, sounds: cfg.Sounds, rateLimiter: rateLimiter, meter: cfg.Meter}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.handleStats)
		r.Get("/sounds", h.handleSounds)

		r.Post("/play", h.handlePlay)
		r.Post("/volume", h.handleSetVolume)
		r.Post("/default-fade", h.handleSetDefaultFade)
		r.Post("/stop-all", h.handleStopAll)
		r.Post("/halt-all", h.handleHaltAll)
		r.Post("/play-all", h.handlePlayAll)

		r.Route("/layers/{handle}", func(r chi.Router) {
			r.Post("/gain-pan", h.handleSetGainPan)
			r.Post("/cursor", h.handleSetCursor)
			r.Post("/state", h.handleSetState)
		})
	})

	r.Get("/metrics", MetricsHandler().ServeHTTP)

	if cfg.Meter != nil {
		r.Get("/ws", cfg.Meter.HandleWebSocket)
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// withMetrics wraps every route with latency/count instrumentation,
// using chi's matched route pattern as the bounded-cardinality label
// instead of the raw (attacker-controlled) URL path.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		RecordRequest(r.Method, route, rw.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
