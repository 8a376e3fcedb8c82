package control

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bareroseaudio/mixer"
)

// ServerOptions carries the independently-configurable pieces of a
// Server beyond its listen address: the per-IP rate limit (normally
// sourced from config.ServerConfig's RequestsPerSecond/Burst) and the
// local pprof/metrics debug server. A zero-value RateLimit falls back to
// DefaultRateLimitConfig; a zero-value Debug leaves the debug server
// disabled.
type ServerOptions struct {
	RateLimit RateLimitConfig
	Debug     ObservabilityConfig
}

// Server wraps the control-plane HTTP listener, its meter hub, rate
// limiter, and local debug server.
type Server struct {
	httpServer    *http.Server
	meter         *MeterHub
	meterInterval time.Duration
	rateLimiter   *IPRateLimiter
	debugCfg      ObservabilityConfig
}

// NewServer builds a Server listening on addr, controlling m and
// serving sounds by name. meterInterval is the cadence of meter-socket
// broadcasts; pass 0 to disable the meter loop entirely.
func NewServer(addr string, m MixerAPI, sounds map[string]*mixer.Sound, meterInterval time.Duration, opts ServerOptions) *Server {
	var hub *MeterHub
	if meterInterval > 0 {
		hub = NewMeterHub()
	}

	rlCfg := opts.RateLimit
	if rlCfg == (RateLimitConfig{}) {
		rlCfg = DefaultRateLimitConfig
	}
	rateLimiter := NewIPRateLimiter(rlCfg)

	router := NewRouter(RouterConfig{
		Mixer:       m,
		Sounds:      sounds,
		Meter:       hub,
		RateLimiter: rateLimiter,
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		meter:         hub,
		meterInterval: meterInterval,
		rateLimiter:   rateLimiter,
		debugCfg:      opts.Debug,
	}
}

// Start launches the meter hub (if enabled) and the local debug server
// (if enabled), then blocks serving HTTP until the listener errors or
// Shutdown is called.
func (s *Server) Start(m MixerAPI) error {
	if s.meter != nil {
		go s.meter.Run()
		s.meter.StartMeterLoop(m, s.meterInterval)
	}
	if err := StartDebugServer(s.debugCfg); err != nil {
		return err
	}
	log.Printf("control plane listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP listener and the rate limiter's
// cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}
