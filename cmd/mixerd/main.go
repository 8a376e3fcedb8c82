// Command mixerd runs the mixer as a standalone daemon: it loads sound
// assets from disk, exposes an HTTP control plane over them, and drives
// a real audio output device from the mix thread.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/joho/godotenv"

	"github.com/bareroseaudio/mixer"
	"github.com/bareroseaudio/mixer/internal/config"
	"github.com/bareroseaudio/mixer/internal/control"
	"github.com/bareroseaudio/mixer/internal/output"
	"github.com/bareroseaudio/mixer/internal/soundload"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	sounds, loadErrs := soundload.LoadDir(cfg.Server.SoundsDir)
	for _, e := range loadErrs {
		log.Printf("sound load error: %v", e)
	}
	log.Printf("loaded %d sounds from %s", len(sounds), cfg.Server.SoundsDir)

	var opts []mixer.Option
	if cfg.Mixer.LayerBits > 0 {
		opts = append(opts, mixer.WithLayerBits(cfg.Mixer.LayerBits))
	}
	if cfg.Mixer.Scalar {
		opts = append(opts, mixer.WithScalarMode())
	}
	if cfg.Mixer.DisableClip {
		opts = append(opts, mixer.WithClipDisabled())
	}

	m, err := mixer.NewMixer(cfg.Mixer.Volume, cfg.Mixer.DefaultFade, opts...)
	if err != nil {
		log.Fatalf("failed to create mixer: %v", err)
	}
	log.Printf("mixer ready: %d layers, %d Hz", m.LayerCount(), cfg.Mixer.SampleRate)

	audioCtx := audio.NewContext(cfg.Mixer.SampleRate)
	stream := output.NewStream(m, cfg.Mixer.SampleRate)
	player, err := audioCtx.NewPlayer(stream)
	if err != nil {
		log.Fatalf("failed to create audio player: %v", err)
	}
	player.Play()
	defer player.Close()

	srv := control.NewServer(cfg.Server.Addr, m, sounds, 100*time.Millisecond, control.ServerOptions{
		RateLimit: control.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			Burst:             cfg.Server.Burst,
			CleanupInterval:   5 * time.Minute,
		},
		Debug: control.ObservabilityConfig{
			Enabled:    cfg.Server.EnableDebugServer,
			ListenAddr: cfg.Server.DebugAddr,
		},
	})
	go func() {
		if err := srv.Start(m); err != nil {
			log.Fatalf("control server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
