// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for mixer and control-plane settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// MIXER CONFIGURATION
// =============================================================================

// MixerConfig holds the settings passed to mixer.NewMixer and its
// build-time options at process start.
type MixerConfig struct {
	LayerBits   int     // layer count = 2^LayerBits
	Volume      float32 // initial global volume
	DefaultFade int32   // initial default fade, in frames
	SampleRate  int     // output sample rate in Hz of the audio device context
	Scalar      bool    // use the scalar mix path instead of the block path
	DisableClip bool    // skip the final [-1, +1] clamp pass
}

// DefaultMixer returns the default mixer configuration.
func DefaultMixer() MixerConfig {
	return MixerConfig{
		LayerBits:   8, // 256 layers
		Volume:      1.0,
		DefaultFade: 0,
		SampleRate:  44100,
		Scalar:      false,
		DisableClip: false,
	}
}

// MixerFromEnv returns mixer configuration with environment variable
// overrides.
func MixerFromEnv() MixerConfig {
	cfg := DefaultMixer()

	if b := getEnvInt("MIXER_LAYER_BITS", 0); b > 0 {
		cfg.LayerBits = b
	}
	if v := getEnvFloat("MIXER_VOLUME", -1); v >= 0 {
		cfg.Volume = float32(v)
	}
	if f := getEnvInt("MIXER_DEFAULT_FADE", -1); f >= 0 {
		cfg.DefaultFade = int32(f)
	}
	if sr := getEnvInt("MIXER_SAMPLE_RATE", 0); sr > 0 {
		cfg.SampleRate = sr
	}
	if os.Getenv("MIXER_SCALAR") == "true" {
		cfg.Scalar = true
	}
	if os.Getenv("MIXER_DISABLE_CLIP") == "true" {
		cfg.DisableClip = true
	}

	return cfg
}

// =============================================================================
// CONTROL-PLANE SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP control-plane server settings.
type ServerConfig struct {
	Addr              string  // listen address, e.g. ":8080"
	RequestsPerSecond float64 // per-IP rate limit
	Burst             int     // per-IP burst allowance
	SoundsDir         string  // directory of .wav/.ogg files loaded at startup
	EnableDebugServer bool    // pprof + metrics on a localhost-only listener
	DebugAddr         string  // MUST stay localhost; see control.StartDebugServer
}

// DefaultServer returns the default control-plane server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Addr:              ":8080",
		RequestsPerSecond: 20,
		Burst:             40,
		SoundsDir:         "assets/sounds",
		EnableDebugServer: true,
		DebugAddr:         "127.0.0.1:6060",
	}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if addr := os.Getenv("MIXER_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if rps := getEnvFloat("MIXER_RATE_LIMIT_RPS", -1); rps >= 0 {
		cfg.RequestsPerSecond = rps
	}
	if b := getEnvInt("MIXER_RATE_LIMIT_BURST", 0); b > 0 {
		cfg.Burst = b
	}
	if dir := os.Getenv("MIXER_SOUNDS_DIR"); dir != "" {
		cfg.SoundsDir = dir
	}
	if os.Getenv("MIXER_DISABLE_DEBUG_SERVER") == "true" {
		cfg.EnableDebugServer = false
	}
	if addr := os.Getenv("MIXER_DEBUG_ADDR"); addr != "" {
		cfg.DebugAddr = addr
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration for cmd/mixerd.
type AppConfig struct {
	Mixer  MixerConfig
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Mixer:  MixerFromEnv(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
