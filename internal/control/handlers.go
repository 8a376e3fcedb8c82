package control

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bareroseaudio/mixer"
)

// MixerAPI is the subset of *mixer.Mixer the control plane calls. Kept
// as an interface so handlers can be exercised against a fake in tests
// without a real Mixer and its layer pool.
type MixerAPI interface {
	Play(snd *mixer.Sound, state mixer.LayerState, gain, pan float32) (uint32, error)
	PlayAdv(snd *mixer.Sound, state mixer.LayerState, gain, pan float32, start, end, fade int32) (uint32, error)
	SetGainPan(handle uint32, gain, pan float32) error
	SetCursor(handle uint32, cursor int32) error
	SetState(handle uint32, state mixer.LayerState) error
	SetVolume(volume float32)
	SetDefaultFade(fade int32)
	StopAll()
	HaltAll()
	PlayAll()
	ActiveLayers() int
	LayerCount() int
}

// routerHandlers holds the dependencies HTTP handlers close over.
type routerHandlers struct {
	mixer       MixerAPI
	sounds      map[string]*mixer.Sound
	rateLimiter *IPRateLimiter
	meter       *MeterHub
}

func stateFromString(s string) (mixer.LayerState, bool) {
	switch s {
	case "stop":
		return mixer.Stop, true
	case "halt":
		return mixer.Halt, true
	case "play":
		return mixer.Play, true
	case "loop":
		return mixer.Loop, true
	default:
		return 0, false
	}
}

func (h *routerHandlers) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sound string   `json:"sound"`
		State string   `json:"state"`
		Gain  float32  `json:"gain"`
		Pan   float32  `json:"pan"`
		Start *int32   `json:"start"`
		End   *int32   `json:"end"`
		Fade  *int32   `json:"fade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	snd, ok := h.sounds[req.Sound]
	if !ok {
		writeError(w, "unknown sound: "+req.Sound, http.StatusNotFound)
		return
	}
	state, ok := stateFromString(req.State)
	if !ok {
		writeError(w, "invalid state: "+req.State, http.StatusBadRequest)
		return
	}

	var handle uint32
	var err error
	if req.Start != nil && req.End != nil && req.Fade != nil {
		handle, err = h.mixer.PlayAdv(snd, state, req.Gain, req.Pan, *req.Start, *req.End, *req.Fade)
	} else {
		handle, err = h.mixer.Play(snd, state, req.Gain, req.Pan)
	}
	if err != nil {
		if errors.Is(err, mixer.ErrNoSlot) {
			RecordLayerExhausted()
		}
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, map[string]interface{}{"handle": handle})
}

func handleFromURL(r *http.Request) (uint32, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, "handle"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (h *routerHandlers) handleSetGainPan(w http.ResponseWriter, r *http.Request) {
	handle, err := handleFromURL(r)
	if err != nil {
		writeError(w, "invalid handle", http.StatusBadRequest)
		return
	}
	var req struct {
		Gain float32 `json:"gain"`
		Pan  float32 `json:"pan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.mixer.SetGainPan(handle, req.Gain, req.Pan); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handleSetCursor(w http.ResponseWriter, r *http.Request) {
	handle, err := handleFromURL(r)
	if err != nil {
		writeError(w, "invalid handle", http.StatusBadRequest)
		return
	}
	var req struct {
		Cursor int32 `json:"cursor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.mixer.SetCursor(handle, req.Cursor); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handleSetState(w http.ResponseWriter, r *http.Request) {
	handle, err := handleFromURL(r)
	if err != nil {
		writeError(w, "invalid handle", http.StatusBadRequest)
		return
	}
	var req struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	state, ok := stateFromString(req.State)
	if !ok {
		writeError(w, "invalid state: "+req.State, http.StatusBadRequest)
		return
	}
	if err := h.mixer.SetState(handle, state); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float32 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.mixer.SetVolume(req.Volume)
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handleSetDefaultFade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fade int32 `json:"fade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.mixer.SetDefaultFade(req.Fade)
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handleStopAll(w http.ResponseWriter, r *http.Request) {
	h.mixer.StopAll()
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handleHaltAll(w http.ResponseWriter, r *http.Request) {
	h.mixer.HaltAll()
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handlePlayAll(w http.ResponseWriter, r *http.Request) {
	h.mixer.PlayAll()
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"activeLayers": h.mixer.ActiveLayers(),
		"layerCount":   h.mixer.LayerCount(),
	}
	if h.rateLimiter != nil {
		stats["rateLimit"] = h.rateLimiter.GetStats()
	}
	if h.meter != nil {
		stats["meterConnections"] = h.meter.ClientCount()
		stats["meterRateLimit"] = h.meter.limiter.GetStats()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleSounds(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.sounds))
	for name := range h.sounds {
		names = append(names, name)
	}
	writeJSON(w, names)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
