package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/shadowbox/internal/store"
	"github.com/ayusman/shadowbox/internal/tracker"
)

// ConfigSettingKey is the settings-table key the tracker calibration is
// persisted under.
const ConfigSettingKey = "tracker.config"

// ConfigHandler exposes the tracker calibration over HTTP. Updates are
// validated by the tracker itself and, when a store is available, persisted
// so they survive a restart.
type ConfigHandler struct {
	tracker *tracker.Tracker
	store   *store.Store
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(t *tracker.Tracker, s *store.Store) *ConfigHandler {
	return &ConfigHandler{tracker: t, store: s}
}

// configDTO is the wire form of tracker.Config. The cooldown crosses the
// wire in milliseconds.
type configDTO struct {
	ReferenceScale         float64 `json:"reference_scale"`
	SmoothingAlpha         float64 `json:"smoothing_alpha"`
	PalmWeight             float64 `json:"palm_weight"`
	ScaleWeight            float64 `json:"scale_weight"`
	DepthGain              float64 `json:"depth_gain"`
	PunchVelocityThreshold float64 `json:"punch_velocity_threshold"`
	PunchCooldownMs        int64   `json:"punch_cooldown_ms"`
	ReleaseRatio           float64 `json:"release_ratio"`
	DepthHistorySize       int     `json:"depth_history_size"`
	VelocityHistorySize    int     `json:"velocity_history_size"`
	FistCurlRatio          float64 `json:"fist_curl_ratio"`
	MissDepthDecay         float64 `json:"miss_depth_decay"`
	MissVelocityDecay      float64 `json:"miss_velocity_decay"`
}

func toConfigDTO(c tracker.Config) configDTO {
	return configDTO{
		ReferenceScale:         c.ReferenceScale,
		SmoothingAlpha:         c.SmoothingAlpha,
		PalmWeight:             c.PalmWeight,
		ScaleWeight:            c.ScaleWeight,
		DepthGain:              c.DepthGain,
		PunchVelocityThreshold: c.PunchVelocityThreshold,
		PunchCooldownMs:        c.PunchCooldown.Milliseconds(),
		ReleaseRatio:           c.ReleaseRatio,
		DepthHistorySize:       c.DepthHistorySize,
		VelocityHistorySize:    c.VelocityHistorySize,
		FistCurlRatio:          c.FistCurlRatio,
		MissDepthDecay:         c.MissDepthDecay,
		MissVelocityDecay:      c.MissVelocityDecay,
	}
}

func (d configDTO) toConfig() tracker.Config {
	return tracker.Config{
		ReferenceScale:         d.ReferenceScale,
		SmoothingAlpha:         d.SmoothingAlpha,
		PalmWeight:             d.PalmWeight,
		ScaleWeight:            d.ScaleWeight,
		DepthGain:              d.DepthGain,
		PunchVelocityThreshold: d.PunchVelocityThreshold,
		PunchCooldown:          time.Duration(d.PunchCooldownMs) * time.Millisecond,
		ReleaseRatio:           d.ReleaseRatio,
		DepthHistorySize:       d.DepthHistorySize,
		VelocityHistorySize:    d.VelocityHistorySize,
		FistCurlRatio:          d.FistCurlRatio,
		MissDepthDecay:         d.MissDepthDecay,
		MissVelocityDecay:      d.MissVelocityDecay,
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toConfigDTO(h.tracker.Config()))
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// put handles PUT /api/config. The whole calibration is replaced at once;
// partial updates start from the current config on the client side.
func (h *ConfigHandler) put(w http.ResponseWriter, r *http.Request) {
	var dto configDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cfg := dto.toConfig()
	if err := h.tracker.SetConfig(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.store != nil {
		raw, _ := json.Marshal(toConfigDTO(cfg))
		if err := h.store.Settings().Set(ConfigSettingKey, string(raw)); err != nil {
			log.Printf("Failed to persist tracker config: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, toConfigDTO(h.tracker.Config()))
}

// LoadPersistedConfig applies a previously persisted calibration to the
// tracker. A missing setting is not an error.
func LoadPersistedConfig(t *tracker.Tracker, s *store.Store) error {
	raw, err := s.Settings().Get(ConfigSettingKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	var dto configDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return err
	}
	return t.SetConfig(dto.toConfig())
}
