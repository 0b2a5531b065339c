// Package main provides a sound feedback plugin.
// It plays a sound file whenever a punch or stance event fires.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PlayConfig selects the sound to play. Sounds lives next to the plugin so
// relative paths work; the executor runs us with the plugin dir as cwd.
type PlayConfig struct {
	Sound string `json:"sound"`

	// PowerSounds optionally maps punch power bands to different files:
	// the highest threshold not exceeding the punch power wins.
	PowerSounds map[string]string `json:"powerSounds"`
}

// PunchParams is the event payload for punch triggers.
type PunchParams struct {
	Power float64 `json:"power"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "play" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	if err := handlePlay(req); err != nil {
		writeErrorResponse(fmt.Sprintf("play failed: %v", err))
		return
	}

	writeSuccessResponse()
}

func handlePlay(req Request) error {
	var cfg PlayConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	sound := cfg.Sound
	if strings.HasPrefix(req.Event, "punch") && len(cfg.PowerSounds) > 0 {
		var params PunchParams
		if len(req.Params) > 0 {
			json.Unmarshal(req.Params, &params)
		}
		if s := pickPowerSound(cfg.PowerSounds, params.Power); s != "" {
			sound = s
		}
	}

	if sound == "" {
		return fmt.Errorf("no sound configured")
	}

	return playSound(sound)
}

// pickPowerSound returns the sound for the highest band at or below power.
// Band keys are decimal strings like "0.5".
func pickPowerSound(bands map[string]string, power float64) string {
	best := ""
	bestThreshold := -1.0
	for key, sound := range bands {
		var threshold float64
		if _, err := fmt.Sscanf(key, "%f", &threshold); err != nil {
			continue
		}
		if threshold <= power && threshold > bestThreshold {
			best = sound
			bestThreshold = threshold
		}
	}
	return best
}

// playSound shells out to the platform's audio player.
func playSound(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("afplay", path)
	case "windows":
		cmd = exec.Command("powershell", "-c", fmt.Sprintf(`(New-Object Media.SoundPlayer "%s").PlaySync()`, path))
	default:
		cmd = exec.Command("paplay", path)
	}
	return cmd.Run()
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

func writeErrorResponse(msg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: msg})
}
