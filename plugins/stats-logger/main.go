// Package main provides a stats logger plugin.
// It appends each event to a CSV file for offline analysis.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
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
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// LogConfig sets the output file. Relative paths resolve against the plugin
// directory.
type LogConfig struct {
	File string `json:"file"`
}

// PunchParams is the event payload for punch triggers.
type PunchParams struct {
	Side     string  `json:"side"`
	Power    float64 `json:"power"`
	Velocity float64 `json:"velocity"`
	IsFist   bool    `json:"isFist"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Success: false, Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Action != "log" {
		writeResponse(Response{Success: false, Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	if err := appendRecord(req); err != nil {
		writeResponse(Response{Success: false, Error: err.Error()})
		return
	}

	writeResponse(Response{Success: true})
}

func appendRecord(req Request) error {
	cfg := LogConfig{File: "events.csv"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	var params PunchParams
	if len(req.Params) > 0 {
		json.Unmarshal(req.Params, &params)
	}

	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s,%s,%s,%.3f,%.5f,%v\n",
		time.Now().Format(time.RFC3339),
		req.Event, params.Side, params.Power, params.Velocity, params.IsFist)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
