package tracker

import (
	"time"

	"github.com/ayusman/shadowbox/internal/detector"
)

// HandState holds the long-lived tracking state for one side. One instance
// exists per side for the life of the tracker; Reset replaces both wholesale
// so no punch or cooldown state can leak between sessions.
type HandState struct {
	Side detector.Side `json:"side"`

	// SmoothedDepth is the exponentially smoothed relative forward/back
	// position. 0 is neutral, negative is closer to the camera.
	SmoothedDepth float64 `json:"smoothedDepth"`

	// DepthHistory keeps the most recent smoothed-depth samples, oldest
	// first. It exists only to feed the velocity estimate.
	DepthHistory []float64 `json:"depthHistory"`

	// Velocity is the difference between the last two depth samples.
	Velocity float64 `json:"velocity"`

	// VelocityHistory is retained for graphing consumers only.
	VelocityHistory []float64 `json:"velocityHistory"`

	// Scale is the current wrist-to-middle-knuckle distance.
	Scale float64 `json:"scale"`

	IsFist     bool    `json:"isFist"`
	IsPunching bool    `json:"isPunching"`
	PunchPower float64 `json:"punchPower"`

	PunchStartTime time.Time `json:"punchStartTime"`
	LastPunchTime  time.Time `json:"lastPunchTime"`

	// Position is the current hand-centre estimate: palm centre in x/y with
	// the smoothed depth as z.
	Position detector.Point3D `json:"position"`

	// Detected reports whether this side produced a landmark frame on the
	// most recent tick. Absence is distinct from a zero reading.
	Detected bool `json:"detected"`
}

func newHandState(side detector.Side, cfg Config) *HandState {
	return &HandState{
		Side:            side,
		DepthHistory:    make([]float64, 0, cfg.DepthHistorySize),
		VelocityHistory: make([]float64, 0, cfg.VelocityHistorySize),
	}
}

// clone returns an independent copy of the state. Mutating the copy, its
// histories included, cannot affect the tracker.
func (s *HandState) clone() HandState {
	out := *s
	out.DepthHistory = append([]float64(nil), s.DepthHistory...)
	out.VelocityHistory = append([]float64(nil), s.VelocityHistory...)
	return out
}

// pushBounded appends v to history, evicting the oldest entries once the
// capacity limit is reached. A capacity lowered mid-run sheds the excess
// oldest samples on the next push.
func pushBounded(history []float64, v float64, limit int) []float64 {
	if excess := len(history) - limit + 1; excess > 0 {
		copy(history, history[excess:])
		history = history[:len(history)-excess]
	}
	return append(history, v)
}
