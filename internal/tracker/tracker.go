package tracker

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ayusman/shadowbox/internal/detector"
)

// PunchEvent describes a detected forward punch. At most one event is
// emitted per side per cooldown window.
type PunchEvent struct {
	Side     detector.Side    `json:"side"`
	Power    float64          `json:"power"` // 0..1
	Position detector.Point3D `json:"position"`
	Velocity float64          `json:"velocity"`
	IsFist   bool             `json:"isFist"`
	Time     time.Time        `json:"time"`
}

// fingerJoints pairs each finger's tip with its base knuckle for the fist
// heuristic. The thumb is excluded; it stays extended in many fist shapes.
var fingerJoints = [4][2]int{
	{detector.IndexTip, detector.IndexMCP},
	{detector.MiddleTip, detector.MiddleMCP},
	{detector.RingTip, detector.RingMCP},
	{detector.PinkyTip, detector.PinkyMCP},
}

// Tracker converts per-frame hand landmarks into smoothed depth, velocity
// and debounced punch events for both sides. It is owned by the capture
// loop; Update and Miss are called once per side per tick.
type Tracker struct {
	cfg       Config
	left      *HandState
	right     *HandState
	listeners []func(PunchEvent)
	mu        sync.RWMutex
}

// New creates a Tracker with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracker config: %w", err)
	}
	return &Tracker{
		cfg:   cfg,
		left:  newHandState(detector.SideLeft, cfg),
		right: newHandState(detector.SideRight, cfg),
	}, nil
}

// Config returns the tracker's configuration.
func (t *Tracker) Config() Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

// SetConfig replaces the tracker's tunables. The tracking state is kept;
// only the constants change.
func (t *Tracker) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid tracker config: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg = cfg
	return nil
}

// OnPunch registers a listener for punch events. Listeners are invoked
// synchronously within the tick that detected the punch and should not
// block.
func (t *Tracker) OnPunch(fn func(PunchEvent)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Update processes one hand's landmark frame for the current tick and
// returns the emitted punch event, if any. The landmarks are read, never
// retained.
func (t *Tracker) Update(side detector.Side, hand *detector.HandLandmarks, now time.Time) *PunchEvent {
	t.mu.Lock()

	s := t.state(side)
	if s == nil || hand == nil {
		t.mu.Unlock()
		return nil
	}

	// Defend against glitchy frames; a bad sample degrades to a neutral
	// reading instead of halting the pipeline.
	hand.Sanitize()

	s.Detected = true

	// Apparent hand size is an inverse depth proxy.
	s.Scale = hand.Span()

	// Blend the sensor-reported palm depth with the size-derived estimate.
	// Palm z is the more reliable per-sample signal but noisy at the
	// extremes; size change corroborates genuine forward motion.
	palmDepth := hand.PalmDepth()
	scaleDepth := -(s.Scale - t.cfg.ReferenceScale) / t.cfg.ReferenceScale
	rawDepth := (t.cfg.PalmWeight*palmDepth + t.cfg.ScaleWeight*scaleDepth) * t.cfg.DepthGain

	s.SmoothedDepth = s.SmoothedDepth*(1-t.cfg.SmoothingAlpha) + rawDepth*t.cfg.SmoothingAlpha
	s.DepthHistory = pushBounded(s.DepthHistory, s.SmoothedDepth, t.cfg.DepthHistorySize)

	// Two-sample derivative keeps detection latency at one tick.
	if n := len(s.DepthHistory); n >= 2 {
		s.Velocity = s.DepthHistory[n-1] - s.DepthHistory[n-2]
	} else {
		s.Velocity = 0
	}
	s.VelocityHistory = pushBounded(s.VelocityHistory, s.Velocity, t.cfg.VelocityHistorySize)

	center := hand.PalmCenter()
	s.Position = detector.Point3D{X: center.X, Y: center.Y, Z: s.SmoothedDepth}

	s.IsFist = t.isFist(hand)

	event := t.updatePunch(s, now)

	var listeners []func(PunchEvent)
	if event != nil {
		listeners = append(listeners, t.listeners...)
	}
	t.mu.Unlock()

	// Deliver outside the lock; listeners run within the tick but may call
	// back into the tracker.
	if event != nil {
		for _, fn := range listeners {
			fn(*event)
		}
	}
	return event
}

// Miss records that a side produced no landmark frame this tick. The state
// decays toward neutral rather than snapping to it, and any in-flight punch
// is cancelled so it cannot stay stuck active while tracking is lost.
func (t *Tracker) Miss(side detector.Side) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(side)
	if s == nil {
		return
	}

	s.Detected = false
	s.SmoothedDepth *= t.cfg.MissDepthDecay
	s.Velocity *= t.cfg.MissVelocityDecay
	s.IsPunching = false
}

// Snapshot returns an independent copy of one side's state. External
// mutation of the copy cannot corrupt the tracker.
func (t *Tracker) Snapshot(side detector.Side) HandState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.state(side)
	if s == nil {
		return HandState{Side: side}
	}
	return s.clone()
}

// Reset reinitializes both sides to fresh state. Histories, punch flags and
// cooldown timestamps are all replaced; calling Reset twice is the same as
// calling it once.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.left = newHandState(detector.SideLeft, t.cfg)
	t.right = newHandState(detector.SideRight, t.cfg)
}

func (t *Tracker) state(side detector.Side) *HandState {
	switch side {
	case detector.SideLeft:
		return t.left
	case detector.SideRight:
		return t.right
	}
	return nil
}

// isFist classifies the hand as a fist when at least three of four fingers
// are curled. The comparison uses x/y only; depth noise would otherwise
// flip the classification frame to frame.
func (t *Tracker) isFist(hand *detector.HandLandmarks) bool {
	wrist := hand.Points[detector.Wrist]

	curled := 0
	for _, joints := range fingerJoints {
		tipDist := distance2D(hand.Points[joints[0]], wrist)
		baseDist := distance2D(hand.Points[joints[1]], wrist)
		if tipDist < t.cfg.FistCurlRatio*baseDist {
			curled++
		}
	}
	return curled >= 3
}

// updatePunch runs the punch state machine for one side and returns the
// event to emit, if any. Caller holds the lock.
func (t *Tracker) updatePunch(s *HandState, now time.Time) *PunchEvent {
	threshold := t.cfg.PunchVelocityThreshold

	if !s.IsPunching {
		if s.Velocity < -threshold && now.Sub(s.LastPunchTime) > t.cfg.PunchCooldown {
			s.IsPunching = true
			s.PunchStartTime = now
			// Linear power ramp saturating at double-threshold velocity.
			s.PunchPower = math.Min(1, math.Abs(s.Velocity)/(2*threshold))

			return &PunchEvent{
				Side:     s.Side,
				Power:    s.PunchPower,
				Position: s.Position,
				Velocity: s.Velocity,
				IsFist:   s.IsFist,
				Time:     now,
			}
		}
		return nil
	}

	// The punch ends once the motion has sufficiently decelerated or
	// reversed; that moment starts the cooldown window.
	if s.Velocity > -t.cfg.ReleaseRatio*threshold {
		s.IsPunching = false
		s.LastPunchTime = now
	}
	return nil
}

func distance2D(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
