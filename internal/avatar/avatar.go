// Package avatar holds the current stance and the pose descriptors the
// rendering layers consume.
package avatar

import (
	"sync"
	"time"

	"github.com/ayusman/shadowbox/internal/stance"
)

// Pose is the named pose descriptor a renderer maps a stance to. The core
// never interprets these; they are display metadata.
type Pose struct {
	Name     string `json:"name"`
	LeftArm  string `json:"leftArm"`
	RightArm string `json:"rightArm"`
	Torso    string `json:"torso"`
}

// poses maps every stance to its renderer descriptor.
var poses = map[stance.Stance]Pose{
	stance.Idle:          {Name: "idle", LeftArm: "rest", RightArm: "rest", Torso: "upright"},
	stance.Guard:         {Name: "guard", LeftArm: "high", RightArm: "high", Torso: "upright"},
	stance.GuardLeft:     {Name: "guard-left", LeftArm: "high", RightArm: "high", Torso: "lean-left"},
	stance.GuardRight:    {Name: "guard-right", LeftArm: "high", RightArm: "high", Torso: "lean-right"},
	stance.JabLeft:       {Name: "jab-left", LeftArm: "extended", RightArm: "high", Torso: "upright"},
	stance.JabRight:      {Name: "jab-right", LeftArm: "high", RightArm: "extended", Torso: "upright"},
	stance.HookLeft:      {Name: "hook-left", LeftArm: "hook", RightArm: "high", Torso: "twist-left"},
	stance.HookRight:     {Name: "hook-right", LeftArm: "high", RightArm: "hook", Torso: "twist-right"},
	stance.UppercutLeft:  {Name: "uppercut-left", LeftArm: "uppercut", RightArm: "high", Torso: "crouch"},
	stance.UppercutRight: {Name: "uppercut-right", LeftArm: "high", RightArm: "uppercut", Torso: "crouch"},
	stance.DuckLeft:      {Name: "duck-left", LeftArm: "high", RightArm: "high", Torso: "duck-left"},
	stance.DuckRight:     {Name: "duck-right", LeftArm: "high", RightArm: "high", Torso: "duck-right"},
	stance.BlockBody:     {Name: "block-body", LeftArm: "low", RightArm: "low", Torso: "upright"},
}

// PoseFor returns the pose descriptor for a stance. Unknown stances fall
// back to the idle descriptor.
func PoseFor(s stance.Stance) Pose {
	if p, ok := poses[s]; ok {
		return p
	}
	return poses[stance.Idle]
}

// State holds the stance currently attributed to the player. It is written
// once per tick by the pipeline and read by renderers and the HTTP layer.
type State struct {
	current stance.Stance
	since   time.Time
	mu      sync.RWMutex
}

// NewState creates a State starting at idle.
func NewState() *State {
	return &State{
		current: stance.Idle,
		since:   time.Now(),
	}
}

// Set records the stance for the current tick and reports whether it
// differs from the previous one.
func (s *State) Set(v stance.Stance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := v != s.current
	if changed {
		s.since = time.Now()
	}
	s.current = v
	return changed
}

// Current returns the stance attributed to the player right now.
func (s *State) Current() stance.Stance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Held returns how long the current stance has been held.
func (s *State) Held() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.since)
}

// Pose returns the descriptor for the current stance.
func (s *State) Pose() Pose {
	return PoseFor(s.Current())
}
