package avatar

import (
	"testing"
	"time"

	"github.com/ayusman/shadowbox/internal/stance"
)

func TestState_StartsIdle(t *testing.T) {
	s := NewState()
	if got := s.Current(); got != stance.Idle {
		t.Errorf("fresh state = %q, want %q", got, stance.Idle)
	}
}

func TestState_SetAndCurrent(t *testing.T) {
	s := NewState()

	s.Set(stance.JabLeft)
	if got := s.Current(); got != stance.JabLeft {
		t.Errorf("Current() = %q, want %q", got, stance.JabLeft)
	}

	s.Set(stance.Guard)
	if got := s.Current(); got != stance.Guard {
		t.Errorf("Current() = %q, want %q", got, stance.Guard)
	}
}

func TestState_HeldResetsOnChange(t *testing.T) {
	s := NewState()

	s.Set(stance.Guard)
	time.Sleep(5 * time.Millisecond)
	first := s.Held()
	if first <= 0 {
		t.Fatalf("Held() = %v, want > 0 while holding a stance", first)
	}

	// Re-asserting the same stance must not restart the clock.
	s.Set(stance.Guard)
	if got := s.Held(); got < first {
		t.Errorf("Held() = %v after re-set, want >= %v", got, first)
	}

	// A different stance does.
	s.Set(stance.DuckLeft)
	if got := s.Held(); got > first {
		t.Errorf("Held() = %v after change, want the clock restarted (< %v)", got, first)
	}
}

func TestPoseFor_CoversAllStances(t *testing.T) {
	for _, st := range stance.All {
		p := PoseFor(st)
		if p.Name == "" {
			t.Errorf("stance %q has no pose descriptor", st)
		}
	}
}

func TestPoseFor_UnknownFallsBackToIdle(t *testing.T) {
	if got := PoseFor(stance.Stance("cartwheel")); got != PoseFor(stance.Idle) {
		t.Errorf("unknown stance pose = %+v, want idle descriptor", got)
	}
}

func TestState_Pose(t *testing.T) {
	s := NewState()
	s.Set(stance.HookRight)
	if got := s.Pose(); got.Name != "hook-right" {
		t.Errorf("Pose().Name = %q, want hook-right", got.Name)
	}
}
