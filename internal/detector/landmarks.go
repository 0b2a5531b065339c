// Package detector provides hand detection interfaces and types for the
// shadowbox motion-tracking pipeline.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// PalmLandmarks is the fixed six-point palm subset (wrist, thumb base and the
// four finger bases) used for palm-centre and palm-depth estimates.
var PalmLandmarks = [6]int{Wrist, ThumbCMC, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}

// Point3D represents a 3D point in normalized image space. X and Y lie in
// [0,1]; Z is the sensor-reported relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Side identifies the physical hand a landmark frame belongs to, after any
// mirrored-camera correction has been applied.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right" as reported by the sensor
	Score      float64               `json:"score"`
}

// Side maps the sensor-reported handedness label to a physical side.
// A front-facing webcam mirrors the image, so the sensor's "Left" is the
// player's right hand; mirrored controls that convention.
func (h *HandLandmarks) Side(mirrored bool) Side {
	isLeft := h.Handedness == "Left"
	if mirrored {
		isLeft = !isLeft
	}
	if isLeft {
		return SideLeft
	}
	return SideRight
}

// Sanitize replaces non-finite coordinates with zero so a glitchy frame
// degrades to a neutral reading instead of poisoning downstream math.
func (h *HandLandmarks) Sanitize() {
	for i := range h.Points {
		if !isFinite(h.Points[i].X) {
			h.Points[i].X = 0
		}
		if !isFinite(h.Points[i].Y) {
			h.Points[i].Y = 0
		}
		if !isFinite(h.Points[i].Z) {
			h.Points[i].Z = 0
		}
	}
}

// Span returns the 3D wrist-to-middle-knuckle distance, the hand-size metric
// used as an inverse depth proxy (a larger apparent hand is closer).
func (h *HandLandmarks) Span() float64 {
	return distance3D(h.Points[Wrist], h.Points[MiddleMCP])
}

// PalmDepth returns the mean relative z across the fixed palm subset.
func (h *HandLandmarks) PalmDepth() float64 {
	var sum float64
	for _, idx := range PalmLandmarks {
		sum += h.Points[idx].Z
	}
	return sum / float64(len(PalmLandmarks))
}

// PalmCenter returns the mean position of the fixed palm subset.
func (h *HandLandmarks) PalmCenter() Point3D {
	var c Point3D
	for _, idx := range PalmLandmarks {
		c.X += h.Points[idx].X
		c.Y += h.Points[idx].Y
		c.Z += h.Points[idx].Z
	}
	n := float64(len(PalmLandmarks))
	return Point3D{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}

// Translate returns a copy of the landmarks shifted by the given offsets.
// Useful for placing fixture hands at arbitrary screen positions.
func (h *HandLandmarks) Translate(dx, dy, dz float64) *HandLandmarks {
	out := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		out.Points[i] = Point3D{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
	}
	return out
}

// Scaled returns a copy of the landmarks scaled about the wrist by factor.
// Scaling emulates the hand moving toward (factor > 1) or away from
// (factor < 1) the camera.
func (h *HandLandmarks) Scaled(factor float64) *HandLandmarks {
	out := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	wrist := h.Points[Wrist]
	for i, p := range h.Points {
		out.Points[i] = Point3D{
			X: wrist.X + (p.X-wrist.X)*factor,
			Y: wrist.Y + (p.Y-wrist.Y)*factor,
			Z: wrist.Z + (p.Z-wrist.Z)*factor,
		}
	}
	return out
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
