package app

import (
	"log"
	"time"

	"github.com/ayusman/shadowbox/internal/detector"
	"github.com/ayusman/shadowbox/internal/stance"
)

// runPipeline is the main tracking loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Run hand detection; keep at most one hand per side
// 4. Feed each side into the depth tracker (Update on hit, Miss on absence)
// 5. Bucket palm positions into the grid and classify the stance
// 6. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			if !activeMode || a.Detector() == nil {
				frame.Close()
				// Decay both sides while the frame is too still to track.
				a.tick(nil)
				continue
			}

			// Step 2: Hand detection
			hands, err := a.Detector().Detect(frame)
			frame.Close()

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			a.tick(hands)
		}
	}
}

// tick processes one frame's worth of detections: it resolves at most one
// hand per side, updates the tracker, classifies the stance and hands it to
// the avatar.
func (a *App) tick(hands []detector.HandLandmarks) {
	now := time.Now()

	// Resolve at most one hand per side; highest score wins duplicates.
	bySide := make(map[detector.Side]*detector.HandLandmarks, 2)
	for i := range hands {
		hand := &hands[i]
		side := hand.Side(a.config.Mirrored)
		if !side.Valid() {
			continue
		}
		if prev, ok := bySide[side]; !ok || hand.Score > prev.Score {
			bySide[side] = hand
		}
	}

	var leftZone, rightZone *stance.Zone
	for _, side := range []detector.Side{detector.SideLeft, detector.SideRight} {
		hand, ok := bySide[side]
		if !ok {
			a.tracker.Miss(side)
			continue
		}

		a.tracker.Update(side, hand, now)
		pos := a.tracker.Snapshot(side).Position
		z := a.grid.LocateLogical(pos.X, pos.Y)
		if side == detector.SideLeft {
			leftZone = &z
		} else {
			rightZone = &z
		}
	}

	current := stance.Classify(leftZone, rightZone)
	if a.avatar.Set(current) {
		a.mu.RLock()
		listeners := a.stanceListeners
		a.mu.RUnlock()
		for _, fn := range listeners {
			fn(current)
		}
	}
}
