// Package app wires the capture, detection, tracking and classification
// stages into the shadowbox pipeline.
package app

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/shadowbox/internal/avatar"
	"github.com/ayusman/shadowbox/internal/capture"
	"github.com/ayusman/shadowbox/internal/detector"
	"github.com/ayusman/shadowbox/internal/plugin"
	"github.com/ayusman/shadowbox/internal/stance"
	"github.com/ayusman/shadowbox/internal/store"
	"github.com/ayusman/shadowbox/internal/tracker"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active tracking.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds without motion before the
	// pipeline drops back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	PluginDir    string
	CameraID     int
	MotionThresh float64

	// Mirrored states that the camera feed is a mirror image, the usual
	// front-facing webcam convention. It flips both the handedness labels
	// and the grid columns.
	Mirrored bool

	// Tracker carries the depth-tracker tunables. Zero value means
	// tracker.DefaultConfig.
	Tracker tracker.Config

	// Grid is the zone grid. Zero value means stance.DefaultGrid with
	// mirroring matching Mirrored.
	Grid stance.Grid
}

// App is the main application that orchestrates the boxing pipeline.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	tracker    *tracker.Tracker
	grid       stance.Grid
	avatar     *avatar.State
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	enabled    bool
	mu         sync.RWMutex
	stopCh     chan struct{}
	sessionID  string
	punchCount int

	stanceListeners []func(stance.Stance)
}

// New creates a new App instance with the given configuration.
// Invalid tracker or grid configuration fails here, not at tick time.
func New(config Config) (*App, error) {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	trackerCfg := config.Tracker
	if trackerCfg == (tracker.Config{}) {
		trackerCfg = tracker.DefaultConfig()
	}
	tr, err := tracker.New(trackerCfg)
	if err != nil {
		return nil, fmt.Errorf("create tracker: %w", err)
	}

	grid := config.Grid
	if grid == (stance.Grid{}) {
		grid = stance.DefaultGrid()
		grid.Mirror = config.Mirrored
	}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		tracker:    tr,
		grid:       grid,
		avatar:     avatar.NewState(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(5000), // 5 second timeout for plugin execution
		enabled:    false,
	}

	tr.OnPunch(a.handlePunch)

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a, nil
}

// SetEnabled enables or disables motion tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether motion tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// OnStance registers a listener invoked whenever the classified stance
// changes. Listeners run within the tick and should not block.
func (a *App) OnStance(fn func(stance.Stance)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stanceListeners = append(a.stanceListeners, fn)
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start begins the tracking pipeline and opens a new session.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(IdleFPS)

	if a.config.Store != nil {
		sess := &store.Session{ID: uuid.NewString(), StartedAt: time.Now()}
		if err := a.config.Store.Sessions().Create(sess); err != nil {
			log.Printf("Failed to create session: %v", err)
		} else {
			a.sessionID = sess.ID
		}
	}
	a.punchCount = 0

	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts the tracking pipeline, closes the session and releases
// resources. The tracker is reset so no punch or cooldown state survives
// into a later session.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if a.config.Store != nil && a.sessionID != "" {
		if err := a.config.Store.Sessions().End(a.sessionID, time.Now(), a.punchCount); err != nil {
			log.Printf("Failed to end session: %v", err)
		}
		a.sessionID = ""
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.tracker.Reset()
	a.avatar.Set(stance.Idle)

	log.Println("Tracking pipeline stopped")
}

// handlePunch reacts to a punch event: it logs the punch, persists it to
// the session and fires any bound plugin actions.
func (a *App) handlePunch(ev tracker.PunchEvent) {
	a.mu.Lock()
	a.punchCount++
	sessionID := a.sessionID
	a.mu.Unlock()

	log.Printf("Punch: side=%s power=%.2f fist=%v", ev.Side, ev.Power, ev.IsFist)

	if a.config.Store != nil && sessionID != "" {
		p := &store.Punch{
			SessionID: sessionID,
			Side:      string(ev.Side),
			Power:     ev.Power,
			Velocity:  ev.Velocity,
			IsFist:    ev.IsFist,
			Stance:    string(a.avatar.Current()),
			CreatedAt: ev.Time,
		}
		if err := a.config.Store.Punches().Create(p); err != nil {
			log.Printf("Failed to log punch: %v", err)
		}
	}

	a.executeActions("punch:"+string(ev.Side), ev)
	a.executeActions("punch", ev)
}

// executeActions runs every enabled plugin action bound to the trigger.
func (a *App) executeActions(trigger string, ev tracker.PunchEvent) {
	if a.config.Store == nil {
		return
	}

	actions, err := a.config.Store.Actions().ListByTrigger(trigger)
	if err != nil {
		log.Printf("Failed to look up actions for %s: %v", trigger, err)
		return
	}

	for _, action := range actions {
		plg, err := a.pluginMgr.Get(action.PluginName)
		if err != nil {
			log.Printf("Plugin %s not found for action %s", action.PluginName, action.ID)
			continue
		}

		params, _ := json.Marshal(ev)
		req := &plugin.Request{
			Action: action.ActionName,
			Event:  trigger,
			Config: action.Config,
			Params: params,
		}

		if _, err := a.pluginExec.Execute(plg, req); err != nil {
			log.Printf("Plugin %s action %s failed: %v", action.PluginName, action.ActionName, err)
		}
	}
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Tracker returns the hand depth tracker.
func (a *App) Tracker() *tracker.Tracker {
	return a.tracker
}

// Avatar returns the stance state consumed by renderers.
func (a *App) Avatar() *avatar.State {
	return a.avatar
}

// Grid returns the zone grid.
func (a *App) Grid() stance.Grid {
	return a.grid
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
