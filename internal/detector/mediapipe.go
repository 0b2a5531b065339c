package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleShutdown is how long the Python process may sit unused before it is
// stopped to free memory. It restarts on the next Detect.
const idleShutdown = 30 * time.Second

// MediaPipeDetector implements Detector by driving a Python MediaPipe
// service over pipes. Frames go out as length-prefixed JPEG, hands come
// back as one JSON line per frame.
type MediaPipeDetector struct {
	config    Config
	proc      *exec.Cmd
	frames    io.WriteCloser
	results   *bufio.Reader
	running   bool
	idleTimer *time.Timer
	mu        sync.Mutex
}

// NewMediaPipeDetector creates a new MediaPipe detector. It fails when the
// service script cannot be located; the Python process itself is started
// lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	if findServiceScript() == "" {
		return nil, fmt.Errorf("mediapipe_service.py not found")
	}
	return &MediaPipeDetector{config: config}, nil
}

// Detect sends the frame to the service and returns the hands found in it,
// filtered by the configured confidence and hand-count limits.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureRunning(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	line, err := d.exchange(buf.GetBytes())
	if err != nil {
		// A broken pipe means the service died; drop it so the next
		// Detect starts a fresh process.
		d.shutdown()
		return nil, err
	}

	hands, err := d.decodeHands(line)
	if err != nil {
		return nil, err
	}

	d.resetIdleTimer()
	return hands, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

// exchange writes one length-prefixed JPEG frame and reads one JSON line.
func (d *MediaPipeDetector) exchange(jpeg []byte) (string, error) {
	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, uint32(len(jpeg)))

	if _, err := d.frames.Write(prefix); err != nil {
		return "", fmt.Errorf("write frame length: %w", err)
	}
	if _, err := d.frames.Write(jpeg); err != nil {
		return "", fmt.Errorf("write frame: %w", err)
	}

	line, err := d.results.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read detection result: %w", err)
	}
	return line, nil
}

// decodeHands parses a result line and applies the config limits.
func (d *MediaPipeDetector) decodeHands(line string) ([]HandLandmarks, error) {
	var response struct {
		Hands []serviceHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse detection result: %w", err)
	}

	hands := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		if h.Score < d.config.MinConfidence {
			continue
		}
		hands = append(hands, h.toHandLandmarks())
		if d.config.MaxHands > 0 && len(hands) >= d.config.MaxHands {
			break
		}
	}
	return hands, nil
}

func (d *MediaPipeDetector) ensureRunning() error {
	if d.running {
		return nil
	}

	scriptPath := findServiceScript()
	if scriptPath == "" {
		return fmt.Errorf("mediapipe_service.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	proc := exec.Command(pythonPath, scriptPath)

	frames, err := proc.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	results, err := proc.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	proc.Stderr = os.Stderr

	if err := proc.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.proc = proc
	d.frames = frames
	d.results = bufio.NewReader(results)
	d.running = true
	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.running {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.frames != nil {
		d.frames.Close()
	}

	err := d.proc.Wait()
	d.running = false
	d.proc = nil
	d.frames = nil
	d.results = nil
	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

// findServiceScript locates mediapipe_service.py next to the binary, in the
// working tree, or under the user's data directory.
func findServiceScript() string {
	execDir := ""
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".shadowbox/scripts/mediapipe_service.py"),
	}
	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment so
// the MediaPipe dependency does not have to be installed globally.
func findVenvPython() string {
	execDir := ""
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".shadowbox/venv/bin/python"),
	}
	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// serviceHand is the JSON shape produced by the Python service.
type serviceHand struct {
	Points     []servicePoint `json:"points"`
	Handedness string         `json:"handedness"`
	Score      float64        `json:"score"`
}

type servicePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h serviceHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = Point3D{X: h.Points[i].X, Y: h.Points[i].Y, Z: h.Points[i].Z}
	}

	// Short frames leave the remaining points at zero; non-finite
	// coordinates are zeroed rather than rejected.
	lm.Sanitize()
	return lm
}
