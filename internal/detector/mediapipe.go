package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// serviceScript is the file name of the MediaPipe Hands sidecar.
const serviceScript = "hand_landmarks.py"

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Each Detect call converts the frame to RGB and writes it to the process
// as an 8-byte header (big-endian width and height) followed by the raw
// pixels. The process answers with one JSON line describing the hands.
type MediaPipeDetector struct {
	config     Config
	scriptPath string
	log        *slog.Logger
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool

	// proc is readable without mu so Interrupt can reach a blocked Detect.
	proc atomic.Pointer[os.Process]
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, log *slog.Logger) (*MediaPipeDetector, error) {
	scriptPath := config.ScriptPath
	if scriptPath == "" {
		scriptPath = findServiceScript()
	}
	if scriptPath == "" {
		return nil, ErrServiceNotFound
	}
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, err)
	}

	if log == nil {
		log = slog.Default()
	}

	return &MediaPipeDetector{
		config:     config,
		scriptPath: scriptPath,
		log:        log,
	}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	// MediaPipe expects RGB; capture devices deliver BGR.
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(*frame, &rgb, gocv.ColorBGRToRGB)

	if err := writeFrame(d.stdin, rgb.Cols(), rgb.Rows(), rgb.ToBytes()); err != nil {
		return nil, err
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return decodeResponse(line)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

// Interrupt kills the landmark service if it is running. A Detect blocked
// on the service returns an error and Close still reaps the process.
func (d *MediaPipeDetector) Interrupt() error {
	p := d.proc.Load()
	if p == nil {
		return nil
	}
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill landmark service: %w", err)
	}
	return nil
}

// ScriptPath returns the service script this detector runs.
func (d *MediaPipeDetector) ScriptPath() string {
	return d.scriptPath
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	pythonPath := d.config.Python
	if pythonPath == "" {
		pythonPath = findVenvPython()
	}
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, append([]string{d.scriptPath}, serviceArgs(d.config)...)...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.proc.Store(d.cmd.Process)

	d.log.Info("landmark service started",
		slog.String("python", pythonPath),
		slog.String("script", d.scriptPath),
		slog.Int("pid", d.cmd.Process.Pid),
	)

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.proc.Store(nil)
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	d.log.Info("landmark service stopped")
	return err
}

// serviceArgs renders the detector thresholds as service command line flags.
func serviceArgs(c Config) []string {
	maxHands := c.MaxHands
	if maxHands <= 0 {
		maxHands = DefaultConfig().MaxHands
	}
	return []string{
		"--max-hands", strconv.Itoa(maxHands),
		"--min-detection-confidence", strconv.FormatFloat(c.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(c.MinTrackingConf, 'f', -1, 64),
	}
}

// writeFrame sends one RGB frame using the service framing.
func writeFrame(w io.Writer, width, height int, pix []byte) error {
	if len(pix) != width*height*3 {
		return fmt.Errorf("frame is %d bytes, want %dx%dx3", len(pix), width, height)
	}

	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:4], uint32(width))
	binary.BigEndian.PutUint32(header[4:8], uint32(height))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(pix); err != nil {
		return fmt.Errorf("write pixels: %w", err)
	}
	return nil
}

// decodeResponse parses one JSON response line from the service.
func decodeResponse(line []byte) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("landmark service: %s", response.Error)
	}

	result := make([]HandLandmarks, len(response.Hands))
	for i, h := range response.Hands {
		lm, err := h.toHandLandmarks()
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		result[i] = lm
	}

	return result, nil
}

func findServiceScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", serviceScript),
		filepath.Join("..", "scripts", serviceScript),
		filepath.Join(execDir, "scripts", serviceScript),
		filepath.Join(os.Getenv("HOME"), ".fingerfold", "scripts", serviceScript),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the working directory, the
// executable and ~/.fingerfold.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".fingerfold/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) toHandLandmarks() (HandLandmarks, error) {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	if len(h.Points) != NumLandmarks {
		return lm, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(h.Points), NumLandmarks)
	}
	copy(lm.Points[:], h.Points)

	return lm, nil
}
