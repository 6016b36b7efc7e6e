package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/killallgit/genre-api/internal/audio"
	"github.com/killallgit/genre-api/pkg/config"
)

var (
	// ErrAudioSystemUnavailable is returned when the sound server cannot be queried
	ErrAudioSystemUnavailable = errors.New("pactl not available, is PulseAudio/PipeWire running?")

	// ErrNoMonitor is returned when no output monitor source exists
	ErrNoMonitor = errors.New("no monitor source found, cannot capture system audio")
)

const listTimeout = 5 * time.Second

// Source produces raw 16-bit little-endian mono PCM of whatever the system is playing
type Source interface {
	Capture(ctx context.Context, duration time.Duration) ([]byte, error)
	SampleRate() int
}

// PulseSource records a PulseAudio or PipeWire monitor source with parec
type PulseSource struct {
	pactlPath  string
	parecPath  string
	device     string
	sampleRate int
}

// NewPulseSource creates a capture source. An empty device means auto-detect.
func NewPulseSource(cfg config.CaptureConfig) *PulseSource {
	pactl := cfg.PactlPath
	if pactl == "" {
		pactl = "pactl"
	}
	parec := cfg.ParecPath
	if parec == "" {
		parec = "parec"
	}
	return &PulseSource{
		pactlPath:  pactl,
		parecPath:  parec,
		device:     cfg.Device,
		sampleRate: audio.SampleRate,
	}
}

// SampleRate is the rate parec is asked to record at
func (s *PulseSource) SampleRate() int {
	return s.sampleRate
}

// Monitor returns the configured device or the first non-HDMI monitor source
func (s *PulseSource) Monitor(ctx context.Context) (string, error) {
	if s.device != "" {
		return s.device, nil
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, s.pactlPath, "list", "short", "sources").Output()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAudioSystemUnavailable, err)
	}
	return parseMonitor(string(out))
}

// parseMonitor picks a monitor source from `pactl list short sources` output,
// preferring speakers or headphones over HDMI
func parseMonitor(output string) (string, error) {
	var fallback string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 || !strings.Contains(parts[1], ".monitor") {
			continue
		}
		if !strings.Contains(strings.ToLower(parts[1]), "hdmi") {
			return parts[1], nil
		}
		if fallback == "" {
			fallback = parts[1]
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoMonitor
}

// Capture records for duration and returns the raw bytes. It may return fewer bytes
// than requested if the recorder exits early.
func (s *PulseSource) Capture(ctx context.Context, duration time.Duration) ([]byte, error) {
	monitor, err := s.Monitor(ctx)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, s.parecPath,
		"--device", monitor,
		"--rate", fmt.Sprint(s.sampleRate),
		"--channels", "1",
		"--format", "s16le",
		"--raw",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open parec output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start parec: %w", err)
	}

	log.Printf("[INFO] Capturing %v of system audio from %s", duration, monitor)

	want := int(duration.Seconds() * float64(s.sampleRate) * 2)
	buf := make([]byte, want)
	n, readErr := io.ReadFull(stdout, buf)

	// parec records until told to stop
	_ = cmd.Process.Signal(syscall.SIGTERM)
	_ = cmd.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read parec output: %w", readErr)
	}
	if n < want {
		log.Printf("[WARN] parec stopped after %d of %d bytes: %s", n, want, strings.TrimSpace(stderr.String()))
	}
	return buf[:n], nil
}
