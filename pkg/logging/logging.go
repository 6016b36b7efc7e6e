package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level orders the bracketed tags used in log lines
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var tags = []struct {
	tag   []byte
	level Level
}{
	{[]byte("[DEBUG]"), LevelDebug},
	{[]byte("[INFO]"), LevelInfo},
	{[]byte("[WARN]"), LevelWarn},
	{[]byte("[ERROR]"), LevelError},
}

// ParseLevel parses debug, info, warn or error
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Writer drops log lines tagged below its minimum level. Untagged lines count as info.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	min Level
}

// NewWriter creates a filtering writer over out
func NewWriter(out io.Writer, min Level) *Writer {
	return &Writer{out: out, min: min}
}

func (w *Writer) Write(p []byte) (int, error) {
	if levelOf(p) < w.min {
		return len(p), nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

// levelOf finds the first tag in the line; the standard logger puts a timestamp before it
func levelOf(line []byte) Level {
	first := -1
	level := LevelInfo
	for _, t := range tags {
		if i := bytes.Index(line, t.tag); i >= 0 && (first < 0 || i < first) {
			first = i
			level = t.level
		}
	}
	return level
}

// Setup filters the standard logger at the named level
func Setup(level string) (Level, error) {
	min, err := ParseLevel(level)
	if err != nil {
		return min, err
	}
	log.SetOutput(NewWriter(os.Stderr, min))
	return min, nil
}
