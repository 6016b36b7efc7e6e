package cleanup

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Used when NewService is given a non-positive age or interval
const (
	DefaultMaxAge          = time.Hour
	DefaultCleanupInterval = 15 * time.Minute
)

// Service removes decode temp files left behind by crashed or killed requests.
// Normal request paths delete their own files.
type Service struct {
	tempDir         string
	prefix          string
	maxAge          time.Duration
	cleanupInterval time.Duration
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

// NewService creates a cleanup service for files named prefix* in tempDir
func NewService(tempDir, prefix string, maxAge, cleanupInterval time.Duration) *Service {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &Service{
		tempDir:         tempDir,
		prefix:          prefix,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
	}
}

// Start runs one sweep immediately and then one per interval until ctx ends or Stop is called
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.Sweep()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (dir: %s, interval: %v, max age: %v)", s.tempDir, s.cleanupInterval, s.maxAge)
}

// Stop stops the cleanup service and waits for the running sweep to finish
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Sweep removes matching files older than maxAge and returns how many were removed
func (s *Service) Sweep() int {
	if _, err := os.Stat(s.tempDir); os.IsNotExist(err) {
		return 0
	}

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		log.Printf("[ERROR] Cleanup read dir error: %v", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		// Decode temp files live directly in tempDir
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), s.prefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // Removed since ReadDir
		}
		if time.Since(info.ModTime()) <= s.maxAge {
			continue
		}

		path := filepath.Join(s.tempDir, entry.Name())
		log.Printf("[DEBUG] Removing old temp file: %s", path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to remove temp file %s: %v", path, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("[INFO] Cleanup removed %d stale temp files", removed)
	}
	return removed
}
