package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefix = "genre_decode_"

func touch(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()

	stale := touch(t, dir, prefix+"123.webm", 2*time.Hour)
	fresh := touch(t, dir, prefix+"456.webm", time.Minute)
	foreign := touch(t, dir, "other_789.webm", 2*time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(dir, prefix+"dir"), 0o755))

	svc := NewService(dir, prefix, time.Hour, time.Minute)
	assert.Equal(t, 1, svc.Sweep())

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, foreign)
	assert.DirExists(t, filepath.Join(dir, prefix+"dir"))
}

func TestSweep_MissingDir(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "missing"), prefix, time.Hour, time.Minute)
	assert.Equal(t, 0, svc.Sweep())
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	stale := touch(t, dir, prefix+"1.ogg", 2*time.Hour)

	svc := NewService(dir, prefix, time.Hour, 10*time.Millisecond)
	svc.Start(context.Background())

	// The first sweep runs synchronously
	assert.NoFileExists(t, stale)

	later := touch(t, dir, prefix+"2.ogg", 2*time.Hour)
	assert.Eventually(t, func() bool {
		_, err := os.Stat(later)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)

	svc.Stop()
}

func TestNewService_Defaults(t *testing.T) {
	tests := []struct {
		name         string
		maxAge       time.Duration
		interval     time.Duration
		wantMaxAge   time.Duration
		wantInterval time.Duration
	}{
		{name: "configured values kept", maxAge: 2 * time.Hour, interval: time.Minute, wantMaxAge: 2 * time.Hour, wantInterval: time.Minute},
		{name: "zero interval", maxAge: time.Hour, interval: 0, wantMaxAge: time.Hour, wantInterval: DefaultCleanupInterval},
		{name: "negative interval", maxAge: time.Hour, interval: -time.Second, wantMaxAge: time.Hour, wantInterval: DefaultCleanupInterval},
		{name: "zero max age", maxAge: 0, interval: time.Minute, wantMaxAge: DefaultMaxAge, wantInterval: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(t.TempDir(), prefix, tt.maxAge, tt.interval)
			assert.Equal(t, tt.wantMaxAge, svc.maxAge)
			assert.Equal(t, tt.wantInterval, svc.cleanupInterval)
		})
	}
}

func TestStartStop_ZeroInterval(t *testing.T) {
	dir := t.TempDir()
	fresh := touch(t, dir, prefix+"1.ogg", time.Minute)

	svc := NewService(dir, prefix, 0, 0)
	assert.NotPanics(t, func() { svc.Start(context.Background()) })
	svc.Stop()

	assert.FileExists(t, fresh)
}
