package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	s := NewScheduler("", "", time.Hour, 2)
	loc := time.UTC

	assert.Equal(t,
		time.Date(2025, 3, 1, 2, 0, 0, 0, loc),
		s.NextRun(time.Date(2025, 3, 1, 1, 59, 0, 0, loc)))
	assert.Equal(t,
		time.Date(2025, 3, 2, 2, 0, 0, 0, loc),
		s.NextRun(time.Date(2025, 3, 1, 2, 0, 0, 0, loc)))
}

func TestRunOnce_CopiesTreeAndPrunes(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "media", "promos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "media", "promos", "1_a.png"), []byte("a"), 0o644))

	stale := filepath.Join(dst, "2025-01-01_02-00-00")
	keep := filepath.Join(dst, "notes")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.MkdirAll(keep, 0o755))

	s := NewScheduler(src, dst, 4*24*time.Hour, 2)
	s.now = func() time.Time { return time.Date(2025, 1, 10, 2, 0, 0, 0, time.Local) }

	dest, err := s.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst, "2025-01-10_02-00-00"), dest)

	data, err := os.ReadFile(filepath.Join(dest, "media", "promos", "1_a.png"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	assert.NoDirExists(t, stale)
	assert.DirExists(t, keep)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewScheduler(t.TempDir(), t.TempDir(), time.Hour, 2)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
