package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/infrastructure"
)

func newTestSweeper(t *testing.T) (*Sweeper, *infrastructure.TempWorkspace) {
	t.Helper()
	ws, err := infrastructure.NewTempWorkspace(t.TempDir())
	require.NoError(t, err)
	return NewSweeper(ws, time.Hour, time.Hour, zap.NewNop()), ws
}

func TestSweeper_StartStop(t *testing.T) {
	s, _ := newTestSweeper(t)

	assert.False(t, s.IsRunning())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	// Double start is an error.
	assert.Error(t, s.Start(context.Background()))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// Double stop is an error too.
	assert.Error(t, s.Stop())
}

func TestSweeper_SweepNow(t *testing.T) {
	s, ws := newTestSweeper(t)

	aged := filepath.Join(ws.Root(), "old-00.mp4")
	fresh := filepath.Join(ws.Root(), "new-00.mp4")
	require.NoError(t, os.WriteFile(aged, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0644))

	// Age one file past the threshold.
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(aged, past, past))

	removed, err := s.SweepNow()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, aged)
	assert.FileExists(t, fresh)
}
