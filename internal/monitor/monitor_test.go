package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/handlers"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct{ calls atomic.Int32 }

func (f *fakeSource) Status() handlers.Status {
	n := f.calls.Add(1)
	return handlers.Status{Presets: int(n), Zones: 1}
}

type fakeBackend struct {
	storage.Backend
	backups int
	err     error
}

func (b *fakeBackend) Backup() (string, error) {
	b.backups++
	return "backup", b.err
}

var _ storage.Backend = (*fakeBackend)(nil)

func readStatus(t *testing.T, path string) handlers.Status {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st handlers.Status
	require.NoError(t, json.Unmarshal(data, &st))
	return st
}

func TestWriteStatus(t *testing.T) {
	src := &fakeSource{}
	s := NewService(Dependencies{Source: src, LogManager: logging.NewSlogManager(), Folder: t.TempDir()})

	require.NoError(t, s.WriteStatus())
	st := readStatus(t, s.StatusPath())
	assert.Equal(t, 1, st.Presets)
	assert.Equal(t, 1, st.Zones)
}

func TestStartStop(t *testing.T) {
	src := &fakeSource{}
	backend := &fakeBackend{}
	s := NewService(Dependencies{
		Source:        src,
		Backend:       backend,
		LogManager:    logging.NewSlogManager(),
		Folder:        t.TempDir(),
		Interval:      5 * time.Millisecond,
		BackupOnStart: true,
	})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")
	assert.True(t, s.IsRunning())
	assert.Equal(t, 1, backend.backups)

	assert.Eventually(t, func() bool { return src.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()

	assert.GreaterOrEqual(t, readStatus(t, s.StatusPath()).Presets, 3)
}

func TestStart_ContextCancelAndBackupFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("disk full")}
	s := NewService(Dependencies{
		Source:        &fakeSource{},
		Backend:       backend,
		LogManager:    logging.NewSlogManager(),
		Folder:        t.TempDir(),
		Interval:      time.Hour,
		BackupOnStart: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx), "a failed backup does not stop the monitor")
	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, backend.backups)
}

func TestNewService_DefaultInterval(t *testing.T) {
	s := NewService(Dependencies{Source: &fakeSource{}})
	assert.Equal(t, 30*time.Second, s.deps.Interval)
}
