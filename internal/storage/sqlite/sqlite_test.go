package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/database"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.db")
	b := New(path, nil)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_PersistsAcrossReopen(t *testing.T) {
	b := newBackend(t)

	p := core.NewPreset("Boss")
	p.SetZoneID(777)
	require.NoError(t, b.SaveLibrary([]core.Preset{p}))
	require.NoError(t, b.SaveZoneSortOrder([]uint16{777, 5}))
	require.NoError(t, b.Close())

	reopened := New(b.Path(), nil)
	require.NoError(t, reopened.Init())
	t.Cleanup(func() { _ = reopened.Close() })

	presets, err := reopened.LoadLibrary()
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "Boss", presets[0].Name())
	assert.True(t, presets[0].Equal(p))

	order, err := reopened.LoadZoneSortOrder()
	require.NoError(t, err)
	assert.Equal(t, []uint16{777, 5}, order)
}

func TestBackend_Backup(t *testing.T) {
	b := newBackend(t)
	b.now = func() time.Time { return time.Date(2024, 3, 9, 8, 7, 6, 0, time.UTC) }
	require.NoError(t, b.SaveZoneSortOrder([]uint16{42}))

	dst, err := b.Backup()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(b.Path()), BackupDirName, "presets_2024-03-09_08.07.06Z.db"), dst)

	second, err := b.Backup()
	require.NoError(t, err)
	assert.NotEqual(t, dst, second, "same-second backups get distinct names")

	_, err = os.Stat(dst)
	require.NoError(t, err)

	copyDB, err := database.OpenSqlite(dst)
	require.NoError(t, err)
	var count int64
	require.NoError(t, copyDB.Table("zone_sort_entries").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBackend_InMemoryHasNoBackup(t *testing.T) {
	b := New("", nil)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })

	_, err := b.Backup()
	assert.Error(t, err)
}
