package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/codec"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/config"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/handlers"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/library"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/storage/memory"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zoneinfo"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*handlers.Service, *memory.Backend) {
	t.Helper()
	zones := zoneinfo.NewIndex()
	zones.Add(zoneinfo.ZoneInfo{DutyName: "the Vault", TerritoryTypeID: 1001, ContentFinderConditionID: 777})

	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, backend.Init())
	svc := handlers.NewService(handlers.Dependencies{
		Library:    library.New(zones),
		Zones:      zones,
		Backend:    backend,
		LogManager: logging.NewSlogManager(),
	})
	return svc, backend
}

func exported(t *testing.T, name string) string {
	t.Helper()
	p := core.NewPreset(name)
	p.SetZoneID(777)
	s, err := codec.ExportJSON(p, false)
	require.NoError(t, err)
	return s
}

func runCmd(t *testing.T, svc *handlers.Service, b *memory.Backend, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out, svc, b)
	return out.String(), err
}

func TestRun_ImportListExport(t *testing.T) {
	svc, b := setup(t)

	out, err := runCmd(t, svc, b, "import", exported(t, "First"))
	require.NoError(t, err)
	assert.Equal(t, "Imported preset 0.\n", out)
	_, err = runCmd(t, svc, b, "import", exported(t, "Second"))
	require.NoError(t, err)

	out, err = runCmd(t, svc, b, "list", "basic")
	require.NoError(t, err)
	assert.Equal(t, "The Vault\n    0  First\n    1  Second\n", out)

	out, err = runCmd(t, svc, b, "export", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"Second"`)
	assert.NotContains(t, out, "timestamp")

	out, err = runCmd(t, svc, b, "exportall", "-t")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\r\n"), 2)
	assert.Contains(t, out, "timestamp")

	saved, err := b.LoadLibrary()
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestRun_EditCommands(t *testing.T) {
	svc, b := setup(t)
	for _, n := range []string{"a", "b", "c"} {
		_, err := runCmd(t, svc, b, "import", exported(t, n))
		require.NoError(t, err)
	}

	out, err := runCmd(t, svc, b, "move", "0", "2", "after")
	require.NoError(t, err)
	assert.Equal(t, "Preset 0 is now at 2.\n", out)

	out, err = runCmd(t, svc, b, "delete", "0")
	require.NoError(t, err)
	assert.Equal(t, "Deleted preset 0.\n", out)

	saved, err := b.LoadLibrary()
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "c", saved[0].Name())
	assert.Equal(t, "a", saved[1].Name())

	out, err = runCmd(t, svc, b, "zone-order")
	require.NoError(t, err)
	assert.Equal(t, "No custom zone order.\n", out)

	out, err = runCmd(t, svc, b, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup written to ")
}

func TestRun_Zones(t *testing.T) {
	svc, b := setup(t)

	out, err := runCmd(t, svc, b, "zones")
	require.NoError(t, err)
	assert.Equal(t, "  777  The Vault\n", out)

	out, err = runCmd(t, svc, b, "zones", "vault")
	require.NoError(t, err)
	assert.Equal(t, "  777  The Vault\n", out)

	out, err = runCmd(t, svc, b, "zones", "nothing")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_Errors(t *testing.T) {
	svc, b := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"export without index", []string{"export"}},
		{"export bad index", []string{"export", "x"}},
		{"export out of range", []string{"export", "3"}},
		{"import garbage", []string{"import", "{nope"}},
		{"move missing target", []string{"move", "1"}},
		{"list bad sort", []string{"list", "sideways"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, svc, b, tt.args...)
			assert.Error(t, err)
		})
	}
}
