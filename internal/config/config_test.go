package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/placement"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "3210", cfg.Port)
	assert.Equal(t, "MAIN", cfg.WarehouseCode)
	assert.Equal(t, "center", cfg.SnapMode)
	assert.Equal(t, 5*time.Second, cfg.PersistTimeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.ERPEnabled())
	assert.False(t, cfg.GenerateOnEmpty, "an empty store must report no data unless generation is enabled")
	assert.Equal(t, 50.0, cfg.ReplMinQty)
	assert.Equal(t, 100.0, cfg.ReplReorderQty)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SNAP_MODE", "grid")
	t.Setenv("WAREHOUSE_CODE", "WH02")
	t.Setenv("ERP_URL", "http://erp.local")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GENERATE_ON_EMPTY", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "grid", cfg.SnapMode)
	assert.Equal(t, "WH02", cfg.WarehouseCode)
	assert.True(t, cfg.ERPEnabled())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.GenerateOnEmpty)
}

func TestLoadRejectsSnapMode(t *testing.T) {
	t.Setenv("SNAP_MODE", "diagonal")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadRejectsReplenishmentThresholds(t *testing.T) {
	t.Setenv("REPL_MIN_QTY", "200")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestParseLayoutFileKeepsDefaults(t *testing.T) {
	lf, err := ParseLayoutFile([]byte(`
[dimensions]
aisle_spacing = 8.0

[generator]
rows = 6
`))
	require.NoError(t, err)

	want := layout.DefaultDimensions()
	want.AisleSpacing = 8
	assert.Equal(t, want, lf.Dimensions)
	assert.Equal(t, 6, lf.Generator.Rows)
	assert.Equal(t, 8, lf.Generator.RacksPerRow)
	assert.Equal(t, placement.DefaultZoneSpecs(), lf.Zones)
}

func TestParseLayoutFileZones(t *testing.T) {
	lf, err := ParseLayoutFile([]byte(`
[[zone]]
id = "DOCK"
x = 5.0
z = 30.0
width = 6.0
depth = 4.0
cell_size = 2.0
`))
	require.NoError(t, err)
	require.Len(t, lf.Zones, 1)
	assert.Equal(t, "DOCK", lf.Zones[0].ID)
	assert.Equal(t, 2.0, lf.Zones[0].CellSize)

	_, err = ParseLayoutFile([]byte("[[zone]]\nid = \"TINY\"\nwidth = 1.0\ndepth = 1.0\ncell_size = 2.0\n"))
	assert.Error(t, err)

	_, err = ParseLayoutFile([]byte("[dimensions\n"))
	assert.Error(t, err)
}

func TestLoadLayoutFile(t *testing.T) {
	lf, err := LoadLayoutFile(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLayoutFile(), lf)

	path := filepath.Join(t.TempDir(), "layout.toml")
	require.NoError(t, os.WriteFile(path, []byte("[generator]\nlevels = 2\n"), 0o644))
	lf, err = LoadLayoutFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, lf.Generator.Levels)
}
