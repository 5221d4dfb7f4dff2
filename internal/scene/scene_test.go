package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckwms3d/internal/geom"
	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/placement"
)

func dataset() []models.BinRecord {
	zone := "ZONE_1"
	bins := []models.BinRecord{
		{RowID: 1, ShelfID: 1, Level: 0, BinCode: "A", Occupied: true},
		{RowID: 1, ShelfID: 1, Level: 1, BinCode: "B"},
		{RowID: 2, ShelfID: 1, Level: 0, BinCode: "C"},
		{RowID: 2, ShelfID: 2, Level: 0, BinCode: "Z", X: -20, Y: 0, Z: 22, Zone: &zone},
		{RowID: 3, ShelfID: 1, Level: 0, BinCode: "ODD"},
	}
	return models.NormalizeAll(bins)
}

func TestBuild(t *testing.T) {
	bins := dataset()
	d := layout.DefaultDimensions()
	reg, l, err := Build(bins, d)
	require.NoError(t, err)

	assert.Equal(t, []int{3}, l.Unplaced)
	assert.Equal(t, 4, reg.Len(), "the odd row gets no entity")
	_, ok := reg.Get("ODD")
	assert.False(t, ok)

	a, ok := reg.Get("A")
	require.True(t, ok)
	assert.Same(t, &bins[0], a.Bin)
	assert.Equal(t, l.PlacementIndex()["A"].Position, a.Position())
	assert.Equal(t, geom.V(1.2, 1.2+d.PalletHeight, 1.2), a.Size)

	z, _ := reg.Get("Z")
	assert.Equal(t, geom.V(-20, 0, 22), z.Position(), "zoned bins keep their stored position")
	assert.True(t, z.InZone())
}

func TestBaseColors(t *testing.T) {
	reg, _, err := Build(dataset(), layout.DefaultDimensions())
	require.NoError(t, err)

	a, _ := reg.Get("A")
	b, _ := reg.Get("B")
	ca, ok := a.BaseColor()
	require.True(t, ok)
	assert.Equal(t, ColorOccupied, ca)
	cb, _ := b.BaseColor()
	assert.Equal(t, ColorEmpty, cb)

	b.Bin.AttachProduct(models.ProductRecord{SKU: "X"})
	b.RefreshBaseColor()
	cb, _ = b.BaseColor()
	assert.Equal(t, ColorOccupied, cb)

	v := a.View()
	assert.Equal(t, "#ffb86b", v.Color)
	assert.Equal(t, "#000000", v.Emissive)
	assert.True(t, v.Occupied)
}

func TestCastRayPicksNearest(t *testing.T) {
	reg := NewRegistry()
	near := NewEntity(&models.BinRecord{BinCode: "NEAR", Width: 1, Height: 1, Depth: 1}, geom.V(0, 0, 5), 0)
	far := NewEntity(&models.BinRecord{BinCode: "FAR", Width: 1, Height: 1, Depth: 1}, geom.V(0, 0, 10), 0)
	reg.Add(far)
	reg.Add(near)
	reg.Add(&Entity{Size: geom.V(100, 100, 100)}) // no bin, never hit

	ray := geom.Ray{Origin: geom.V(0, 0.5, 0), Direction: geom.V(0, 0, 1)}
	e, point, ok := reg.Pick(ray)
	require.True(t, ok)
	assert.Equal(t, "NEAR", e.EntityID())
	assert.InDelta(t, 4.5, point.Z, 1e-12)

	hit, ok := reg.CastRay(ray, func(b placement.Body) bool { return b.EntityID() != "NEAR" })
	require.True(t, ok)
	assert.Equal(t, "FAR", hit.ID)

	_, _, ok = reg.Pick(geom.Ray{Origin: geom.V(50, 0.5, 0), Direction: geom.V(0, 0, 1)})
	assert.False(t, ok)
}

func TestAssignZoneAndInCell(t *testing.T) {
	cell := placement.ZoneCell{ID: "C1", ZoneID: "Z", CenterX: 0, CenterZ: 0, Width: 2, Depth: 2}
	reg := NewRegistry()
	top := NewEntity(&models.BinRecord{BinCode: "TOP", Width: 1, Height: 1, Depth: 1}, geom.V(0, 1, 0), 0)
	bottom := NewEntity(&models.BinRecord{BinCode: "BOTTOM", Width: 1, Height: 1, Depth: 1}, geom.V(0, 0, 0), 0)
	other := NewEntity(&models.BinRecord{BinCode: "OTHER", Width: 1, Height: 1, Depth: 1}, geom.V(0, 0, 0), 0)
	reg.Add(top)
	reg.Add(bottom)
	reg.Add(other)
	top.AssignZone("Z")
	bottom.AssignZone("Z")

	assert.Equal(t, 1.0, top.Bin.Y, "position is mirrored into the record")
	got := reg.InCell(cell)
	require.Len(t, got, 2)
	assert.Equal(t, "BOTTOM", got[0].EntityID())
	assert.Equal(t, "TOP", got[1].EntityID())
}

func TestBuildRestacksZonedBins(t *testing.T) {
	d := layout.DefaultDimensions()
	zone := func() *string { z := "ZONE_1"; return &z }
	bins := models.NormalizeAll([]models.BinRecord{
		{RowID: 1, ShelfID: 1, Level: 0, BinCode: "RACK"},
		{RowID: 2, ShelfID: 1, Level: 0, BinCode: "RACK2"},
		// stale rack height, stored before stacking heights were kept
		{RowID: 1, ShelfID: 2, Level: 2, BinCode: "LOW", X: -24.75, Y: 5, Z: 18.25, Zone: zone()},
		{RowID: 1, ShelfID: 3, Level: 2, BinCode: "HIGH", X: -24.75, Y: 5, Z: 18.25, Zone: zone()},
		// stored on top, listed first
		{RowID: 1, ShelfID: 4, Level: 0, BinCode: "TOP", X: -24.75, Y: 9, Z: 18.25, Zone: zone()},
		{RowID: 2, ShelfID: 2, Level: 1, BinCode: "ALONE", X: -15, Y: 1.38, Z: 20, Zone: zone()},
	})
	reg, _, err := Build(bins, d)
	require.NoError(t, err)

	step := models.DefaultBinHeight + d.PalletHeight
	for code, y := range map[string]float64{"LOW": 0, "HIGH": step, "TOP": 2 * step, "ALONE": 0} {
		e, ok := reg.Get(code)
		require.True(t, ok, code)
		assert.InDelta(t, y, e.Position().Y, 1e-9, code)
		assert.InDelta(t, y, e.Bin.Y, 1e-9, code)
	}
	alone, _ := reg.Get("ALONE")
	assert.Equal(t, geom.V(-15, 0, 20), alone.Position(), "stored X and Z are kept")
	assert.Equal(t, "RACK", reg.Entities()[0].EntityID(), "insertion order is kept")
}
