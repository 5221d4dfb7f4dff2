package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/scoring"
)

func bin(row, shelf, level int) models.BinRecord {
	b := models.BinRecord{RowID: row, ShelfID: shelf, Level: level}
	b.Normalize()
	return b
}

func TestBuildIsIdempotent(t *testing.T) {
	bins := []models.BinRecord{bin(2, 1, 1), bin(1, 3, 2), bin(1, 1, 1), bin(2, 2, 3)}
	d := DefaultDimensions()

	a, err := Build(bins, d)
	require.NoError(t, err)
	b, err := Build(bins, d)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildPositions(t *testing.T) {
	d := DefaultDimensions()
	bins := []models.BinRecord{bin(1, 1, 0), bin(1, 2, 1), bin(2, 1, 0)}

	l, err := Build(bins, d)
	require.NoError(t, err)
	require.Len(t, l.Racks, 2)
	assert.Empty(t, l.Unplaced)

	idx := l.PlacementIndex()
	p := idx["R1-S1-L0"]
	// one aisle centered on z=0, rows either side of the back-to-back gap
	assert.Equal(t, -d.RowOffset(), p.Position.Z)
	assert.Equal(t, d.BaseOffset, p.Position.Y)
	// four columns minimum, first column centered at -1.5 pallet widths
	assert.InDelta(t, -1.5*d.PalletWidth, p.Position.X, 1e-12)

	q := idx["R1-S2-L1"]
	assert.Equal(t, d.LevelHeight+d.BaseOffset, q.Position.Y)
	assert.InDelta(t, p.Position.X+d.PalletWidth, q.Position.X, 1e-12)

	r := idx["R2-S1-L0"]
	assert.Equal(t, d.RowOffset(), r.Position.Z)

	assert.Equal(t, 4, l.Racks[0].Bays)
	assert.Equal(t, 2, l.Racks[0].Levels)
}

func TestBuildOddRowIsUnplaced(t *testing.T) {
	bins := []models.BinRecord{bin(1, 1, 1), bin(2, 1, 1), bin(3, 1, 1)}
	l, err := Build(bins, DefaultDimensions())
	require.NoError(t, err)
	assert.Equal(t, []int{3}, l.Unplaced)
	assert.Len(t, l.Placements, 2)
	_, ok := l.PlacementIndex()["R3-S1-L1"]
	assert.False(t, ok)
}

func TestBuildAislesAreSpaced(t *testing.T) {
	d := DefaultDimensions()
	bins := []models.BinRecord{bin(1, 1, 1), bin(2, 1, 1), bin(3, 1, 1), bin(4, 1, 1)}
	l, err := Build(bins, d)
	require.NoError(t, err)
	idx := l.PlacementIndex()
	assert.InDelta(t, d.AisleSpacing, idx["R3-S1-L1"].Position.Z-idx["R1-S1-L1"].Position.Z, 1e-12)
	assert.Equal(t, 1, l.Racks[3].Aisle)
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil, DefaultDimensions())
	assert.ErrorIs(t, err, ErrNoBins)
}

func TestPairRows(t *testing.T) {
	aisles, rest := PairRows([]int{1, 2, 5, 7, 9})
	require.Len(t, aisles, 2)
	assert.Equal(t, [2]int{1, 2}, aisles[0].Rows)
	assert.Equal(t, [2]int{5, 7}, aisles[1].Rows)
	assert.Equal(t, []int{9}, rest)
}

func TestGroupBinsByRowAndShelf(t *testing.T) {
	bins := []models.BinRecord{bin(2, 1, 1), bin(1, 2, 1), bin(1, 2, 2), bin(1, 1, 1)}
	g := GroupBinsByRowAndShelf(bins)
	assert.Equal(t, []int{1, 2}, g.RowIDs())
	assert.Equal(t, []int{1, 2}, g[1].ShelfIDs())
	require.Len(t, g[1][2], 2)
	assert.Equal(t, "R1-S2-L1", g[1][2][0].BinCode)
	assert.Same(t, &bins[1], g[1][2][0])
}

func TestCalculateHeatStats(t *testing.T) {
	assert.Equal(t, scoring.DefaultStats, CalculateHeatStats(nil))

	stats := CalculateHeatStats([]models.BinRecord{{Hits: 5, Qty: 2}, {Hits: 50, Qty: 2}})
	assert.Equal(t, scoring.HeatStats{MinHits: 5, MaxHits: 50, MinQty: 2, MaxQty: 3}, stats)

	same := CalculateHeatStats([]models.BinRecord{{Hits: 7}, {Hits: 7}})
	assert.Equal(t, 8.0, same.MaxHits)
}

func TestCalculateHeatStatsIgnoresNonFinite(t *testing.T) {
	bins := []models.BinRecord{
		{BinCode: "X1", Hits: math.NaN(), Qty: math.Inf(1), ABC: "A"},
		{BinCode: "X2", Hits: 10, Qty: 4, ABC: "B"},
		{BinCode: "X3", Hits: 30, Qty: 8, ABC: "C"},
	}
	stats := CalculateHeatStats(bins)
	assert.Equal(t, scoring.HeatStats{MinHits: 10, MaxHits: 30, MinQty: 4, MaxQty: 8}, stats)

	for i := range bins {
		heat := scoring.ComputeHeat(&bins[i], stats)
		assert.False(t, math.IsNaN(heat), bins[i].BinCode)
		assert.True(t, heat >= 0 && heat <= 1, bins[i].BinCode)
	}

	only := CalculateHeatStats([]models.BinRecord{{Hits: math.NaN(), Qty: math.NaN()}})
	assert.Equal(t, scoring.DefaultStats, only)
}

func TestGenerate(t *testing.T) {
	d := DefaultDimensions()
	bins, err := Generate(GeneratorConfig{Rows: 2, RacksPerRow: 3, Levels: 2}, d)
	require.NoError(t, err)
	require.Len(t, bins, 12)
	assert.Equal(t, "R1-S1-L1", bins[0].BinCode)
	assert.Equal(t, models.DefaultBinWidth, bins[0].Width)
	assert.Equal(t, "C", bins[0].ABC)
	assert.Equal(t, d.LevelY(1), bins[0].Y)
	assert.NotEqual(t, bins[0].Z, bins[6].Z)

	_, err = Generate(GeneratorConfig{Rows: 0, RacksPerRow: 1, Levels: 1}, d)
	assert.Error(t, err)
}
