// Package layout turns a flat list of bins into rack frames and world
// positions using a back-to-back aisle arrangement.
package layout

import (
	"errors"
	"math"
	"sort"

	"github.com/xelth-com/eckwms3d/internal/geom"
	"github.com/xelth-com/eckwms3d/internal/models"
)

// ErrNoBins is returned when there is nothing to lay out.
var ErrNoBins = errors.New("no bins to lay out")

// Dimensions are the fixed spacing constants of the layout, in meters.
type Dimensions struct {
	PalletWidth   float64 `toml:"pallet_width" json:"pallet_width"`
	PalletHeight  float64 `toml:"pallet_height" json:"pallet_height"`
	LevelHeight   float64 `toml:"level_height" json:"level_height"`
	RackDepth     float64 `toml:"rack_depth" json:"rack_depth"`
	BackToBackGap float64 `toml:"back_to_back_gap" json:"back_to_back_gap"`
	AisleSpacing  float64 `toml:"aisle_spacing" json:"aisle_spacing"`
	BaseOffset    float64 `toml:"base_offset" json:"base_offset"`
	MinShelves    int     `toml:"min_shelves" json:"min_shelves"`
}

// DefaultDimensions matches pallet racking with 1.2m euro pallets.
func DefaultDimensions() Dimensions {
	return Dimensions{
		PalletWidth:   1.2,
		PalletHeight:  0.18,
		LevelHeight:   2.0,
		RackDepth:     1.2,
		BackToBackGap: 0.4,
		AisleSpacing:  6,
		BaseOffset:    1.0,
		MinShelves:    4,
	}
}

// RackFrame is the metal frame drawn around one row.
type RackFrame struct {
	RowID  int       `json:"row_id"`
	Aisle  int       `json:"aisle"`
	Origin geom.Vec3 `json:"origin"`
	Bays   int       `json:"bays"`
	Levels int       `json:"levels"`
	Width  float64   `json:"width"`
	Depth  float64   `json:"depth"`
	Height float64   `json:"height"`
}

// Placement is the world position assigned to one bin. Position is the
// bottom-center of the pallet the bin sits on.
type Placement struct {
	BinCode  string    `json:"bin_code"`
	RowID    int       `json:"row_id"`
	ShelfID  int       `json:"shelf_id"`
	Level    int       `json:"level"`
	Column   int       `json:"column"`
	Position geom.Vec3 `json:"position"`
}

// Layout is the result of Build.
type Layout struct {
	Racks      []RackFrame `json:"racks"`
	Placements []Placement `json:"placements"`
	// Rows left without a back-to-back partner; they are not positioned.
	Unplaced []int `json:"unplaced,omitempty"`
}

// Aisle pairs two rows standing back to back.
type Aisle struct {
	Index int
	Rows  [2]int
}

// PairRows consumes sorted row ids two at a time. A trailing odd row is
// returned separately.
func PairRows(rowIDs []int) ([]Aisle, []int) {
	even := len(rowIDs) / 2 * 2
	aisles := make([]Aisle, 0, even/2)
	for i := 0; i < even; i += 2 {
		aisles = append(aisles, Aisle{Index: i / 2, Rows: [2]int{rowIDs[i], rowIDs[i+1]}})
	}
	return aisles, rowIDs[even:]
}

// AisleZ is the Z of an aisle's center line, centered on the origin.
func (d Dimensions) AisleZ(aisleIndex, aisleCount int) float64 {
	return (float64(aisleIndex) - float64(aisleCount-1)/2) * d.AisleSpacing
}

// RowOffset is the distance from the aisle center line to each row.
func (d Dimensions) RowOffset() float64 {
	return d.RackDepth/2 + d.BackToBackGap/2
}

// ColumnX centers numColumns pallet columns on the rack.
func (d Dimensions) ColumnX(colIndex, numColumns int) float64 {
	return (float64(colIndex)+0.5)*d.PalletWidth - float64(numColumns)*d.PalletWidth/2
}

// LevelY is the resting height of a bin on the given level.
func (d Dimensions) LevelY(level int) float64 {
	return float64(level)*d.LevelHeight + d.BaseOffset
}

// Build lays out every bin. The result depends only on row, shelf and level
// of each bin and on d, so running it twice yields identical positions.
func Build(bins []models.BinRecord, d Dimensions) (*Layout, error) {
	if len(bins) == 0 {
		return nil, ErrNoBins
	}

	groups := GroupBinsByRowAndShelf(bins)
	aisles, unplaced := PairRows(groups.RowIDs())

	out := &Layout{Unplaced: unplaced}
	offset := d.RowOffset()
	for _, aisle := range aisles {
		aisleZ := d.AisleZ(aisle.Index, len(aisles))
		zs := [2]float64{aisleZ - offset, aisleZ + offset}
		for side, rowID := range aisle.Rows {
			frame, placements := buildRow(rowID, groups[rowID], zs[side], d)
			frame.Aisle = aisle.Index
			out.Racks = append(out.Racks, frame)
			out.Placements = append(out.Placements, placements...)
		}
	}
	return out, nil
}

func buildRow(rowID int, shelves Shelves, z float64, d Dimensions) (RackFrame, []Placement) {
	shelfIDs := shelves.ShelfIDs()
	columns := len(shelfIDs)
	if columns < d.MinShelves {
		columns = d.MinShelves
	}

	maxLevel := 0
	for _, bins := range shelves {
		for _, b := range bins {
			if b.Level > maxLevel {
				maxLevel = b.Level
			}
		}
	}

	frame := RackFrame{
		RowID:  rowID,
		Origin: geom.V(-float64(columns)*d.PalletWidth/2, 0, z),
		Bays:   columns,
		Levels: maxLevel + 1,
		Width:  float64(columns) * d.PalletWidth,
		Depth:  d.RackDepth,
		Height: d.LevelY(maxLevel+1) - d.BaseOffset,
	}

	var placements []Placement
	for col, shelfID := range shelfIDs {
		x := d.ColumnX(col, columns)
		for _, b := range shelves[shelfID] {
			placements = append(placements, Placement{
				BinCode:  b.BinCode,
				RowID:    rowID,
				ShelfID:  shelfID,
				Level:    b.Level,
				Column:   col,
				Position: geom.V(x, d.LevelY(b.Level), z),
			})
		}
	}
	return frame, placements
}

// Bounds returns the XZ extent covered by the rack frames.
func (l *Layout) Bounds() geom.Box {
	if l == nil || len(l.Racks) == 0 {
		return geom.Box{}
	}
	b := geom.Box{
		Min: geom.V(math.Inf(1), 0, math.Inf(1)),
		Max: geom.V(math.Inf(-1), 0, math.Inf(-1)),
	}
	for _, r := range l.Racks {
		b.Min.X = math.Min(b.Min.X, r.Origin.X)
		b.Max.X = math.Max(b.Max.X, r.Origin.X+r.Width)
		b.Min.Z = math.Min(b.Min.Z, r.Origin.Z-r.Depth/2)
		b.Max.Z = math.Max(b.Max.Z, r.Origin.Z+r.Depth/2)
		b.Max.Y = math.Max(b.Max.Y, r.Height)
	}
	return b
}

// PlacementIndex maps bin codes to their placement.
func (l *Layout) PlacementIndex() map[string]Placement {
	idx := make(map[string]Placement, len(l.Placements))
	for _, p := range l.Placements {
		idx[p.BinCode] = p
	}
	return idx
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
