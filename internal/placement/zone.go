// Package placement resolves where a dragged bin ends up: which zone cell
// contains it, where it snaps to, and how high it must rest to sit on top of
// whatever already occupies that cell.
package placement

import (
	"fmt"
	"math"

	"github.com/xelth-com/eckwms3d/internal/geom"
)

// XZ is a ground-plane coordinate.
type XZ struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// ZoneSpec declares a named drop zone and how it is split into cells.
type ZoneSpec struct {
	ID       string  `toml:"id" json:"id"`
	Label    string  `toml:"label" json:"label"`
	X        float64 `toml:"x" json:"x"`
	Z        float64 `toml:"z" json:"z"`
	Width    float64 `toml:"width" json:"width"`
	Depth    float64 `toml:"depth" json:"depth"`
	CellSize float64 `toml:"cell_size" json:"cell_size"`
	Color    string  `toml:"color" json:"color"`
}

// ZoneCell is one drop target inside a zone.
type ZoneCell struct {
	ID      string  `json:"id"`
	ZoneID  string  `json:"zone"`
	Label   string  `json:"label"`
	CenterX float64 `json:"center_x"`
	CenterZ float64 `json:"center_z"`
	Width   float64 `json:"width"`
	Depth   float64 `json:"depth"`
	Color   string  `json:"color,omitempty"`
}

// Center returns the cell center on the ground.
func (c ZoneCell) Center() XZ { return XZ{X: c.CenterX, Z: c.CenterZ} }

// Zone is a named group of cells.
type Zone struct {
	Spec  ZoneSpec   `json:"spec"`
	Cells []ZoneCell `json:"cells"`
}

// DefaultZoneSpecs are three 12x10m staging zones in front of the racks.
func DefaultZoneSpecs() []ZoneSpec {
	return []ZoneSpec{
		{ID: "ZONE_1", Label: "Zone 1", X: -20, Z: 22, Width: 12, Depth: 10, CellSize: 2.5, Color: "#4fc3f7"},
		{ID: "ZONE_2", Label: "Zone 2", X: 0, Z: 22, Width: 12, Depth: 10, CellSize: 2.5, Color: "#6dd68a"},
		{ID: "ZONE_3", Label: "Zone 3", X: 20, Z: 22, Width: 12, Depth: 10, CellSize: 2.5, Color: "#ff8a80"},
	}
}

// GenerateZones tiles each zone footprint with square cells of CellSize
// starting at the zone's min corner. A partial cell at the far edge is
// dropped, so cells never overlap or leave the footprint.
func GenerateZones(specs []ZoneSpec) ([]Zone, error) {
	zones := make([]Zone, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if s.ID == "" {
			return nil, fmt.Errorf("zone without id")
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate zone id %q", s.ID)
		}
		seen[s.ID] = true
		if s.CellSize <= 0 || s.Width < s.CellSize || s.Depth < s.CellSize {
			return nil, fmt.Errorf("zone %s: cell size %.2f does not fit %.2fx%.2f", s.ID, s.CellSize, s.Width, s.Depth)
		}
		label := s.Label
		if label == "" {
			label = s.ID
		}

		cols := int(math.Floor(s.Width / s.CellSize))
		rows := int(math.Floor(s.Depth / s.CellSize))
		z := Zone{Spec: s, Cells: make([]ZoneCell, 0, cols*rows)}
		for cx := 0; cx < cols; cx++ {
			for cz := 0; cz < rows; cz++ {
				z.Cells = append(z.Cells, ZoneCell{
					ID:      fmt.Sprintf("%s_SPACE_%d_%d", s.ID, cx, cz),
					ZoneID:  s.ID,
					Label:   fmt.Sprintf("%s Space %d-%d", label, cx, cz),
					CenterX: s.X - s.Width/2 + float64(cx)*s.CellSize + s.CellSize/2,
					CenterZ: s.Z - s.Depth/2 + float64(cz)*s.CellSize + s.CellSize/2,
					Width:   s.CellSize,
					Depth:   s.CellSize,
					Color:   s.Color,
				})
			}
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// AllCells flattens the cells of every zone, in zone order.
func AllCells(zones []Zone) []ZoneCell {
	var cells []ZoneCell
	for _, z := range zones {
		cells = append(cells, z.Cells...)
	}
	return cells
}

// IsInsideZone tests containment on the ground plane; Y is ignored and the
// cell edges count as inside.
func IsInsideZone(p geom.Vec3, cell ZoneCell) bool {
	return math.Abs(p.X-cell.CenterX) <= cell.Width/2 &&
		math.Abs(p.Z-cell.CenterZ) <= cell.Depth/2
}

// FindCell returns the first cell containing p.
func FindCell(cells []ZoneCell, p geom.Vec3) (ZoneCell, bool) {
	for _, c := range cells {
		if IsInsideZone(p, c) {
			return c, true
		}
	}
	return ZoneCell{}, false
}

// SnapToZoneGrid clamps p into the cell, rounds the local offset to a
// multiple of gridSize and returns the world position. The result always
// lies inside the cell footprint.
func SnapToZoneGrid(p geom.Vec3, cell ZoneCell, gridSize float64) XZ {
	return XZ{
		X: cell.CenterX + snapAxis(p.X-cell.CenterX, cell.Width/2, gridSize),
		Z: cell.CenterZ + snapAxis(p.Z-cell.CenterZ, cell.Depth/2, gridSize),
	}
}

func snapAxis(local, half, grid float64) float64 {
	local = math.Max(-half, math.Min(half, local))
	if grid <= 0 {
		return local
	}
	s := math.Round(local/grid) * grid
	// rounding may overshoot the edge when grid does not divide the cell
	for math.Abs(s) > half {
		s -= math.Copysign(grid, s)
	}
	return s
}
