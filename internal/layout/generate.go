package layout

import (
	"fmt"

	"github.com/xelth-com/eckwms3d/internal/models"
)

// GeneratorConfig describes a synthetic warehouse.
type GeneratorConfig struct {
	Rows        int
	RacksPerRow int
	Levels      int
	BinWidth    float64
	BinHeight   float64
	BinDepth    float64
}

// FromWarehouseConfig adapts a stored warehouse configuration.
func FromWarehouseConfig(c models.WarehouseConfig) GeneratorConfig {
	return GeneratorConfig{
		Rows:        c.Rows,
		RacksPerRow: c.RacksPerRow,
		Levels:      c.MaxLevels,
		BinWidth:    c.BinWidth,
		BinHeight:   c.BinHeight,
		BinDepth:    c.BinDepth,
	}
}

// Generate builds an empty-stock dataset of rows x racks x levels bins with
// codes R{row}-S{shelf}-L{level}. Rows, shelves and levels are 1-based.
// Positions are filled from Build so the result renders as is.
func Generate(cfg GeneratorConfig, d Dimensions) ([]models.BinRecord, error) {
	if cfg.Rows <= 0 || cfg.RacksPerRow <= 0 || cfg.Levels <= 0 {
		return nil, fmt.Errorf("invalid generator config: rows=%d racks=%d levels=%d", cfg.Rows, cfg.RacksPerRow, cfg.Levels)
	}

	bins := make([]models.BinRecord, 0, cfg.Rows*cfg.RacksPerRow*cfg.Levels)
	for row := 1; row <= cfg.Rows; row++ {
		for shelf := 1; shelf <= cfg.RacksPerRow; shelf++ {
			for level := 1; level <= cfg.Levels; level++ {
				b := models.BinRecord{
					RowID:   row,
					ShelfID: shelf,
					Level:   level,
					BinCode: models.BinLabel(row, shelf, level),
					Width:   cfg.BinWidth,
					Height:  cfg.BinHeight,
					Depth:   cfg.BinDepth,
				}
				b.Normalize()
				bins = append(bins, b)
			}
		}
	}

	l, err := Build(bins, d)
	if err != nil {
		return nil, err
	}
	ApplyPositions(bins, l)
	return bins, nil
}

// ApplyPositions copies placement positions into the bins' world coordinates.
// Bins without a placement keep theirs.
func ApplyPositions(bins []models.BinRecord, l *Layout) {
	idx := l.PlacementIndex()
	for i := range bins {
		if p, ok := idx[bins[i].BinCode]; ok {
			bins[i].X, bins[i].Y, bins[i].Z = p.Position.X, p.Position.Y, p.Position.Z
		}
	}
}
