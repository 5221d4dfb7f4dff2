package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/placement"
)

// LayoutFile is the on-disk description of the warehouse geometry:
//
//	[dimensions]
//	aisle_spacing = 6.0
//
//	[generator]
//	rows = 4
//
//	[[zone]]
//	id = "ZONE_1"
//	x = -20.0
//	...
type LayoutFile struct {
	Dimensions layout.Dimensions    `toml:"dimensions"`
	Generator  GeneratorSection     `toml:"generator"`
	Zones      []placement.ZoneSpec `toml:"zone"`
}

// GeneratorSection sizes the procedural fallback warehouse.
type GeneratorSection struct {
	Rows        int     `toml:"rows"`
	RacksPerRow int     `toml:"racks_per_row"`
	Levels      int     `toml:"levels"`
	BinWidth    float64 `toml:"bin_width"`
	BinHeight   float64 `toml:"bin_height"`
	BinDepth    float64 `toml:"bin_depth"`
}

// GeneratorConfig converts the section for the layout package.
func (g GeneratorSection) GeneratorConfig() layout.GeneratorConfig {
	return layout.GeneratorConfig{
		Rows:        g.Rows,
		RacksPerRow: g.RacksPerRow,
		Levels:      g.Levels,
		BinWidth:    g.BinWidth,
		BinHeight:   g.BinHeight,
		BinDepth:    g.BinDepth,
	}
}

// DefaultLayoutFile is used when no file exists.
func DefaultLayoutFile() *LayoutFile {
	return &LayoutFile{
		Dimensions: layout.DefaultDimensions(),
		Generator: GeneratorSection{
			Rows: 4, RacksPerRow: 8, Levels: 4,
			BinWidth: 1.2, BinHeight: 1.2, BinDepth: 1.2,
		},
		Zones: placement.DefaultZoneSpecs(),
	}
}

// LoadLayoutFile reads path. A missing file yields the defaults; any field
// left out of the file keeps its default value.
func LoadLayoutFile(path string) (*LayoutFile, error) {
	lf := DefaultLayoutFile()
	if path == "" {
		return lf, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return lf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return ParseLayoutFile(data)
}

// ParseLayoutFile decodes TOML over the defaults: keys left out keep their
// default value. Zones listed in the file replace the default zones entirely.
func ParseLayoutFile(data []byte) (*LayoutFile, error) {
	lf := DefaultLayoutFile()
	lf.Zones = nil
	if _, err := toml.Decode(string(data), lf); err != nil {
		return nil, fmt.Errorf("parse layout file: %w", err)
	}
	if len(lf.Zones) == 0 {
		lf.Zones = placement.DefaultZoneSpecs()
	}
	if _, err := placement.GenerateZones(lf.Zones); err != nil {
		return nil, fmt.Errorf("layout file zones: %w", err)
	}
	return lf, nil
}
