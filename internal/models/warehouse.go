package models

import (
	"time"

	"gorm.io/datatypes"
)

// Warehouse is a physical site holding racks of storage bins
type Warehouse struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Code    string  `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name    string  `gorm:"type:varchar(100)" json:"name"`
	BoundsX float64 `gorm:"default:200" json:"bounds_x"`
	BoundsY float64 `gorm:"default:50" json:"bounds_y"`
	BoundsZ float64 `gorm:"default:160" json:"bounds_z"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Config *WarehouseConfig `gorm:"foreignKey:WarehouseID" json:"config,omitempty"`
	Bins   []StorageBin     `gorm:"foreignKey:WarehouseID" json:"bins,omitempty"`
}

func (Warehouse) TableName() string { return "warehouses" }

// WarehouseConfig holds the structural parameters used to generate or frame a layout
type WarehouseConfig struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WarehouseID uint   `gorm:"not null;uniqueIndex" json:"warehouse_id"`
	Rows        int    `gorm:"default:6" json:"rows"`
	RacksPerRow int    `gorm:"default:8" json:"racks_per_row"`
	MaxLevels   int    `gorm:"default:4" json:"max_levels"`
	RackType    string `gorm:"type:varchar(20);default:'basic'" json:"rack_type"` // basic, pallet

	RackWidth float64 `gorm:"default:4" json:"rack_width"`
	RackDepth float64 `gorm:"default:2" json:"rack_depth"`
	ShelfGap  float64 `gorm:"default:2" json:"shelf_gap"`
	BinWidth  float64 `gorm:"default:1.2" json:"bin_width"`
	BinHeight float64 `gorm:"default:1.2" json:"bin_height"`
	BinDepth  float64 `gorm:"default:1.2" json:"bin_depth"`

	// Free-form viewer settings (camera presets, colors) kept as JSON
	Extra datatypes.JSON `json:"extra,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (WarehouseConfig) TableName() string { return "warehouse_configs" }

// ToLayoutConfig returns the subset shipped with the bin dataset.
func (c WarehouseConfig) ToLayoutConfig() *LayoutConfig {
	return &LayoutConfig{
		Rows:        c.Rows,
		RacksPerRow: c.RacksPerRow,
		MaxLevels:   c.MaxLevels,
		RackType:    c.RackType,
	}
}

// StorageBin is a physical bin location with world coordinates
type StorageBin struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WarehouseID uint   `gorm:"not null;uniqueIndex:idx_wh_bin" json:"warehouse_id"`
	BinCode     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_wh_bin" json:"bin_code"`

	Row   int `gorm:"column:row_id;index:idx_row_shelf_level" json:"row"`
	Shelf int `gorm:"column:shelf_id;index:idx_row_shelf_level" json:"shelf"`
	Level int `gorm:"index:idx_row_shelf_level" json:"level"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	Width  float64 `gorm:"default:1.2" json:"width"`
	Height float64 `gorm:"default:1.2" json:"height"`
	Depth  float64 `gorm:"default:1.2" json:"depth"`

	Zone     *string `gorm:"type:varchar(50);index" json:"zone,omitempty"`
	ABCClass string  `gorm:"type:varchar(1);default:'C';index" json:"abc_class"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Stocks []BinStock `gorm:"foreignKey:BinID" json:"stocks,omitempty"`
}

func (StorageBin) TableName() string { return "storage_bins" }

// BinStock is one product batch stored in a bin
type BinStock struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BinID      uint       `gorm:"not null;index" json:"bin_id"`
	ProductID  uint       `gorm:"not null;index" json:"product_id"`
	Batch      string     `gorm:"type:varchar(50)" json:"batch"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Quantity   float64    `gorm:"default:0" json:"quantity"`
	UOM        string     `gorm:"type:varchar(10);default:'EA'" json:"uom"`
	ABCClass   string     `gorm:"type:varchar(1);default:'C';index" json:"abc_class"`
	HitCount   int        `gorm:"default:0" json:"hit_count"`
	LastSync   time.Time  `gorm:"autoUpdateTime" json:"last_sync"`

	Product Product `gorm:"foreignKey:ProductID" json:"product"`
}

func (BinStock) TableName() string { return "bin_stocks" }

// BinMove records a completed zone drop for auditing
type BinMove struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BinCode   string         `gorm:"type:varchar(50);index" json:"bin_code"`
	FromZone  *string        `gorm:"type:varchar(50)" json:"from_zone,omitempty"`
	ToZone    string         `gorm:"type:varchar(50);index" json:"to_zone"`
	Position  datatypes.JSON `json:"position"`
	SessionID string         `gorm:"type:varchar(64)" json:"session_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (BinMove) TableName() string { return "bin_moves" }

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Warehouse{},
		&WarehouseConfig{},
		&Product{},
		&StorageBin{},
		&BinStock{},
		&BinMove{},
	}
}
