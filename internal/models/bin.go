package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default bin geometry in meters, used when the source omits it.
const (
	DefaultBinWidth  = 1.2
	DefaultBinHeight = 1.2
	DefaultBinDepth  = 1.2
	DefaultABCClass  = "C"
)

// BinRecord is one storage location as delivered to the 3D viewer.
// The core only ever writes Zone (and X/Z after a confirmed drop).
type BinRecord struct {
	RowID    int     `json:"row_id"`
	ShelfID  int     `json:"shelf_id"`
	Level    int     `json:"level"`
	BinCode  string  `json:"bin_code"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Depth    float64 `json:"depth"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Occupied bool    `json:"occupied"`
	Qty      float64 `json:"qty"`
	Hits     float64 `json:"hits"`
	ABC      string  `json:"abc"`

	Product *ProductRecord `json:"product"`
	Zone    *string        `json:"zone"`
}

// ProductRecord is the optional product attached to a bin.
type ProductRecord struct {
	SKU      string  `json:"sku" validate:"required"`
	Name     string  `json:"name"`
	Batch    string  `json:"batch"`
	Expiry   string  `json:"expiry"`
	Quantity float64 `json:"quantity"`
	Image    string  `json:"image"`
}

// LayoutConfig is the optional structural hint shipped with a dataset.
type LayoutConfig struct {
	Rows        int    `json:"rows"`
	RacksPerRow int    `json:"racks_per_row"`
	MaxLevels   int    `json:"max_levels"`
	RackType    string `json:"rack_type"`
}

// Dataset is the payload of the bin dataset endpoint.
type Dataset struct {
	Bins   []BinRecord   `json:"bins"`
	Config *LayoutConfig `json:"config,omitempty"`
}

// BinLabel is the conventional code for a bin without one.
func BinLabel(row, shelf, level int) string {
	return fmt.Sprintf("R%d-S%d-L%d", row, shelf, level)
}

// Normalize fills defaults for missing fields. It never fails.
func (b *BinRecord) Normalize() {
	if strings.TrimSpace(b.BinCode) == "" {
		b.BinCode = BinLabel(b.RowID, b.ShelfID, b.Level)
	}
	if b.Width <= 0 {
		b.Width = DefaultBinWidth
	}
	if b.Height <= 0 {
		b.Height = DefaultBinHeight
	}
	if b.Depth <= 0 {
		b.Depth = DefaultBinDepth
	}
	b.ABC = strings.ToUpper(strings.TrimSpace(b.ABC))
	if b.ABC == "" {
		b.ABC = DefaultABCClass
	}
	if b.Zone != nil && strings.TrimSpace(*b.Zone) == "" {
		b.Zone = nil
	}
}

// InZone reports whether the bin has been dropped into a zone.
func (b *BinRecord) InZone() bool { return b.Zone != nil && *b.Zone != "" }

// ZoneID returns the zone id or "".
func (b *BinRecord) ZoneID() string {
	if b.Zone == nil {
		return ""
	}
	return *b.Zone
}

// SetZone assigns the bin to a zone; an empty id clears it.
func (b *BinRecord) SetZone(id string) {
	if id == "" {
		b.Zone = nil
		return
	}
	z := id
	b.Zone = &z
}

// AttachProduct replaces the bin's product and marks the bin occupied.
func (b *BinRecord) AttachProduct(p ProductRecord) {
	cp := p
	b.Product = &cp
	b.Occupied = true
}

// NormalizeAll normalizes a dataset in place and returns it.
func NormalizeAll(bins []BinRecord) []BinRecord {
	for i := range bins {
		bins[i].Normalize()
	}
	return bins
}

// CoerceQuantity turns a loosely typed form value into a number. Anything
// that does not parse counts as 0.
func CoerceQuantity(v interface{}) float64 {
	var f float64
	switch q := v.(type) {
	case float64:
		f = q
	case float32:
		f = float64(q)
	case int:
		f = float64(q)
	case int64:
		f = float64(q)
	case json.Number:
		f, _ = q.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(q), 64)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
