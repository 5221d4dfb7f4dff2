// Package scene keeps the positioned, colored entities a viewer draws, one
// per laid-out bin, and answers ray queries against them.
package scene

import (
	"github.com/xelth-com/eckwms3d/internal/geom"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/scoring"
)

// Base material colors before any overlay.
var (
	ColorOccupied = scoring.HexColor("#ffb86b")
	ColorEmpty    = scoring.HexColor("#999999")
)

// Material is the drawable color state of an entity.
type Material struct {
	Color             scoring.Color `json:"-"`
	Emissive          scoring.Color `json:"-"`
	EmissiveIntensity float64       `json:"emissive_intensity"`
}

// MarshalHex returns the material colors as hex strings for the wire.
func (m Material) MarshalHex() (color, emissive string) {
	return m.Color.Hex(), m.Emissive.Hex()
}

// Entity bridges a BinRecord to its position and material. Position is the
// bottom-center of the pallet the bin stands on.
type Entity struct {
	Bin          *models.BinRecord
	Size         geom.Vec3
	PalletHeight float64
	Material     Material

	position  geom.Vec3
	baseColor *scoring.Color
}

// NewEntity creates an entity for bin and caches its base color.
func NewEntity(bin *models.BinRecord, pos geom.Vec3, palletHeight float64) *Entity {
	base := ColorEmpty
	if bin.Occupied {
		base = ColorOccupied
	}
	e := &Entity{
		Bin:          bin,
		Size:         geom.V(bin.Width, bin.Height+palletHeight, bin.Depth),
		PalletHeight: palletHeight,
		position:     pos,
		baseColor:    &base,
	}
	e.Material = Material{Color: base, Emissive: scoring.Black}
	return e
}

// EntityID is the stable bin code.
func (e *Entity) EntityID() string {
	if e.Bin == nil {
		return ""
	}
	return e.Bin.BinCode
}

func (e *Entity) Position() geom.Vec3     { return e.position }
func (e *Entity) SetPosition(p geom.Vec3) { e.position = p }

// Bounds is the world box of pallet and load.
func (e *Entity) Bounds() geom.Box {
	return geom.BoxFromBase(e.position, e.Size.X, e.Size.Y, e.Size.Z)
}

func (e *Entity) InZone() bool { return e.Bin != nil && e.Bin.InZone() }

func (e *Entity) ZoneID() string {
	if e.Bin == nil {
		return ""
	}
	return e.Bin.ZoneID()
}

// AssignZone records the zone on the bin and mirrors the new ground position
// into the record.
func (e *Entity) AssignZone(zoneID string) {
	if e.Bin == nil {
		return
	}
	e.Bin.SetZone(zoneID)
	e.Bin.X, e.Bin.Y, e.Bin.Z = e.position.X, e.position.Y, e.position.Z
}

// BaseColor returns the cached un-overlaid color.
func (e *Entity) BaseColor() (scoring.Color, bool) {
	if e.baseColor == nil {
		return scoring.Color{}, false
	}
	return *e.baseColor, true
}

// RefreshBaseColor re-derives the base color after the bin's occupancy changed.
func (e *Entity) RefreshBaseColor() {
	if e.Bin == nil {
		return
	}
	base := ColorEmpty
	if e.Bin.Occupied {
		base = ColorOccupied
	}
	e.baseColor = &base
}

// View is the JSON shape of an entity sent to viewers.
type View struct {
	ID                string    `json:"id"`
	Position          geom.Vec3 `json:"position"`
	Size              geom.Vec3 `json:"size"`
	PalletHeight      float64   `json:"pallet_height"`
	Color             string    `json:"color"`
	Emissive          string    `json:"emissive"`
	EmissiveIntensity float64   `json:"emissive_intensity"`
	Zone              *string   `json:"zone"`
	Occupied          bool      `json:"occupied"`
}

func (e *Entity) View() View {
	color, emissive := e.Material.MarshalHex()
	v := View{
		ID:                e.EntityID(),
		Position:          e.position,
		Size:              e.Size,
		PalletHeight:      e.PalletHeight,
		Color:             color,
		Emissive:          emissive,
		EmissiveIntensity: e.Material.EmissiveIntensity,
	}
	if e.Bin != nil {
		v.Zone = e.Bin.Zone
		v.Occupied = e.Bin.Occupied
	}
	return v
}
