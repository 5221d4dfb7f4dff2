package scene

import (
	"math"
	"sort"

	"github.com/xelth-com/eckwms3d/internal/geom"
	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/placement"
)

// Registry owns the entities of one scene, keyed by bin code. Iteration
// follows insertion order so results are reproducible.
type Registry struct {
	byID  map[string]*Entity
	order []string
	racks []layout.RackFrame
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Entity)}
}

// Build lays the bins out and creates one entity per placed bin. Bins that
// already sit in a zone keep their stored X and Z and are restacked, see
// settleZoned. The registry holds pointers into bins, so the slice must
// outlive it.
func Build(bins []models.BinRecord, d layout.Dimensions) (*Registry, *layout.Layout, error) {
	l, err := layout.Build(bins, d)
	if err != nil {
		return nil, nil, err
	}
	idx := l.PlacementIndex()
	r := NewRegistry()
	r.racks = l.Racks
	var zoned []*Entity
	for i := range bins {
		b := &bins[i]
		var pos geom.Vec3
		if b.InZone() {
			pos = geom.V(b.X, b.Y, b.Z)
		} else if p, ok := idx[b.BinCode]; ok {
			pos = p.Position
		} else {
			continue
		}
		e := NewEntity(b, pos, d.PalletHeight)
		r.Add(e)
		if b.InZone() {
			zoned = append(zoned, e)
		}
	}
	r.settleZoned(zoned)
	return r, l, nil
}

// settleZoned rests zoned entities on the floor or on the stack below them,
// lowest stored height first.
func (r *Registry) settleZoned(zoned []*Entity) {
	sort.SliceStable(zoned, func(i, j int) bool { return zoned[i].position.Y < zoned[j].position.Y })
	settled := make(map[string]bool, len(zoned))
	below := func(b placement.Body) bool { return settled[b.EntityID()] }
	for _, e := range zoned {
		p := e.position
		y := 0.0
		if hit, ok := r.CastRay(geom.Down(p.X, p.Z, placement.ProbeHeight), below); ok {
			y = hit.Bounds.Max.Y
		}
		e.position.Y = y
		e.Bin.Y = y
		settled[e.EntityID()] = true
	}
}

// Add inserts or replaces the entity with the same id.
func (r *Registry) Add(e *Entity) {
	id := e.EntityID()
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = e
}

func (r *Registry) Get(id string) (*Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

func (r *Registry) Len() int { return len(r.order) }

// Racks returns the rack frames of the last Build.
func (r *Registry) Racks() []layout.RackFrame { return r.racks }

// Entities returns the entities in insertion order.
func (r *Registry) Entities() []*Entity {
	out := make([]*Entity, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// InCell lists the entities assigned to zone whose position lies in cell,
// lowest first.
func (r *Registry) InCell(cell placement.ZoneCell) []*Entity {
	var out []*Entity
	for _, e := range r.Entities() {
		if e.ZoneID() == cell.ZoneID && placement.IsInsideZone(e.Position(), cell) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position().Y < out[j].Position().Y })
	return out
}

// CastRay returns the nearest entity hit by ray that accept admits.
func (r *Registry) CastRay(ray geom.Ray, accept func(placement.Body) bool) (placement.Hit, bool) {
	best := placement.Hit{Distance: math.Inf(1)}
	found := false
	for _, id := range r.order {
		e := r.byID[id]
		if e.Bin == nil {
			continue
		}
		if accept != nil && !accept(e) {
			continue
		}
		box := e.Bounds()
		t, ok := box.IntersectRay(ray)
		if !ok || t >= best.Distance {
			continue
		}
		best = placement.Hit{ID: id, Point: ray.At(t), Distance: t, Bounds: box}
		found = true
	}
	return best, found
}

// Pick returns the entity under ray, for hover and selection.
func (r *Registry) Pick(ray geom.Ray) (*Entity, geom.Vec3, bool) {
	hit, ok := r.CastRay(ray, nil)
	if !ok {
		return nil, geom.Vec3{}, false
	}
	return r.byID[hit.ID], hit.Point, true
}

// Views snapshots every entity for the wire.
func (r *Registry) Views() []View {
	out := make([]View, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].View())
	}
	return out
}

var _ placement.HitTester = (*Registry)(nil)
var _ placement.Draggable = (*Entity)(nil)
