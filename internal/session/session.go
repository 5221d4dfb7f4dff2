// Package session holds the state of one viewer: its scene, overlay mode,
// hover and selection, and the drag in progress. A session is driven by one
// goroutine at a time and does no locking of its own.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xelth-com/eckwms3d/internal/geom"
	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/logger"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/overlay"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/scene"
	"github.com/xelth-com/eckwms3d/internal/scoring"
)

var (
	ErrNoData      = errors.New("no data")
	ErrNoSelection = errors.New("no bin selected")
)

// Options configures a session.
type Options struct {
	Dimensions     layout.Dimensions
	Zones          []placement.ZoneSpec
	Snap           placement.SnapMode
	GridSize       float64
	RequireConfirm bool
}

// Persister receives completed moves. It must not block.
type Persister func(sessionID string, rec placement.MoveRecord)

// Session is the per-viewer controller.
type Session struct {
	ID string

	opts    Options
	persist Persister
	log     *logrus.Entry

	bins     []models.BinRecord
	registry *scene.Registry
	layout   *layout.Layout
	zones    []placement.Zone
	cells    []placement.ZoneCell
	stats    scoring.HeatStats
	mode     overlay.Mode

	hovered   *scene.Entity
	selected  *scene.Entity
	drag      *placement.Drag
	animating bool
}

// New creates an empty session with its zone grid.
func New(opts Options, persist Persister) (*Session, error) {
	if opts.Dimensions == (layout.Dimensions{}) {
		opts.Dimensions = layout.DefaultDimensions()
	}
	if opts.Zones == nil {
		opts.Zones = placement.DefaultZoneSpecs()
	}
	s := &Session{
		ID:        uuid.New().String(),
		opts:      opts,
		persist:   persist,
		stats:     scoring.DefaultStats,
		mode:      overlay.ModeNone,
		animating: true,
	}
	s.log = logger.GetLogger("session").WithField("session", s.ID)
	if err := s.RegenerateZones(opts.Zones); err != nil {
		return nil, err
	}
	s.swapRegistry(scene.NewRegistry())
	return s, nil
}

// Load replaces the scene with the dataset. The session keeps its own copy of
// the bins. An empty dataset is refused and leaves the current scene intact.
func (s *Session) Load(ds *models.Dataset) error {
	if ds == nil || len(ds.Bins) == 0 {
		return ErrNoData
	}
	s.drag.Cancel()

	bins := make([]models.BinRecord, len(ds.Bins))
	copy(bins, ds.Bins)
	models.NormalizeAll(bins)

	reg, l, err := scene.Build(bins, s.opts.Dimensions)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	if len(l.Unplaced) > 0 {
		s.log.WithField("rows", l.Unplaced).Warn("⚠️ Rows without a back-to-back partner are not shown")
	}

	s.bins = bins
	s.layout = l
	s.stats = layout.CalculateHeatStats(bins)
	s.hovered, s.selected = nil, nil
	s.swapRegistry(reg)
	overlay.Apply(s.mode, s.registry.Entities(), s.stats)
	s.log.WithField("entities", reg.Len()).Info("✅ Scene loaded")
	return nil
}

func (s *Session) swapRegistry(reg *scene.Registry) {
	s.registry = reg
	s.drag = placement.NewDrag(placement.DragOptions{
		Snap:           s.opts.Snap,
		GridSize:       s.opts.GridSize,
		RequireConfirm: s.opts.RequireConfirm,
	}, func() []placement.ZoneCell { return s.cells }, reg, s.onMove)
}

// RegenerateZones rebuilds the zone grid. Bins keep their zone assignment.
func (s *Session) RegenerateZones(specs []placement.ZoneSpec) error {
	zones, err := placement.GenerateZones(specs)
	if err != nil {
		return err
	}
	s.opts.Zones = specs
	s.zones = zones
	s.cells = placement.AllCells(zones)
	return nil
}

func (s *Session) onMove(rec placement.MoveRecord) {
	s.log.WithFields(logrus.Fields{"bin": rec.Label, "zone": rec.NewZone}).Info("📦 Bin dropped into zone")
	if s.persist != nil {
		s.persist(s.ID, rec)
	}
}

func (s *Session) Registry() *scene.Registry      { return s.registry }
func (s *Session) Layout() *layout.Layout         { return s.layout }
func (s *Session) Zones() []placement.Zone        { return s.zones }
func (s *Session) Cells() []placement.ZoneCell    { return s.cells }
func (s *Session) Stats() scoring.HeatStats       { return s.stats }
func (s *Session) Mode() overlay.Mode             { return s.mode }
func (s *Session) Bins() []models.BinRecord       { return s.bins }
func (s *Session) DragState() placement.DragState { return s.drag.State() }

// SetOverlay switches the color encoding of every entity.
func (s *Session) SetOverlay(mode overlay.Mode) {
	s.mode = mode
	overlay.Apply(mode, s.registry.Entities(), s.stats)
}

// SetAnimating toggles the render loop flag and reports whether it changed.
// The scene is untouched either way.
func (s *Session) SetAnimating(on bool) bool {
	changed := s.animating != on
	s.animating = on
	return changed
}

func (s *Session) Animating() bool { return s.animating }

// Hover updates the hovered entity from a pointer ray. It returns the entity
// under the pointer, or nil.
func (s *Session) Hover(ray geom.Ray) *scene.Entity {
	e, _, ok := s.registry.Pick(ray)
	if !ok {
		s.hovered = nil
		return nil
	}
	s.hovered = e
	return e
}

func (s *Session) Hovered() *scene.Entity { return s.hovered }

// Select picks the entity under ray; a miss clears the selection.
func (s *Session) Select(ray geom.Ray) (*scene.Entity, bool) {
	e, _, ok := s.registry.Pick(ray)
	if !ok {
		s.selected = nil
		return nil, false
	}
	s.selected = e
	return e, true
}

// SelectByID selects an entity by bin code.
func (s *Session) SelectByID(id string) (*scene.Entity, bool) {
	e, ok := s.registry.Get(id)
	if ok {
		s.selected = e
	}
	return e, ok
}

func (s *Session) Selected() *scene.Entity { return s.selected }

// SelectedProduct returns a copy of the selected bin's product fields.
func (s *Session) SelectedProduct() (models.ProductRecord, bool, error) {
	if s.selected == nil || s.selected.Bin == nil {
		return models.ProductRecord{}, false, ErrNoSelection
	}
	if s.selected.Bin.Product == nil {
		return models.ProductRecord{}, false, nil
	}
	return *s.selected.Bin.Product, true, nil
}

// EditProduct attaches p to the selected bin. Only the quantity is coerced;
// other fields are taken as given.
func (s *Session) EditProduct(p models.ProductRecord, rawQuantity interface{}) (*scene.Entity, error) {
	if s.selected == nil || s.selected.Bin == nil {
		return nil, ErrNoSelection
	}
	if rawQuantity != nil {
		p.Quantity = models.CoerceQuantity(rawQuantity)
	}
	e := s.selected
	e.Bin.AttachProduct(p)
	e.RefreshBaseColor()
	overlay.Apply(s.mode, []*scene.Entity{e}, s.stats)
	return e, nil
}

// PointerDown arms a drag on the entity under ray. It reports whether an
// entity was hit.
func (s *Session) PointerDown(ray geom.Ray, at placement.Screen) (bool, error) {
	if s.drag.State() != placement.StateIdle {
		return false, placement.ErrBusy
	}
	e, hit, ok := s.registry.Pick(ray)
	if !ok {
		return false, nil
	}
	if err := s.drag.Arm(e, hit, at); err != nil {
		return false, err
	}
	return true, nil
}

// PointerMove drags the held entity along the floor plane. It returns the
// moved entity and the cell it hovers, if any.
func (s *Session) PointerMove(ray geom.Ray, at placement.Screen) (*scene.Entity, *placement.ZoneCell) {
	ground, ok := ray.IntersectGround(0)
	if !s.drag.Move(at, ground, ok) {
		return nil, nil
	}
	e, _ := s.drag.Entity().(*scene.Entity)
	if cell, ok := s.drag.HoveredCell(); ok {
		return e, &cell
	}
	return e, nil
}

// PointerUp releases the pointer.
func (s *Session) PointerUp() placement.Outcome {
	return s.drag.Release()
}

// Confirm resolves a move waiting in RESOLVING.
func (s *Session) Confirm(accept bool) (placement.Outcome, error) {
	return s.drag.Confirm(accept)
}

// Entity looks an entity up by bin code.
func (s *Session) Entity(id string) (*scene.Entity, bool) {
	return s.registry.Get(id)
}
