package placement

import (
	"errors"
	"math"

	"github.com/xelth-com/eckwms3d/internal/geom"
)

// DragThreshold is the pointer travel, in pixels, that turns a press into a drag.
const DragThreshold = 3.0

// DragState is a state of the drag protocol.
type DragState string

const (
	StateIdle      DragState = "IDLE"
	StateArmed     DragState = "ARMED"
	StateDragging  DragState = "DRAGGING"
	StateResolving DragState = "RESOLVING"
)

// SnapMode selects how a drop aligns inside a cell.
type SnapMode string

const (
	SnapCenter SnapMode = "center"
	SnapGrid   SnapMode = "grid"
)

var (
	ErrBusy         = errors.New("a drag is already in progress")
	ErrNotResolving = errors.New("no move awaiting confirmation")
)

// Draggable is an entity the user can pick up. Position is its bottom-center.
type Draggable interface {
	Body
	Position() geom.Vec3
	SetPosition(geom.Vec3)
	ZoneID() string
	AssignZone(zoneID string)
}

// Screen is a pointer position in pixels.
type Screen struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveRecord is what the persistence collaborator receives after a drop.
type MoveRecord struct {
	Label    string `json:"label" validate:"required"`
	NewZone  string `json:"new_zone" validate:"required"`
	Position XZ     `json:"position"`
	// BaseY is the height the bin rests at after stacking.
	BaseY    float64 `json:"base_y"`
	FromZone string  `json:"from_zone,omitempty"`
}

// OutcomeKind tells the caller what a release or confirmation did.
type OutcomeKind string

const (
	OutcomeNone      OutcomeKind = "none"      // nothing was armed
	OutcomeCancelled OutcomeKind = "cancelled" // press without movement
	OutcomeReverted  OutcomeKind = "reverted"  // dropped outside every cell, or rejected
	OutcomePending   OutcomeKind = "pending"   // awaiting confirmation
	OutcomeMoved     OutcomeKind = "moved"
)

// Outcome reports the result of Release or Confirm.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	EntityID string      `json:"entity_id,omitempty"`
	Cell     *ZoneCell   `json:"cell,omitempty"`
	Position geom.Vec3   `json:"position"`
}

// DragOptions configures a Drag.
type DragOptions struct {
	Snap           SnapMode
	GridSize       float64
	RequireConfirm bool
	Threshold      float64
}

// Drag runs the IDLE -> ARMED -> DRAGGING -> (RESOLVING) -> IDLE protocol
// for one pointer. It is not safe for concurrent use; one interaction owns it.
type Drag struct {
	opts   DragOptions
	cells  func() []ZoneCell
	tester HitTester
	onMove func(MoveRecord)

	state    DragState
	entity   Draggable
	start    Screen
	original geom.Vec3
	offset   geom.Vec3
	pinnedY  float64
	pending  *ZoneCell
}

// NewDrag creates an idle drag. cells supplies the current zone cells, tester
// is used for the stacking probe and onMove is called once per completed move.
func NewDrag(opts DragOptions, cells func() []ZoneCell, tester HitTester, onMove func(MoveRecord)) *Drag {
	if opts.Threshold <= 0 {
		opts.Threshold = DragThreshold
	}
	if opts.Snap == "" {
		opts.Snap = SnapCenter
	}
	return &Drag{opts: opts, cells: cells, tester: tester, onMove: onMove, state: StateIdle}
}

func (d *Drag) State() DragState { return d.state }

// Entity returns the entity currently held, if any.
func (d *Drag) Entity() Draggable { return d.entity }

// PendingCell returns the cell a RESOLVING move targets.
func (d *Drag) PendingCell() (ZoneCell, bool) {
	if d.pending == nil {
		return ZoneCell{}, false
	}
	return *d.pending, true
}

// Arm captures the entity under the pointer, its position and the offset
// between the hit point and that position on the ground plane.
func (d *Drag) Arm(e Draggable, hitPoint geom.Vec3, at Screen) error {
	if d.state != StateIdle {
		return ErrBusy
	}
	pos := e.Position()
	d.entity = e
	d.start = at
	d.original = pos
	d.offset = geom.V(hitPoint.X-pos.X, 0, hitPoint.Z-pos.Z)
	d.state = StateArmed
	return nil
}

// Move updates the drag from a pointer move. ground is where the pointer ray
// meets the floor plane; ok is false when it misses. It returns whether the
// entity moved.
func (d *Drag) Move(at Screen, ground geom.Vec3, ok bool) bool {
	switch d.state {
	case StateArmed:
		dx := math.Abs(at.X - d.start.X)
		dy := math.Abs(at.Y - d.start.Y)
		if dx < d.opts.Threshold && dy < d.opts.Threshold {
			return false
		}
		d.pinnedY = d.entity.Position().Y
		d.state = StateDragging
	case StateDragging:
	default:
		return false
	}
	if !ok {
		return false
	}
	d.entity.SetPosition(geom.V(ground.X-d.offset.X, d.pinnedY, ground.Z-d.offset.Z))
	return true
}

// HoveredCell is the cell under the dragged entity, for highlighting.
func (d *Drag) HoveredCell() (ZoneCell, bool) {
	if d.state != StateDragging {
		return ZoneCell{}, false
	}
	return FindCell(d.cells(), d.entity.Position())
}

// Release ends the pointer interaction.
func (d *Drag) Release() Outcome {
	switch d.state {
	case StateArmed:
		id := d.entity.EntityID()
		d.reset()
		return Outcome{Kind: OutcomeCancelled, EntityID: id}
	case StateDragging:
	default:
		return Outcome{Kind: OutcomeNone}
	}

	cell, inside := FindCell(d.cells(), d.entity.Position())
	if !inside {
		return d.revert()
	}

	target := d.target(cell)
	if d.opts.RequireConfirm {
		d.entity.SetPosition(target)
		d.pending = &cell
		d.state = StateResolving
		return Outcome{Kind: OutcomePending, EntityID: d.entity.EntityID(), Cell: &cell, Position: target}
	}
	return d.finalize(cell, target)
}

// Confirm resolves a pending move: accept finalizes it, reject reverts.
func (d *Drag) Confirm(accept bool) (Outcome, error) {
	if d.state != StateResolving || d.pending == nil {
		return Outcome{}, ErrNotResolving
	}
	if !accept {
		return d.revert(), nil
	}
	cell := *d.pending
	// the scene may have changed while waiting
	return d.finalize(cell, d.target(cell)), nil
}

// Cancel abandons any interaction and puts the entity back.
func (d *Drag) Cancel() Outcome {
	if d.state == StateIdle {
		return Outcome{Kind: OutcomeNone}
	}
	return d.revert()
}

func (d *Drag) target(cell ZoneCell) geom.Vec3 {
	var xz XZ
	if d.opts.Snap == SnapGrid {
		xz = SnapToZoneGrid(d.entity.Position(), cell, d.opts.GridSize)
	} else {
		xz = cell.Center()
	}
	p := geom.V(xz.X, 0, xz.Z)
	p.Y = FindStackBaseY(d.tester, p, d.entity.EntityID())
	return p
}

func (d *Drag) finalize(cell ZoneCell, target geom.Vec3) Outcome {
	e := d.entity
	from := e.ZoneID()
	e.SetPosition(target)
	e.AssignZone(cell.ZoneID)
	d.reset()

	if d.onMove != nil {
		d.onMove(MoveRecord{
			Label:    e.EntityID(),
			NewZone:  cell.ZoneID,
			Position: XZ{X: target.X, Z: target.Z},
			BaseY:    target.Y,
			FromZone: from,
		})
	}
	return Outcome{Kind: OutcomeMoved, EntityID: e.EntityID(), Cell: &cell, Position: target}
}

func (d *Drag) revert() Outcome {
	e := d.entity
	e.SetPosition(d.original)
	out := Outcome{Kind: OutcomeReverted, EntityID: e.EntityID(), Position: d.original}
	d.reset()
	return out
}

func (d *Drag) reset() {
	d.state = StateIdle
	d.entity = nil
	d.pending = nil
	d.offset = geom.Vec3{}
	d.original = geom.Vec3{}
	d.pinnedY = 0
}
