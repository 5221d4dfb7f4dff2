package placement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckwms3d/internal/geom"
)

// box is a 1x1x1 draggable used by the tests.
type box struct {
	id   string
	pos  geom.Vec3
	zone string
}

func (b *box) EntityID() string         { return b.id }
func (b *box) Bounds() geom.Box         { return geom.BoxFromBase(b.pos, 1, 1, 1) }
func (b *box) InZone() bool             { return b.zone != "" }
func (b *box) Position() geom.Vec3      { return b.pos }
func (b *box) SetPosition(p geom.Vec3)  { b.pos = p }
func (b *box) ZoneID() string           { return b.zone }
func (b *box) AssignZone(zoneID string) { b.zone = zoneID }

type world []*box

func (w world) CastRay(ray geom.Ray, accept func(Body) bool) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, b := range w {
		if accept != nil && !accept(b) {
			continue
		}
		bounds := b.Bounds()
		if t, ok := bounds.IntersectRay(ray); ok && t < best.Distance {
			best = Hit{ID: b.id, Point: ray.At(t), Distance: t, Bounds: bounds}
			found = true
		}
	}
	return best, found
}

var testCell = ZoneCell{ID: "Z_SPACE_0_0", ZoneID: "Z", CenterX: 10, CenterZ: 10, Width: 4, Depth: 4}

func cells() []ZoneCell { return []ZoneCell{testCell} }

func TestGenerateZones(t *testing.T) {
	zones, err := GenerateZones([]ZoneSpec{{ID: "A", X: 0, Z: 0, Width: 5, Depth: 4, CellSize: 2}})
	require.NoError(t, err)
	require.Len(t, zones, 1)
	// the partial column at the far X edge is dropped
	require.Len(t, zones[0].Cells, 4)
	c := zones[0].Cells[0]
	assert.Equal(t, "A_SPACE_0_0", c.ID)
	assert.Equal(t, -1.5, c.CenterX)
	assert.Equal(t, -1.0, c.CenterZ)
	for _, c := range zones[0].Cells {
		assert.LessOrEqual(t, c.CenterX+c.Width/2, 2.5)
	}

	_, err = GenerateZones([]ZoneSpec{{ID: "A", Width: 4, Depth: 4, CellSize: 2}, {ID: "A", Width: 4, Depth: 4, CellSize: 2}})
	assert.Error(t, err)
	_, err = GenerateZones([]ZoneSpec{{ID: "A", Width: 1, Depth: 4, CellSize: 2}})
	assert.Error(t, err)

	def, err := GenerateZones(DefaultZoneSpecs())
	require.NoError(t, err)
	assert.Len(t, AllCells(def), 3*4*4)
}

func TestIsInsideZone(t *testing.T) {
	assert.True(t, IsInsideZone(geom.V(10, 99, 10), testCell), "Y is ignored")
	assert.True(t, IsInsideZone(geom.V(12, 0, 8), testCell), "edges are inside")
	assert.False(t, IsInsideZone(geom.V(12.01, 0, 10), testCell))

	c, ok := FindCell(cells(), geom.V(9, 0, 11))
	assert.True(t, ok)
	assert.Equal(t, testCell.ID, c.ID)
	_, ok = FindCell(cells(), geom.V(0, 0, 0))
	assert.False(t, ok)
}

func TestSnapToZoneGrid(t *testing.T) {
	xz := SnapToZoneGrid(geom.V(10.4, 0, 11.6), testCell, 1)
	assert.Equal(t, XZ{X: 10, Z: 12}, xz)

	// far outside is clamped into the cell
	xz = SnapToZoneGrid(geom.V(100, 0, -100), testCell, 1)
	assert.True(t, IsInsideZone(geom.V(xz.X, 0, xz.Z), testCell))
}

func TestFindStackBaseY(t *testing.T) {
	f := &box{id: "F", pos: geom.V(10, 0, 10), zone: "Z"}
	loose := &box{id: "L", pos: geom.V(10, 5, 10)}
	w := world{f, loose}

	assert.Equal(t, 1.0, FindStackBaseY(w, geom.V(10, 0, 10), "E"), "rests on F, ignores unzoned L")
	assert.Equal(t, 0.0, FindStackBaseY(w, geom.V(10, 0, 10), "F"), "excludes itself")
	assert.Equal(t, 0.0, FindStackBaseY(w, geom.V(0, 0, 0), "E"))
	assert.Equal(t, 0.0, FindStackBaseY(nil, geom.V(10, 0, 10), "E"))
}

func drag(t *testing.T, d *Drag, e *box, to geom.Vec3) {
	t.Helper()
	require.NoError(t, d.Arm(e, e.pos, Screen{X: 100, Y: 100}))
	assert.Equal(t, StateArmed, d.State())
	assert.True(t, d.Move(Screen{X: 140, Y: 100}, to, true))
	assert.Equal(t, StateDragging, d.State())
}

func TestDragRevertsOutsideZones(t *testing.T) {
	e := &box{id: "E", pos: geom.V(2, 0, 3)}
	d := NewDrag(DragOptions{}, cells, world{e}, func(MoveRecord) { t.Fatal("no move expected") })

	drag(t, d, e, geom.V(-30, 0, -30))
	assert.Equal(t, geom.V(-30, 0, -30), e.pos)

	out := d.Release()
	assert.Equal(t, OutcomeReverted, out.Kind)
	assert.Equal(t, geom.V(2, 0, 3), e.pos)
	assert.Equal(t, "", e.zone)
	assert.Equal(t, StateIdle, d.State())
}

func TestDragBelowThresholdIsAClick(t *testing.T) {
	e := &box{id: "E", pos: geom.V(2, 0, 3)}
	d := NewDrag(DragOptions{}, cells, world{e}, nil)

	require.NoError(t, d.Arm(e, e.pos, Screen{X: 100, Y: 100}))
	assert.False(t, d.Move(Screen{X: 102, Y: 98}, geom.V(10, 0, 10), true))
	assert.Equal(t, StateArmed, d.State())
	assert.Equal(t, geom.V(2, 0, 3), e.pos)

	out := d.Release()
	assert.Equal(t, OutcomeCancelled, out.Kind)
	assert.Equal(t, "E", out.EntityID)
	assert.Equal(t, StateIdle, d.State())
}

func TestDragKeepsGrabOffset(t *testing.T) {
	e := &box{id: "E", pos: geom.V(2, 1.5, 3)}
	d := NewDrag(DragOptions{}, cells, world{e}, nil)

	// grabbed 0.25 to the right of the bin's center
	require.NoError(t, d.Arm(e, geom.V(2.25, 2, 3), Screen{}))
	require.True(t, d.Move(Screen{X: 10}, geom.V(5.25, 0, 4), true))
	assert.Equal(t, geom.V(5, 1.5, 4), e.pos, "Y stays pinned while dragging")

	assert.Equal(t, ErrBusy, d.Arm(e, e.pos, Screen{}))
}

func TestDragDropStacks(t *testing.T) {
	f := &box{id: "F", pos: geom.V(10, 0, 10), zone: "Z"}
	e := &box{id: "E", pos: geom.V(2, 0, 3)}
	var moves []MoveRecord
	d := NewDrag(DragOptions{}, cells, world{f, e}, func(m MoveRecord) { moves = append(moves, m) })

	drag(t, d, e, geom.V(11, 0, 9))
	c, ok := d.HoveredCell()
	require.True(t, ok)
	assert.Equal(t, testCell.ID, c.ID)

	out := d.Release()
	require.Equal(t, OutcomeMoved, out.Kind)
	assert.Equal(t, geom.V(10, 1, 10), e.pos, "snapped to the cell center on top of F")
	assert.GreaterOrEqual(t, e.Bounds().Min.Y, f.Bounds().Max.Y)
	assert.Equal(t, "Z", e.zone)

	require.Len(t, moves, 1)
	assert.Equal(t, MoveRecord{Label: "E", NewZone: "Z", Position: XZ{X: 10, Z: 10}, BaseY: 1}, moves[0])
}

func TestDragGridSnap(t *testing.T) {
	e := &box{id: "E", pos: geom.V(2, 0, 3)}
	d := NewDrag(DragOptions{Snap: SnapGrid, GridSize: 1}, cells, world{e}, nil)

	drag(t, d, e, geom.V(10.6, 0, 8.7))
	out := d.Release()
	require.Equal(t, OutcomeMoved, out.Kind)
	assert.Equal(t, geom.V(11, 0, 9), e.pos)
}

func TestDragConfirmation(t *testing.T) {
	e := &box{id: "E", pos: geom.V(2, 0, 3)}
	var moves []MoveRecord
	d := NewDrag(DragOptions{RequireConfirm: true}, cells, world{e}, func(m MoveRecord) { moves = append(moves, m) })

	drag(t, d, e, geom.V(10, 0, 10))
	out := d.Release()
	require.Equal(t, OutcomePending, out.Kind)
	assert.Equal(t, StateResolving, d.State())
	cell, ok := d.PendingCell()
	require.True(t, ok)
	assert.Equal(t, testCell.ID, cell.ID)
	assert.Empty(t, moves)

	out, err := d.Confirm(true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMoved, out.Kind)
	assert.Equal(t, "Z", e.zone)
	assert.Len(t, moves, 1)

	_, err = d.Confirm(true)
	assert.ErrorIs(t, err, ErrNotResolving)
}

func TestDragConfirmationRejected(t *testing.T) {
	e := &box{id: "E", pos: geom.V(2, 0, 3)}
	d := NewDrag(DragOptions{RequireConfirm: true}, cells, world{e}, func(MoveRecord) { t.Fatal("no move expected") })

	drag(t, d, e, geom.V(10, 0, 10))
	require.Equal(t, OutcomePending, d.Release().Kind)

	out, err := d.Confirm(false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReverted, out.Kind)
	assert.Equal(t, geom.V(2, 0, 3), e.pos)
	assert.Equal(t, "", e.zone)
	assert.Equal(t, StateIdle, d.State())
}

func TestDragCancel(t *testing.T) {
	e := &box{id: "E", pos: geom.V(2, 0, 3)}
	d := NewDrag(DragOptions{}, cells, world{e}, nil)
	assert.Equal(t, OutcomeNone, d.Cancel().Kind)
	assert.Equal(t, OutcomeNone, d.Release().Kind)

	drag(t, d, e, geom.V(10, 0, 10))
	assert.Equal(t, OutcomeReverted, d.Cancel().Kind)
	assert.Equal(t, geom.V(2, 0, 3), e.pos)
}
