package session

import (
	"github.com/xelth-com/eckwms3d/internal/geom"
	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/overlay"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/scene"
	"github.com/xelth-com/eckwms3d/internal/scoring"
)

// Snapshot is everything a viewer needs to draw the scene.
type Snapshot struct {
	SessionID string             `json:"session_id"`
	Mode      overlay.Mode       `json:"mode"`
	Entities  []scene.View       `json:"entities"`
	Racks     []layout.RackFrame `json:"racks"`
	Zones     []placement.Zone   `json:"zones"`
	Stats     scoring.HeatStats  `json:"stats"`
	Unplaced  []int              `json:"unplaced,omitempty"`
	Animating bool               `json:"animating"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		Mode:      s.mode,
		Entities:  s.registry.Views(),
		Racks:     s.registry.Racks(),
		Zones:     s.zones,
		Stats:     s.stats,
		Animating: s.animating,
	}
	if s.layout != nil {
		snap.Unplaced = s.layout.Unplaced
	}
	return snap
}

// ApplyMove replays a move made elsewhere. The bin lands on top of whatever
// zoned stack is already under the recorded position. A drag of the same bin
// in progress is abandoned.
func (s *Session) ApplyMove(rec placement.MoveRecord) (*scene.Entity, bool) {
	e, ok := s.registry.Get(rec.Label)
	if !ok {
		return nil, false
	}
	if d := s.drag.Entity(); d != nil && d.EntityID() == e.EntityID() {
		s.drag.Cancel()
	}
	pos := geom.V(rec.Position.X, 0, rec.Position.Z)
	pos.Y = placement.FindStackBaseY(s.registry, pos, e.EntityID())
	e.SetPosition(pos)
	e.AssignZone(rec.NewZone)
	overlay.Apply(s.mode, []*scene.Entity{e}, s.stats)
	return e, true
}
