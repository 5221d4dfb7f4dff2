package websocket

import (
	"encoding/json"

	"github.com/xelth-com/eckwms3d/internal/geom"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/scene"
	"github.com/xelth-com/eckwms3d/internal/session"
)

// Client message types
const (
	MsgPointerDown  = "POINTER_DOWN"
	MsgPointerMove  = "POINTER_MOVE"
	MsgPointerUp    = "POINTER_UP"
	MsgConfirmMove  = "CONFIRM_MOVE"
	MsgHover        = "HOVER"
	MsgSelect       = "SELECT"
	MsgSetOverlay   = "SET_OVERLAY"
	MsgSetAnimating = "SET_ANIMATING"
	MsgEditProduct  = "EDIT_PRODUCT"
	MsgReload       = "RELOAD"
	MsgRegenZones   = "REGENERATE_ZONES"
)

// Server message types
const (
	MsgScene         = "SCENE"
	MsgEntityUpdated = "ENTITY_UPDATED"
	MsgMovePending   = "MOVE_PENDING"
	MsgMoveResolved  = "MOVE_RESOLVED"
	MsgBinMoved      = "BIN_MOVED"
	MsgSelected      = "SELECTED"
	MsgOverlay       = "OVERLAY"
	MsgAnimating     = "ANIMATING"
	MsgError         = "ERROR"
)

// Inbound is any message a viewer sends. Fields are used by type.
type Inbound struct {
	Type   string           `json:"type"`
	MsgID  string           `json:"msgId,omitempty"`
	Ray    *geom.Ray        `json:"ray,omitempty"`
	Screen placement.Screen `json:"screen"`
	Accept bool             `json:"accept,omitempty"`
	Mode   string           `json:"mode,omitempty"`
	On     bool             `json:"on,omitempty"`
	ID     string           `json:"id,omitempty"`

	Product  *models.ProductRecord `json:"product,omitempty"`
	Quantity json.RawMessage       `json:"quantity,omitempty"`

	Zones []placement.ZoneSpec `json:"zones,omitempty"`
}

// Outbound is any message the server sends.
type Outbound struct {
	Type  string `json:"type"`
	MsgID string `json:"msgId,omitempty"`

	Scene    *session.Snapshot     `json:"scene,omitempty"`
	Entity   *scene.View           `json:"entity,omitempty"`
	Entities []scene.View          `json:"entities,omitempty"`
	Cell     *placement.ZoneCell   `json:"cell,omitempty"`
	Outcome  *placement.Outcome    `json:"outcome,omitempty"`
	Move     *placement.MoveRecord `json:"move,omitempty"`
	Product  *models.ProductRecord `json:"product,omitempty"`
	Mode     string                `json:"mode,omitempty"`
	On       *bool                 `json:"on,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func viewOf(e *scene.Entity) *scene.View {
	if e == nil {
		return nil
	}
	v := e.View()
	return &v
}
