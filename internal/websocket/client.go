package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/xelth-com/eckwms3d/internal/overlay"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Time allowed for a dataset load or product write.
	backendTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is a middleman between the websocket connection and the hub. Its
// session is only touched from the run goroutine.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	sess *session.Session
	log  *logrus.Entry

	// Buffered channel of outbound messages.
	send chan []byte
	// Frames read from the peer.
	frames chan []byte
	// Moves made by other viewers.
	remote chan placement.MoveRecord
}

func (c *Client) ID() string { return c.sess.ID }

// readPump pumps messages from the websocket connection to run.
func (c *Client) readPump() {
	defer func() {
		close(c.frames)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("⚠️ WS read error")
			}
			return
		}
		select {
		case c.frames <- message:
		case <-c.hub.done:
			return
		}
	}
}

// writePump pumps messages from the send channel to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// run owns the session: it handles frames and remote moves one at a time.
func (c *Client) run() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
			c.conn.Close()
		}
	}()

	c.reload("")
	for {
		select {
		case data, ok := <-c.frames:
			if !ok {
				return
			}
			c.handle(data)
		case rec := <-c.remote:
			if e, ok := c.sess.ApplyMove(rec); ok {
				r := rec
				c.reply(Outbound{Type: MsgBinMoved, Entity: viewOf(e), Move: &r})
			}
		case <-c.hub.done:
			return
		}
	}
}

// reply queues a message. A full buffer drops it.
func (c *Client) reply(msg Outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.WithError(err).Error("❌ Failed to marshal message")
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.WithField("type", msg.Type).Warn("⚠️ Send buffer full, message dropped")
	}
}

func (c *Client) fail(msgID string, err error) {
	c.reply(Outbound{Type: MsgError, MsgID: msgID, Error: err.Error()})
}

func (c *Client) reload(msgID string) {
	if c.hub.backend == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	ds, err := c.hub.backend.Dataset(ctx)
	if err != nil {
		c.fail(msgID, err)
		return
	}
	if err := c.sess.Load(ds); err != nil {
		c.fail(msgID, err)
		return
	}
	snap := c.sess.Snapshot()
	c.reply(Outbound{Type: MsgScene, MsgID: msgID, Scene: &snap})
}

var errNoRay = errors.New("ray is required")

func (c *Client) handle(data []byte) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		c.fail("", err)
		return
	}
	s := c.sess

	switch msg.Type {
	case MsgPointerDown:
		if msg.Ray == nil {
			c.fail(msg.MsgID, errNoRay)
			return
		}
		if _, err := s.PointerDown(*msg.Ray, msg.Screen); err != nil {
			c.fail(msg.MsgID, err)
		}

	case MsgPointerMove:
		if msg.Ray == nil {
			c.fail(msg.MsgID, errNoRay)
			return
		}
		if e, cell := s.PointerMove(*msg.Ray, msg.Screen); e != nil {
			c.reply(Outbound{Type: MsgEntityUpdated, Entity: viewOf(e), Cell: cell})
		}

	case MsgPointerUp:
		out := s.PointerUp()
		c.outcome(msg.MsgID, MsgEntityUpdated, out)

	case MsgConfirmMove:
		out, err := s.Confirm(msg.Accept)
		if err != nil {
			c.fail(msg.MsgID, err)
			return
		}
		c.outcome(msg.MsgID, MsgMoveResolved, out)

	case MsgHover:
		if msg.Ray == nil {
			c.fail(msg.MsgID, errNoRay)
			return
		}
		c.reply(Outbound{Type: MsgHover, MsgID: msg.MsgID, Entity: viewOf(s.Hover(*msg.Ray))})

	case MsgSelect:
		switch {
		case msg.ID != "":
			s.SelectByID(msg.ID)
		case msg.Ray != nil:
			s.Select(*msg.Ray)
		default:
			c.fail(msg.MsgID, errNoRay)
			return
		}
		c.selected(msg.MsgID)

	case MsgSetOverlay:
		mode, err := overlay.ParseMode(msg.Mode)
		if err != nil {
			c.fail(msg.MsgID, err)
			return
		}
		s.SetOverlay(mode)
		c.reply(Outbound{Type: MsgOverlay, MsgID: msg.MsgID, Mode: string(mode), Entities: s.Registry().Views()})

	case MsgSetAnimating:
		s.SetAnimating(msg.On)
		on := s.Animating()
		c.reply(Outbound{Type: MsgAnimating, MsgID: msg.MsgID, On: &on})

	case MsgEditProduct:
		c.editProduct(msg)

	case MsgReload:
		c.reload(msg.MsgID)

	case MsgRegenZones:
		specs := msg.Zones
		if len(specs) == 0 {
			specs = placement.DefaultZoneSpecs()
		}
		if err := s.RegenerateZones(specs); err != nil {
			c.fail(msg.MsgID, err)
			return
		}
		snap := s.Snapshot()
		c.reply(Outbound{Type: MsgScene, MsgID: msg.MsgID, Scene: &snap})

	default:
		c.fail(msg.MsgID, errors.New("unknown message type "+msg.Type))
	}
}

// outcome reports the end of a drag. A press released without movement is
// treated as a click and selects the bin.
func (c *Client) outcome(msgID, fallback string, out placement.Outcome) {
	e, _ := c.sess.Entity(out.EntityID)
	o := out
	switch out.Kind {
	case placement.OutcomeNone:
		return
	case placement.OutcomeCancelled:
		c.sess.SelectByID(out.EntityID)
		c.selected(msgID)
	case placement.OutcomePending:
		c.reply(Outbound{Type: MsgMovePending, MsgID: msgID, Entity: viewOf(e), Cell: out.Cell, Outcome: &o})
	case placement.OutcomeMoved:
		c.reply(Outbound{Type: MsgBinMoved, MsgID: msgID, Entity: viewOf(e), Cell: out.Cell, Outcome: &o})
	default:
		c.reply(Outbound{Type: fallback, MsgID: msgID, Entity: viewOf(e), Outcome: &o})
	}
}

func (c *Client) selected(msgID string) {
	msg := Outbound{Type: MsgSelected, MsgID: msgID, Entity: viewOf(c.sess.Selected())}
	if p, ok, err := c.sess.SelectedProduct(); err == nil && ok {
		msg.Product = &p
	}
	c.reply(msg)
}

func (c *Client) editProduct(msg Inbound) {
	if msg.Product == nil {
		c.fail(msg.MsgID, errors.New("product is required"))
		return
	}
	p := *msg.Product
	p.SKU = strings.TrimSpace(p.SKU)
	if err := c.hub.validate.Struct(p); err != nil {
		c.fail(msg.MsgID, err)
		return
	}
	var qty interface{}
	if len(msg.Quantity) > 0 {
		if err := json.Unmarshal(msg.Quantity, &qty); err != nil {
			c.fail(msg.MsgID, err)
			return
		}
	}
	e, err := c.sess.EditProduct(p, qty)
	if err != nil {
		c.fail(msg.MsgID, err)
		return
	}
	c.reply(Outbound{Type: MsgEntityUpdated, MsgID: msg.MsgID, Entity: viewOf(e), Product: e.Bin.Product})

	if c.hub.backend == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := c.hub.backend.UpdateProduct(ctx, e.EntityID(), *e.Bin.Product); err != nil {
		c.log.WithError(err).WithField("bin", e.EntityID()).Error("❌ Failed to store product")
		c.fail(msg.MsgID, err)
	}
}

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	sess, err := session.New(hub.options(), hub.persister())
	if err != nil {
		hub.log.WithError(err).Error("❌ Failed to create session")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.WithError(err).Warn("⚠️ WS upgrade failed")
		return
	}
	client := &Client{
		hub:    hub,
		conn:   conn,
		sess:   sess,
		log:    hub.log.WithField("session", sess.ID),
		send:   make(chan []byte, 256),
		frames: make(chan []byte, 16),
		remote: make(chan placement.MoveRecord, 32),
	}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
	go client.run()
}

// Handler returns an http.Handler serving the hub.
func Handler(hub *Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { ServeWs(hub, w, r) })
}
