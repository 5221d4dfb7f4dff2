package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/session"
)

type fakeBackend struct {
	mu       sync.Mutex
	bins     []models.BinRecord
	moves    []placement.MoveRecord
	products map[string]models.ProductRecord
}

func (f *fakeBackend) Dataset(context.Context) (*models.Dataset, error) {
	return &models.Dataset{Bins: f.bins}, nil
}

func (f *fakeBackend) PersistAsync(_ string, rec placement.MoveRecord) {
	f.mu.Lock()
	f.moves = append(f.moves, rec)
	f.mu.Unlock()
}

func (f *fakeBackend) UpdateProduct(_ context.Context, code string, p models.ProductRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.products == nil {
		f.products = map[string]models.ProductRecord{}
	}
	f.products[code] = p
	return nil
}

func testBins() []models.BinRecord {
	return []models.BinRecord{
		{RowID: 1, ShelfID: 1, Level: 1, BinCode: "R1-S1-L1", Hits: 100, Qty: 5, ABC: "A", Occupied: true},
		{RowID: 1, ShelfID: 2, Level: 1, BinCode: "R1-S2-L1", Hits: 10, ABC: "B"},
		{RowID: 2, ShelfID: 1, Level: 1, BinCode: "R2-S1-L1", Hits: 0, ABC: "C"},
	}
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(nil)
	srv.Config.Handler = Handler(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Outbound
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func newHub(t *testing.T, backend Backend) *Hub {
	hub := NewHub(backend, session.Options{})
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func TestSceneOnConnect(t *testing.T) {
	hub := newHub(t, &fakeBackend{bins: testBins()})
	conn := dial(t, hub)

	msg := read(t, conn)
	require.Equal(t, MsgScene, msg.Type)
	require.NotNil(t, msg.Scene)
	assert.Len(t, msg.Scene.Entities, 3)
	assert.Equal(t, "NONE", string(msg.Scene.Mode))
	assert.True(t, msg.Scene.Animating)
	assert.NotEmpty(t, msg.Scene.Zones)
}

func TestOverlayAndAnimating(t *testing.T) {
	hub := newHub(t, &fakeBackend{bins: testBins()})
	conn := dial(t, hub)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(Inbound{Type: MsgSetOverlay, MsgID: "1", Mode: "abc"}))
	msg := read(t, conn)
	assert.Equal(t, MsgOverlay, msg.Type)
	assert.Equal(t, "1", msg.MsgID)
	assert.Equal(t, "ABC", msg.Mode)
	require.Len(t, msg.Entities, 3)
	for _, e := range msg.Entities {
		assert.NotEqual(t, "#000000", e.Emissive, e.ID)
	}

	require.NoError(t, conn.WriteJSON(Inbound{Type: MsgSetOverlay, Mode: "rainbow"}))
	assert.Equal(t, MsgError, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(Inbound{Type: MsgSetAnimating, On: false}))
	msg = read(t, conn)
	assert.Equal(t, MsgAnimating, msg.Type)
	require.NotNil(t, msg.On)
	assert.False(t, *msg.On)
}

func TestSelectAndEditProduct(t *testing.T) {
	backend := &fakeBackend{bins: testBins()}
	hub := newHub(t, backend)
	conn := dial(t, hub)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(Inbound{Type: MsgSelect, ID: "R1-S2-L1"}))
	msg := read(t, conn)
	assert.Equal(t, MsgSelected, msg.Type)
	require.NotNil(t, msg.Entity)
	assert.Equal(t, "R1-S2-L1", msg.Entity.ID)
	assert.Nil(t, msg.Product)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":     MsgEditProduct,
		"product":  map[string]interface{}{"sku": "SKU-9", "name": "Washers"},
		"quantity": "12.5",
	}))
	msg = read(t, conn)
	assert.Equal(t, MsgEntityUpdated, msg.Type)
	require.NotNil(t, msg.Product)
	assert.Equal(t, 12.5, msg.Product.Quantity)
	assert.True(t, msg.Entity.Occupied)

	assert.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.products["R1-S2-L1"].SKU == "SKU-9"
	}, time.Second, 10*time.Millisecond)
}

func TestEditProductRequiresSKU(t *testing.T) {
	backend := &fakeBackend{bins: testBins()}
	hub := newHub(t, backend)
	conn := dial(t, hub)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(Inbound{Type: MsgSelect, ID: "R1-S2-L1"}))
	require.Equal(t, MsgSelected, read(t, conn).Type)

	for _, sku := range []string{"", "   "} {
		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"type":     MsgEditProduct,
			"msgId":    "m1",
			"product":  map[string]interface{}{"sku": sku, "name": "Nameless"},
			"quantity": 3,
		}))
		msg := read(t, conn)
		assert.Equal(t, MsgError, msg.Type, "sku %q", sku)
		assert.Contains(t, msg.Error, "SKU")
	}

	require.NoError(t, conn.WriteJSON(Inbound{Type: MsgSelect, ID: "R1-S2-L1"}))
	msg := read(t, conn)
	require.Equal(t, MsgSelected, msg.Type)
	assert.Nil(t, msg.Product, "the bin keeps having no product")

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Empty(t, backend.products)
}

func TestUnknownMessage(t *testing.T) {
	hub := newHub(t, &fakeBackend{bins: testBins()})
	conn := dial(t, hub)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(Inbound{Type: "NOPE"}))
	msg := read(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Error, "NOPE")

	require.NoError(t, conn.WriteJSON(Inbound{Type: MsgPointerDown}))
	assert.Equal(t, MsgError, read(t, conn).Type)
}

func TestBroadcastMoveSkipsSender(t *testing.T) {
	hub := NewHub(nil, session.Options{})
	a := &Client{remote: make(chan placement.MoveRecord, 1)}
	b := &Client{remote: make(chan placement.MoveRecord, 1)}
	hub.clients["a"] = a
	hub.clients["b"] = b

	rec := placement.MoveRecord{Label: "R1-S1-L1", NewZone: "ZONE_1"}
	hub.BroadcastMove("a", rec)

	assert.Len(t, a.remote, 0)
	require.Len(t, b.remote, 1)
	assert.Equal(t, rec, <-b.remote)
}
