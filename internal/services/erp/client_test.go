package erp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uidResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><int>%UID%</int></value></param></params></methodResponse>`

	quantsResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><array><data>
<value><struct>
  <member><name>location_id</name><value><array><data><value><int>8</int></value><value><string>WH/Stock/r1-s1-l1</string></value></data></array></value></member>
  <member><name>product_id</name><value><array><data><value><int>21</int></value><value><string>[SKU-1] Bolts</string></value></data></array></value></member>
  <member><name>lot_id</name><value><boolean>0</boolean></value></member>
  <member><name>quantity</name><value><double>12.5</double></value></member>
</struct></value>
</data></array></value></param></params></methodResponse>`
)

// compact drops the indentation between tags.
func compact(xml string) string {
	lines := strings.Split(xml, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "")
}

// fakeERP answers authenticate and execute_kw like an Odoo server.
type fakeERP struct {
	mu     sync.Mutex
	uid    string
	bodies map[string]string
}

func newFakeERP(t *testing.T, uid string) (*fakeERP, *httptest.Server) {
	f := &fakeERP{uid: uid, bodies: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies[r.URL.Path] = string(body)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "text/xml")
		switch r.URL.Path {
		case "/xmlrpc/2/common":
			io.WriteString(w, compact(strings.Replace(uidResponse, "%UID%", f.uid, 1)))
		case "/xmlrpc/2/object":
			io.WriteString(w, compact(quantsResponse))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func TestClientQuants(t *testing.T) {
	erp, srv := newFakeERP(t, "7")
	c := NewClient(srv.URL+"/", "stockdb", "sync", "secret")

	quants, err := c.Quants(pageSize, 0)
	require.NoError(t, err, "the first page logs in on demand")
	require.Len(t, quants, 1)
	q := quants[0]
	assert.Equal(t, Ref{ID: 8, Name: "WH/Stock/r1-s1-l1"}, q.Location)
	assert.Equal(t, "[SKU-1] Bolts", q.Product.Name)
	assert.False(t, q.Lot.Set())
	assert.Equal(t, 12.5, q.Quantity)
	assert.Equal(t, "R1-S1-L1", q.BinCode())

	erp.mu.Lock()
	defer erp.mu.Unlock()
	assert.Contains(t, erp.bodies["/xmlrpc/2/common"], "<string>stockdb</string>")
	req := erp.bodies["/xmlrpc/2/object"]
	assert.Contains(t, req, "<string>stock.quant</string>")
	assert.Contains(t, req, "<string>location_id.usage</string>")
	assert.Contains(t, req, "<int>7</int>", "the user id from login is sent")
}

func TestClientLoginRejected(t *testing.T) {
	_, srv := newFakeERP(t, "0")
	c := NewClient(srv.URL, "stockdb", "sync", "wrong")

	assert.ErrorIs(t, c.Login(), ErrLoginRejected)
	_, err := c.Quants(10, 0)
	assert.ErrorIs(t, err, ErrLoginRejected)
}
