package erp

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kolo/xmlrpc"
)

var ErrLoginRejected = errors.New("erp login rejected")

const quantModel = "stock.quant"

var (
	quantFields = []string{"location_id", "product_id", "lot_id", "quantity"}
	// only stock held in warehouse locations, not in transit or at partners
	internalQuants = []interface{}{
		[]interface{}{"location_id.usage", "=", "internal"},
	}
)

// Ref is a many2one value: a record id and its display name. The ERP sends
// false for an unset reference, which decodes to the zero Ref.
type Ref struct {
	ID   int64
	Name string
}

// Set reports whether the reference points at a record.
func (r Ref) Set() bool { return r.Name != "" }

func decodeRef(v interface{}) Ref {
	pair, ok := v.([]interface{})
	if !ok || len(pair) < 2 {
		return Ref{}
	}
	id, _ := decodeNumber(pair[0])
	name, _ := pair[1].(string)
	return Ref{ID: int64(id), Name: name}
}

func decodeNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Quant is the on-hand quantity of one product (and lot) in one location.
type Quant struct {
	Location Ref
	Product  Ref
	Lot      Ref
	Quantity float64
}

// DecodeQuant reads a stock.quant row as returned by search_read.
func DecodeQuant(row map[string]interface{}) Quant {
	q := Quant{
		Location: decodeRef(row["location_id"]),
		Product:  decodeRef(row["product_id"]),
		Lot:      decodeRef(row["lot_id"]),
	}
	q.Quantity, _ = decodeNumber(row["quantity"])
	return q
}

// BinCode is the last segment of the location path, upper-cased:
// "WH/Stock/r1-s1-l1" is bin R1-S1-L1.
func (q Quant) BinCode() string {
	loc := q.Location.Name
	if i := strings.LastIndex(loc, "/"); i >= 0 {
		loc = loc[i+1:]
	}
	return strings.ToUpper(strings.TrimSpace(loc))
}

// Client reads stock quants from an Odoo-compatible ERP over XML-RPC. It logs
// in on first use and is safe for concurrent syncs.
type Client struct {
	commonURL string
	objectURL string
	database  string
	username  string
	password  string

	mu  sync.Mutex
	uid int
}

// NewClient prepares a client for the ERP at baseURL. Nothing is dialled
// until Login or Quants.
func NewClient(baseURL, database, username, password string) *Client {
	base := strings.TrimRight(baseURL, "/")
	return &Client{
		commonURL: base + "/xmlrpc/2/common",
		objectURL: base + "/xmlrpc/2/object",
		database:  database,
		username:  username,
		password:  password,
	}
}

func call(url, method string, args []interface{}, reply interface{}) error {
	rpc, err := xmlrpc.NewClient(url, nil)
	if err != nil {
		return fmt.Errorf("xml-rpc client: %w", err)
	}
	defer rpc.Close()
	return rpc.Call(method, args, reply)
}

// Login authenticates and keeps the user id for later calls.
func (c *Client) Login() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.login()
}

func (c *Client) login() error {
	var uid int
	args := []interface{}{c.database, c.username, c.password, map[string]interface{}{}}
	if err := call(c.commonURL, "authenticate", args, &uid); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if uid == 0 {
		return fmt.Errorf("%w for %s", ErrLoginRejected, c.username)
	}
	c.uid = uid
	return nil
}

// Quants returns one page of internal stock quants.
func (c *Client) Quants(limit, offset int) ([]Quant, error) {
	c.mu.Lock()
	if c.uid == 0 {
		if err := c.login(); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	uid := c.uid
	c.mu.Unlock()

	args := []interface{}{
		c.database, uid, c.password,
		quantModel, "search_read",
		[]interface{}{internalQuants},
		map[string]interface{}{"fields": quantFields, "limit": limit, "offset": offset},
	}
	var rows []map[string]interface{}
	if err := call(c.objectURL, "execute_kw", args, &rows); err != nil {
		return nil, fmt.Errorf("search_read %s: %w", quantModel, err)
	}
	quants := make([]Quant, len(rows))
	for i, row := range rows {
		quants[i] = DecodeQuant(row)
	}
	return quants, nil
}
