package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	blank := ""
	b := BinRecord{RowID: 2, ShelfID: 3, Level: 1, ABC: " b ", Zone: &blank, Width: -1}
	b.Normalize()

	assert.Equal(t, "R2-S3-L1", b.BinCode)
	assert.Equal(t, DefaultBinWidth, b.Width)
	assert.Equal(t, DefaultBinHeight, b.Height)
	assert.Equal(t, DefaultBinDepth, b.Depth)
	assert.Equal(t, "B", b.ABC)
	assert.Nil(t, b.Zone)

	empty := BinRecord{BinCode: "X"}
	empty.Normalize()
	assert.Equal(t, "C", empty.ABC)
	assert.Equal(t, "X", empty.BinCode)
}

func TestZoneAndProduct(t *testing.T) {
	var b BinRecord
	assert.False(t, b.InZone())
	assert.Equal(t, "", b.ZoneID())

	b.SetZone("ZONE_2")
	assert.True(t, b.InZone())
	assert.Equal(t, "ZONE_2", b.ZoneID())
	b.SetZone("")
	assert.Nil(t, b.Zone)

	p := ProductRecord{SKU: "S1", Quantity: 2}
	b.AttachProduct(p)
	p.Quantity = 99
	assert.True(t, b.Occupied)
	assert.Equal(t, 2.0, b.Product.Quantity, "the product is copied")
}

func TestCoerceQuantity(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
	}{
		{12.5, 12.5},
		{float32(2), 2},
		{7, 7},
		{int64(-3), -3},
		{json.Number("4.25"), 4.25},
		{" 8 ", 8},
		{"", 0},
		{"ten", 0},
		{nil, 0},
		{true, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CoerceQuantity(c.in), "%#v", c.in)
	}
}

func TestToBinRecord(t *testing.T) {
	zone := "ZONE_1"
	expiry := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sb := StorageBin{
		BinCode: "R1-S1-L1", Row: 1, Shelf: 1, Level: 1,
		X: 4, Z: -2, Zone: &zone, ABCClass: "a",
		Stocks: []BinStock{
			{Quantity: 3, HitCount: 10, Batch: "B-1", ExpiryDate: &expiry, Product: Product{SKU: "SKU-1", Name: "Bolts"}},
			{Quantity: 2, HitCount: 5, Product: Product{SKU: "SKU-2"}},
		},
	}

	rec := sb.ToBinRecord()
	assert.Equal(t, 1, rec.RowID)
	assert.Equal(t, 5.0, rec.Qty)
	assert.Equal(t, 15.0, rec.Hits)
	assert.Equal(t, "A", rec.ABC)
	assert.True(t, rec.Occupied)
	assert.Equal(t, "ZONE_1", rec.ZoneID())
	assert.Equal(t, DefaultBinWidth, rec.Width)
	require.NotNil(t, rec.Product)
	assert.Equal(t, ProductRecord{SKU: "SKU-1", Name: "Bolts", Batch: "B-1", Expiry: "2026-03-01", Quantity: 3}, *rec.Product)

	*rec.Zone = "OTHER"
	assert.Equal(t, "ZONE_1", zone, "the stored zone is not aliased")

	back := FromBinRecord(9, rec)
	assert.Equal(t, uint(9), back.WarehouseID)
	assert.Equal(t, 1, back.Row)
	assert.Empty(t, back.Stocks)

	empty := StorageBin{BinCode: "E"}.ToBinRecord()
	assert.False(t, empty.Occupied)
	assert.Nil(t, empty.Product)
}

func TestParseExpiry(t *testing.T) {
	require.NotNil(t, ParseExpiry("2025-12-31"))
	assert.Nil(t, ParseExpiry("31.12.2025"))
	assert.Nil(t, ParseExpiry(""))
}
