package importer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var binsHeader = []interface{}{"warehouse_code", "bin_code", "row", "shelf", "level", "x", "z", "zone"}

func TestReadBinsAndProducts(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		SheetBins: {
			binsHeader,
			{"wh01", "r1-s1-l1", 1, 1, 1, 2.5, 3, ""},
			{"WH01", "R1-S2-L1", 1, 2, 1, "", "", "zone_1"},
			{"WH02", "R9-S9-L9", 9, 9, 9, "", "", ""},
		},
		SheetProduct: {
			{"warehouse_code", "bin_code", "product_sku", "product_name", "quantity", "hit_count", "abc_class"},
			{"WH01", "R1-S1-L1", "sku-1", "Bolts", 10, 120, "a"},
			{"WH01", "R1-S1-L1", "sku-2", "", 5, 30, ""},
		},
	})

	res, err := Read(buf, "WH01")
	require.NoError(t, err)
	require.True(t, res.OK(), "errors: %+v", res.Errors)
	require.Len(t, res.Bins, 2)
	assert.Equal(t, 2, res.Products)

	b := res.Bins[0]
	assert.Equal(t, "R1-S1-L1", b.BinCode)
	assert.Equal(t, 1, b.RowID)
	assert.Equal(t, 2.5, b.X)
	assert.Equal(t, 3.0, b.Z)
	assert.Equal(t, 0.7, b.Height)
	assert.Equal(t, 1.2, b.Width)
	assert.Equal(t, 15.0, b.Qty)
	assert.Equal(t, 150.0, b.Hits)
	assert.Equal(t, "A", b.ABC)
	assert.True(t, b.Occupied)
	require.NotNil(t, b.Product)
	assert.Equal(t, "SKU-1", b.Product.SKU)
	assert.Equal(t, "BOLTS", b.Product.Name)
	assert.Equal(t, 10.0, b.Product.Quantity)
	assert.False(t, b.InZone())

	empty := res.Bins[1]
	assert.Equal(t, "ZONE_1", empty.ZoneID())
	assert.Equal(t, "C", empty.ABC)
	assert.False(t, empty.Occupied)
	assert.Nil(t, empty.Product)
}

func TestReadReportsRowErrors(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		SheetBins: {
			binsHeader,
			{"WH01", "R1-S1-L1", "one", 1, 1},
			{"WH01", "R1-S2-L1", 1, 2, 1},
		},
		SheetStock: {
			{"warehouse_code", "bin_code", "product_sku"},
			{"WH01", "R7-S7-L7", "SKU-1"},
		},
	})

	res, err := Read(buf, "")
	require.NoError(t, err)
	assert.False(t, res.OK())
	require.Len(t, res.Errors, 2)
	assert.Equal(t, RowError{Sheet: SheetBins, Row: 2, Error: `row: "one" is not a number`}, res.Errors[0])
	assert.Equal(t, SheetStock, res.Errors[1].Sheet)
	assert.Equal(t, 2, res.Errors[1].Row)
	assert.Len(t, res.Bins, 1)
}

func TestReadRejectsNonFiniteNumbers(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		SheetBins: {
			binsHeader,
			{"WH01", "X1", 1, 1, 1, "Inf", "", ""},
			{"WH01", "X2", 1, 2, 1},
		},
		SheetProduct: {
			{"warehouse_code", "bin_code", "product_sku", "quantity", "hit_count"},
			{"WH01", "X2", "SKU-1", 3, "NaN"},
		},
	})

	res, err := Read(buf, "WH01")
	require.NoError(t, err)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, RowError{Sheet: SheetBins, Row: 2, Error: `x: "Inf" is not a number`}, res.Errors[0])
	assert.Equal(t, RowError{Sheet: SheetProduct, Row: 2, Error: `hit_count: "NaN" is not a number`}, res.Errors[1])
	require.Len(t, res.Bins, 1)
	assert.Equal(t, 0.0, res.Bins[0].Hits)
}

func TestReadMissingColumns(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		SheetBins: {
			{"bin_code", "row"},
			{"R1-S1-L1", 1},
		},
	})
	_, err := Read(buf, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCols))
}

func TestReadWithoutBinsSheet(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		"Other": {{"a"}},
	})
	_, err := Read(buf, "")
	assert.ErrorIs(t, err, ErrNoBinsSheet)
}
