// Package importer reads bin locations and their stock from an Excel
// workbook with a "Bins" sheet and an optional "BinProduct" sheet.
package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xelth-com/eckwms3d/internal/models"
)

const (
	SheetBins    = "Bins"
	SheetProduct = "BinProduct"
	// older workbooks name the stock sheet this way
	SheetStock = "BinStock"
)

// Default bin height of imported rows; the other dimensions use the model defaults.
const defaultImportHeight = 0.7

var (
	ErrNoBinsSheet = errors.New("workbook has no Bins sheet")
	ErrMissingCols = errors.New("missing columns")
)

var (
	binColumns     = []string{"warehouse_code", "bin_code", "row", "shelf", "level"}
	productColumns = []string{"warehouse_code", "bin_code", "product_sku"}
)

// RowError points at a spreadsheet row that could not be read. Row is the
// 1-based row number as shown by Excel.
type RowError struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result is the parsed workbook.
type Result struct {
	Bins     []models.BinRecord `json:"-"`
	Products int                `json:"products_assigned"`
	Errors   []RowError         `json:"errors,omitempty"`
}

// OK reports whether every row was read.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Read parses a workbook stream. Rows of other warehouses are ignored when
// warehouseCode is set.
func Read(r io.Reader, warehouseCode string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return ReadFile(f, warehouseCode)
}

// ReadFile parses an open workbook.
func ReadFile(f *excelize.File, warehouseCode string) (*Result, error) {
	sheets := map[string]bool{}
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}
	if !sheets[SheetBins] {
		return nil, ErrNoBinsSheet
	}

	res := &Result{}
	index := map[string]int{}

	rows, err := table(f, SheetBins, binColumns)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if !row.forWarehouse(warehouseCode) {
			continue
		}
		b, err := row.bin()
		if err != nil {
			res.Errors = append(res.Errors, RowError{Sheet: SheetBins, Row: row.line, Error: err.Error()})
			continue
		}
		if i, dup := index[b.BinCode]; dup {
			res.Bins[i] = b
			continue
		}
		index[b.BinCode] = len(res.Bins)
		res.Bins = append(res.Bins, b)
	}

	stockSheet := ""
	switch {
	case sheets[SheetProduct]:
		stockSheet = SheetProduct
	case sheets[SheetStock]:
		stockSheet = SheetStock
	}
	if stockSheet == "" {
		return res, nil
	}

	rows, err = table(f, stockSheet, productColumns)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if !row.forWarehouse(warehouseCode) {
			continue
		}
		code := norm(row.get("bin_code"))
		i, ok := index[code]
		if !ok {
			res.Errors = append(res.Errors, RowError{Sheet: stockSheet, Row: row.line, Error: fmt.Sprintf("unknown bin %s", code)})
			continue
		}
		if err := row.applyStock(&res.Bins[i]); err != nil {
			res.Errors = append(res.Errors, RowError{Sheet: stockSheet, Row: row.line, Error: err.Error()})
			continue
		}
		res.Products++
	}
	return res, nil
}

type record struct {
	line   int
	header map[string]int
	cells  []string
}

func table(f *excelize.File, sheet string, required []string) ([]record, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	header := map[string]int{}
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w in %s: %s", ErrMissingCols, sheet, strings.Join(missing, ", "))
	}

	out := make([]record, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		out = append(out, record{line: i + 2, header: header, cells: cells})
	}
	return out, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func norm(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }

func (r record) get(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r record) forWarehouse(code string) bool {
	wh := norm(r.get("warehouse_code"))
	return code == "" || wh == "" || wh == norm(code)
}

func (r record) intCol(col string) (int, error) {
	v := r.get(col)
	f, err := parseNumber(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return int(f), nil
}

// floatCol reads an optional number, def when the cell is empty.
func (r record) floatCol(col string, def float64) (float64, error) {
	v := r.get(col)
	if v == "" {
		return def, nil
	}
	f, err := parseNumber(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return f, nil
}

// parseNumber accepts finite numbers only; ParseFloat would also take
// "NaN" and "Inf".
func parseNumber(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", v)
	}
	return f, nil
}

func (r record) bin() (models.BinRecord, error) {
	var b models.BinRecord
	b.BinCode = norm(r.get("bin_code"))
	if b.BinCode == "" {
		return b, errors.New("bin_code is empty")
	}

	var err error
	if b.RowID, err = r.intCol("row"); err != nil {
		return b, err
	}
	if b.ShelfID, err = r.intCol("shelf"); err != nil {
		return b, err
	}
	if b.Level, err = r.intCol("level"); err != nil {
		return b, err
	}
	for _, f := range []struct {
		col string
		dst *float64
		def float64
	}{
		{"x", &b.X, 0},
		{"y", &b.Y, 0},
		{"z", &b.Z, 0},
		{"width", &b.Width, models.DefaultBinWidth},
		{"height", &b.Height, defaultImportHeight},
		{"depth", &b.Depth, models.DefaultBinDepth},
	} {
		if *f.dst, err = r.floatCol(f.col, f.def); err != nil {
			return b, err
		}
	}
	b.SetZone(norm(r.get("zone")))
	b.ABC = norm(r.get("abc_class"))
	b.Normalize()
	return b, nil
}

// applyStock adds one product row to the bin: quantities and hits accumulate,
// the first product row names the bin's product.
func (r record) applyStock(b *models.BinRecord) error {
	qty, err := r.floatCol("quantity", 0)
	if err != nil {
		return err
	}
	hits, err := r.floatCol("hit_count", 0)
	if err != nil {
		return err
	}
	sku := norm(r.get("product_sku"))
	if sku == "" {
		return errors.New("product_sku is empty")
	}
	name := norm(r.get("product_name"))
	if name == "" {
		name = sku
	}
	batch := norm(r.get("batch"))
	if batch == "" {
		batch = norm(r.get("odo_number"))
	}

	b.Qty += qty
	b.Hits += hits
	if abc := norm(r.get("abc_class")); abc != "" {
		b.ABC = abc
	}
	if b.Product == nil {
		b.AttachProduct(models.ProductRecord{
			SKU:      sku,
			Name:     name,
			Batch:    batch,
			Expiry:   r.get("expiry_date"),
			Quantity: qty,
		})
	}
	b.Occupied = b.Qty > 0 || b.Product != nil
	return nil
}
