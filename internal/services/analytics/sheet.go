// Package analytics summarizes picking and replenishment transaction
// exports for the dashboard charts. Workbooks are read, aggregated and
// discarded; nothing is stored.
package analytics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingCols = errors.New("missing columns")
	ErrEmptySheet  = errors.New("first sheet is empty")
)

// table is the first worksheet of an uploaded export, keyed by normalized
// header name. Cells hold raw values, so dates arrive as serial numbers.
type table struct {
	header map[string]int
	rows   [][]string
}

func readTable(r io.Reader, normalize func(string) string, required []string) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	t := &table{header: map[string]int{}}
	for i, name := range rows[0] {
		t.header[normalize(name)] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := t.header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		found := make([]string, 0, len(t.header))
		for name := range t.header {
			found = append(found, name)
		}
		sort.Strings(found)
		return nil, fmt.Errorf("%w: %s (found %s)", ErrMissingCols,
			strings.Join(missing, ", "), strings.Join(found, ", "))
	}
	t.rows = rows[1:]
	return t, nil
}

func (t *table) get(row []string, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func lowerName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func snakeName(s string) string { return strings.ReplaceAll(lowerName(s), " ", "_") }

func number(v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"02-01-2006",
	"02/01/2006",
}

// parseDate reads an Excel serial date or one of the common text layouts.
func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if serial, ok := number(v); ok {
		if serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		return t, err == nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
