package analytics

import "io"

// Replenishment statuses.
const (
	StatusCritical = "CRITICAL"
	StatusWarning  = "WARNING"
	StatusOK       = "OK"
)

// Rules are the stock thresholds of a replenishment move. A quantity at or
// below MinQty is critical, at or below ReorderQty a warning.
type Rules struct {
	MinQty     float64
	ReorderQty float64
}

// DefaultRules are the thresholds used when none are configured.
var DefaultRules = Rules{MinQty: 50, ReorderQty: 100}

// Status classifies a confirmed quantity.
func (r Rules) Status(qty float64) string {
	switch {
	case qty <= r.MinQty:
		return StatusCritical
	case qty <= r.ReorderQty:
		return StatusWarning
	default:
		return StatusOK
	}
}

// ReplenishmentMove is one row of a replenishment export.
type ReplenishmentMove struct {
	SKU        string  `json:"sku"`
	SourceBin  string  `json:"source_bin"`
	DestBin    string  `json:"dest_bin"`
	CurrentQty float64 `json:"current_qty"`
	Status     string  `json:"status"`
}

// ReplenishmentKPI counts moves per status.
type ReplenishmentKPI struct {
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	OK         int `json:"ok"`
	TotalMoves int `json:"total_moves"`
}

// CriticalChart compares the first critical moves with the reorder level.
type CriticalChart struct {
	Labels  []string  `json:"labels"`
	Current []float64 `json:"current"`
	Reorder []float64 `json:"reorder"`
}

// ReplenishmentReport is the dashboard summary of a replenishment export.
type ReplenishmentReport struct {
	KPI      ReplenishmentKPI    `json:"kpi"`
	Critical CriticalChart       `json:"bar"`
	Pie      map[string]int      `json:"pie"`
	Moves    []ReplenishmentMove `json:"moves"`
}

// TopCritical is the number of critical moves charted.
const TopCritical = 10

// Replenishment classifies every move of a replenishment export. The first
// sheet needs "Product", "Confirmed Qty", "Src Bin" and "DSBin" columns;
// header spaces may also be underscores. A quantity that is not a number
// counts as zero.
func Replenishment(r io.Reader, rules Rules) (*ReplenishmentReport, error) {
	t, err := readTable(r, snakeName, []string{"product", "confirmed_qty", "src_bin", "dsbin"})
	if err != nil {
		return nil, err
	}
	rep := &ReplenishmentReport{Moves: []ReplenishmentMove{}}
	for _, row := range t.rows {
		if blank(row) {
			continue
		}
		qty, _ := number(t.get(row, "confirmed_qty"))
		m := ReplenishmentMove{
			SKU:        t.get(row, "product"),
			SourceBin:  t.get(row, "src_bin"),
			DestBin:    t.get(row, "dsbin"),
			CurrentQty: qty,
			Status:     rules.Status(qty),
		}
		rep.Moves = append(rep.Moves, m)
		rep.KPI.TotalMoves++
		switch m.Status {
		case StatusCritical:
			rep.KPI.Critical++
			if len(rep.Critical.Labels) < TopCritical {
				rep.Critical.Labels = append(rep.Critical.Labels, m.SKU)
				rep.Critical.Current = append(rep.Critical.Current, m.CurrentQty)
				rep.Critical.Reorder = append(rep.Critical.Reorder, rules.ReorderQty)
			}
		case StatusWarning:
			rep.KPI.Warning++
		default:
			rep.KPI.OK++
		}
	}
	rep.Pie = map[string]int{
		"Critical": rep.KPI.Critical,
		"Warning":  rep.KPI.Warning,
		"OK":       rep.KPI.OK,
	}
	return rep, nil
}
