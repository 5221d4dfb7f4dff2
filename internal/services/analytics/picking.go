package analytics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Picking units of measure, in chart order.
const (
	UnitPallet = "PAL"
	UnitCarton = "CTN"
	UnitEach   = "EA"
)

var pickingUnits = []string{UnitPallet, UnitCarton, UnitEach}

// DateLabel is the day format of picking chart labels.
const DateLabel = "02-01-2006"

// PickingFilter narrows a picking export. Zero values do not filter; From
// and To are whole days and both inclusive.
type PickingFilter struct {
	From time.Time
	To   time.Time
	Unit string
}

// ValidUnit reports whether u is one of PAL, CTN and EA.
func ValidUnit(u string) bool {
	for _, known := range pickingUnits {
		if u == known {
			return true
		}
	}
	return false
}

// PickingReport is the confirmed quantity per day and unit.
type PickingReport struct {
	Labels  []string           `json:"labels"`
	Pallets []float64          `json:"pal"`
	Cartons []float64          `json:"ctn"`
	Each    []float64          `json:"ea"`
	Totals  map[string]float64 `json:"pie"`
	Rows    int                `json:"rows"`
	Skipped int                `json:"skipped"`
}

// Picking aggregates a picking export. The first sheet needs "AUoM",
// "Confirmed Qty" and "Confirm Date" columns, matched case-insensitively.
// Rows with another unit, an unreadable date or quantity are skipped.
func Picking(r io.Reader, filter PickingFilter) (*PickingReport, error) {
	t, err := readTable(r, lowerName, []string{"auom", "confirmed qty", "confirm date"})
	if err != nil {
		return nil, err
	}
	filter.Unit = strings.ToUpper(strings.TrimSpace(filter.Unit))
	if filter.Unit != "" && !ValidUnit(filter.Unit) {
		return nil, fmt.Errorf("unknown unit %q", filter.Unit)
	}

	rep := &PickingReport{Totals: map[string]float64{}}
	for _, u := range pickingUnits {
		rep.Totals[u] = 0
	}
	byDay := map[time.Time]map[string]float64{}
	for _, row := range t.rows {
		if blank(row) {
			continue
		}
		unit := strings.ToUpper(t.get(row, "auom"))
		day, okDate := parseDate(t.get(row, "confirm date"))
		qty, okQty := number(t.get(row, "confirmed qty"))
		if !ValidUnit(unit) || !okDate || !okQty {
			rep.Skipped++
			continue
		}
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		if !filter.match(day, unit) {
			continue
		}
		if byDay[day] == nil {
			byDay[day] = map[string]float64{}
		}
		byDay[day][unit] += qty
		rep.Totals[unit] += qty
		rep.Rows++
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, d := range days {
		rep.Labels = append(rep.Labels, d.Format(DateLabel))
		rep.Pallets = append(rep.Pallets, byDay[d][UnitPallet])
		rep.Cartons = append(rep.Cartons, byDay[d][UnitCarton])
		rep.Each = append(rep.Each, byDay[d][UnitEach])
	}
	return rep, nil
}

func (f PickingFilter) match(day time.Time, unit string) bool {
	if !f.From.IsZero() && day.Before(truncateDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && day.After(truncateDay(f.To)) {
		return false
	}
	return f.Unit == "" || f.Unit == unit
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
