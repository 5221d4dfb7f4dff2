// Package scoring computes the per-bin analytics shown as overlays:
// ABC score, heat score and pick-face score, plus their color encodings.
//
// Every function here is total: missing hits or quantities count as zero and
// an unknown ABC class gets the lowest score. Nothing panics or returns an
// error.
package scoring

import (
	"math"
	"sort"

	"github.com/xelth-com/eckwms3d/internal/models"
)

// HeatStats holds the dataset-wide ranges used to normalize hits and qty.
// Max is always strictly greater than Min.
type HeatStats struct {
	MinHits float64 `json:"minHits"`
	MaxHits float64 `json:"maxHits"`
	MinQty  float64 `json:"minQty"`
	MaxQty  float64 `json:"maxQty"`
}

// DefaultStats is used for an empty dataset.
var DefaultStats = HeatStats{MinHits: 0, MaxHits: 1, MinQty: 0, MaxQty: 1}

// Heat weights. They must sum to 1.0.
const (
	HeatWeightABC  = 0.40
	HeatWeightHits = 0.35
	HeatWeightQty  = 0.25
)

// Pick-face weights. They must sum to 1.0.
const (
	PickWeightABC   = 0.35
	PickWeightHits  = 0.25
	PickWeightLevel = 0.15
	PickWeightRow   = 0.15
	PickWeightQty   = 0.10

	// levels at or above this count as worst ergonomics
	pickLevelSpan = 6.0
	// rows this far from the entrance count as worst proximity
	pickRowSpan = 10.0
)

// Normalize maps value into [0,1] relative to [min,max]. A degenerate range
// yields 0.
func Normalize(value, min, max float64) float64 {
	if max == min || math.IsNaN(value) {
		return 0
	}
	return math.Min(1, math.Max(0, (value-min)/(max-min)))
}

// AbcToScore maps an ABC class to its business priority.
func AbcToScore(class string) float64 {
	switch class {
	case "A":
		return 1.0
	case "B":
		return 0.6
	case "C":
		return 0.3
	default:
		return 0.1
	}
}

// ComputeHeat blends ABC class, pick frequency and quantity into [0,1].
func ComputeHeat(bin *models.BinRecord, stats HeatStats) float64 {
	if bin == nil {
		return 0
	}
	abc := AbcToScore(bin.ABC)
	hits := Normalize(bin.Hits, stats.MinHits, stats.MaxHits)
	qty := Normalize(bin.Qty, stats.MinQty, stats.MaxQty)

	return HeatWeightABC*abc + HeatWeightHits*hits + HeatWeightQty*qty
}

// ComputePickfaceScore ranks a bin's fitness for a fast-picking position:
// demand signals plus low shelf level and proximity to the aisle entrance.
func ComputePickfaceScore(bin *models.BinRecord, stats HeatStats) float64 {
	if bin == nil {
		return 0
	}
	hits := Normalize(bin.Hits, stats.MinHits, stats.MaxHits)
	qty := Normalize(bin.Qty, stats.MinQty, stats.MaxQty)

	level := 1 - math.Min(math.Max(float64(bin.Level), 0)/pickLevelSpan, 1)

	row := bin.RowID
	if row == 0 {
		row = 1
	}
	rowScore := 1 - math.Min(math.Max(float64(row-1), 0)/pickRowSpan, 1)

	return PickWeightABC*AbcToScore(bin.ABC) +
		PickWeightHits*hits +
		PickWeightLevel*level +
		PickWeightRow*rowScore +
		PickWeightQty*qty
}

// Recommendation is one ranked pick-face candidate.
type Recommendation struct {
	BinCode string  `json:"bin_code"`
	Score   float64 `json:"score"`
	ABC     string  `json:"abc"`
	Hits    float64 `json:"hits"`
	Level   int     `json:"level"`
	RowID   int     `json:"row_id"`
	Zone    string  `json:"zone,omitempty"`
}

// RankPickface returns the best pick-face candidates, highest score first.
// limit <= 0 returns all of them.
func RankPickface(bins []models.BinRecord, stats HeatStats, limit int) []Recommendation {
	recs := make([]Recommendation, 0, len(bins))
	for i := range bins {
		b := &bins[i]
		recs = append(recs, Recommendation{
			BinCode: b.BinCode,
			Score:   ComputePickfaceScore(b, stats),
			ABC:     b.ABC,
			Hits:    b.Hits,
			Level:   b.Level,
			RowID:   b.RowID,
			Zone:    b.ZoneID(),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].BinCode < recs[j].BinCode
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
