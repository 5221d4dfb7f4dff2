package layout

import (
	"math"

	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/scoring"
)

// CalculateHeatStats scans the dataset once for the hits and qty ranges.
// Equal bounds are widened by one so normalization never divides by zero.
// NaN and infinite values are ignored.
func CalculateHeatStats(bins []models.BinRecord) scoring.HeatStats {
	if len(bins) == 0 {
		return scoring.DefaultStats
	}

	stats := scoring.HeatStats{
		MinHits: math.Inf(1),
		MaxHits: math.Inf(-1),
		MinQty:  math.Inf(1),
		MaxQty:  math.Inf(-1),
	}
	for i := range bins {
		if hits := bins[i].Hits; finite(hits) {
			stats.MinHits = math.Min(stats.MinHits, hits)
			stats.MaxHits = math.Max(stats.MaxHits, hits)
		}
		if qty := bins[i].Qty; finite(qty) {
			stats.MinQty = math.Min(stats.MinQty, qty)
			stats.MaxQty = math.Max(stats.MaxQty, qty)
		}
	}
	if math.IsInf(stats.MinHits, 1) {
		stats.MinHits, stats.MaxHits = scoring.DefaultStats.MinHits, scoring.DefaultStats.MaxHits
	}
	if math.IsInf(stats.MinQty, 1) {
		stats.MinQty, stats.MaxQty = scoring.DefaultStats.MinQty, scoring.DefaultStats.MaxQty
	}

	if stats.MinHits == stats.MaxHits {
		stats.MaxHits++
	}
	if stats.MinQty == stats.MaxQty {
		stats.MaxQty++
	}
	return stats
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
