package scoring

import "sort"

// Pareto thresholds on the cumulative share of hits.
const (
	ClassAShare = 0.70
	ClassBShare = 0.90
)

// ClassifyABC assigns classes by cumulative pick share: bins sorted by hits
// descending take A while the running share stays within 70%, B within 90%,
// C beyond. With no hits at all every bin is C.
func ClassifyABC(hitsByBin map[string]float64) map[string]string {
	type entry struct {
		code string
		hits float64
	}
	entries := make([]entry, 0, len(hitsByBin))
	var total float64
	for code, h := range hitsByBin {
		if h < 0 {
			h = 0
		}
		entries = append(entries, entry{code, h})
		total += h
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].hits != entries[j].hits {
			return entries[i].hits > entries[j].hits
		}
		return entries[i].code < entries[j].code
	})

	out := make(map[string]string, len(entries))
	if total == 0 {
		for _, e := range entries {
			out[e.code] = "C"
		}
		return out
	}

	var cumulative float64
	for _, e := range entries {
		cumulative += e.hits
		share := cumulative / total
		switch {
		case share <= ClassAShare:
			out[e.code] = "A"
		case share <= ClassBShare:
			out[e.code] = "B"
		default:
			out[e.code] = "C"
		}
	}
	return out
}
