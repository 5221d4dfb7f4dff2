package layout

import "github.com/xelth-com/eckwms3d/internal/models"

// Shelves maps shelf id to the bins of one shelf column, in input order.
type Shelves map[int][]*models.BinRecord

// Groups maps row id to its shelves.
type Groups map[int]Shelves

// GroupBinsByRowAndShelf buckets bins by row then shelf. Bins keep their
// input order inside a bucket. The returned pointers alias the input slice.
func GroupBinsByRowAndShelf(bins []models.BinRecord) Groups {
	rows := make(Groups)
	for i := range bins {
		b := &bins[i]
		shelves, ok := rows[b.RowID]
		if !ok {
			shelves = make(Shelves)
			rows[b.RowID] = shelves
		}
		shelves[b.ShelfID] = append(shelves[b.ShelfID], b)
	}
	return rows
}

// RowIDs returns the row ids in ascending order.
func (g Groups) RowIDs() []int { return sortedKeys(g) }

// ShelfIDs returns the shelf ids in ascending order.
func (s Shelves) ShelfIDs() []int { return sortedKeys(s) }
