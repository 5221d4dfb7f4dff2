package models

import "time"

const expiryLayout = "2006-01-02"

// ToBinRecord flattens a stored bin and its stock into the viewer record.
// Quantities and hit counts are summed over batches; the first batch with a
// product supplies the product fields.
func (b StorageBin) ToBinRecord() BinRecord {
	rec := BinRecord{
		RowID:   b.Row,
		ShelfID: b.Shelf,
		Level:   b.Level,
		BinCode: b.BinCode,
		Width:   b.Width,
		Height:  b.Height,
		Depth:   b.Depth,
		X:       b.X,
		Y:       b.Y,
		Z:       b.Z,
		ABC:     b.ABCClass,
	}
	if b.Zone != nil {
		rec.SetZone(*b.Zone)
	}
	for _, s := range b.Stocks {
		rec.Qty += s.Quantity
		rec.Hits += float64(s.HitCount)
		if rec.Product == nil && s.Product.SKU != "" {
			rec.Product = &ProductRecord{
				SKU:      s.Product.SKU,
				Name:     s.Product.Name,
				Batch:    s.Batch,
				Expiry:   formatExpiry(s.ExpiryDate),
				Quantity: s.Quantity,
				Image:    s.Product.ImageURL,
			}
		}
	}
	rec.Occupied = rec.Qty > 0 || rec.Product != nil
	rec.Normalize()
	return rec
}

// FromBinRecord builds the stored bin for a record. Stock is not copied.
func FromBinRecord(warehouseID uint, r BinRecord) StorageBin {
	r.Normalize()
	return StorageBin{
		WarehouseID: warehouseID,
		BinCode:     r.BinCode,
		Row:         r.RowID,
		Shelf:       r.ShelfID,
		Level:       r.Level,
		X:           r.X,
		Y:           r.Y,
		Z:           r.Z,
		Width:       r.Width,
		Height:      r.Height,
		Depth:       r.Depth,
		Zone:        r.Zone,
		ABCClass:    r.ABC,
	}
}

// ParseExpiry accepts YYYY-MM-DD; anything else yields nil.
func ParseExpiry(s string) *time.Time {
	t, err := time.Parse(expiryLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(expiryLayout)
}
