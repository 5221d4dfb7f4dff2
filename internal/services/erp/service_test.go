package erp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckwms3d/internal/logger"
	"github.com/xelth-com/eckwms3d/internal/services/warehouse"
)

type fakeSource struct {
	quants []Quant
	calls  int
	logins int
}

func (f *fakeSource) Login() error {
	f.logins++
	return nil
}

func (f *fakeSource) Quants(limit, offset int) ([]Quant, error) {
	f.calls++
	if offset >= len(f.quants) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.quants) {
		end = len(f.quants)
	}
	return f.quants[offset:end], nil
}

type fakeApplier struct{ lines []warehouse.StockLine }

func (f *fakeApplier) ApplyStock(ctx context.Context, lines []warehouse.StockLine) (int, error) {
	f.lines = append(f.lines, lines...)
	return len(lines), nil
}

func quant(loc, product, lot string, qty float64) Quant {
	q := Quant{Location: Ref{ID: 1, Name: loc}, Product: Ref{ID: 2, Name: product}, Quantity: qty}
	if lot != "" {
		q.Lot = Ref{ID: 3, Name: lot}
	}
	return q
}

func TestQuantsToLines(t *testing.T) {
	lines := QuantsToLines([]Quant{
		quant("WH/Stock/r1-s1-l1", "[SKU-1] Bolts", "LOT-9", 12),
		quant("R2-S1-L1", "Plain name", "", 4),
		{Product: Ref{ID: 2, Name: "x"}},
		{Location: Ref{ID: 1, Name: "WH/Stock/R3-S1-L1"}},
	})

	require.Len(t, lines, 2)
	assert.Equal(t, warehouse.StockLine{BinCode: "R1-S1-L1", SKU: "SKU-1", Name: "Bolts", Batch: "LOT-9", Quantity: 12}, lines[0])
	assert.Equal(t, warehouse.StockLine{BinCode: "R2-S1-L1", SKU: "Plain name", Name: "Plain name", Quantity: 4}, lines[1])
}

func TestDecodeQuant(t *testing.T) {
	q := DecodeQuant(map[string]interface{}{
		"location_id": []interface{}{int64(8), "WH/Stock/R1-S2-L1"},
		"product_id":  []interface{}{int64(21), "[B-7] Brackets"},
		"lot_id":      false,
		"quantity":    int64(30),
	})
	assert.Equal(t, Ref{ID: 8, Name: "WH/Stock/R1-S2-L1"}, q.Location)
	assert.Equal(t, int64(21), q.Product.ID)
	assert.False(t, q.Lot.Set())
	assert.Equal(t, 30.0, q.Quantity)
	assert.Equal(t, "R1-S2-L1", q.BinCode())

	assert.Equal(t, Quant{}, DecodeQuant(map[string]interface{}{"location_id": []interface{}{1}}))
}

func TestSyncPagesThroughQuants(t *testing.T) {
	logger.Discard("erp")
	src := &fakeSource{}
	for i := 0; i < pageSize+3; i++ {
		src.quants = append(src.quants, quant("WH/Stock/R1-S1-L1", "[A] a", "", float64(i)))
	}
	dst := &fakeApplier{}
	s := NewSyncServiceWithSource(src, dst, Config{URL: "http://erp"})

	n, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pageSize+3, n)
	assert.Equal(t, 2, src.calls)
	assert.Len(t, dst.lines, pageSize+3)
}

func TestStartWithoutURLIsNoop(t *testing.T) {
	logger.Discard("erp")
	src := &fakeSource{}
	s := NewSyncServiceWithSource(src, &fakeApplier{}, Config{})
	s.Start()
	s.Stop()
	assert.Zero(t, src.logins)
}
