package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckwms3d/internal/scoring"
)

func TestPickfacePDF(t *testing.T) {
	recs := make([]scoring.Recommendation, 0, 40)
	for i := 0; i < 40; i++ {
		recs = append(recs, scoring.Recommendation{BinCode: "R1-S1-L1", Score: float64(i) / 40, ABC: "A", Level: 1, RowID: 1})
	}
	data, err := PickfacePDF(PickfaceReport{Warehouse: "MAIN", GeneratedAt: time.Now(), Recommendations: recs})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPickfacePDFEmpty(t *testing.T) {
	data, err := PickfacePDF(PickfaceReport{Warehouse: "MAIN"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBinLabelsPDF(t *testing.T) {
	data, err := BinLabelsPDF([]string{"R1-S1-L1", "R1-S1-L2"}, DefaultLabelConfig())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = BinLabelsPDF(nil, LabelConfig{})
	assert.Error(t, err)
}
