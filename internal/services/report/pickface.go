// Package report renders printable PDFs: the pick-face recommendation list
// and QR bin labels.
package report

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/xelth-com/eckwms3d/internal/scoring"
)

// PickfaceReport is the input of PickfacePDF.
type PickfaceReport struct {
	Warehouse       string
	GeneratedAt     time.Time
	Recommendations []scoring.Recommendation
}

var pickfaceColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "R"},
	{"", 8, "C"}, // score swatch
	{"Bin", 34, "L"},
	{"QR", 16, "C"},
	{"Score", 20, "R"},
	{"ABC", 14, "C"},
	{"Hits", 24, "R"},
	{"Row", 14, "R"},
	{"Level", 14, "R"},
	{"Zone", 30, "L"},
}

const rowHeight = 14.0

// PickfacePDF lists the recommendations best first, one row per bin with a
// color swatch of its score and a QR code of the bin code.
func PickfacePDF(r PickfaceReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(false, 12)
	_, pageHeight := pdf.GetPageSize()

	header := func() {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, fmt.Sprintf("Pick-face recommendations - %s", r.Warehouse), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, r.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range pickfaceColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	header()
	if len(r.Recommendations) == 0 {
		pdf.CellFormat(0, 8, "No bins to rank.", "", 1, "L", false, 0, "")
	}
	for i, rec := range r.Recommendations {
		if pdf.GetY()+rowHeight > pageHeight-12 {
			header()
		}
		x, y := pdf.GetX(), pdf.GetY()

		cells := []string{
			fmt.Sprintf("%d", i+1),
			"",
			rec.BinCode,
			"",
			fmt.Sprintf("%.3f", rec.Score),
			rec.ABC,
			fmt.Sprintf("%.0f", rec.Hits),
			fmt.Sprintf("%d", rec.RowID),
			fmt.Sprintf("%d", rec.Level),
			rec.Zone,
		}
		cx := x
		for j, c := range pickfaceColumns {
			pdf.SetXY(cx, y)
			pdf.CellFormat(c.width, rowHeight, cells[j], "1", 0, c.align, false, 0, "")
			cx += c.width
		}

		// swatch
		col := scoring.PickfaceToColor(rec.Score)
		r8, g8, b8 := col.RGB255()
		pdf.SetFillColor(int(r8), int(g8), int(b8))
		swX := x + pickfaceColumns[0].width
		pdf.Rect(swX+1.5, y+4, pickfaceColumns[1].width-3, rowHeight-8, "F")

		qrX := swX + pickfaceColumns[1].width + pickfaceColumns[2].width
		size := rowHeight - 2
		if err := drawQR(pdf, fmt.Sprintf("pick_%d", i), rec.BinCode, qrX+(pickfaceColumns[3].width-size)/2, y+1, size); err != nil {
			return nil, err
		}
		pdf.SetXY(x, y+rowHeight)
	}
	return output(pdf)
}
