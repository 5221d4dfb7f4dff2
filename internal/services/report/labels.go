package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// LabelConfig lays out bin labels on A4
type LabelConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
	// Prefix is prepended to the bin code in the QR payload
	Prefix string `json:"prefix"`
}

// DefaultLabelConfig is a 3x8 sheet.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{Cols: 3, Rows: 8, MarginTop: 10, MarginLeft: 8, GapX: 2, GapY: 2}
}

// BinLabelsPDF prints one QR label per bin code.
func BinLabelsPDF(codes []string, cfg LabelConfig) ([]byte, error) {
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("invalid label grid %dx%d", cfg.Cols, cfg.Rows)
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	pageWidth, pageHeight := pdf.GetPageSize()
	availW := pageWidth - cfg.MarginLeft*2
	availH := pageHeight - cfg.MarginTop*2
	labelW := (availW - float64(cfg.Cols-1)*cfg.GapX) / float64(cfg.Cols)
	labelH := (availH - float64(cfg.Rows-1)*cfg.GapY) / float64(cfg.Rows)
	perPage := cfg.Cols * cfg.Rows

	if len(codes) == 0 {
		pdf.AddPage()
	}
	for i, code := range codes {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		onPage := i % perPage
		x := cfg.MarginLeft + float64(onPage%cfg.Cols)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(onPage/cfg.Cols)*(labelH+cfg.GapY)

		qrSize := labelH * 0.7
		if qrSize > labelW {
			qrSize = labelW * 0.9
		}
		if err := drawQR(pdf, fmt.Sprintf("label_%d", i), cfg.Prefix+code, x+(labelW-qrSize)/2, y+(labelH-qrSize)/2-2, qrSize); err != nil {
			return nil, err
		}

		pdf.SetXY(x, y+labelH-6)
		pdf.SetFontSize(8)
		pdf.CellFormat(labelW, 5, code, "", 0, "C", false, 0, "")
	}
	return output(pdf)
}

func drawQR(pdf *gofpdf.Fpdf, name, content string, x, y, size float64) error {
	png, err := qrcode.Encode(content, qrcode.Low, 256)
	if err != nil {
		return fmt.Errorf("encode qr %q: %w", content, err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x, y, size, size, false, opts, 0, "")
	return nil
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
