package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xelth-com/eckwms3d/internal/config"
	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/scoring"
	"github.com/xelth-com/eckwms3d/internal/services/importer"
	"github.com/xelth-com/eckwms3d/internal/services/report"
)

func newGenerateCmd() *cobra.Command {
	var (
		layoutPath string
		output     string
		gen        layout.GeneratorConfig
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a procedurally generated warehouse as a bin dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			lf, err := config.LoadLayoutFile(layoutPath)
			if err != nil {
				return err
			}
			cfg := lf.Generator.GeneratorConfig()
			if cmd.Flags().Changed("rows") {
				cfg.Rows = gen.Rows
			}
			if cmd.Flags().Changed("racks") {
				cfg.RacksPerRow = gen.RacksPerRow
			}
			if cmd.Flags().Changed("levels") {
				cfg.Levels = gen.Levels
			}
			bins, err := layout.Generate(cfg, lf.Dimensions)
			if err != nil {
				return err
			}
			return writeJSON(output, models.Dataset{Bins: bins})
		},
	}
	cmd.Flags().StringVarP(&layoutPath, "layout", "l", "layout.toml", "layout file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&gen.Rows, "rows", 0, "rows (overrides the layout file)")
	cmd.Flags().IntVar(&gen.RacksPerRow, "racks", 0, "racks per row (overrides the layout file)")
	cmd.Flags().IntVar(&gen.Levels, "levels", 0, "levels (overrides the layout file)")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var (
		warehouse string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "classify [workbook.xlsx]",
		Short: "Compute ABC classes from the hit counts of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bins, err := readWorkbook(args[0], warehouse)
			if err != nil {
				return err
			}
			hits := make(map[string]float64, len(bins))
			for _, b := range bins {
				hits[b.BinCode] = b.Hits
			}
			classes := scoring.ClassifyABC(hits)
			if asJSON {
				return writeJSON("", classes)
			}

			sort.SliceStable(bins, func(i, j int) bool { return bins[i].Hits > bins[j].Hits })
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BIN\tHITS\tWAS\tNOW")
			for _, b := range bins {
				fmt.Fprintf(tw, "%s\t%.0f\t%s\t%s\n", b.BinCode, b.Hits, b.ABC, classes[b.BinCode])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&warehouse, "warehouse", "w", "", "only rows of this warehouse")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print bin -> class as JSON")
	return cmd
}

func newPickfaceCmd() *cobra.Command {
	var (
		warehouse string
		limit     int
		pdfPath   string
	)
	cmd := &cobra.Command{
		Use:   "pickface [workbook.xlsx]",
		Short: "Rank bins for fast-picking positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bins, err := readWorkbook(args[0], warehouse)
			if err != nil {
				return err
			}
			recs := scoring.RankPickface(bins, layout.CalculateHeatStats(bins), limit)
			if pdfPath != "" {
				data, err := report.PickfacePDF(report.PickfaceReport{
					Warehouse:       warehouse,
					GeneratedAt:     time.Now(),
					Recommendations: recs,
				})
				if err != nil {
					return err
				}
				return os.WriteFile(pdfPath, data, 0o644)
			}
			return printRecommendations(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().StringVarP(&warehouse, "warehouse", "w", "", "only rows of this warehouse")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of bins (0 for all)")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write a PDF report instead of a table")
	return cmd
}

func newLabelsCmd() *cobra.Command {
	var (
		warehouse string
		output    string
		labelCfg  = report.DefaultLabelConfig()
	)
	cmd := &cobra.Command{
		Use:   "labels [workbook.xlsx]",
		Short: "Print QR labels for every bin of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bins, err := readWorkbook(args[0], warehouse)
			if err != nil {
				return err
			}
			codes := make([]string, 0, len(bins))
			for _, b := range bins {
				codes = append(codes, b.BinCode)
			}
			data, err := report.BinLabelsPDF(codes, labelCfg)
			if err != nil {
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&warehouse, "warehouse", "w", "", "only rows of this warehouse")
	cmd.Flags().StringVarP(&output, "output", "o", "labels.pdf", "output file")
	cmd.Flags().IntVar(&labelCfg.Cols, "cols", labelCfg.Cols, "labels per row")
	cmd.Flags().IntVar(&labelCfg.Rows, "rows", labelCfg.Rows, "label rows per page")
	cmd.Flags().StringVar(&labelCfg.Prefix, "prefix", "", "prefix for the QR payload")
	return cmd
}

func readWorkbook(path, warehouse string) ([]models.BinRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := importer.Read(f, warehouse)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "⚠️  %s row %d: %s\n", e.Sheet, e.Row, e.Error)
		}
		return nil, fmt.Errorf("%d rows could not be read", len(res.Errors))
	}
	if len(res.Bins) == 0 {
		return nil, fmt.Errorf("no bins in %s", path)
	}
	return res.Bins, nil
}

func printRecommendations(w io.Writer, recs []scoring.Recommendation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tBIN\tSCORE\tABC\tHITS\tROW\tLEVEL\tZONE")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\t%.0f\t%d\t%d\t%s\n", i+1, r.BinCode, r.Score, r.ABC, r.Hits, r.RowID, r.Level, r.Zone)
	}
	return tw.Flush()
}

func writeJSON(path string, v interface{}) error {
	out := io.Writer(os.Stdout)
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
