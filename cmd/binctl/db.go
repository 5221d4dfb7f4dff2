package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xelth-com/eckwms3d/internal/cache"
	"github.com/xelth-com/eckwms3d/internal/config"
	"github.com/xelth-com/eckwms3d/internal/database"
	"github.com/xelth-com/eckwms3d/internal/layout"
	"github.com/xelth-com/eckwms3d/internal/logger"
	"github.com/xelth-com/eckwms3d/internal/services/warehouse"
)

// withService connects to the configured database and runs fn.
func withService(fn func(svc *warehouse.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(&cfg.Log); err != nil {
		return err
	}
	lf, err := config.LoadLayoutFile(cfg.LayoutFile)
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}
	svc := warehouse.NewService(warehouse.NewGormStore(db), cache.NewNullCache(), warehouse.Config{
		WarehouseCode:   cfg.WarehouseCode,
		Dimensions:      lf.Dimensions,
		Generator:       lf.Generator.GeneratorConfig(),
		GenerateOnEmpty: false,
	})
	return fn(svc)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [workbook.xlsx]",
		Short: "Store the bins and stock of a workbook in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.GetLogger("binctl")
			return withService(func(svc *warehouse.Service) error {
				bins, err := readWorkbook(args[0], "")
				if err != nil {
					return err
				}
				n, err := svc.Import(cmd.Context(), bins)
				if err != nil {
					return err
				}
				log.Infof("✅ Imported %d bins", n)
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store a generated demo warehouse in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.GetLogger("binctl")
			return withService(func(svc *warehouse.Service) error {
				n, err := svc.SeedGenerated(cmd.Context())
				if err != nil {
					return err
				}
				classes, err := svc.RecalculateABC(cmd.Context())
				if err != nil {
					return err
				}
				log.Infof("🌱 Seeded %d bins, %d classified", n, len(classes))
				return nil
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Summarize the stored warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(svc *warehouse.Service) error {
				ds, err := svc.Dataset(cmd.Context())
				if err != nil {
					return err
				}
				stats := layout.CalculateHeatStats(ds.Bins)
				byClass := map[string]int{}
				occupied := 0
				for _, b := range ds.Bins {
					byClass[b.ABC]++
					if b.Occupied {
						occupied++
					}
				}
				out := cmd.OutOrStdout()
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Bins\t%d\n", len(ds.Bins))
				fmt.Fprintf(tw, "Occupied\t%d\n", occupied)
				fmt.Fprintf(tw, "Hits\t%.0f .. %.0f\n", stats.MinHits, stats.MaxHits)
				fmt.Fprintf(tw, "Quantity\t%.0f .. %.0f\n", stats.MinQty, stats.MaxQty)
				for _, c := range []string{"A", "B", "C"} {
					fmt.Fprintf(tw, "Class %s\t%d\n", c, byClass[c])
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				moves, err := svc.Moves(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(moves) == 0 {
					return nil
				}
				fmt.Fprintln(out, "\nRecent moves:")
				tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, m := range moves {
					from := "-"
					if m.FromZone != nil {
						from = *m.FromZone
					}
					fmt.Fprintf(tw, "%s\t%s\t%s -> %s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.BinCode, from, m.ToZone)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "moves", "m", 10, "recent moves to list")
	return cmd
}
