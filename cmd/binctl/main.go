// Command binctl generates, classifies and reports on warehouse bin layouts
// from a workbook or the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xelth-com/eckwms3d/internal/buildinfo"
	"github.com/xelth-com/eckwms3d/internal/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "binctl",
		Short:        "Inspect and seed eckWMS 3D bin layouts",
		Version:      buildinfo.CommitHash,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.GetLogger("binctl").SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newPickfaceCmd())
	root.AddCommand(newLabelsCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newShowCmd())
	return root
}
