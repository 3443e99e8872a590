package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"martianoff/stjs/internal/build"
)

var bundleSourceMap bool

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Bundle previously generated units",
	Long: `Bundle reads the unit manifests under the output directory and writes
<output>/<project>.js with every unit after the units it depends on.

A unit whose script changed since it was generated, or a dependency cycle,
fails the bundle and nothing is written.

Examples:
  stjs bundle
  stjs bundle --source-map`,
	Args: cobra.NoArgs,
	RunE: runBundle,
}

func init() {
	bundleCmd.Flags().BoolVar(&bundleSourceMap, "source-map", false, "Write an index source map")
}

func runBundle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("source-map") {
		cfg.Generator.SourceMap = bundleSourceMap
	}

	builder, err := build.NewBuilder(cfg, verbose)
	if err != nil {
		return err
	}
	builder.SetOutput(cmd.OutOrStdout())

	artifact, report := builder.Bundle()
	newDiagPrinter(cmd.ErrOrStderr()).report(report)
	if report.Failed() {
		return errFailed
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Bundled %d units into %s\n", len(artifact.Order), builder.Workspace().BundlePath())
	return nil
}
