package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"martianoff/stjs/internal/build"
)

var (
	generateOutput         string
	generateSourceMap      bool
	generateBundle         bool
	generateIterationGuard bool
	generateJobs           int
	generateAllowed        []string
)

var generateCmd = &cobra.Command{
	Use:   "generate <unit.yaml>...",
	Short: "Generate JavaScript from unit documents",
	Long: `Generate resolves every unit and writes <output>/<package>/<Type>.js
with its manifest, and its source map when requested.

Every unit is generated even when others fail; all diagnostics are printed
and the command exits with status 1 if any unit failed.

Flags override the values of stjs.toml.

Examples:
  stjs generate units/*.yaml
  stjs generate --source-map --bundle units/*.yaml
  stjs generate -j 4 -o build/js units/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateOutput, "output", "o", "", "Output directory")
	f.BoolVar(&generateSourceMap, "source-map", false, "Write source maps")
	f.BoolVar(&generateBundle, "bundle", false, "Bundle the generated units")
	f.BoolVar(&generateIterationGuard, "iteration-guard", true, "Guard for-each loops with hasOwnProperty")
	f.IntVarP(&generateJobs, "jobs", "j", 1, "Units generated in parallel")
	f.StringSliceVar(&generateAllowed, "allow", nil, "Additional allowed packages")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg)

	builder, err := build.NewBuilder(cfg, verbose)
	if err != nil {
		return err
	}
	builder.SetOutput(cmd.OutOrStdout())

	report := builder.Generate(context.Background(), args)
	newDiagPrinter(cmd.ErrOrStderr()).report(report)
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
	if report.Failed() {
		return errFailed
	}
	return nil
}

func applyGenerateFlags(cmd *cobra.Command, cfg *build.Config) {
	f := cmd.Flags()
	if f.Changed("output") {
		// Relative to the working directory, not to the configuration.
		cfg.Project.Output = generateOutput
		if abs, err := filepath.Abs(generateOutput); err == nil {
			cfg.Project.Output = abs
		}
	}
	if f.Changed("source-map") {
		cfg.Generator.SourceMap = generateSourceMap
	}
	if f.Changed("bundle") {
		cfg.Generator.Bundle = generateBundle
	}
	if f.Changed("iteration-guard") {
		cfg.Generator.IterationGuard = generateIterationGuard
	}
	if f.Changed("jobs") {
		cfg.Generator.Jobs = generateJobs
	}
	cfg.Generator.AllowedPackages = append(cfg.Generator.AllowedPackages, generateAllowed...)
}
