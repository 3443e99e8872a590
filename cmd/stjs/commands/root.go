// Package commands provides the CLI commands for the stjs tool.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"martianoff/stjs/internal/build"
)

// errFailed reports a run whose diagnostics were already printed.
var errFailed = errors.New("build failed")

var (
	configPath  string
	projectName string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "stjs",
	Short: "Java subset to JavaScript compiler",
	Long: `stjs translates resolved Java classes, interfaces and enums into
JavaScript and bundles them in dependency order.

The compiler reads unit documents produced by an external parser and the
environment documents listed in stjs.toml.

Usage:
  stjs generate units/*.yaml    Generate one script per unit
  stjs bundle                   Bundle the generated scripts
  stjs version                  Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(bundleCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", build.ConfigFile, "Path to the project configuration")
	rootCmd.PersistentFlags().StringVarP(&projectName, "name", "n", "", "Project name when no configuration file exists")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// loadConfig reads the configuration file. A missing file is only an error
// when it was named explicitly; otherwise the defaults apply.
func loadConfig(cmd *cobra.Command) (*build.Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		if !os.IsNotExist(err) || cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("reading configuration: %w", err)
		}
		cfg := build.DefaultConfig()
		cfg.Project.Name = projectName
		return cfg, cfg.Validate()
	}
	cfg, err := build.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("name") {
		cfg.Project.Name = projectName
	}
	return cfg, cfg.Validate()
}
