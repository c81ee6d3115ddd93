// Package cmd provides the CLI commands for contriblens.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/config"
	"github.com/contriblens/contriblens/internal/logging"
	"github.com/contriblens/contriblens/pkg/version"
)

var (
	configDir      string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the contriblens CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contriblens",
		Short: "Contribution opportunity discovery and ranking",
		Long: `ContribLens ranks open-source contribution opportunities.

It combines lexical and embedding relevance for search, matches
opportunities against contributor profiles across six factors, and
scores repositories for trending activity and maintenance health.

Run 'contriblens index' to build a store from a corpus file, then
query it with search, match, trending, and health, or expose the
same operations to AI assistants with 'contriblens serve'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("contriblens version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configDir, "config-dir", "C", ".",
		"Directory containing "+config.ConfigFileName)
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to stderr")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRunE = teardownLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newTrendingCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging installs the default logger before any command runs.
// Commands log to stderr so stdout stays free for results and, in serve
// mode, for the JSON-RPC stream.
func setupLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg.Level = "debug"
	} else {
		logCfg.Level = "warn"
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// loadConfig reads the configuration for the selected directory.
func loadConfig() (*config.Config, error) {
	return config.Load(configDir)
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
