// Package cmd provides the CLI commands for loreindex.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loreindex/loreindex/internal/logging"
	"github.com/loreindex/loreindex/pkg/version"
)

// Persistent flags shared by every command.
var (
	projectDir     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the loreindex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loreindex",
		Short: "Local semantic search for structured writing projects",
		Long: `loreindex indexes a writing project's documents, keeps the index
synchronized as files change, and answers similarity queries used to
enrich AI-assistant prompts.

Run 'loreindex index' in a project directory to build the index, then
'loreindex search' to query it.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("loreindex version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "Project root directory")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = teardownLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	cleanup, err := logging.SetupDefault(root, debugMode)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
