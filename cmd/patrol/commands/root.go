package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "patrol",
		Short: "OpenPatrol - Cloud Governance Policy Engine",
		Long: `OpenPatrol is the resource-management core of a cloud-governance
policy engine: it resolves provider resource handlers from declarative
policy fragments, runs resource sets through boolean filter pipelines,
and hands the survivors to actions.

Provider resource types are plugins; the commands below introspect
what the current build has registered.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newResourcesCommand())
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
