package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpatrol/openpatrol/pkg/registry"
)

func newResourcesCommand() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List registered provider resource types",
		Long: `List the resource types registered by the provider plugins in this
build. Provider modules register lazily; this command loads them all
first so the listing is complete.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := registry.EnsureLoaded(registry.Default.Loaders()...); err != nil {
				return fmt.Errorf("loading providers: %w", err)
			}

			providers := registry.Providers()
			if provider != "" {
				providers = []string{provider}
			}

			listing := make(map[string][]string, len(providers))
			for _, p := range providers {
				listing[p] = registry.Types(p)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(listing)
			}

			for _, p := range providers {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", p)
				for _, name := range listing[p] {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "limit listing to one provider")

	return cmd
}
