package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpatrol/openpatrol/pkg/config"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an engine configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("no config file given, use --config")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (workers=%d, cache=%v)\n",
				configPath, cfg.Workers, cfg.Cache.Enabled)
			return nil
		},
	}
	return cmd
}
