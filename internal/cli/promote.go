package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesyncim/browsertest/pkg/golden"
)

func newPromoteCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <name>...",
		Short: "Copy staged actual results into the golden directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.goldenConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := golden.Promote(cfg, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "promoted %s -> %s\n", cfg.ActualPath(name), cfg.GoldenPath(name))
			}
			return nil
		},
	}
}
