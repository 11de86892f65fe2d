package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesyncim/browsertest/pkg/golden"
)

func newCompareCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <actual-file> <name>",
		Short: "Compare one file against the golden entry <name>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.goldenConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			actual, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read actual file: %w", err)
			}

			res := golden.Compare(cfg, actual, args[1])
			if !res.Pass {
				fmt.Fprintln(cmd.OutOrStdout(), "FAIL", res.Message)
				return fmt.Errorf("%s does not match", args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PASS", args[1])
			return nil
		},
	}
}
