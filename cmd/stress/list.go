package main

import (
	"os"

	"github.com/spf13/cobra"

	"stress/internal/registry"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered benchmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			// Registration never touches the directory.
			reg, err := buildRegistry(opts, os.TempDir())
			if err != nil {
				return err
			}
			registry.List(cmd.OutOrStdout(), reg)
			return nil
		},
	}
}
