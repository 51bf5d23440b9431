package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stress/internal/config"
	"stress/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	var raw bool
	var width int
	cmd := &cobra.Command{
		Use:   "report [results]",
		Short: "Render a results file as markdown",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: a.bindFlags(map[string]string{
			"suite":      config.KeySuite,
			"output-dir": config.KeyOutputDir,
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			s, err := loadSuite(opts, path)
			if err != nil {
				return err
			}

			md := report.Markdown(s)
			if raw || a.noColor {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), report.RenderTerminal(md, width))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source instead of rendering it")
	cmd.Flags().IntVar(&width, "width", 100, "Word wrap width of the rendered output")
	cmd.Flags().String("suite", config.DefaultSuite, "Suite whose latest results are rendered")
	cmd.Flags().String("output-dir", config.DefaultOutputDir, "Directory holding the suite results")
	return cmd
}
