package main

import (
	"github.com/spf13/cobra"
)

func newSolveCmd(c *cli) *cobra.Command {
	var dxfDir string

	cmd := &cobra.Command{
		Use:   "solve FILE...",
		Short: "Evaluate and solve sketch files",
		Long: `Solve evaluates each sketch file, solves its constraints and prints the
outcome with the solved point positions. Files are solved concurrently;
output keeps argument order.

Example:
  sketchsolve solve bracket.sketch
  sketchsolve solve --json --dxf out/ *.sketch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := c.app.SolveFiles(cmd.Context(), args, dxfDir)
			if err != nil {
				return err
			}
			if err := writeReports(cmd.OutOrStdout(), reports, c.jsonOut); err != nil {
				return err
			}
			return checkReports(reports, (*Report).Solved)
		},
	}
	cmd.Flags().StringVar(&dxfDir, "dxf", "", "also write each solved sketch as DXF into `DIR`")
	return cmd
}

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check sketch files for structural problems without solving",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]*Report, 0, len(args))
			for _, path := range args {
				r, err := c.app.ValidateFile(path)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}
			if err := writeReports(cmd.OutOrStdout(), reports, c.jsonOut); err != nil {
				return err
			}
			return checkReports(reports, func(r *Report) bool { return r.Status == StatusValid })
		},
	}
}
