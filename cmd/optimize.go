package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flexmodel/app"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Solve the least-cost dispatch of every asset over the horizon",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			sol, err := svc.Optimize(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sol)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "objective %.4f EUR\n\n", sol.Objective)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ASSET\tCOST EUR\tPOWER KW (per step)")
			for _, name := range sol.Names() {
				a, _ := sol.Asset(name)
				fmt.Fprintf(w, "%s\t%.4f\t%v\n", name, a.Cost, formatPower(a.Power))
			}
			return w.Flush()
		})
	},
}

var lpCmd = &cobra.Command{
	Use:   "lp",
	Short: "Inspect the linear models of the scenario",
}

var lpSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dimensions of every asset's linear model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(_ context.Context, svc *app.Service) error {
			models, err := svc.LinearModels()
			if err != nil {
				return err
			}
			for _, m := range models {
				fmt.Fprintln(cmd.OutOrStdout(), m.Summary())
			}
			return nil
		})
	},
}

func init() {
	lpCmd.AddCommand(lpSummaryCmd)
	rootCmd.AddCommand(optimizeCmd, lpCmd)
}

func formatPower(p []float64) []string {
	out := make([]string, len(p))
	for i, v := range p {
		out[i] = fmt.Sprintf("%.2f", v)
	}
	return out
}
