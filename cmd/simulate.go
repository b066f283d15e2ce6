package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flexmodel/app"
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/simulation"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the scenario step by step",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			res, err := svc.Simulate(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return printResult(cmd, res)
		})
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the scenario with its baseline and report the payback",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			cmp, err := svc.Compare(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cmp.Report)
			}
			r := cmp.Report
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "baseline cost:     %s EUR/year\n", r.BaselineCost.StringFixed(2))
			fmt.Fprintf(out, "candidate cost:    %s EUR/year\n", r.CandidateCost.StringFixed(2))
			fmt.Fprintf(out, "annual savings:    %s EUR\n", r.AnnualSavings.StringFixed(2))
			fmt.Fprintf(out, "annual capex:      %s EUR\n", r.AnnualCapex.StringFixed(2))
			fmt.Fprintf(out, "net benefit:       %s EUR/year\n", r.NetBenefit.StringFixed(2))
			if r.PaybackYears != nil {
				fmt.Fprintf(out, "payback:           %s years\n", r.PaybackYears.StringFixed(2))
			} else {
				fmt.Fprintln(out, "payback:           never")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd, compareCmd)
}

func printResult(cmd *cobra.Command, res *simulation.Result) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d steps of %.2f h\n", res.RunID, res.Steps, res.DtHours)
	fmt.Fprintf(out, "total cost %.2f EUR, unserved %.3f kWh, %d curtailed steps\n\n",
		res.TotalCostEUR, res.UnservedKWh, res.CurtailedSteps)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ASSET\tKIND\tCOST EUR\tTHROUGHPUT KWH\tACTIVATIONS\tSOC")
	for _, a := range res.Assets {
		soc := "-"
		if v, ok := a.Metrics[flex.MetricSOC]; ok {
			soc = fmt.Sprintf("%.3f", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.3f\t%.0f\t%s\n", a.Name, a.Kind, a.CostEUR,
			a.Metrics[flex.MetricThroughputKWh], a.Metrics[flex.MetricActivations], soc)
	}
	return w.Flush()
}
