package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flexmodel/core/flex"
)

var annuityFlags struct {
	cInv     float64
	capacity float64
	lifetime float64
	rate     float64
	cFix     float64
}

var annuityCmd = &cobra.Command{
	Use:   "annuity",
	Short: "Annualise an investment with the capital recovery factor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		inv := flex.Investment{CInv: annuityFlags.cInv, NLifetime: annuityFlags.lifetime, CFix: annuityFlags.cFix}
		if err := inv.Validate(); err != nil {
			return err
		}
		ann, err := inv.AnnualizedInvestment(annuityFlags.capacity, annuityFlags.rate)
		if err != nil {
			return err
		}
		res := struct {
			Capex   float64 `json:"capex_eur"`
			Annuity float64 `json:"annuity_eur"`
			Yearly  float64 `json:"yearly_cost_eur"`
		}{inv.TotalInvestment(annuityFlags.capacity), ann, ann + inv.FixedCost()}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "capex:       %.2f EUR\n", res.Capex)
		fmt.Fprintf(out, "annuity:     %.2f EUR/year\n", res.Annuity)
		fmt.Fprintf(out, "yearly cost: %.2f EUR/year\n", res.Yearly)
		return nil
	},
}

func init() {
	f := annuityCmd.Flags()
	f.Float64Var(&annuityFlags.cInv, "c-inv", 0, "investment cost per capacity unit (EUR)")
	f.Float64Var(&annuityFlags.capacity, "capacity", 0, "installed capacity")
	f.Float64Var(&annuityFlags.lifetime, "lifetime", 10, "lifetime in years")
	f.Float64Var(&annuityFlags.rate, "rate", 0.05, "discount rate")
	f.Float64Var(&annuityFlags.cFix, "c-fix", 0, "fixed cost per year (EUR)")
	_ = annuityCmd.MarkFlagRequired("c-inv")
	_ = annuityCmd.MarkFlagRequired("capacity")
	rootCmd.AddCommand(annuityCmd)
}
