package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flexmodel/config"
	"github.com/kilianp07/flexmodel/core/metrics/eco"
	"github.com/kilianp07/flexmodel/core/steplog"
	"github.com/kilianp07/flexmodel/infra/kpi"
	"github.com/kilianp07/flexmodel/jobs/ecokpi"
	"github.com/kilianp07/flexmodel/pkg/export"
)

var stepQuery struct {
	runID  string
	asset  string
	format string
	db     string
	factor float64
}

var steplogCmd = &cobra.Command{
	Use:   "steplog",
	Short: "Read the step log of past runs",
}

var steplogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export step records as CSV or JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStepLog(func(ctx context.Context, store steplog.Store) error {
			recs, err := store.Query(ctx, steplog.Query{RunID: stepQuery.runID, Asset: stepQuery.asset})
			if err != nil {
				return err
			}
			switch stepQuery.format {
			case "csv":
				return export.WriteCSV(cmd.OutOrStdout(), recs)
			case "json":
				return export.WriteJSON(cmd.OutOrStdout(), recs)
			default:
				return fmt.Errorf("unknown format %s", stepQuery.format)
			}
		})
	},
}

var ecoCmd = &cobra.Command{
	Use:   "eco",
	Short: "Energy KPI commands",
}

var ecoBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Aggregate stored steps into daily energy KPIs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStepLog(func(ctx context.Context, store steplog.Store) error {
			db, err := kpi.NewSQLiteStore(stepQuery.db)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			n, err := ecokpi.Backfill(ctx, db, store, steplog.Query{RunID: stepQuery.runID, Asset: stepQuery.asset})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backfilled %d records into %s\n", n, stepQuery.db)
			return nil
		})
	},
}

var ecoShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the daily energy KPIs stored in a database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := kpi.NewSQLiteStore(stepQuery.db)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		recs, err := db.Query(eco.Filter{RunID: stepQuery.runID, Asset: stepQuery.asset})
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), recs)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DAY\tRUN\tASSET\tCHARGED kWh\tDISCHARGED kWh\tRTE\tACTIVE\tCOST EUR\tCO2 AVOIDED g")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.3f\t%.3f\t%d\t%.2f\t%.0f\n",
				r.Date.Format("2006-01-02"), r.RunID, r.Asset, r.ChargedKWh, r.DischargedKWh,
				r.RoundTripEfficiency(), r.ActiveSteps, r.CostEUR, r.CO2Avoided(stepQuery.factor))
		}
		return w.Flush()
	},
}

func init() {
	for _, c := range []*cobra.Command{steplogExportCmd, ecoBackfillCmd, ecoShowCmd} {
		c.Flags().StringVar(&stepQuery.runID, "run-id", "", "only records of this run")
		c.Flags().StringVar(&stepQuery.asset, "asset", "", "only records involving this asset")
	}
	steplogExportCmd.Flags().StringVar(&stepQuery.format, "format", "csv", "output format: csv or json")
	for _, c := range []*cobra.Command{ecoBackfillCmd, ecoShowCmd} {
		c.Flags().StringVar(&stepQuery.db, "db", "eco.db", "SQLite KPI database")
	}
	ecoShowCmd.Flags().Float64Var(&stepQuery.factor, "emission-factor", 0, "grid emission factor in g/kWh")
	steplogCmd.AddCommand(steplogExportCmd)
	ecoCmd.AddCommand(ecoBackfillCmd, ecoShowCmd)
	rootCmd.AddCommand(steplogCmd, ecoCmd)
}

// withStepLog opens the step log configured in the scenario file.
func withStepLog(fn func(ctx context.Context, store steplog.Store) error) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StepLog.Backend == steplog.BackendNone {
		return fmt.Errorf("no step log configured")
	}
	store, err := steplog.Open(cfg.StepLog.Options())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return fn(ctx, store)
}
