package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flexmodel/core/assets"
	coremetrics "github.com/kilianp07/flexmodel/core/metrics"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Inspect the asset types a scenario can use",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered asset and metrics sink types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		types := struct {
			Assets []string `json:"assets"`
			Sinks  []string `json:"sinks"`
		}{assets.Types(), coremetrics.SinkTypes()}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), types)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "assets: %s\n", strings.Join(types.Assets, ", "))
		fmt.Fprintf(out, "sinks:  %s\n", strings.Join(types.Sinks, ", "))
		return nil
	},
}

func init() {
	assetsCmd.AddCommand(assetsListCmd)
	rootCmd.AddCommand(assetsCmd)
}
