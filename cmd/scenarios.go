package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewplan/core/calendar"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/plan"
	"github.com/kilianp07/crewplan/core/projection"
	"github.com/kilianp07/crewplan/pkg/export"
)

var (
	scenarioCrews  []int
	scenarioFormat string
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Compare completion dates across base crew counts",
	RunE:  runScenarios,
}

func init() {
	scenariosCmd.Flags().StringVarP(&planPath, "file", "f", "", "plan file (.yaml or .json)")
	scenariosCmd.Flags().IntSliceVar(&scenarioCrews, "crews", nil, "crew counts to compare (default from config)")
	scenariosCmd.Flags().StringVar(&scenarioFormat, "format", export.FormatTable, "output format: table, json or csv")
	_ = scenariosCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	pl, err := plan.Load(planPath)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	svc, cfg, closeSvc, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeSvc()

	crews := scenarioCrews
	if len(crews) == 0 {
		crews = cfg.Scenarios.Crews
	}
	recs, err := svc.Projector.Scenarios(cmd.Context(), *pl, crews)
	if err != nil {
		return err
	}
	if err := writeRecords(cmd, scenarioFormat, recs, export.WriteScenarioTable); err != nil {
		return err
	}
	if scenarioFormat == export.FormatTable {
		if i := projection.Best(recs); i >= 0 {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Earliest finish with %d crews on %s\n", recs[i].BaseCrews, calendar.Format(recs[i].Finish))
		} else {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), export.StallMessage)
		}
	}
	return err
}

func writeRecords(cmd *cobra.Command, format string, recs []model.Projection, table func(w io.Writer, recs []model.Projection) error) error {
	out := cmd.OutOrStdout()
	switch format {
	case export.FormatTable:
		return table(out, recs)
	case export.FormatJSON:
		return export.WriteJSON(out, recs)
	case export.FormatCSV:
		return export.WriteMilestonesCSV(out, recs)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
