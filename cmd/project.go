package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewplan/core/plan"
	"github.com/kilianp07/crewplan/core/scheduler"
	"github.com/kilianp07/crewplan/pkg/export"
)

var (
	planPath      string
	projectFormat string
	projectCrews  int
	projectCurve  bool
	projectOffset bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project completion dates for a plan",
	RunE:  runProject,
}

func init() {
	projectCmd.Flags().StringVarP(&planPath, "file", "f", "", "plan file (.yaml or .json)")
	projectCmd.Flags().StringVar(&projectFormat, "format", export.FormatTable, "output format: table, json or csv")
	projectCmd.Flags().IntVar(&projectCrews, "crews", 0, "override the plan's base crew count")
	projectCmd.Flags().BoolVar(&projectCurve, "curve", false, "print the daily production curve")
	projectCmd.Flags().BoolVar(&projectOffset, "display", false, "offset each span's curve by the totals of earlier spans")
	_ = projectCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(projectCmd)
}

func runProject(cmd *cobra.Command, args []string) error {
	pl, err := plan.Load(planPath)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if projectCrews > 0 {
		*pl = pl.WithBaseCrews(projectCrews)
	}
	svc, _, closeSvc, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeSvc()

	rec, err := svc.Projector.Project(cmd.Context(), *pl)
	if errors.Is(err, scheduler.ErrStalled) {
		return fmt.Errorf("%s: %w", export.StallMessage, err)
	}
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), projectFormat, rec, projectCurve, projectOffset)
}
