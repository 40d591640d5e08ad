package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewplan/core/projection/logging"
	"github.com/kilianp07/crewplan/pkg/export"
)

var (
	historyPlan   string
	historySince  string
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored projections",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyPlan, "plan", "", "only list projections of this plan")
	historyCmd.Flags().StringVar(&historySince, "since", "", "only list projections made at or after this RFC3339 time")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of records, most recent first kept")
	historyCmd.Flags().StringVar(&historyFormat, "format", export.FormatTable, "output format: table, json or csv")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	q := logging.LogQuery{Plan: historyPlan, Limit: historyLimit}
	if historySince != "" {
		t, err := time.Parse(time.RFC3339, historySince)
		if err != nil {
			return fmt.Errorf("--since: %w", err)
		}
		q.Start = t
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := logging.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("projection store: %w", err)
	}
	defer func() { _ = store.Close() }()

	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return writeRecords(cmd, historyFormat, recs, export.WriteHistoryTable)
}
