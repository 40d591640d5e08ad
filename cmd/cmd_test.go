package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/pkg/export"
)

const deckYAML = `name: deck
start: 2026-02-02
deadline: 2026-02-06
base_crews: 2
rate_crews: 2
spans:
  - name: A
    tasks:
      - name: Stringers
        total: 100
        rate: 40
  - name: B
    tasks:
      - name: Portals
        total: 10
        rate: %s
`

func writeFiles(t *testing.T, rate string) (cfgFile, planFile string) {
	t.Helper()
	dir := t.TempDir()
	cfgFile = filepath.Join(dir, "config.yaml")
	cfg := "store:\n  backend: \"jsonl\"\n  path: \"" + filepath.Join(dir, "projections.jsonl") + "\"\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0o644))
	planFile = filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(planFile, []byte(fmt.Sprintf(deckYAML, rate)), 0o644))
	return cfgFile, planFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cfgFile, planFile := writeFiles(t, "10")

	out, err := execute(t, "project", "-c", cfgFile, "-f", planFile, "--format", "json")
	require.NoError(t, err)
	var rec model.Projection
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "2026-02-05", rec.Finish.Format("2006-01-02"))
	assert.Equal(t, 1, rec.BusinessDaysVariance)

	out, err = execute(t, "project", "-c", cfgFile, "-f", planFile, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan deck with 2 crews")
	assert.Contains(t, out, "1 business day early")

	out, err = execute(t, "scenarios", "-c", cfgFile, "-f", planFile, "--crews", "1,2", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Earliest finish with 2 crews on 2026-02-05")

	out, err = execute(t, "history", "-c", cfgFile, "--plan", "DECK", "--format", "json")
	require.NoError(t, err)
	var recs []model.Projection
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 4)
}

func TestProjectStall(t *testing.T) {
	cfgFile, planFile := writeFiles(t, "0")
	_, err := execute(t, "project", "-c", cfgFile, "-f", planFile, "--format", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), export.StallMessage)
}
