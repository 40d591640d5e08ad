// Package scenarios runs YAML regression scenarios: a plan, the crew counts
// to project it at, and the dates each projection must produce.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/crewplan/core/plan"
)

type MilestoneDef struct {
	Span       string `yaml:"span"`
	Task       string `yaml:"task"`
	Completion string `yaml:"completion"`
}

type Expected struct {
	Crews   int    `yaml:"crews"`
	Finish  string `yaml:"finish,omitempty"`
	Stalled bool   `yaml:"stalled,omitempty"`
	// Variances are only checked when set.
	BusinessDaysVariance *int           `yaml:"business_days_variance,omitempty"`
	CalendarDaysVariance *int           `yaml:"calendar_days_variance,omitempty"`
	Milestones           []MilestoneDef `yaml:"milestones,omitempty"`
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Plan        plan.Plan  `yaml:"plan"`
	Expected    []Expected `yaml:"expected"`
}

// Crews lists the crew counts named by the expectations, in order.
func (s Scenario) Crews() []int {
	out := make([]int, len(s.Expected))
	for i, e := range s.Expected {
		out[i] = e.Crews
	}
	return out
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
