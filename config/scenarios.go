package config

import "fmt"

// ScenarioConfig tunes crew scenario comparisons.
type ScenarioConfig struct {
	// Crews lists the base crew counts compared when none are given.
	Crews []int `json:"crews"`
	// Parallelism bounds concurrent scenario runs; zero runs them all at once.
	Parallelism int `json:"parallelism"`
}

// SetDefaults compares 2, 3 and 4 crews.
func (c *ScenarioConfig) SetDefaults() {
	if len(c.Crews) == 0 {
		c.Crews = []int{2, 3, 4}
	}
}

// Validate checks crew counts and parallelism.
func (c ScenarioConfig) Validate() error {
	for _, n := range c.Crews {
		if n < 1 {
			return fmt.Errorf("crew count must be at least 1, got %d", n)
		}
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative")
	}
	return nil
}
