// Package production derives scheduler inputs from field data: per-crew rates
// from team rates or measured output, and remaining quantities from progress
// already made. None of it takes part in the day-by-day simulation.
package production

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples is returned when a measured rate is requested without data.
var ErrNoSamples = errors.New("no production samples")

// PerCrewRate converts a daily rate achieved by a team of crews into the rate
// of a single crew.
func PerCrewRate(teamRate float64, crews int) (float64, error) {
	if crews <= 0 {
		return 0, fmt.Errorf("team rate needs a positive crew count, got %d", crews)
	}
	return teamRate / float64(crews), nil
}

// Remaining returns the work left on a task once completed units and the days
// already worked since the count was taken are accounted for. The result is
// never negative.
func Remaining(total, completed, ratePerCrew float64, crews, daysWorked int) float64 {
	left := total - completed
	if daysWorked > 0 && crews > 0 && ratePerCrew > 0 {
		left -= ratePerCrew * float64(crews) * float64(daysWorked)
	}
	return math.Max(left, 0)
}

// Sample is the output measured on one working day.
type Sample struct {
	Units float64 `json:"units" yaml:"units"`
	Crews int     `json:"crews" yaml:"crews"`
}

// MeasuredRate returns the average per-crew daily rate over the samples.
// Samples without crews are ignored.
func MeasuredRate(samples []Sample) (float64, error) {
	perCrew := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Crews <= 0 {
			continue
		}
		perCrew = append(perCrew, s.Units/float64(s.Crews))
	}
	if len(perCrew) == 0 {
		return 0, ErrNoSamples
	}
	return stat.Mean(perCrew, nil), nil
}
