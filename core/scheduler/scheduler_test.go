package scheduler

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewplan/core/calendar"
	"github.com/kilianp07/crewplan/core/crew"
	"github.com/kilianp07/crewplan/infra/logger"
)

var monday = calendar.Date(2026, 2, 2)

func bday(n int) time.Time { return calendar.OffsetBusinessDays(monday, n-1) }

func TestRunSingleTask(t *testing.T) {
	res, err := Run([]Task{{Name: "Stringers", Quantity: 100, Rate: 10}}, monday, 2, nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 20, 40, 60, 80, 100}, res.Cumulative)
	assert.Equal(t, []time.Time{
		monday, monday,
		calendar.Date(2026, 2, 3), calendar.Date(2026, 2, 4),
		calendar.Date(2026, 2, 5), calendar.Date(2026, 2, 6),
	}, res.Dates)
	assert.Equal(t, []time.Time{calendar.Date(2026, 2, 6)}, res.Completion)
	assert.Equal(t, calendar.Date(2026, 2, 6), res.Finish())
	assert.Equal(t, 5, res.WorkDays())
}

func TestRunWeekendStart(t *testing.T) {
	res, err := Run([]Task{{Name: "a", Quantity: 10, Rate: 10}}, calendar.Date(2026, 2, 7), 1, nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2026, 2, 9), res.Start())
	assert.Equal(t, calendar.Date(2026, 2, 9), res.Finish())
}

func TestRunSpansWeekend(t *testing.T) {
	res, err := Run([]Task{{Name: "a", Quantity: 70, Rate: 10}}, monday, 1, nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2026, 2, 10), res.Finish())
	for _, d := range res.Dates {
		assert.True(t, calendar.IsBusinessDay(d), "date %s", d)
	}
}

func TestRunTasksAreSequential(t *testing.T) {
	tasks := []Task{
		{Name: "Stringers", Quantity: 25, Rate: 10},
		{Name: "Cross Frames", Quantity: 10, Rate: 5},
	}
	res, err := Run(tasks, monday, 1, nil, Config{})
	require.NoError(t, err)
	// the last 5 units of day 3 leave slack that is not given to the next task
	assert.Equal(t, []float64{0, 10, 20, 25, 30, 35}, res.Cumulative)
	assert.Equal(t, []time.Time{bday(3), bday(5)}, res.Completion)
}

func TestRunFractionalRates(t *testing.T) {
	tasks := []Task{{Name: "Cross Girders", Quantity: 22, Rate: 0.75}}
	res, err := Run(tasks, monday, 2, nil, Config{})
	require.NoError(t, err)
	// 1.5 units a day -> 15 days, last day partial
	assert.Equal(t, 15, res.WorkDays())
	assert.InDelta(t, 22, res.Total(), 1e-9)
	assert.Equal(t, bday(15), res.Finish())
}

func TestRunFloatDriftAbsorbed(t *testing.T) {
	tasks := []Task{{Name: "a", Quantity: 1, Rate: 0.1}}
	res, err := Run(tasks, monday, 1, nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, 10, res.WorkDays())
}

func TestRunCrewWindowShortensSchedule(t *testing.T) {
	tasks := []Task{{Name: "a", Quantity: 100, Rate: 10}}
	base, err := Run(tasks, monday, 1, nil, Config{})
	require.NoError(t, err)
	w := []crew.Window{{Start: bday(3), End: bday(5), Crews: 5}}
	surged, err := Run(tasks, monday, 1, w, Config{})
	require.NoError(t, err)

	assert.Equal(t, bday(10), base.Finish())
	assert.Equal(t, bday(4), surged.Finish())
	assert.True(t, surged.Finish().Before(base.Finish()))
	assert.Equal(t, []float64{0, 10, 20, 70, 100}, surged.Cumulative)
}

func TestRunZeroQuantity(t *testing.T) {
	tasks := []Task{{Name: "a"}, {Name: "b"}}
	res, err := Run(tasks, calendar.Date(2026, 2, 8), 2, nil, Config{})
	require.NoError(t, err)
	start := calendar.Date(2026, 2, 9)
	assert.Equal(t, []time.Time{start}, res.Dates)
	assert.Equal(t, []float64{0}, res.Cumulative)
	assert.Equal(t, []time.Time{start, start}, res.Completion)
}

func TestRunZeroQuantityTaskInside(t *testing.T) {
	tasks := []Task{{Name: "lead", Quantity: 0, Rate: 1}, {Name: "a", Quantity: 10, Rate: 10}, {Name: "b"}, {Name: "c", Quantity: 10, Rate: 10}}
	res, err := Run(tasks, monday, 1, nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{bday(1), bday(1), bday(1), bday(2)}, res.Completion)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	tasks := []Task{{Name: "a", Quantity: 30, Rate: 10}}
	_, err := Run(tasks, monday, 1, nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, tasks[0].Quantity)
}

func TestRunStalls(t *testing.T) {
	cases := []struct {
		name    string
		tasks   []Task
		base    int
		windows []crew.Window
	}{
		{"zero rate", []Task{{Name: "a", Quantity: 10, Rate: 0}}, 2, nil},
		{"negative rate", []Task{{Name: "a", Quantity: 10, Rate: -1}}, 2, nil},
		{"zero crews", []Task{{Name: "a", Quantity: 10, Rate: 1}}, 0, nil},
		{"second task zero rate", []Task{{Name: "a", Quantity: 10, Rate: 10}, {Name: "b", Quantity: 1}}, 1, nil},
		{"window ends before work does", []Task{{Name: "a", Quantity: 50, Rate: 10}}, 0,
			[]crew.Window{{Start: bday(3), End: bday(4), Crews: 2}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := Run(c.tasks, monday, c.base, c.windows, Config{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStalled))
			var se *StallError
			require.True(t, errors.As(err, &se))
			assert.Greater(t, se.Remaining, 0.0)
			assert.Empty(t, res.Dates)
		})
	}
}

func TestRunStallReportsTask(t *testing.T) {
	tasks := []Task{{Name: "a", Quantity: 10, Rate: 10}, {Name: "Portals", Quantity: 4, Rate: 0}}
	_, err := Run(tasks, monday, 1, nil, Config{})
	var se *StallError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Portals", se.Task)
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, bday(2), se.Day)
}

func TestRunIdleDaysWhenCrewsResume(t *testing.T) {
	tasks := []Task{{Name: "a", Quantity: 30, Rate: 10}}
	w := []crew.Window{{Start: bday(3), End: bday(4), Crews: 2}}
	res, err := Run(tasks, monday, 0, w, Config{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 20, 30}, res.Cumulative)
	assert.Equal(t, bday(4), res.Finish())
}

func TestRunShutdownWindowPausesWork(t *testing.T) {
	tasks := []Task{{Name: "a", Quantity: 30, Rate: 10}}
	w := []crew.Window{{Start: bday(2), End: bday(3), Crews: 0}}
	res, err := Run(tasks, monday, 1, w, Config{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 10, 10, 20, 30}, res.Cumulative)
	assert.Equal(t, bday(5), res.Finish())
}

func TestRunDistantWindowResumes(t *testing.T) {
	tasks := []Task{{Name: "a", Quantity: 4, Rate: 1}}
	cases := []struct {
		name    string
		windows []crew.Window
		finish  time.Time
	}{
		{"single window", []crew.Window{
			{Start: calendar.Date(2029, 2, 5), End: calendar.Date(2029, 2, 9), Crews: 1},
		}, calendar.Date(2029, 2, 8)},
		{"staffed after a later shutdown ends", []crew.Window{
			{Start: calendar.Date(2029, 2, 5), End: calendar.Date(2029, 2, 16), Crews: 2},
			{Start: calendar.Date(2029, 2, 5), End: calendar.Date(2029, 2, 9), Crews: 0},
		}, calendar.Date(2029, 2, 13)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := Run(tasks, monday, 0, c.windows, Config{})
			require.NoError(t, err)
			assert.Equal(t, c.finish, res.Finish())
			assert.Equal(t, 4.0, res.Total())
		})
	}
}

func TestRunOverriddenWindowStalls(t *testing.T) {
	w := []crew.Window{
		{Start: calendar.Date(2029, 2, 5), End: calendar.Date(2029, 2, 9), Crews: 1},
		{Start: calendar.Date(2029, 2, 5), End: calendar.Date(2029, 2, 9), Crews: 0},
	}
	_, err := Run([]Task{{Name: "a", Quantity: 4, Rate: 1}}, monday, 0, w, Config{})
	var stall *StallError
	require.ErrorAs(t, err, &stall)
	assert.Equal(t, monday, stall.Day)
}

func TestRunFarWindowIdleDaysStayCheap(t *testing.T) {
	w := []crew.Window{{Start: calendar.Date(2150, 1, 4), End: calendar.Date(2150, 1, 8), Crews: 1}}
	done := make(chan error, 1)
	go func() {
		_, err := Run([]Task{{Name: "a", Quantity: 10, Rate: 1}}, monday, 0, w, Config{MaxDays: 20000})
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStalled)
	case <-time.After(5 * time.Second):
		t.Fatal("idle run towards a distant window did not return")
	}
}

func TestRunMaxDays(t *testing.T) {
	_, err := Run([]Task{{Name: "a", Quantity: 1000, Rate: 1}}, monday, 1, nil, Config{MaxDays: 10})
	assert.ErrorIs(t, err, ErrStalled)
}

func TestRunCustomEpsilon(t *testing.T) {
	tasks := []Task{{Name: "a", Quantity: 10.4, Rate: 10}}
	res, err := Run(tasks, monday, 1, nil, Config{Epsilon: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.WorkDays())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{Epsilon: -1}.Validate())
	assert.Error(t, Config{MaxDays: -1}.Validate())
}

func TestRunProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(4)
		tasks := make([]Task, n)
		sum := 0.0
		for j := range tasks {
			tasks[j] = Task{Name: "t", Quantity: math.Round(rng.Float64()*500*100) / 100, Rate: 0.5 + rng.Float64()*20}
			sum += tasks[j].Quantity
		}
		var windows []crew.Window
		for k := 0; k < rng.Intn(3); k++ {
			s := bday(1 + rng.Intn(30))
			windows = append(windows, crew.Window{Start: s, End: calendar.OffsetBusinessDays(s, rng.Intn(10)), Crews: 1 + rng.Intn(5)})
		}
		start := monday.AddDate(0, 0, rng.Intn(14))
		base := 1 + rng.Intn(4)

		res, err := Run(tasks, start, base, windows, Config{})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if len(res.Dates) != len(res.Cumulative) {
			t.Fatalf("run %d: %d dates vs %d points", i, len(res.Dates), len(res.Cumulative))
		}
		if len(res.Completion) != n {
			t.Fatalf("run %d: %d completion dates", i, len(res.Completion))
		}
		for k := 1; k < len(res.Cumulative); k++ {
			if res.Cumulative[k] < res.Cumulative[k-1] {
				t.Fatalf("run %d: cumulative decreases at %d", i, k)
			}
		}
		if math.Abs(res.Total()-sum) > 1e-6 {
			t.Fatalf("run %d: total %.6f want %.6f", i, res.Total(), sum)
		}
		for k := 1; k < n; k++ {
			if res.Completion[k].Before(res.Completion[k-1]) {
				t.Fatalf("run %d: completion order broken", i)
			}
		}
		for _, d := range append(append([]time.Time{}, res.Dates...), res.Completion...) {
			if !calendar.IsBusinessDay(d) {
				t.Fatalf("run %d: %s is not a business day", i, d)
			}
		}
		again, err := Run(tasks, start, base, windows, Config{})
		if err != nil {
			t.Fatalf("rerun %d: %v", i, err)
		}
		assert.Equal(t, res, again)
	}
}

func TestSchedulerLogs(t *testing.T) {
	s := New(Config{}, logger.NopLogger{})
	res, err := s.Run([]Task{{Name: "a", Quantity: 10, Rate: 5}}, monday, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, bday(2), res.Finish())
	_, err = s.Run([]Task{{Name: "a", Quantity: 10}}, monday, 1, nil)
	assert.ErrorIs(t, err, ErrStalled)
}
