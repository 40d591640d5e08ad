package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsBusinessDay(t *testing.T) {
	assert.True(t, IsBusinessDay(Date(2026, 2, 2)))  // Monday
	assert.True(t, IsBusinessDay(Date(2026, 2, 6)))  // Friday
	assert.False(t, IsBusinessDay(Date(2026, 2, 7))) // Saturday
	assert.False(t, IsBusinessDay(Date(2026, 2, 8))) // Sunday
}

func TestNormalizeForward(t *testing.T) {
	mon := Date(2026, 2, 9)
	assert.Equal(t, mon, NormalizeForward(Date(2026, 2, 7)))
	assert.Equal(t, mon, NormalizeForward(Date(2026, 2, 8)))
	assert.Equal(t, mon, NormalizeForward(mon))
	wed := time.Date(2026, 2, 11, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, Date(2026, 2, 11), NormalizeForward(wed))
}

func TestOffsetBusinessDays(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"zero on weekday", Date(2026, 3, 10), 0, Date(2026, 3, 10)},
		{"zero on saturday", Date(2026, 3, 14), 0, Date(2026, 3, 16)},
		{"next day", Date(2026, 3, 10), 1, Date(2026, 3, 11)},
		{"friday to monday", Date(2026, 3, 13), 1, Date(2026, 3, 16)},
		{"sunday plus one", Date(2026, 3, 15), 1, Date(2026, 3, 17)},
		{"two weeks", Date(2026, 2, 2), 10, Date(2026, 2, 16)},
		{"back over weekend", Date(2026, 3, 16), -1, Date(2026, 3, 13)},
		{"back five", Date(2026, 2, 13), -5, Date(2026, 2, 6)},
		{"workday budget", Date(2026, 2, 11), 57, Date(2026, 5, 1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, OffsetBusinessDays(c.from, c.n))
		})
	}
}

func TestOffsetBusinessDaysMatchesWalk(t *testing.T) {
	walk := func(d time.Time, n int) time.Time {
		d = NormalizeForward(d)
		step := 1
		if n < 0 {
			step, n = -1, -n
		}
		for n > 0 {
			d = d.AddDate(0, 0, step)
			if IsBusinessDay(d) {
				n--
			}
		}
		return d
	}
	for day := 0; day < 7; day++ {
		from := Date(2026, 2, 2).AddDate(0, 0, day)
		for n := -23; n <= 23; n++ {
			if got, want := OffsetBusinessDays(from, n), walk(from, n); !got.Equal(want) {
				t.Fatalf("%s %+d: got %s want %s", Format(from), n, Format(got), Format(want))
			}
		}
	}
}

func TestOffsetBusinessDaysLargeN(t *testing.T) {
	done := make(chan time.Time, 1)
	go func() { done <- OffsetBusinessDays(Date(2026, 2, 2), 1_000_001) }()
	select {
	case got := <-done:
		assert.Equal(t, time.Tuesday, got.Weekday())
		assert.Equal(t, 1_000_002, CountBusinessDays(Date(2026, 2, 2), got))
		assert.Equal(t, 1_400_001, CalendarDaysBetween(Date(2026, 2, 2), got))
	case <-time.After(2 * time.Second):
		t.Fatal("offset of a million business days did not return")
	}
}

func TestCountBusinessDays(t *testing.T) {
	assert.Equal(t, 5, CountBusinessDays(Date(2026, 2, 2), Date(2026, 2, 6)))
	assert.Equal(t, 5, CountBusinessDays(Date(2026, 2, 2), Date(2026, 2, 8)))
	assert.Equal(t, 1, CountBusinessDays(Date(2026, 2, 2), Date(2026, 2, 2)))
	assert.Equal(t, 0, CountBusinessDays(Date(2026, 2, 7), Date(2026, 2, 8)))
	assert.Equal(t, 0, CountBusinessDays(Date(2026, 2, 6), Date(2026, 2, 2)))
	assert.Equal(t, 11, CountBusinessDays(Date(2026, 2, 4), Date(2026, 2, 18)))
}

func TestCountMatchesOffset(t *testing.T) {
	start := Date(2026, 1, 5)
	for n := 0; n < 60; n++ {
		end := OffsetBusinessDays(start, n)
		if got := CountBusinessDays(start, end); got != n+1 {
			t.Fatalf("offset %d: count %d", n, got)
		}
	}
}

func TestBetween(t *testing.T) {
	assert.Equal(t, 1, BusinessDaysBetween(Date(2026, 3, 13), Date(2026, 3, 16)))
	assert.Equal(t, -1, BusinessDaysBetween(Date(2026, 3, 16), Date(2026, 3, 13)))
	assert.Equal(t, 0, BusinessDaysBetween(Date(2026, 3, 14), Date(2026, 3, 16)))
	assert.Equal(t, 3, CalendarDaysBetween(Date(2026, 3, 13), Date(2026, 3, 16)))
	assert.Equal(t, -3, CalendarDaysBetween(Date(2026, 3, 16), Date(2026, 3, 13)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-02")
	assert.NoError(t, err)
	assert.Equal(t, Date(2026, 2, 2), d)
	assert.Equal(t, "2026-02-02", Format(d))
	_, err = ParseDate("02/02/2026")
	assert.Error(t, err)
}
