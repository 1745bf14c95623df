package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_HourIndex(t *testing.T) {
	s := Snapshot{
		UTCOffsetSeconds: 3600,
		Hourly:           Hourly{Time: []string{"2026-10-16T09:00", "2026-10-16T10:00", "2026-10-16T12:00"}},
	}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"exact hour", time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), 1},
		{"inside the hour", time.Date(2026, 10, 16, 9, 40, 0, 0, time.UTC), 1},
		{"gap falls back to last step before", time.Date(2026, 10, 16, 10, 5, 0, 0, time.UTC), 1},
		{"before the axis", time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), 0},
		{"after the axis", time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.HourIndex(tt.now))
		})
	}

	assert.Equal(t, -1, Snapshot{}.HourIndex(time.Now()))
}

func TestSnapshot_DayIndex(t *testing.T) {
	s := Snapshot{
		UTCOffsetSeconds: 7200,
		Daily:            Daily{Time: []string{"2026-10-16", "2026-10-17"}},
	}

	assert.Equal(t, 0, s.DayIndex(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, s.DayIndex(time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC)), "offset crosses midnight")
	assert.Equal(t, 0, s.DayIndex(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSnapshot_NowcastWindow(t *testing.T) {
	s := Snapshot{Nowcast: Nowcast{
		Time: []string{
			"2026-10-16T10:00", "2026-10-16T10:15", "2026-10-16T10:30",
			"2026-10-16T10:45", "2026-10-16T11:00", "2026-10-16T11:15",
		},
		Precipitation: Series{ptr(0), ptr(0.2), nil, ptr(0.8), ptr(2), ptr(3)},
	}}

	w := s.NowcastWindow(time.Date(2026, 10, 16, 10, 20, 0, 0, time.UTC))

	assert.Len(t, w, 4)
	assert.Equal(t, 2.0, w.Peak(), "window starts at the 10:15 slot")

	assert.Nil(t, Snapshot{}.NowcastWindow(time.Now()))
}

func TestSeries_Peak(t *testing.T) {
	assert.Equal(t, 0.0, Series(nil).Peak())
	assert.Equal(t, 0.0, Series{nil, nil}.Peak())
	assert.Equal(t, 1.5, Series{ptr(0.2), nil, ptr(1.5), ptr(0.4)}.Peak())
}
