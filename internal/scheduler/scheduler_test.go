package scheduler

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	trigger := Trigger{Weekday: time.Monday, Hour: 8, Minute: 0}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"midweek waits for next monday",
			time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC), // Wednesday
			time.Date(2024, 6, 17, 8, 0, 0, 0, time.UTC),
		},
		{
			"monday before the trigger fires same day",
			time.Date(2024, 6, 10, 7, 59, 0, 0, time.UTC),
			time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			"exactly at the trigger waits a full week",
			time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 17, 8, 0, 0, 0, time.UTC),
		},
		{
			"sunday evening fires next morning",
			time.Date(2024, 6, 9, 22, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextRun(tt.now, trigger); !got.Equal(tt.want) {
				t.Fatalf("NextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNextRunAlwaysInFuture(t *testing.T) {
	trigger := Trigger{Weekday: time.Friday, Hour: 23, Minute: 59}
	now := time.Date(2024, 6, 14, 23, 59, 0, 0, time.UTC) // Friday 23:59
	next := NextRun(now, trigger)
	if !next.After(now) {
		t.Fatalf("NextRun must be strictly after now, got %v", next)
	}
}
