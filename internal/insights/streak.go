package insights

import (
	"time"

	"github.com/ananta12-d/lifeos/internal/models"
)

// Streak walks a habit's completed logs, which must be sorted by date
// descending, and counts consecutive calendar days ending at today or
// yesterday. A day without a logged check-in before that ends the count.
// Missing today does not break the streak until the day is over, but the
// unlogged today itself is not counted.
func Streak(logs []models.HabitLog, today time.Time) (length int, loggedToday bool) {
	today = dateOnly(today)
	expected := today
	for _, l := range logs {
		d := dateOnly(l.LogDate)
		switch {
		case d.Equal(today):
			loggedToday = true
			length++
			expected = today.AddDate(0, 0, -1)
		case d.Equal(expected):
			length++
			expected = expected.AddDate(0, 0, -1)
		case length == 0 && d.Equal(today.AddDate(0, 0, -1)):
			length++
			expected = today.AddDate(0, 0, -2)
		case d.Before(expected):
			// gap: earlier days no longer count
			return length, loggedToday
		default:
			// date after expected; unreachable with a descending feed
		}
	}
	return length, loggedToday
}
