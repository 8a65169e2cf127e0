package reminder

import (
	"fmt"
	"strings"
	"time"

	"WeddingSite/internal/models"
)

const bucketLayout = "2006-01-02"

// classify reports which scheduling mode c uses. A campaign with both or
// neither schedule field, or a negative offset, is malformed and comes back
// with a reason.
func classify(c models.Campaign) (models.ReminderKind, string) {
	switch {
	case c.SendAt != nil && c.DaysBeforeDeadline != nil:
		return "", "both send_at and days_before_deadline set"
	case c.SendAt == nil && c.DaysBeforeDeadline == nil:
		return "", "neither send_at nor days_before_deadline set"
	case c.SendAt != nil:
		return models.KindAbsolute, ""
	case *c.DaysBeforeDeadline < 0:
		return "", fmt.Sprintf("negative days_before_deadline %d", *c.DaysBeforeDeadline)
	default:
		return models.KindDaysOut, ""
	}
}

// wholeDaysBetween counts UTC calendar-day boundaries from from to to.
// It is negative once to lies on an earlier day.
func wholeDaysBetween(from, to time.Time) int {
	f := utcMidnight(from)
	t := utcMidnight(to)
	return int(t.Sub(f) / (24 * time.Hour))
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayBucket(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(bucketLayout)
}

// formatDeadline renders the deadline's UTC calendar date, the same day
// wholeDaysBetween counts toward.
func formatDeadline(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("Monday, January 2, 2006")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
