package reminder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"WeddingSite/internal/models"
)

func TestWholeDaysBetween(t *testing.T) {
	cases := []struct {
		from, to string
		want     int
	}{
		{"2025-09-17T00:00:00Z", "2025-10-01T00:00:00Z", 14},
		{"2025-09-10T00:00:00Z", "2025-10-01T00:00:00Z", 21},
		{"2025-09-30T23:59:00Z", "2025-10-01T00:01:00Z", 1},
		{"2025-10-01T00:01:00Z", "2025-10-01T23:59:00Z", 0},
		{"2025-10-03T08:00:00Z", "2025-10-01T00:00:00Z", -2},
		{"2025-09-15T23:00:00-05:00", "2025-09-20T00:00:00Z", 4},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, wholeDaysBetween(at(tc.from), at(tc.to)), "%s -> %s", tc.from, tc.to)
	}
}

func TestClassify(t *testing.T) {
	kind, reason := classify(models.Campaign{SendAt: ptrTime("2025-09-24T10:00:00Z")})
	require.Equal(t, models.KindAbsolute, kind)
	require.Empty(t, reason)

	kind, reason = classify(models.Campaign{DaysBeforeDeadline: ptrInt(0)})
	require.Equal(t, models.KindDaysOut, kind)
	require.Empty(t, reason)

	_, reason = classify(models.Campaign{SendAt: ptrTime("2025-09-24T10:00:00Z"), DaysBeforeDeadline: ptrInt(1)})
	require.NotEmpty(t, reason)

	_, reason = classify(models.Campaign{})
	require.NotEmpty(t, reason)

	_, reason = classify(models.Campaign{DaysBeforeDeadline: ptrInt(-1)})
	require.NotEmpty(t, reason)
}
