package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestPayoutDateExamples(t *testing.T) {
	cases := []struct {
		name      string
		eventDate string
		want      string
	}{
		{"friday skips weekend", "2025-02-14", "2025-02-19"},
		{"saturday starts counting monday", "2025-02-15", "2025-02-19"},
		{"sunday", "2025-02-16", "2025-02-19"},
		{"monday", "2025-02-17", "2025-02-20"},
		{"wednesday crosses weekend", "2025-02-19", "2025-02-24"},
		{"month boundary", "2025-02-27", "2025-03-04"},
		{"year boundary", "2025-12-31", "2026-01-05"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PayoutDate(date(t, tc.eventDate))
			assert.Equal(t, tc.want, got.Format("2006-01-02"))
		})
	}
}

func TestPayoutDateProperties(t *testing.T) {
	start := date(t, "2024-01-01")
	for i := 0; i < 3*366; i++ {
		d := start.AddDate(0, 0, i)
		payout := PayoutDate(d)

		require.True(t, payout.After(d), "payout must follow %s", d)
		require.True(t, IsBusinessDay(payout), "payout for %s landed on %s", d, payout.Weekday())

		business := 0
		for cur := d.AddDate(0, 0, 1); !cur.After(payout); cur = cur.AddDate(0, 0, 1) {
			if IsBusinessDay(cur) {
				business++
			}
		}
		require.Equal(t, PayoutDelayBusinessDays, business, "business days between %s and %s", d, payout)
	}
}

func TestAddBusinessDaysClampsToOne(t *testing.T) {
	friday := date(t, "2025-02-14")
	assert.Equal(t, "2025-02-17", AddBusinessDays(friday, 0).Format("2006-01-02"))
	assert.Equal(t, "2025-02-17", AddBusinessDays(friday, 1).Format("2006-01-02"))
	assert.Equal(t, "2025-02-28", AddBusinessDays(friday, 10).Format("2006-01-02"))
}
