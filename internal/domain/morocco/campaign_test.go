package morocco

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestGetCampaignYear(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"august closes previous campaign", date(2025, time.August, 31), "2024/2025"},
		{"september opens new campaign", date(2025, time.September, 1), "2025/2026"},
		{"december", date(2025, time.December, 31), "2025/2026"},
		{"january", date(2026, time.January, 1), "2025/2026"},
		{"march", date(2026, time.March, 15), "2025/2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCampaignYear(tt.at))
		})
	}
}

func TestGetAgriculturalSeason(t *testing.T) {
	autumnWinter := []time.Month{time.September, time.October, time.November, time.December, time.January, time.February}
	springSummer := []time.Month{time.March, time.April, time.May, time.June, time.July, time.August}

	for _, m := range autumnWinter {
		assert.Equal(t, SeasonAutumnWinter, GetAgriculturalSeason(date(2025, m, 10)), m.String())
	}
	for _, m := range springSummer {
		assert.Equal(t, SeasonSpringSummer, GetAgriculturalSeason(date(2025, m, 10)), m.String())
	}
}

func TestCampaignFor(t *testing.T) {
	c := CampaignFor(date(2026, time.February, 3))

	assert.Equal(t, "2025/2026", c.Label)
	assert.Equal(t, 2025, c.StartYear)
	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), c.Start)
	assert.Equal(t, time.August, c.End.Month())
	assert.Equal(t, 31, c.End.Day())
	assert.Equal(t, 2026, c.End.Year())
	assert.Equal(t, GetCampaignYear(c.End), c.Label)
	assert.NotEqual(t, GetCampaignYear(c.End.Add(time.Nanosecond)), c.Label)
}
