package morocco

import (
	"fmt"
	"time"
)

// Season is one half of the agricultural year.
type Season string

const (
	// SeasonAutumnWinter covers September through February.
	SeasonAutumnWinter Season = "AUTOMNE_HIVER"
	// SeasonSpringSummer covers March through August.
	SeasonSpringSummer Season = "PRINTEMPS_ETE"
)

// CampaignStartMonth opens a new agricultural campaign.
const CampaignStartMonth = time.September

// Campaign describes one September to August agricultural year.
type Campaign struct {
	Label     string    `json:"label"`
	StartYear int       `json:"start_year"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// campaignStartYear returns the calendar year in which t's campaign began.
func campaignStartYear(t time.Time) int {
	if t.Month() >= CampaignStartMonth {
		return t.Year()
	}
	return t.Year() - 1
}

// GetCampaignYear returns the campaign label for t, e.g. "2024/2025" for any
// date from September 2024 through August 2025.
func GetCampaignYear(t time.Time) string {
	y := campaignStartYear(t)
	return fmt.Sprintf("%d/%d", y, y+1)
}

// GetAgriculturalSeason returns AUTOMNE_HIVER for September to February and
// PRINTEMPS_ETE otherwise.
func GetAgriculturalSeason(t time.Time) Season {
	switch t.Month() {
	case time.September, time.October, time.November, time.December, time.January, time.February:
		return SeasonAutumnWinter
	default:
		return SeasonSpringSummer
	}
}

// CampaignFor returns the campaign containing t. Bounds are in t's location;
// End is the last instant of August 31st.
func CampaignFor(t time.Time) Campaign {
	y := campaignStartYear(t)
	start := time.Date(y, CampaignStartMonth, 1, 0, 0, 0, 0, t.Location())
	return Campaign{
		Label:     GetCampaignYear(t),
		StartYear: y,
		Start:     start,
		End:       start.AddDate(1, 0, 0).Add(-time.Nanosecond),
	}
}
