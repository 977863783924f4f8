// Package tools answers stateless lookups used by the form layer: the
// agricultural calendar and server-side identifier checks.
package tools

import (
	"strings"
	"time"

	"github.com/fla7a/backend/internal/domain/morocco"
)

// CalendarDTO describes the agricultural position of a date
type CalendarDTO struct {
	Date          string         `json:"date"`
	Campaign      string         `json:"campaign"`
	CampaignStart time.Time      `json:"campaign_start"`
	CampaignEnd   time.Time      `json:"campaign_end"`
	Season        morocco.Season `json:"season"`
}

// Calendar returns the campaign and season of t
func Calendar(t time.Time) CalendarDTO {
	c := morocco.CampaignFor(t)
	return CalendarDTO{
		Date:          t.Format(time.DateOnly),
		Campaign:      c.Label,
		CampaignStart: c.Start,
		CampaignEnd:   c.End,
		Season:        morocco.GetAgriculturalSeason(t),
	}
}

// IdentifiersInput holds the identifiers to check; nil fields are skipped
type IdentifiersInput struct {
	CIN   *string
	ICE   *string
	RIB   *string
	Phone *string
}

// FieldCheck is the verdict on one identifier
type FieldCheck struct {
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized,omitempty"`
}

// IdentifiersResult maps each submitted field to its verdict
type IdentifiersResult map[string]FieldCheck

// ValidateIdentifiers checks each submitted identifier. Valid values are
// echoed in the form they are stored in.
func ValidateIdentifiers(in IdentifiersInput) IdentifiersResult {
	res := make(IdentifiersResult, 4)
	if in.CIN != nil {
		res["cin"] = check(morocco.NormalizeCIN(*in.CIN), morocco.ValidateCIN)
	}
	if in.ICE != nil {
		res["ice"] = check(strings.TrimSpace(*in.ICE), morocco.ValidateICE)
	}
	if in.RIB != nil {
		res["rib"] = check(morocco.NormalizeRIB(*in.RIB), morocco.ValidateRIB)
	}
	if in.Phone != nil {
		res["phone"] = check(morocco.FormatPhone(*in.Phone), morocco.ValidateMoroccanPhone)
	}
	return res
}

func check(normalized string, valid func(string) bool) FieldCheck {
	if !valid(normalized) {
		return FieldCheck{}
	}
	return FieldCheck{Valid: true, Normalized: normalized}
}
