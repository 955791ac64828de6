package campaign

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/parser"
	"github.com/shopspring/decimal"
)

// ErrUnknownCampaign is returned when an estimate names a campaign that is not configured.
var ErrUnknownCampaign = errors.New("unknown campaign")

// Estimate is the projected regular-price revenue for a campaign window.
type Estimate struct {
	Amount          decimal.Decimal `json:"amount"`
	RegularTotal    decimal.Decimal `json:"regular_total"`
	CampaignID      string          `json:"campaign_id"`
	CampaignDays    int             `json:"campaign_days"`
	OverallDays     int             `json:"overall_days"`
	CampaignDaysIn  int             `json:"campaign_days_in_period"`
	NonCampaignDays int             `json:"non_campaign_days"`
}

// EstimateRegularRevenue projects how much regular-price revenue the campaign's
// window would have earned, using the daily regular revenue observed on
// non-campaign days of [overallStart, overallEnd].
//
// Campaign overlap with the period is summed per campaign without removing
// days shared between overlapping campaigns.
func (l *Locator) EstimateRegularRevenue(id string, regular []model.Order, overallStart, overallEnd time.Time) (Estimate, error) {
	target, ok := l.lookup(id)
	if !ok {
		return Estimate{}, fmt.Errorf("%w: %s", ErrUnknownCampaign, id)
	}

	est := Estimate{
		CampaignID:   id,
		CampaignDays: target.Days(),
		OverallDays:  parser.InclusiveDays(overallStart, overallEnd),
		Amount:       decimal.Zero,
		RegularTotal: decimal.Zero,
	}

	for _, c := range l.campaigns {
		start := laterDate(overallStart, c.Start)
		end := earlierDate(overallEnd, c.End)
		if parser.DaysBetween(start, end) >= 0 {
			est.CampaignDaysIn += parser.InclusiveDays(start, end)
		}
	}

	for _, o := range regular {
		est.RegularTotal = est.RegularTotal.Add(decimal.NewFromInt(o.Amount))
	}

	est.NonCampaignDays = est.OverallDays - est.CampaignDaysIn
	if est.NonCampaignDays <= 0 {
		return est, nil
	}

	est.Amount = est.RegularTotal.
		Mul(decimal.NewFromInt(int64(est.CampaignDays))).
		Div(decimal.NewFromInt(int64(est.NonCampaignDays)))

	return est, nil
}

func (l *Locator) lookup(id string) (catalog.Campaign, bool) {
	for _, c := range l.campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return catalog.Campaign{}, false
}

func laterDate(a, b time.Time) time.Time {
	if parser.DaysBetween(a, b) > 0 {
		return b
	}
	return a
}

func earlierDate(a, b time.Time) time.Time {
	if parser.DaysBetween(a, b) < 0 {
		return b
	}
	return a
}
