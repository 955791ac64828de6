package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/passbook/internal/campaign"
	"github.com/Veraticus/passbook/internal/model"
)

// CampaignLine is the performance of one campaign.
type CampaignLine struct {
	Start              time.Time          `json:"start"`
	End                time.Time          `json:"end"`
	Estimate           *campaign.Estimate `json:"estimate,omitempty"`
	ID                 string             `json:"id"`
	Days               int                `json:"days"`
	Promotional        int                `json:"promotional"`
	PromotionalRevenue int64              `json:"promotional_revenue"`
	Suspected          int                `json:"suspected"`
	SuspectedRevenue   int64              `json:"suspected_revenue"`
	Mismatched         int                `json:"mismatched"`
}

// KindTotal counts classifications of one kind.
type KindTotal struct {
	Kind    model.Kind `json:"kind"`
	Name    string     `json:"name"`
	Count   int        `json:"count"`
	Revenue int64      `json:"revenue"`
}

// CampaignReport summarizes classification outcomes per campaign.
type CampaignReport struct {
	Campaigns []CampaignLine `json:"campaigns"`
	Kinds     []KindTotal    `json:"kinds"`
}

// Campaigns attributes classified orders to campaigns and estimates each
// campaign's regular-price revenue over [start, end]. Estimates are skipped
// when the period is unknown. NotApplicable orders are left out of the
// kind totals.
func Campaigns(orders []model.Order, results []model.Classification, locator *campaign.Locator, start, end time.Time) (CampaignReport, error) {
	lines := make(map[string]*CampaignLine)
	var report CampaignReport
	for _, c := range locator.Campaigns() {
		report.Campaigns = append(report.Campaigns, CampaignLine{
			ID:    c.ID,
			Start: c.Start,
			End:   c.End,
			Days:  c.Days(),
		})
	}
	for i := range report.Campaigns {
		lines[report.Campaigns[i].ID] = &report.Campaigns[i]
	}

	kinds := make(map[model.Kind]*KindTotal)
	for _, k := range model.Kinds() {
		if k == model.KindNotApplicable {
			continue
		}
		kinds[k] = &KindTotal{Kind: k, Name: k.DisplayName()}
	}

	var regular []model.Order
	for i, r := range results {
		if i >= len(orders) {
			break
		}
		o := orders[i]

		if kt, ok := kinds[r.Kind]; ok {
			kt.Count++
			if o.AmountErr == nil {
				kt.Revenue += o.Amount
			}
		}

		line := lines[r.CampaignID]
		switch r.Kind {
		case model.KindRegular:
			regular = append(regular, o)
		case model.KindPromotional:
			if line != nil {
				line.Promotional++
				line.PromotionalRevenue += o.Amount
			}
		case model.KindSuspectedPromotional:
			if line != nil {
				line.Suspected++
				line.SuspectedRevenue += o.Amount
			}
		case model.KindAnomalous:
			if line != nil && r.Reason == model.ReasonNoCampaignMatch {
				line.Mismatched++
			}
		}
	}

	for _, k := range model.Kinds() {
		if kt, ok := kinds[k]; ok {
			report.Kinds = append(report.Kinds, *kt)
		}
	}

	if start.IsZero() || end.IsZero() {
		return report, nil
	}

	for i := range report.Campaigns {
		est, err := locator.EstimateRegularRevenue(report.Campaigns[i].ID, regular, start, end)
		if err != nil {
			if errors.Is(err, campaign.ErrUnknownCampaign) {
				continue
			}
			return report, fmt.Errorf("failed to estimate %s: %w", report.Campaigns[i].ID, err)
		}
		report.Campaigns[i].Estimate = &est
	}

	return report, nil
}
