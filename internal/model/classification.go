package model

import "time"

// Kind is the outcome of classifying an order.
type Kind string

// Classification kinds.
const (
	KindRegular              Kind = "REGULAR"
	KindPromotional          Kind = "PROMOTIONAL"
	KindSuspectedPromotional Kind = "SUSPECTED_PROMOTIONAL"
	KindAnomalous            Kind = "ANOMALOUS"
	KindNotApplicable        Kind = "NOT_APPLICABLE"
)

// Kinds lists every kind in report order.
func Kinds() []Kind {
	return []Kind{
		KindRegular,
		KindPromotional,
		KindSuspectedPromotional,
		KindAnomalous,
		KindNotApplicable,
	}
}

// DisplayName returns the label the merchant's staff use for a kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindRegular:
		return "정가"
	case KindPromotional:
		return "이벤트"
	case KindSuspectedPromotional:
		return "이벤트 의심"
	case KindAnomalous:
		return "비정상"
	case KindNotApplicable:
		return "해당없음"
	default:
		return string(k)
	}
}

// Direction says where a campaign lies relative to an order.
type Direction string

// Campaign directions.
const (
	DirectionActive Direction = "active"
	DirectionPast   Direction = "past"
	DirectionFuture Direction = "future"
)

// Reason explains why an order was marked anomalous.
type Reason string

// Anomaly reasons.
const (
	ReasonNone                 Reason = ""
	ReasonMissingCategory      Reason = "missing_category"
	ReasonMalformedDescription Reason = "malformed_description"
	ReasonMalformedAmount      Reason = "malformed_amount"
	ReasonNoCampaignMatch      Reason = "no_campaign_match"
	ReasonNoCampaign           Reason = "no_campaign"
)

// Classification is the result of classifying one order.
type Classification struct {
	Start         *time.Time `json:"start,omitempty"`
	End           *time.Time `json:"end,omitempty"`
	RemainingDays *int       `json:"remaining_days,omitempty"`
	Expired       *bool      `json:"expired,omitempty"`
	RowID         string     `json:"row_id"`
	Category      Category   `json:"category"`
	Kind          Kind       `json:"kind"`
	Label         Label      `json:"label,omitempty"`
	CampaignID    string     `json:"campaign_id,omitempty"`
	Reason        Reason     `json:"reason,omitempty"`
	DDay          string     `json:"d_day,omitempty"`
	Direction     Direction  `json:"direction,omitempty"`
	// Distance is the whole-day count between the order date and CampaignID's
	// window; 0 while the campaign is active.
	Distance int `json:"distance"`
}

// SignedDistance returns Distance negated for past campaigns.
func (c *Classification) SignedDistance() int {
	if c.Direction == DirectionPast {
		return -c.Distance
	}
	return c.Distance
}

// HasTerm reports whether the term-pass window fields are populated.
func (c *Classification) HasTerm() bool {
	return c.Start != nil && c.End != nil
}
