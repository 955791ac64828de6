package report

import (
	"sort"

	"github.com/Veraticus/passbook/internal/model"
	"github.com/shopspring/decimal"
)

// Rates are the deductions taken from gross sales before settlement.
type Rates struct {
	PG      decimal.Decimal `json:"pg_rate"`
	Royalty decimal.Decimal `json:"royalty_rate"`
}

// DefaultRates returns the payment gateway fee (3.3%) and franchise royalty (5%).
func DefaultRates() Rates {
	return Rates{
		PG:      decimal.RequireFromString("0.033"),
		Royalty: decimal.RequireFromString("0.05"),
	}
}

// CategorySales is the revenue of one export category.
type CategorySales struct {
	Total    decimal.Decimal `json:"total"`
	Share    decimal.Decimal `json:"share_percent"`
	Category model.Category  `json:"category"`
	Orders   int             `json:"orders"`
}

// SalesSummary is gross revenue and what remains after fees.
type SalesSummary struct {
	Total      decimal.Decimal `json:"total"`
	PGFee      decimal.Decimal `json:"pg_fee"`
	Royalty    decimal.Decimal `json:"royalty"`
	Settlement decimal.Decimal `json:"settlement"`
	ByCategory []CategorySales `json:"by_category"`
	Orders     int             `json:"orders"`
}

// Sales totals every paid order. Settlement money covers all categories,
// so NotApplicable orders are included here. Orders with malformed amounts
// are skipped.
func Sales(orders []model.Order, rates Rates) SalesSummary {
	summary := SalesSummary{
		Total:   decimal.Zero,
		PGFee:   decimal.Zero,
		Royalty: decimal.Zero,
	}

	byCategory := make(map[model.Category]*CategorySales)
	for _, o := range orders {
		if o.AmountErr != nil {
			continue
		}
		amount := decimal.NewFromInt(o.Amount)
		summary.Total = summary.Total.Add(amount)
		summary.Orders++

		cs, ok := byCategory[o.Category]
		if !ok {
			cs = &CategorySales{Category: o.Category, Total: decimal.Zero}
			byCategory[o.Category] = cs
		}
		cs.Total = cs.Total.Add(amount)
		cs.Orders++
	}

	summary.PGFee = summary.Total.Mul(rates.PG)
	summary.Royalty = summary.Total.Mul(rates.Royalty)
	summary.Settlement = summary.Total.Sub(summary.PGFee).Sub(summary.Royalty)

	hundred := decimal.NewFromInt(100)
	for _, cs := range byCategory {
		cs.Share = decimal.Zero
		if !summary.Total.IsZero() {
			cs.Share = cs.Total.Div(summary.Total).Mul(hundred).Round(1)
		}
		summary.ByCategory = append(summary.ByCategory, *cs)
	}

	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if cmp := a.Total.Cmp(b.Total); cmp != 0 {
			return cmp > 0
		}
		return a.Category < b.Category
	})

	return summary
}

// MemberTotal is one member's spending.
type MemberTotal struct {
	Name   string `json:"name"`
	Total  int64  `json:"total"`
	Orders int    `json:"orders"`
}

// TopMembers returns the n members who paid the most, ties broken by name.
func TopMembers(orders []model.Order, n int) []MemberTotal {
	totals := make(map[string]*MemberTotal)
	for _, o := range orders {
		if o.AmountErr != nil || o.Name == "" {
			continue
		}
		mt, ok := totals[o.Name]
		if !ok {
			mt = &MemberTotal{Name: o.Name}
			totals[o.Name] = mt
		}
		mt.Total += o.Amount
		mt.Orders++
	}

	out := make([]MemberTotal, 0, len(totals))
	for _, mt := range totals {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
