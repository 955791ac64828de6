// Package catalog holds the merchant's regular price list and promotional campaigns.
//
// A Catalog is built once at startup, validated, and never mutated afterwards,
// so it is safe to share between goroutines.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/Veraticus/passbook/internal/common"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/parser"
)

// DateLayout is the layout of campaign dates in definitions.
const DateLayout = "2006-01-02"

// ConfigError describes one problem in a catalog definition.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid catalog: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return common.ErrInvalidConfig
}

// PriceSet is the set of accepted prices for one tier.
type PriceSet []int64

// Contains reports whether amount is an accepted price.
func (p PriceSet) Contains(amount int64) bool {
	return slices.Contains(p, amount)
}

// Adjustment is a campaign's replacement product for a regular tier.
type Adjustment struct {
	Label  model.Label `yaml:"label" toml:"label" json:"label"`
	Prices PriceSet    `yaml:"prices" toml:"prices" json:"prices"`
}

// Definition is the serialisable form of a catalog.
type Definition struct {
	Regular   map[model.Category]map[model.Label]PriceSet `yaml:"regular" toml:"regular"`
	Campaigns []CampaignDefinition                        `yaml:"campaigns" toml:"campaigns"`
}

// CampaignDefinition is the serialisable form of a campaign.
type CampaignDefinition struct {
	Adjustments map[model.Category]map[model.Label]Adjustment `yaml:"adjustments" toml:"adjustments"`
	ID          string                                        `yaml:"id" toml:"id"`
	Start       string                                        `yaml:"start" toml:"start"`
	End         string                                        `yaml:"end" toml:"end"`
}

// Campaign is a time-boxed promotional price override.
type Campaign struct {
	Start       time.Time // midnight of the first day
	End         time.Time // midnight of the last day
	Adjustments map[model.Category]map[model.Label]Adjustment
	ID          string
}

// EndOfDay is the last instant of the campaign's final day.
func (c Campaign) EndOfDay() time.Time {
	return c.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Contains reports whether ts falls inside [Start, EndOfDay].
func (c Campaign) Contains(ts time.Time) bool {
	return !ts.Before(c.Start) && !ts.After(c.EndOfDay())
}

// Days is the inclusive number of days the campaign runs.
func (c Campaign) Days() int {
	return parser.InclusiveDays(c.Start, c.End)
}

// Match finds the adjustment whose adjusted label and price set accept the order.
// It returns the base (regular) label the adjustment replaces.
func (c Campaign) Match(category model.Category, label model.Label, amount int64) (model.Label, bool) {
	for _, base := range sortedLabels(c.Adjustments[category]) {
		adj := c.Adjustments[category][base]
		if adj.Label == label && adj.Prices.Contains(amount) {
			return base, true
		}
	}
	return "", false
}

// BaseLabels lists the regular labels the campaign adjusts for a category,
// smallest quantity first.
func (c Campaign) BaseLabels(category model.Category) []model.Label {
	return sortedLabels(c.Adjustments[category])
}

// Catalog is the validated, immutable price configuration.
type Catalog struct {
	regular   map[model.Category]map[model.Label]PriceSet
	loc       *time.Location
	campaigns []Campaign
}

// New validates a definition and builds a catalog whose campaign dates are
// interpreted in loc.
func New(def Definition, loc *time.Location) (*Catalog, error) {
	if loc == nil {
		loc = time.UTC
	}

	if err := Validate(def); err != nil {
		return nil, err
	}

	c := &Catalog{
		regular:   make(map[model.Category]map[model.Label]PriceSet, len(def.Regular)),
		campaigns: make([]Campaign, 0, len(def.Campaigns)),
		loc:       loc,
	}

	for category, tiers := range def.Regular {
		copied := make(map[model.Label]PriceSet, len(tiers))
		for label, prices := range tiers {
			copied[label] = slices.Clone(prices)
		}
		c.regular[category] = copied
	}

	for _, cd := range def.Campaigns {
		start, _ := time.ParseInLocation(DateLayout, cd.Start, loc)
		end, _ := time.ParseInLocation(DateLayout, cd.End, loc)

		adjustments := make(map[model.Category]map[model.Label]Adjustment, len(cd.Adjustments))
		for category, byBase := range cd.Adjustments {
			copied := make(map[model.Label]Adjustment, len(byBase))
			for base, adj := range byBase {
				copied[base] = Adjustment{Label: adj.Label, Prices: slices.Clone(adj.Prices)}
			}
			adjustments[category] = copied
		}

		c.campaigns = append(c.campaigns, Campaign{
			ID:          cd.ID,
			Start:       start,
			End:         end,
			Adjustments: adjustments,
		})
	}

	return c, nil
}

// Validate checks a definition and returns every problem found.
func Validate(def Definition) error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if len(def.Regular) == 0 {
		add("regular", "no regular prices defined")
	}
	for category, tiers := range def.Regular {
		field := fmt.Sprintf("regular.%s", category)
		if !category.IsPass() {
			add(field, "unrecognized category")
			continue
		}
		for label, prices := range tiers {
			checkLabel(add, field+"."+string(label), category, label)
			checkPrices(add, field+"."+string(label), prices)
		}
	}

	seen := make(map[string]bool, len(def.Campaigns))
	for i, cd := range def.Campaigns {
		field := fmt.Sprintf("campaigns[%d]", i)
		if cd.ID == "" {
			add(field+".id", "must not be empty")
		} else {
			field = fmt.Sprintf("campaigns.%s", cd.ID)
			if seen[cd.ID] {
				add(field, "duplicate campaign id")
			}
			seen[cd.ID] = true
		}

		start, startErr := time.Parse(DateLayout, cd.Start)
		if startErr != nil {
			add(field+".start", "expected YYYY-MM-DD, got %q", cd.Start)
		}
		end, endErr := time.Parse(DateLayout, cd.End)
		if endErr != nil {
			add(field+".end", "expected YYYY-MM-DD, got %q", cd.End)
		}
		if startErr == nil && endErr == nil && end.Before(start) {
			add(field, "ends %s before it starts %s", cd.End, cd.Start)
		}

		if len(cd.Adjustments) == 0 {
			add(field+".adjustments", "campaign adjusts no products")
		}
		for category, byBase := range cd.Adjustments {
			cfield := fmt.Sprintf("%s.adjustments.%s", field, category)
			if !category.IsPass() {
				add(cfield, "unrecognized category")
				continue
			}
			for base, adj := range byBase {
				checkLabel(add, cfield+"."+string(base), category, base)
				checkLabel(add, cfield+"."+string(base)+".label", category, adj.Label)
				checkPrices(add, cfield+"."+string(base)+".prices", adj.Prices)
			}
		}
	}

	return errors.Join(errs...)
}

func checkLabel(add func(string, string, ...any), field string, category model.Category, label model.Label) {
	_, unit, ok := label.Split()
	if !ok {
		add(field, "malformed label %q", label)
		return
	}
	if unit != model.UnitFor(category) {
		add(field, "label %q does not fit category %s", label, category)
	}
}

func checkPrices(add func(string, string, ...any), field string, prices PriceSet) {
	if len(prices) == 0 {
		add(field, "empty price set")
	}
	for _, p := range prices {
		if p <= 0 {
			add(field, "price %d must be positive", p)
		}
	}
}

// LookupRegular reports whether amount is a regular price for label under category.
func (c *Catalog) LookupRegular(category model.Category, label model.Label, amount int64) bool {
	prices, ok := c.regular[category][label]
	return ok && prices.Contains(amount)
}

// Regular returns the regular tiers of a category sorted by quantity.
func (c *Catalog) Regular(category model.Category) []Tier {
	tiers := c.regular[category]
	out := make([]Tier, 0, len(tiers))
	for _, label := range sortedLabels(tiers) {
		out = append(out, Tier{Label: label, Prices: slices.Clone(tiers[label])})
	}
	return out
}

// Tier is one regular product and its accepted prices.
type Tier struct {
	Label  model.Label `json:"label"`
	Prices PriceSet    `json:"prices"`
}

// Campaigns returns the campaigns in configuration order.
func (c *Catalog) Campaigns() []Campaign {
	return slices.Clone(c.campaigns)
}

// Campaign looks up a campaign by id.
func (c *Catalog) Campaign(id string) (Campaign, bool) {
	for _, cp := range c.campaigns {
		if cp.ID == id {
			return cp, true
		}
	}
	return Campaign{}, false
}

// Location is the time zone campaign dates are expressed in.
func (c *Catalog) Location() *time.Location {
	return c.loc
}

// Overlaps lists pairs of campaign ids whose windows intersect.
func (c *Catalog) Overlaps() [][2]string {
	var pairs [][2]string
	for i := 0; i < len(c.campaigns); i++ {
		for j := i + 1; j < len(c.campaigns); j++ {
			a, b := c.campaigns[i], c.campaigns[j]
			if !a.End.Before(b.Start) && !b.End.Before(a.Start) {
				pairs = append(pairs, [2]string{a.ID, b.ID})
			}
		}
	}
	return pairs
}

func sortedLabels[V any](m map[model.Label]V) []model.Label {
	labels := make([]model.Label, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ni, _, _ := labels[i].Split()
		nj, _, _ := labels[j].Split()
		if ni != nj {
			return ni < nj
		}
		return labels[i] < labels[j]
	})
	return labels
}
