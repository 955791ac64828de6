// Package report aggregates classified orders into sales, membership and
// campaign reports.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/passbook/internal/campaign"
	"github.com/Veraticus/passbook/internal/model"
)

// DefaultTopMembers is how many members TopMembers lists by default.
const DefaultTopMembers = 10

// Writer publishes a finished report somewhere outside the process.
type Writer interface {
	Write(ctx context.Context, report *Report) error
}

// Period is the span of the export the report covers.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Row pairs an order with its classification.
type Row struct {
	Order          model.Order
	Classification model.Classification
}

// Report is every aggregate for one dataset.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Period      Period         `json:"period"`
	Sales       SalesSummary   `json:"sales"`
	TopMembers  []MemberTotal  `json:"top_members"`
	Passes      PassReport     `json:"passes"`
	Campaigns   CampaignReport `json:"campaigns"`
	Rows        []Row          `json:"-"`
}

// Options configures Build.
type Options struct {
	Now    time.Time
	Rates  Rates
	Passes PassOptions
	TopN   int
}

// DefaultOptions returns default rates and a top-10 member list.
func DefaultOptions() Options {
	return Options{
		Rates: DefaultRates(),
		TopN:  DefaultTopMembers,
	}
}

// Build assembles a report. results[i] must classify orders[i].
func Build(orders []model.Order, results []model.Classification, locator *campaign.Locator, period Period, opts Options) (*Report, error) {
	if len(orders) != len(results) {
		return nil, fmt.Errorf("report needs one classification per order: %d orders, %d classifications", len(orders), len(results))
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.TopN == 0 {
		opts.TopN = DefaultTopMembers
	}
	if opts.Passes.Today.IsZero() {
		opts.Passes.Today = opts.Now
	}

	campaigns, err := Campaigns(orders, results, locator, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to build campaign report: %w", err)
	}

	rows := make([]Row, len(orders))
	for i := range orders {
		rows[i] = Row{Order: orders[i], Classification: results[i]}
	}

	return &Report{
		GeneratedAt: opts.Now,
		Period:      period,
		Sales:       Sales(orders, opts.Rates),
		TopMembers:  TopMembers(orders, opts.TopN),
		Passes:      Passes(orders, results, opts.Passes),
		Campaigns:   campaigns,
		Rows:        rows,
	}, nil
}
