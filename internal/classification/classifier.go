// Package classification decides whether each paid order was sold at a
// regular price, at a campaign price, near a campaign, or not at all as
// configured.
package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/passbook/internal/campaign"
	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/parser"
	"github.com/Veraticus/passbook/internal/service"
)

// Options configures classifier behavior.
type Options struct {
	// OnProgress is called after each order in a batch. Calls are serialized.
	OnProgress func(done, total int)
	// Workers is the number of parallel batch workers; values below 1 mean 1.
	Workers int
	// VerifySuspectedLabel re-checks the order label against the nearest
	// campaign's adjustments before reporting it as suspected.
	VerifySuspectedLabel bool
}

// DefaultOptions returns sequential classification without label re-verification.
func DefaultOptions() Options {
	return Options{Workers: 1}
}

// Classifier applies the catalog and campaign calendar to orders.
type Classifier struct {
	catalog *catalog.Catalog
	locator *campaign.Locator
	clock   service.Clock
	opts    Options
}

// New creates a classifier. Remaining days are measured against clock.Now().
func New(cat *catalog.Catalog, clock service.Clock, opts Options) *Classifier {
	if clock == nil {
		clock = service.SystemClock{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Classifier{
		catalog: cat,
		locator: campaign.NewLocator(cat),
		clock:   clock,
		opts:    opts,
	}
}

// Locator exposes the campaign locator built from the classifier's catalog.
func (c *Classifier) Locator() *campaign.Locator {
	return c.locator
}

// Classify runs the decision sequence for a single order. It never fails:
// problems with the order are reported as an anomalous classification.
func (c *Classifier) Classify(order model.Order) model.Classification {
	result := model.Classification{
		RowID:    order.RowID,
		Category: order.Category,
	}

	if order.Category == "" {
		return anomalous(result, model.ReasonMissingCategory)
	}
	if !order.Category.IsPass() {
		result.Kind = model.KindNotApplicable
		return result
	}

	qty, err := parser.Parse(order.Category, order.Description)
	if err != nil {
		return anomalous(result, model.ReasonMalformedDescription)
	}
	result.Label = qty.Label
	if qty.HasDates() {
		c.fillTerm(&result, qty)
	}

	if order.AmountErr != nil {
		return anomalous(result, model.ReasonMalformedAmount)
	}

	if c.catalog.LookupRegular(order.Category, qty.Label, order.Amount) {
		result.Kind = model.KindRegular
		return result
	}

	if active, ok := c.locator.Active(order.Timestamp); ok {
		result.CampaignID = active.ID
		result.Direction = model.DirectionActive
		if _, matched := active.Match(order.Category, qty.Label, order.Amount); matched {
			result.Kind = model.KindPromotional
			return result
		}
		return anomalous(result, model.ReasonNoCampaignMatch)
	}

	nearest, ok := c.locator.Nearest(order.Timestamp)
	if !ok {
		return anomalous(result, model.ReasonNoCampaign)
	}

	result.CampaignID = nearest.Campaign.ID
	result.Direction = nearest.Direction
	result.Distance = nearest.Days

	if c.opts.VerifySuspectedLabel {
		if _, matched := nearest.Campaign.Match(order.Category, qty.Label, order.Amount); !matched {
			return anomalous(result, model.ReasonNoCampaignMatch)
		}
	}

	result.Kind = model.KindSuspectedPromotional
	return result
}

func anomalous(result model.Classification, reason model.Reason) model.Classification {
	result.Kind = model.KindAnomalous
	result.Reason = reason
	return result
}

func (c *Classifier) fillTerm(result *model.Classification, qty model.Quantity) {
	today := c.clock.Now().In(c.catalog.Location())
	remaining := parser.DaysBetween(today, qty.End)
	expired := remaining < 0

	start, end := qty.Start, qty.End
	result.Start = &start
	result.End = &end
	result.RemainingDays = &remaining
	result.Expired = &expired
	result.DDay = FormatDDay(remaining)
}

// ClassifyBatch classifies every order; result i belongs to orders[i].
// Only context cancellation stops the batch early.
func (c *Classifier) ClassifyBatch(ctx context.Context, orders []model.Order) ([]model.Classification, error) {
	results := make([]model.Classification, len(orders))
	if len(orders) == 0 {
		return results, nil
	}

	workers := min(c.opts.Workers, len(orders))

	work := make(chan int, len(orders))
	for i := range orders {
		work <- i
	}
	close(work)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				results[idx] = c.Classify(orders[idx])

				if c.opts.OnProgress != nil {
					mu.Lock()
					done++
					c.opts.OnProgress(done, len(orders))
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("classification interrupted: %w", err)
	}

	slog.Debug("classified orders",
		"orders", len(orders),
		"workers", workers)

	return results, nil
}

// Counts tallies classifications by kind.
func Counts(results []model.Classification) map[model.Kind]int {
	counts := make(map[model.Kind]int, len(model.Kinds()))
	for _, r := range results {
		counts[r.Kind]++
	}
	return counts
}

// ErrNoClassification is returned by Lookup when no result carries the row ID.
var ErrNoClassification = errors.New("no classification for row")

// Lookup returns the index of the classification for a row ID, which is
// also the index of its order.
func Lookup(results []model.Classification, rowID string) (int, error) {
	for i, r := range results {
		if r.RowID == rowID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNoClassification, rowID)
}
