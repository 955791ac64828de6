// Package campaign locates promotional campaigns in time and estimates what
// regular-price revenue a campaign window would have produced.
package campaign

import (
	"time"

	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/parser"
)

// Match is a campaign found near an order, with its whole-day distance.
type Match struct {
	Campaign  catalog.Campaign
	Direction model.Direction
	Days      int
}

// Locator answers temporal questions about the configured campaigns.
// Campaigns are scanned in configuration order; where windows overlap, the
// first configured campaign wins.
type Locator struct {
	loc       *time.Location
	campaigns []catalog.Campaign
}

// NewLocator creates a locator over the catalog's campaigns.
func NewLocator(c *catalog.Catalog) *Locator {
	return &Locator{
		campaigns: c.Campaigns(),
		loc:       c.Location(),
	}
}

// Active returns the first campaign whose window contains ts.
func (l *Locator) Active(ts time.Time) (catalog.Campaign, bool) {
	for _, c := range l.campaigns {
		if c.Contains(ts) {
			return c, true
		}
	}
	return catalog.Campaign{}, false
}

// NearestPast returns the campaign that ended most recently at or before ts.
// Distance is counted in calendar days from the campaign's last day to ts.
func (l *Locator) NearestPast(ts time.Time) (Match, bool) {
	ts = ts.In(l.loc)

	var best Match
	found := false
	for _, c := range l.campaigns {
		if c.EndOfDay().After(ts) {
			continue
		}
		days := parser.DaysBetween(c.End, ts)
		if !found || days < best.Days {
			best = Match{Campaign: c, Days: days, Direction: model.DirectionPast}
			found = true
		}
	}
	return best, found
}

// NearestFuture returns the campaign starting soonest at or after ts.
// Distance is counted in calendar days from ts to the campaign's first day.
func (l *Locator) NearestFuture(ts time.Time) (Match, bool) {
	ts = ts.In(l.loc)

	var best Match
	found := false
	for _, c := range l.campaigns {
		if c.Start.Before(ts) {
			continue
		}
		days := parser.DaysBetween(ts, c.Start)
		if !found || days < best.Days {
			best = Match{Campaign: c, Days: days, Direction: model.DirectionFuture}
			found = true
		}
	}
	return best, found
}

// Nearest picks the closer of NearestPast and NearestFuture; ties go to the past.
func (l *Locator) Nearest(ts time.Time) (Match, bool) {
	past, hasPast := l.NearestPast(ts)
	future, hasFuture := l.NearestFuture(ts)

	switch {
	case hasPast && hasFuture:
		if future.Days < past.Days {
			return future, true
		}
		return past, true
	case hasPast:
		return past, true
	case hasFuture:
		return future, true
	default:
		return Match{}, false
	}
}

// Campaigns returns the campaigns in configuration order.
func (l *Locator) Campaigns() []catalog.Campaign {
	out := make([]catalog.Campaign, len(l.campaigns))
	copy(out, l.campaigns)
	return out
}
