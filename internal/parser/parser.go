// Package parser extracts purchased quantities from free-text order descriptions.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/passbook/internal/model"
)

// ErrMalformed indicates a description did not have the expected shape.
var ErrMalformed = errors.New("malformed order description")

// DateLayout is the layout of dates embedded in descriptions.
const DateLayout = "2006-01-02"

var (
	hoursRegex = regexp.MustCompile(`^(\d+시간)`)
	dateRegex  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// ParseHours reads the leading hour token verbatim, e.g.
// "50시간(...) 서비스 신청" -> "50시간". The token is not normalised, so
// "050시간" stays "050시간" and will not match a catalog label.
func ParseHours(description string) (model.Label, error) {
	m := hoursRegex.FindStringSubmatch(strings.TrimSpace(description))
	if m == nil {
		return "", fmt.Errorf("%w: no leading hour token in %q", ErrMalformed, description)
	}
	return model.Label(m[1]), nil
}

// ParseDateRange returns the first two ISO dates in the description as the
// start and end of the term. Any text may separate them.
func ParseDateRange(description string) (start, end time.Time, err error) {
	found := dateRegex.FindAllString(description, 2)
	if len(found) < 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: expected two dates in %q", ErrMalformed, description)
	}

	start, err = time.Parse(DateLayout, found[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date: %v", ErrMalformed, err)
	}
	end, err = time.Parse(DateLayout, found[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date: %v", ErrMalformed, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %s before start %s", ErrMalformed, found[1], found[0])
	}

	return start, end, nil
}

// InclusiveDays counts calendar days from start to end, both included.
func InclusiveDays(start, end time.Time) int {
	return DaysBetween(start, end) + 1
}

// DaysBetween counts calendar days from a to b, ignoring time of day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// WeekCount is the number of whole weeks covered by an inclusive date range.
func WeekCount(start, end time.Time) int {
	return InclusiveDays(start, end) / 7
}

// WeekLabel is the label for WeekCount, e.g. "2주".
func WeekLabel(start, end time.Time) model.Label {
	return model.WeeksLabel(WeekCount(start, end))
}

// Parse extracts the quantity for an order of the given category.
func Parse(category model.Category, description string) (model.Quantity, error) {
	switch category {
	case model.CategoryTimePass:
		label, err := ParseHours(description)
		if err != nil {
			return model.Quantity{}, err
		}
		return model.Quantity{Label: label}, nil

	case model.CategoryTermPass:
		start, end, err := ParseDateRange(description)
		if err != nil {
			return model.Quantity{}, err
		}
		weeks := WeekCount(start, end)
		return model.Quantity{
			Label: model.WeeksLabel(weeks),
			Start: start,
			End:   end,
			Weeks: weeks,
		}, nil

	default:
		return model.Quantity{}, fmt.Errorf("%w: category %q has no quantity", ErrMalformed, category)
	}
}
