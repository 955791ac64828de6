package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Label is a canonical quantity label such as "50시간" or "4주".
type Label string

// Unit suffixes used in labels.
const (
	UnitHours = "시간"
	UnitWeeks = "주"
)

// WeeksLabel builds the label for a week count.
func WeeksLabel(weeks int) Label {
	return Label(fmt.Sprintf("%d%s", weeks, UnitWeeks))
}

// Split returns the numeric part and unit of a label.
func (l Label) Split() (int, string, bool) {
	s := string(l)
	for _, unit := range []string{UnitHours, UnitWeeks} {
		if !strings.HasSuffix(s, unit) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(s, unit))
		if err != nil || n < 0 {
			return 0, "", false
		}
		return n, unit, true
	}
	return 0, "", false
}

// UnitFor returns the label unit expected for a category.
func UnitFor(c Category) string {
	switch c {
	case CategoryTimePass:
		return UnitHours
	case CategoryTermPass:
		return UnitWeeks
	default:
		return ""
	}
}

// Quantity is what a description says was purchased.
type Quantity struct {
	Start time.Time // term-pass only
	End   time.Time // term-pass only
	Label Label
	Weeks int // term-pass only
}

// HasDates reports whether the quantity carries a term window.
func (q Quantity) HasDates() bool {
	return !q.Start.IsZero() && !q.End.IsZero()
}
