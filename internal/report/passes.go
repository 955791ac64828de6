package report

import (
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/passbook/internal/classification"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/parser"
)

// PassOptions filters a dated-product timeline.
type PassOptions struct {
	// Today anchors remaining days for rows the classifier does not date,
	// such as lockers. Build fills it from Options.Now when zero.
	Today time.Time
	// Category selects the timeline; empty means term passes.
	Category model.Category
	// Name keeps members whose name contains it, case-insensitively.
	Name string
	// ShowExpired includes expired passes in the timeline.
	ShowExpired bool
	// BinExpired counts expired passes in the "0~4" histogram bin instead of
	// leaving them out.
	BinExpired bool
}

func (o PassOptions) category() model.Category {
	if o.Category == "" {
		return model.CategoryTermPass
	}
	return o.Category
}

// PassEntry is one term-pass on the timeline.
type PassEntry struct {
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	RowID      string     `json:"row_id"`
	Name       string     `json:"name"`
	DDay       string     `json:"d_day"`
	CampaignID string     `json:"campaign_id,omitempty"`
	Kind       model.Kind `json:"kind"`
	Weeks      int        `json:"weeks"`
	Remaining  int        `json:"remaining_days"`
	Expired    bool       `json:"expired"`
}

// Bucket is one D-Day histogram bar.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PassReport is a dated-product timeline with its D-Day histogram.
type PassReport struct {
	Category  model.Category `json:"category"`
	Entries   []PassEntry    `json:"entries"`
	Histogram []Bucket       `json:"histogram"`
	// Remaining counts passes that have not expired yet.
	Remaining int `json:"remaining"`
}

// MemberPasses is every timeline entry of one member.
type MemberPasses struct {
	Name    string      `json:"name"`
	Entries []PassEntry `json:"entries"`
}

// Members returns the distinct member names on the timeline, in timeline order.
func (p PassReport) Members() []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range p.Entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	return names
}

// ByMember groups the timeline one line per member, members in the order
// their first entry appears.
func (p PassReport) ByMember() []MemberPasses {
	index := make(map[string]int)
	groups := make([]MemberPasses, 0, len(p.Entries))
	for _, name := range p.Members() {
		index[name] = len(groups)
		groups = append(groups, MemberPasses{Name: name})
	}
	for _, e := range p.Entries {
		g := &groups[index[e.Name]]
		g.Entries = append(g.Entries, e)
	}
	return groups
}

// Passes builds the timeline for opts.Category. results[i] must classify
// orders[i]. Term passes take their dates from the classification; other
// categories, which the classifier does not date, are read from the order
// description and counted from opts.Today. The histogram counts only passes
// still running unless opts.BinExpired is set.
func Passes(orders []model.Order, results []model.Classification, opts PassOptions) PassReport {
	category := opts.category()
	report := PassReport{Category: category}
	counts := make(map[string]int)
	needle := strings.ToLower(opts.Name)

	policy := classification.ExcludeNegative
	if opts.BinExpired {
		policy = classification.NegativeIntoFirstBin
	}

	for i, o := range orders {
		if i >= len(results) {
			break
		}
		if o.Category != category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(o.Name), needle) {
			continue
		}

		r := results[i]
		entry, ok := passEntry(o, r, opts.Today)
		if !ok {
			continue
		}

		if entry.Remaining >= 0 {
			report.Remaining++
		}
		if label, ok := classification.BinWith(entry.Remaining, policy); ok {
			counts[label]++
		}

		if entry.Expired && !opts.ShowExpired {
			continue
		}
		report.Entries = append(report.Entries, entry)
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		a, b := report.Entries[i], report.Entries[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Name < b.Name
	})

	for _, label := range classification.BinLabels() {
		report.Histogram = append(report.Histogram, Bucket{Label: label, Count: counts[label]})
	}

	return report
}

func passEntry(o model.Order, r model.Classification, today time.Time) (PassEntry, bool) {
	entry := PassEntry{
		RowID:      o.RowID,
		Name:       o.Name,
		Kind:       r.Kind,
		CampaignID: r.CampaignID,
	}

	if r.HasTerm() && r.RemainingDays != nil {
		entry.Start, entry.End = *r.Start, *r.End
		entry.Remaining = *r.RemainingDays
	} else {
		start, end, err := parser.ParseDateRange(o.Description)
		if err != nil || today.IsZero() {
			return PassEntry{}, false
		}
		entry.Start, entry.End = start, end
		entry.Remaining = parser.DaysBetween(today, end)
	}

	entry.Weeks = parser.WeekCount(entry.Start, entry.End)
	entry.Expired = entry.Remaining < 0
	entry.DDay = classification.FormatDDay(entry.Remaining)
	return entry, true
}
