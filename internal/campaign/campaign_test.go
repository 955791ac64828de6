package campaign

import (
	"testing"
	"time"

	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func at(loc *time.Location, value string) time.Time {
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, loc)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestLocator_Active(t *testing.T) {
	loc := seoul(t)
	l := NewLocator(catalog.Default(loc))

	tests := []struct {
		name   string
		ts     string
		wantID string
		found  bool
	}{
		{name: "first instant", ts: "2025-01-01 00:00:00", wantID: "250101새해", found: true},
		{name: "last second of final day", ts: "2025-01-31 23:59:59", wantID: "250101새해", found: true},
		{name: "day after", ts: "2025-02-01 00:00:00", found: false},
		{name: "spring window", ts: "2025-03-16 12:00:00", wantID: "250224봄맞이", found: true},
		{name: "before any campaign", ts: "2024-10-01 09:00:00", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := l.Active(at(loc, tt.ts))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantID, c.ID)
		})
	}
}

func overlappingCatalog(t *testing.T, loc *time.Location) *catalog.Catalog {
	t.Helper()
	def := catalog.DefaultDefinition()
	def.Campaigns = append(def.Campaigns, catalog.CampaignDefinition{
		ID:    "겹침",
		Start: "2025-01-15",
		End:   "2025-02-05",
		Adjustments: map[model.Category]map[model.Label]catalog.Adjustment{
			model.CategoryTimePass: {"50시간": {Label: "60시간", Prices: catalog.PriceSet{85000}}},
		},
	})
	c, err := catalog.New(def, loc)
	require.NoError(t, err)
	return c
}

func TestLocator_ActiveOverlap(t *testing.T) {
	loc := seoul(t)
	l := NewLocator(overlappingCatalog(t, loc))

	tests := []struct {
		name   string
		ts     string
		wantID string
	}{
		{name: "only the earlier window", ts: "2025-01-10 12:00:00", wantID: "250101새해"},
		{name: "both windows, first configured wins", ts: "2025-01-20 12:00:00", wantID: "250101새해"},
		{name: "shared last day", ts: "2025-01-31 23:59:59", wantID: "250101새해"},
		{name: "only the later window", ts: "2025-02-03 12:00:00", wantID: "겹침"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := l.Active(at(loc, tt.ts))
			require.True(t, ok)
			assert.Equal(t, tt.wantID, c.ID)
		})
	}
}

func TestLocator_Nearest(t *testing.T) {
	loc := seoul(t)
	l := NewLocator(catalog.Default(loc))
	ts := at(loc, "2025-02-10 10:00:00")

	past, ok := l.NearestPast(ts)
	require.True(t, ok)
	assert.Equal(t, "250101새해", past.Campaign.ID)
	assert.Equal(t, 10, past.Days)
	assert.Equal(t, model.DirectionPast, past.Direction)

	future, ok := l.NearestFuture(ts)
	require.True(t, ok)
	assert.Equal(t, "250224봄맞이", future.Campaign.ID)
	assert.Equal(t, 14, future.Days)
	assert.Equal(t, model.DirectionFuture, future.Direction)

	nearest, ok := l.Nearest(ts)
	require.True(t, ok)
	assert.Equal(t, past, nearest)
}

func TestLocator_NearestEdges(t *testing.T) {
	loc := seoul(t)
	l := NewLocator(catalog.Default(loc))

	t.Run("nothing in the past", func(t *testing.T) {
		_, ok := l.NearestPast(at(loc, "2024-01-01 00:00:00"))
		assert.False(t, ok)

		m, ok := l.Nearest(at(loc, "2024-01-01 00:00:00"))
		require.True(t, ok)
		assert.Equal(t, "241111오픈", m.Campaign.ID)
		assert.Equal(t, model.DirectionFuture, m.Direction)
	})

	t.Run("nothing in the future", func(t *testing.T) {
		_, ok := l.NearestFuture(at(loc, "2026-01-01 00:00:00"))
		assert.False(t, ok)

		m, ok := l.Nearest(at(loc, "2026-01-01 00:00:00"))
		require.True(t, ok)
		assert.Equal(t, "250224봄맞이", m.Campaign.ID)
	})

	t.Run("tie prefers past", func(t *testing.T) {
		// 2025-02-12 is 12 days after 01-31 and 12 days before 02-24.
		m, ok := l.Nearest(at(loc, "2025-02-12 08:00:00"))
		require.True(t, ok)
		assert.Equal(t, model.DirectionPast, m.Direction)
		assert.Equal(t, 12, m.Days)
	})

	t.Run("no campaigns", func(t *testing.T) {
		def := catalog.DefaultDefinition()
		def.Campaigns = nil
		c, err := catalog.New(def, loc)
		require.NoError(t, err)

		_, ok := NewLocator(c).Nearest(at(loc, "2025-02-12 08:00:00"))
		assert.False(t, ok)
	})
}

func TestEstimateRegularRevenue(t *testing.T) {
	loc := seoul(t)
	l := NewLocator(catalog.Default(loc))

	regular := []model.Order{
		{Amount: 150000},
		{Amount: 150000},
		{Amount: 80000},
	}

	// 90 days in Q1 2025; 31 + 21 of them fall inside campaigns.
	est, err := l.EstimateRegularRevenue("250101새해", regular,
		at(loc, "2025-01-01 00:00:00"), at(loc, "2025-03-31 00:00:00"))
	require.NoError(t, err)

	assert.Equal(t, 90, est.OverallDays)
	assert.Equal(t, 52, est.CampaignDaysIn)
	assert.Equal(t, 38, est.NonCampaignDays)
	assert.Equal(t, 31, est.CampaignDays)
	assert.True(t, decimal.NewFromInt(380000).Equal(est.RegularTotal))
	assert.True(t, decimal.NewFromInt(310000).Equal(est.Amount), est.Amount.String())
}

func TestEstimateRegularRevenue_Degenerate(t *testing.T) {
	loc := seoul(t)
	l := NewLocator(catalog.Default(loc))

	t.Run("unknown campaign", func(t *testing.T) {
		_, err := l.EstimateRegularRevenue("nope", nil, time.Now(), time.Now())
		require.ErrorIs(t, err, ErrUnknownCampaign)
	})

	t.Run("period fully inside campaigns", func(t *testing.T) {
		est, err := l.EstimateRegularRevenue("250101새해", []model.Order{{Amount: 1000}},
			at(loc, "2025-01-05 00:00:00"), at(loc, "2025-01-20 00:00:00"))
		require.NoError(t, err)
		assert.True(t, est.Amount.IsZero())
		assert.Equal(t, 31, est.CampaignDays)
		assert.LessOrEqual(t, est.NonCampaignDays, 0)
	})
}
