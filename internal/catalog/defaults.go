package catalog

import (
	"time"

	"github.com/Veraticus/passbook/internal/model"
)

// Term-pass prices scale with the seat type: shared room and private room.
const (
	sharedRoomFourWeeks  = 150000
	privateRoomFourWeeks = 250000
)

func fourWeekMultiple(n int64) PriceSet {
	return PriceSet{n * sharedRoomFourWeeks, n * privateRoomFourWeeks}
}

// DefaultDefinition returns the built-in price list and campaign calendar.
func DefaultDefinition() Definition {
	return Definition{
		Regular: map[model.Category]map[model.Label]PriceSet{
			model.CategoryTimePass: {
				"50시간":  {85000},
				"100시간": {135000},
			},
			model.CategoryTermPass: {
				"1주":  {50000},
				"2주":  {90000},
				"4주":  fourWeekMultiple(1),
				"8주":  fourWeekMultiple(2),
				"12주": fourWeekMultiple(3),
				"20주": fourWeekMultiple(5),
				"24주": fourWeekMultiple(6),
				"28주": fourWeekMultiple(7),
				"32주": fourWeekMultiple(8),
				"36주": fourWeekMultiple(9),
			},
		},
		Campaigns: []CampaignDefinition{
			{
				ID:    "241111오픈",
				Start: "2024-11-11",
				End:   "2024-12-31",
				Adjustments: map[model.Category]map[model.Label]Adjustment{
					model.CategoryTimePass: {
						"100시간": {Label: "110시간", Prices: PriceSet{135000}},
					},
					model.CategoryTermPass: {
						"4주": {Label: "5주", Prices: fourWeekMultiple(1)},
						"8주": {Label: "10주", Prices: fourWeekMultiple(2)},
					},
				},
			},
			{
				ID:    "250101새해",
				Start: "2025-01-01",
				End:   "2025-01-31",
				Adjustments: map[model.Category]map[model.Label]Adjustment{
					model.CategoryTimePass: {
						"50시간":  {Label: "55시간", Prices: PriceSet{85000}},
						"100시간": {Label: "110시간", Prices: PriceSet{135000}},
					},
					model.CategoryTermPass: {
						"2주":  {Label: "2주", Prices: PriceSet{90000}},
						"4주":  {Label: "5주", Prices: fourWeekMultiple(1)},
						"8주":  {Label: "10주", Prices: fourWeekMultiple(2)},
						"12주": {Label: "15주", Prices: fourWeekMultiple(3)},
						"20주": {Label: "24주", Prices: fourWeekMultiple(5)},
						"24주": {Label: "30주", Prices: fourWeekMultiple(6)},
						"28주": {Label: "36주", Prices: fourWeekMultiple(7)},
						"32주": {Label: "42주", Prices: fourWeekMultiple(8)},
						"36주": {Label: "48주", Prices: fourWeekMultiple(9)},
					},
				},
			},
			{
				ID:    "250224봄맞이",
				Start: "2025-02-24",
				End:   "2025-03-16",
				Adjustments: map[model.Category]map[model.Label]Adjustment{
					model.CategoryTimePass: {
						"100시간": {Label: "110시간", Prices: PriceSet{135000}},
					},
					model.CategoryTermPass: {
						"4주": {Label: "5주", Prices: fourWeekMultiple(1)},
					},
				},
			},
		},
	}
}

// Default builds the built-in catalog. The definition is static, so a
// validation failure here is a programming error.
func Default(loc *time.Location) *Catalog {
	c, err := New(DefaultDefinition(), loc)
	if err != nil {
		panic("catalog: built-in definition is invalid: " + err.Error())
	}
	return c
}
