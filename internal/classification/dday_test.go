package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBin(t *testing.T) {
	tests := []struct {
		want string
		days int
	}{
		{days: 0, want: "0~4"},
		{days: 4, want: "0~4"},
		{days: 5, want: "5~9"},
		{days: 14, want: "10~14"},
		{days: 29, want: "25~29"},
		{days: 30, want: "30+"},
		{days: 365, want: "30+"},
		{days: -3, want: "0~4"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Bin(tt.days), "Bin(%d)", tt.days)
	}
}

func TestBinWith_ExcludeNegative(t *testing.T) {
	_, ok := BinWith(-1, ExcludeNegative)
	assert.False(t, ok)

	label, ok := BinWith(0, ExcludeNegative)
	assert.True(t, ok)
	assert.Equal(t, "0~4", label)
}

func TestBin_Total(t *testing.T) {
	labels := BinLabels()
	for d := -50; d <= 100; d++ {
		assert.Contains(t, labels, Bin(d))
	}
}

func TestFormatDDay(t *testing.T) {
	assert.Equal(t, "D-0", FormatDDay(0))
	assert.Equal(t, "D-12", FormatDDay(12))
	assert.Equal(t, "D+3", FormatDDay(-3))
}
