package classification

import "fmt"

// NegativePolicy decides how expired (negative) D-Day values are binned.
type NegativePolicy int

const (
	// NegativeIntoFirstBin places negative values in "0~4".
	NegativeIntoFirstBin NegativePolicy = iota
	// ExcludeNegative leaves negative values out of every bin.
	ExcludeNegative
)

const (
	binWidth = 5
	binLimit = 30
)

var binLabels = []string{"0~4", "5~9", "10~14", "15~19", "20~24", "25~29", "30+"}

// BinLabels returns the histogram bins in display order.
func BinLabels() []string {
	out := make([]string, len(binLabels))
	copy(out, binLabels)
	return out
}

// Bin places a D-Day value in its 5-day bucket using NegativeIntoFirstBin.
func Bin(days int) string {
	label, _ := BinWith(days, NegativeIntoFirstBin)
	return label
}

// BinWith places a D-Day value in its bucket. ok is false only when the
// policy excludes the value.
func BinWith(days int, policy NegativePolicy) (label string, ok bool) {
	if days < 0 {
		if policy == ExcludeNegative {
			return "", false
		}
		days = 0
	}
	if days >= binLimit {
		return binLabels[len(binLabels)-1], true
	}
	return binLabels[days/binWidth], true
}

// FormatDDay renders remaining days as "D-n", or "D+n" once expired.
func FormatDDay(remaining int) string {
	if remaining >= 0 {
		return fmt.Sprintf("D-%d", remaining)
	}
	return fmt.Sprintf("D+%d", -remaining)
}
