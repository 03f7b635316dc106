package repository

// Timeframe represents bar resolution buckets.
type Timeframe string

const (
	TF1d Timeframe = "1d"
	TF1w Timeframe = "1w"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1d, TF1w:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1d }

// NormalizeTimeframe converts a raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// PeriodsPerYear returns the annualization factor for a timeframe,
// using trading periods rather than calendar days.
func PeriodsPerYear(tf Timeframe) int {
	switch tf {
	case TF1w:
		return 52
	default:
		return 252
	}
}
