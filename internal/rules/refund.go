package rules

import (
	"math"
	"time"
)

const (
	// FullRefundNotice is the minimum notice before showtime for a full refund.
	FullRefundNotice = 24 * time.Hour
	// HalfRefundNotice is the minimum notice before showtime for a half refund.
	HalfRefundNotice = 12 * time.Hour
)

// RefundFraction maps the time left before the showtime starts to a refund tier.
// Each tier includes its lower bound: exactly 24h is a full refund, exactly 12h is half.
func RefundFraction(now, showtimeStart time.Time) float64 {
	return RefundFractionFor(showtimeStart.Sub(now))
}

// RefundFractionFor is RefundFraction over the notice duration itself.
func RefundFractionFor(notice time.Duration) float64 {
	switch {
	case notice >= FullRefundNotice:
		return 1.0
	case notice >= HalfRefundNotice:
		return 0.5
	default:
		return 0.0
	}
}

// RefundAmount applies fraction to price, rounded to cents.
func RefundAmount(price, fraction float64) float64 {
	return math.Round(price*fraction*100) / 100
}
