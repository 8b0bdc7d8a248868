package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// QueryInt returns the positive integer under key, or fallback when it is absent,
// malformed or not positive.
func QueryInt(query url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(query.Get(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// GenerateQRCode builds the ticket QR payload, format QR_<booking>_<unix seconds>.
func GenerateQRCode(bookingID string, issuedAt time.Time) string {
	return fmt.Sprintf("QR_%s_%d", bookingID, issuedAt.Unix())
}
