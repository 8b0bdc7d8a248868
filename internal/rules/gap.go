// Package rules holds the pure booking policies: seat selection and gap
// checks, and the time based refund tiers.
package rules

import (
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/apperror"
)

// CheckSelection rejects empty selections, duplicates and seats that are not part of layout.
func CheckSelection(layout entity.SeatLayout, requested []string) error {
	if len(requested) == 0 {
		return apperror.New(apperror.CodeInvalidSelection, "at least one seat must be selected")
	}

	known := make(map[string]bool)
	for _, id := range layout.SeatIDs() {
		known[id] = true
	}

	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		if !known[id] {
			return apperror.New(apperror.CodeInvalidSelection, "seat %s does not belong to this showtime", id)
		}
		if seen[id] {
			return apperror.New(apperror.CodeInvalidSelection, "seat %s selected more than once", id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateGaps rejects a selection that, once reserved, leaves a single AVAILABLE seat
// with both immediate neighbours occupied. Aisles and row edges count as no neighbour.
// Only gaps next to a requested seat are reported, so an isolated seat left behind by an
// earlier cancellation does not block bookings elsewhere.
// This is narrower than scanning every row after the hypothetical reservation.
func ValidateGaps(layout entity.SeatLayout, current map[string]entity.SeatStatus, requested []string) error {
	chosen := make(map[string]bool, len(requested))
	for _, id := range requested {
		chosen[id] = true
	}

	occupied := func(id string) bool {
		return chosen[id] || current[id].IsOccupied()
	}

	for _, row := range layout.Rows {
		for i, id := range row.Seats {
			if id == entity.AisleMarker || occupied(id) {
				continue
			}
			if i == 0 || i == len(row.Seats)-1 {
				continue
			}

			left, right := row.Seats[i-1], row.Seats[i+1]
			if left == entity.AisleMarker || right == entity.AisleMarker {
				continue
			}
			if !occupied(left) || !occupied(right) {
				continue
			}
			if chosen[left] || chosen[right] {
				return apperror.New(apperror.CodeInvalidSelection,
					"selection would leave seat %s isolated between %s and %s", id, left, right)
			}
		}
	}
	return nil
}
