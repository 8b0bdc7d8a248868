package rules

import (
	"errors"
	"testing"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func statuses(pairs ...string) map[string]entity.SeatStatus {
	out := make(map[string]entity.SeatStatus)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i]] = entity.SeatStatus(pairs[i+1])
	}
	return out
}

func TestCheckSelection(t *testing.T) {
	layout := entity.NewGridLayout(1, 3)

	assert.NoError(t, CheckSelection(layout, []string{"A1", "A2"}))

	for name, seats := range map[string][]string{
		"empty":     nil,
		"foreign":   {"B1"},
		"duplicate": {"A1", "A1"},
	} {
		t.Run(name, func(t *testing.T) {
			err := CheckSelection(layout, seats)
			assert.True(t, errors.Is(err, apperror.ErrInvalidSelection), "got %v", err)
		})
	}
}

func TestValidateGaps_SplitSelectionRejected(t *testing.T) {
	layout := entity.NewGridLayout(1, 3)

	err := ValidateGaps(layout, statuses(), []string{"A1", "A3"})

	assert.True(t, errors.Is(err, apperror.ErrInvalidSelection))
	assert.Contains(t, err.Error(), "A2")
}

func TestValidateGaps_AgainstOccupiedSeats(t *testing.T) {
	layout := entity.NewGridLayout(1, 6)
	current := statuses("A1", "BOOKED", "A2", "RESERVED")

	// A3 would sit between A2 (reserved) and A4 (requested).
	assert.Error(t, ValidateGaps(layout, current, []string{"A4"}))
	assert.NoError(t, ValidateGaps(layout, current, []string{"A3"}))
	assert.NoError(t, ValidateGaps(layout, current, []string{"A3", "A4"}))
	assert.NoError(t, ValidateGaps(layout, current, []string{"A5"}))
}

func TestValidateGaps_EdgesAndAisles(t *testing.T) {
	layout := entity.SeatLayout{Rows: []entity.SeatRow{
		{Label: "A", Seats: []string{"A1", "A2", entity.AisleMarker, "A3", "A4"}},
	}}

	// A2 is next to the aisle, so A1+A3 leaves nothing isolated.
	assert.NoError(t, ValidateGaps(layout, statuses(), []string{"A1", "A3"}))
	// Edge seat A1 only has a right neighbour.
	assert.NoError(t, ValidateGaps(layout, statuses(), []string{"A2"}))
}

func TestValidateGaps_PreexistingGapElsewhereIgnored(t *testing.T) {
	layout := entity.NewGridLayout(2, 3)
	current := statuses("A1", "BOOKED", "A3", "BOOKED")

	assert.NoError(t, ValidateGaps(layout, current, []string{"B1", "B2"}))
	assert.NoError(t, ValidateGaps(layout, current, []string{"A2"}))
}

func TestValidateGaps_RowsAreIndependent(t *testing.T) {
	layout := entity.NewGridLayout(2, 2)

	assert.NoError(t, ValidateGaps(layout, statuses(), []string{"A2", "B1"}))
}
