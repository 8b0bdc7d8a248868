package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AisleMarker is the seat id used inside a layout row to mark an aisle position.
const AisleMarker = ""

// SeatRow is one physical row, seat ids ordered left to right.
type SeatRow struct {
	Label string   `json:"label"`
	Seats []string `json:"seats"`
}

type SeatLayout struct {
	Rows []SeatRow `json:"rows"`
}

// Showtime is immutable after creation.
type Showtime struct {
	Base
	MovieID      string     `db:"movie_id" json:"movie_id"`
	ScreenID     string     `db:"screen_id" json:"screen_id"`
	StartsAt     time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt       time.Time  `db:"ends_at" json:"ends_at"`
	PricePerSeat float64    `db:"price_per_seat" json:"price_per_seat"`
	Layout       SeatLayout `db:"layout" json:"layout"`
}

// NewGridLayout builds a rows x columns layout. Rows are labelled A..Z, AA.. and seats A1..An.
func NewGridLayout(rows, columns int) SeatLayout {
	layout := SeatLayout{Rows: make([]SeatRow, 0, rows)}
	for r := 0; r < rows; r++ {
		label := RowLabel(r)
		seats := make([]string, columns)
		for c := 0; c < columns; c++ {
			seats[c] = label + strconv.Itoa(c+1)
		}
		layout.Rows = append(layout.Rows, SeatRow{Label: label, Seats: seats})
	}
	return layout
}

// RowLabel returns the spreadsheet style label of a zero based row index.
func RowLabel(index int) string {
	label := ""
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		label = string(rune('A'+(n-1)%26)) + label
	}
	return label
}

// SeatIDs lists every seat of the layout in row order, aisles excluded.
func (l SeatLayout) SeatIDs() []string {
	var ids []string
	for _, row := range l.Rows {
		for _, id := range row.Seats {
			if id != AisleMarker {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (l SeatLayout) Capacity() int {
	return len(l.SeatIDs())
}

// Validate checks that the layout has at least one seat and no duplicate or blank-labelled rows.
func (l SeatLayout) Validate() error {
	if len(l.Rows) == 0 {
		return fmt.Errorf("layout has no rows")
	}

	seen := make(map[string]bool)
	labels := make(map[string]bool)
	for _, row := range l.Rows {
		if strings.TrimSpace(row.Label) == "" {
			return fmt.Errorf("layout row without label")
		}
		if labels[row.Label] {
			return fmt.Errorf("duplicate row %s", row.Label)
		}
		labels[row.Label] = true

		for _, id := range row.Seats {
			if id == AisleMarker {
				continue
			}
			if seen[id] {
				return fmt.Errorf("duplicate seat %s", id)
			}
			seen[id] = true
		}
	}

	if len(seen) == 0 {
		return fmt.Errorf("layout has no seats")
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias the stored layout.
func (l SeatLayout) Clone() SeatLayout {
	out := SeatLayout{Rows: make([]SeatRow, len(l.Rows))}
	for i, row := range l.Rows {
		out.Rows[i] = SeatRow{Label: row.Label, Seats: append([]string(nil), row.Seats...)}
	}
	return out
}

func (s *Showtime) Clone() *Showtime {
	if s == nil {
		return nil
	}
	out := *s
	out.Layout = s.Layout.Clone()
	return &out
}
