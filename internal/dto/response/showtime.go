package response

import (
	"time"

	"cinema-reservation/internal/data/entity"
)

type ShowtimeResponse struct {
	ID             string            `json:"id"`
	MovieID        string            `json:"movie_id"`
	ScreenID       string            `json:"screen_id"`
	StartsAt       time.Time         `json:"starts_at"`
	EndsAt         time.Time         `json:"ends_at"`
	PricePerSeat   float64           `json:"price_per_seat"`
	Capacity       int               `json:"capacity"`
	AvailableSeats int               `json:"available_seats"`
	Layout         entity.SeatLayout `json:"layout"`
}

type AvailabilityResponse struct {
	ShowtimeID string            `json:"showtime_id"`
	Version    uint64            `json:"version"`
	Capacity   int               `json:"capacity"`
	Available  int               `json:"available"`
	Rows       []AvailabilityRow `json:"rows"`
}

type AvailabilityRow struct {
	Label string             `json:"label"`
	Seats []SeatAvailability `json:"seats"`
}

// SeatAvailability is one position in a row. Aisle positions have no seat id and no status.
type SeatAvailability struct {
	SeatID string            `json:"seat_id,omitempty"`
	Status entity.SeatStatus `json:"status,omitempty"`
	Aisle  bool              `json:"aisle,omitempty"`
}

func ToShowtimeResponse(s *entity.Showtime, available int) ShowtimeResponse {
	return ShowtimeResponse{
		ID:             s.ID,
		MovieID:        s.MovieID,
		ScreenID:       s.ScreenID,
		StartsAt:       s.StartsAt,
		EndsAt:         s.EndsAt,
		PricePerSeat:   s.PricePerSeat,
		Capacity:       s.Layout.Capacity(),
		AvailableSeats: available,
		Layout:         s.Layout.Clone(),
	}
}

// ToAvailabilityResponse lays a status snapshot over the showtime's rows.
func ToAvailabilityResponse(showtimeID string, layout entity.SeatLayout, version uint64, statuses map[string]entity.SeatStatus) AvailabilityResponse {
	resp := AvailabilityResponse{
		ShowtimeID: showtimeID,
		Version:    version,
		Capacity:   layout.Capacity(),
		Rows:       make([]AvailabilityRow, 0, len(layout.Rows)),
	}

	for _, row := range layout.Rows {
		out := AvailabilityRow{Label: row.Label, Seats: make([]SeatAvailability, 0, len(row.Seats))}
		for _, id := range row.Seats {
			if id == entity.AisleMarker {
				out.Seats = append(out.Seats, SeatAvailability{Aisle: true})
				continue
			}
			status := statuses[id]
			if status == entity.SeatStatusAvailable {
				resp.Available++
			}
			out.Seats = append(out.Seats, SeatAvailability{SeatID: id, Status: status})
		}
		resp.Rows = append(resp.Rows, out)
	}

	return resp
}
