package request

import "time"

// CreateShowtimeRequest takes either Rows and Columns for a plain grid or an explicit Layout.
type CreateShowtimeRequest struct {
	MovieID      string           `json:"movie_id" validate:"required"`
	ScreenID     string           `json:"screen_id" validate:"required"`
	StartsAt     time.Time        `json:"starts_at" validate:"required"`
	EndsAt       time.Time        `json:"ends_at" validate:"required,gtfield=StartsAt"`
	PricePerSeat float64          `json:"price_per_seat" validate:"gte=0"`
	Rows         int              `json:"rows" validate:"omitempty,gt=0,lte=52"`
	Columns      int              `json:"columns" validate:"omitempty,gt=0,lte=100"`
	Layout       []SeatRowRequest `json:"layout" validate:"omitempty,dive"`
}

// SeatRowRequest lists seat ids left to right; an empty id marks an aisle.
type SeatRowRequest struct {
	Label string   `json:"label" validate:"required"`
	Seats []string `json:"seats" validate:"required,min=1"`
}
