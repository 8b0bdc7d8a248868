package request

type CreateBookingRequest struct {
	ShowtimeID string   `json:"showtime_id" validate:"required"`
	SeatIDs    []string `json:"seat_ids" validate:"required,min=1,dive,required"`
}
