package entity

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "AVAILABLE"
	SeatStatusReserved  SeatStatus = "RESERVED"
	SeatStatusBooked    SeatStatus = "BOOKED"
)

// IsValid reports whether s is one of the known seat statuses.
func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusReserved, SeatStatusBooked:
		return true
	}
	return false
}

// IsOccupied reports whether the seat is held by a booking, provisionally or for good.
func (s SeatStatus) IsOccupied() bool {
	return s == SeatStatusReserved || s == SeatStatusBooked
}

func (s SeatStatus) String() string {
	return string(s)
}
