package repository

import (
	"cinema-reservation/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Showtime ShowtimeRepository
	Booking  BookingRepository
	Ticket   TicketRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Showtime: NewShowtimeRepository(db, log),
		Booking:  NewBookingRepository(db, log),
		Ticket:   NewTicketRepository(db, log),
	}
}

// NewMemoryRepository returns a store kept in process memory. Each call owns a fresh,
// empty store shared only by the three repositories returned.
func NewMemoryRepository(log *zap.Logger) *Repository {
	store := newMemoryStore()
	return &Repository{
		Showtime: &memoryShowtimeRepository{store: store, log: log.With(zap.String("repository", "showtime"))},
		Booking:  &memoryBookingRepository{store: store, log: log.With(zap.String("repository", "booking"))},
		Ticket:   &memoryTicketRepository{store: store, log: log.With(zap.String("repository", "ticket"))},
	}
}
