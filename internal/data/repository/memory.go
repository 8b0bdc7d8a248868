package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cinema-reservation/internal/data/entity"

	"go.uber.org/zap"
)

type memoryStore struct {
	mu        sync.RWMutex
	showtimes map[string]*entity.Showtime
	bookings  map[string]*entity.Booking
	tickets   map[string]*entity.Ticket
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		showtimes: make(map[string]*entity.Showtime),
		bookings:  make(map[string]*entity.Booking),
		tickets:   make(map[string]*entity.Ticket),
	}
}

type memoryShowtimeRepository struct {
	store *memoryStore
	log   *zap.Logger
}

func (r *memoryShowtimeRepository) Create(_ context.Context, showtime *entity.Showtime) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.showtimes[showtime.ID]; ok {
		return fmt.Errorf("create showtime %s: already exists", showtime.ID)
	}
	r.store.showtimes[showtime.ID] = showtime.Clone()
	return nil
}

func (r *memoryShowtimeRepository) FindByID(_ context.Context, id string) (*entity.Showtime, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.showtimes[id].Clone(), nil
}

func (r *memoryShowtimeRepository) FindAll(_ context.Context) ([]*entity.Showtime, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	showtimes := make([]*entity.Showtime, 0, len(r.store.showtimes))
	for _, s := range r.store.showtimes {
		showtimes = append(showtimes, s.Clone())
	}
	sort.Slice(showtimes, func(i, j int) bool {
		if !showtimes[i].StartsAt.Equal(showtimes[j].StartsAt) {
			return showtimes[i].StartsAt.Before(showtimes[j].StartsAt)
		}
		return showtimes[i].ID < showtimes[j].ID
	})
	return showtimes, nil
}

type memoryBookingRepository struct {
	store *memoryStore
	log   *zap.Logger
}

func (r *memoryBookingRepository) Create(_ context.Context, booking *entity.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.bookings[booking.ID]; ok {
		return fmt.Errorf("create booking %s: already exists", booking.ID)
	}
	r.store.bookings[booking.ID] = booking.Clone()
	return nil
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id string) (*entity.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.bookings[id].Clone(), nil
}

func (r *memoryBookingRepository) FindByUserID(_ context.Context, userID string, limit, offset int) ([]*entity.Booking, error) {
	matched := r.filter(func(b *entity.Booking) bool { return b.UserID == userID })
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, limit, offset), nil
}

func (r *memoryBookingRepository) CountByUserID(_ context.Context, userID string) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool { return b.UserID == userID }))), nil
}

func (r *memoryBookingRepository) FindExpiredHolds(_ context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	matched := r.filter(func(b *entity.Booking) bool {
		return b.Status == entity.BookingStatusReserved && b.HoldExpired(now)
	})
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ExpiresAt.Equal(matched[j].ExpiresAt) {
			return matched[i].ExpiresAt.Before(matched[j].ExpiresAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, limit, 0), nil
}

func (r *memoryBookingRepository) FindActiveByShowtime(_ context.Context, showtimeID string) ([]*entity.Booking, error) {
	matched := r.filter(func(b *entity.Booking) bool {
		return b.ShowtimeID == showtimeID && b.Status.HoldsSeats()
	})
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

func (r *memoryBookingRepository) Transition(_ context.Context, booking *entity.Booking, from entity.BookingStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.bookings[booking.ID]
	if !ok || current.Status != from {
		r.log.Debug("Booking transition lost",
			zap.String("booking_id", booking.ID),
			zap.String("from", from.String()),
			zap.String("to", booking.Status.String()),
		)
		return false, nil
	}

	r.store.bookings[booking.ID] = booking.Clone()
	return true, nil
}

func (r *memoryBookingRepository) filter(keep func(*entity.Booking) bool) []*entity.Booking {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Booking
	for _, b := range r.store.bookings {
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	return out
}

func page(bookings []*entity.Booking, limit, offset int) []*entity.Booking {
	if offset >= len(bookings) {
		return nil
	}
	bookings = bookings[offset:]
	if limit > 0 && limit < len(bookings) {
		bookings = bookings[:limit]
	}
	return bookings
}

type memoryTicketRepository struct {
	store *memoryStore
	log   *zap.Logger
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *entity.Ticket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.tickets {
		if t.BookingID == ticket.BookingID {
			return fmt.Errorf("create ticket for booking %s: already issued", ticket.BookingID)
		}
	}
	r.store.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *memoryTicketRepository) FindByID(_ context.Context, id string) (*entity.Ticket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.tickets[id].Clone(), nil
}

func (r *memoryTicketRepository) FindByBookingID(_ context.Context, bookingID string) (*entity.Ticket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, t := range r.store.tickets {
		if t.BookingID == bookingID {
			return t.Clone(), nil
		}
	}
	return nil, nil
}

func (r *memoryTicketRepository) Void(_ context.Context, id string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.tickets[id]
	if !ok || t.Status != entity.TicketStatusIssued {
		r.log.Debug("Ticket already voided or missing", zap.String("ticket_id", id))
		return nil
	}

	voided := t.Clone()
	voided.Status = entity.TicketStatusVoided
	voided.VoidedAt = &at
	r.store.tickets[id] = voided
	return nil
}
