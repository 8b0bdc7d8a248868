package usecase

import (
	"context"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/inventory"
	"cinema-reservation/internal/rules"
	"cinema-reservation/pkg/apperror"
	"cinema-reservation/pkg/queue"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// BookingLifecycle owns every booking state change. Status writes go through the
// store's compare-and-set, so concurrent Confirm, Cancel and Expire calls on one
// booking resolve to a single winner; seat changes follow the winning write.
type BookingLifecycle struct {
	repo      *repository.Repository
	inventory *inventory.SeatInventory
	publisher queue.Publisher
	clock     utils.Clock
	log       *zap.Logger
}

func NewBookingLifecycle(
	repo *repository.Repository,
	inv *inventory.SeatInventory,
	publisher queue.Publisher,
	clock utils.Clock,
	log *zap.Logger,
) *BookingLifecycle {
	return &BookingLifecycle{
		repo:      repo,
		inventory: inv,
		publisher: publisher,
		clock:     clock,
		log:       log.With(zap.String("service", "lifecycle")),
	}
}

// Create holds seatIDs for userID and stores a RESERVED booking.
func (l *BookingLifecycle) Create(ctx context.Context, userID string, showtime *entity.Showtime, seatIDs []string) (*entity.Booking, error) {
	if err := rules.CheckSelection(showtime.Layout, seatIDs); err != nil {
		l.log.Warn("Rejected seat selection",
			zap.String("showtime_id", showtime.ID),
			zap.Strings("seats", seatIDs),
			zap.Error(err),
		)
		return nil, err
	}

	booking := entity.NewBooking(uuid.NewString(), userID, showtime, seatIDs, l.clock.Now())

	gapGuard := func(layout entity.SeatLayout, current map[string]entity.SeatStatus) error {
		return rules.ValidateGaps(layout, current, seatIDs)
	}
	if err := l.inventory.Reserve(showtime.ID, booking.ID, seatIDs, gapGuard); err != nil {
		l.log.Warn("Reservation rejected",
			zap.String("showtime_id", showtime.ID),
			zap.String("user_id", userID),
			zap.Strings("seats", seatIDs),
			zap.Error(err),
		)
		return nil, err
	}

	if err := l.repo.Booking.Create(ctx, booking); err != nil {
		l.releaseSeats(booking)
		return nil, apperror.Wrap(apperror.CodeInternal, err, "create booking")
	}

	l.log.Info("Booking reserved",
		zap.String("booking_id", booking.ID),
		zap.String("showtime_id", showtime.ID),
		zap.String("user_id", userID),
		zap.Int("seat_count", len(seatIDs)),
		zap.Time("expires_at", booking.ExpiresAt),
	)
	l.publish(ctx, queue.EventBookingCreated, booking)

	return booking, nil
}

// Confirm records payment for a RESERVED booking whose hold is still open, books its
// seats and issues the ticket. An overdue hold is expired instead.
func (l *BookingLifecycle) Confirm(ctx context.Context, booking *entity.Booking) (*entity.Booking, *entity.Ticket, error) {
	for {
		switch booking.Status {
		case entity.BookingStatusConfirmed:
			return nil, nil, apperror.New(apperror.CodeAlreadyConfirmed, "booking %s is already confirmed", booking.ID)
		case entity.BookingStatusExpired:
			return nil, nil, apperror.New(apperror.CodeBookingExpired, "booking %s has expired, please create a new booking", booking.ID)
		case entity.BookingStatusCancelled:
			return nil, nil, apperror.New(apperror.CodeInvalidState, "booking %s is cancelled", booking.ID)
		}

		now := l.clock.Now()
		if booking.HoldExpired(now) {
			next, err := l.expireAndReload(ctx, booking)
			if err != nil {
				return nil, nil, err
			}
			booking = next
			continue
		}

		ticketID := uuid.NewString()
		next, err := booking.Confirmed(now, ticketID)
		if err != nil {
			return nil, nil, apperror.Wrap(apperror.CodeInvalidState, err, "confirm booking %s", booking.ID)
		}

		won, err := l.repo.Booking.Transition(ctx, next, entity.BookingStatusReserved)
		if err != nil {
			return nil, nil, apperror.Wrap(apperror.CodeInternal, err, "confirm booking %s", booking.ID)
		}
		if !won {
			if booking, err = l.reload(ctx, booking.ID); err != nil {
				return nil, nil, err
			}
			continue
		}

		if err := l.inventory.Finalize(next.ShowtimeID, next.ID, next.SeatIDs); err != nil {
			if lost, lerr := l.cancelledMeanwhile(ctx, next.ID); lerr == nil && lost {
				return nil, nil, apperror.New(apperror.CodeInvalidState, "booking %s was cancelled during confirmation", next.ID)
			}
			l.log.Error("Seats of confirmed booking were not reserved",
				zap.String("booking_id", next.ID),
				zap.Strings("seats", next.SeatIDs),
				zap.Error(err),
			)
			return nil, nil, apperror.Wrap(apperror.CodeInternal, err, "book seats for %s", next.ID)
		}

		ticket := &entity.Ticket{
			BaseSimple: entity.BaseSimple{ID: ticketID, CreatedAt: now},
			BookingID:  next.ID,
			QRCode:     utils.GenerateQRCode(next.ID, now),
			Status:     entity.TicketStatusIssued,
			IssuedAt:   now,
		}
		if err := l.repo.Ticket.Create(ctx, ticket); err != nil {
			l.log.Error("Failed to issue ticket for confirmed booking",
				zap.String("booking_id", next.ID),
				zap.String("ticket_id", ticketID),
				zap.Error(err),
			)
			return nil, nil, apperror.Wrap(apperror.CodeInternal, err, "issue ticket for %s", next.ID)
		}

		// A Cancel that won after our write may have looked for the ticket before it existed.
		lost, err := l.cancelledMeanwhile(ctx, next.ID)
		if err != nil {
			return nil, nil, err
		}
		if lost {
			l.voidTicket(ctx, next.ID, now)
			return nil, nil, apperror.New(apperror.CodeInvalidState, "booking %s was cancelled during confirmation", next.ID)
		}

		l.log.Info("Booking confirmed",
			zap.String("booking_id", next.ID),
			zap.String("showtime_id", next.ShowtimeID),
			zap.String("ticket_id", ticketID),
			zap.Int("seat_count", len(next.SeatIDs)),
		)
		l.publish(ctx, queue.EventBookingConfirmed, next)

		return next, ticket, nil
	}
}

// Cancel cancels a RESERVED or CONFIRMED booking owned by userID and frees its seats.
// Only confirmed bookings earn a refund; the fraction depends on the notice given.
func (l *BookingLifecycle) Cancel(ctx context.Context, booking *entity.Booking, userID string) (*entity.Booking, error) {
	if booking.UserID != userID {
		return nil, apperror.New(apperror.CodeForbidden, "booking %s belongs to another user", booking.ID)
	}

	for {
		switch booking.Status {
		case entity.BookingStatusCancelled:
			return nil, apperror.New(apperror.CodeInvalidState, "booking %s is already cancelled", booking.ID)
		case entity.BookingStatusExpired:
			return nil, apperror.New(apperror.CodeInvalidState, "booking %s has expired", booking.ID)
		}

		now := l.clock.Now()
		if booking.Status == entity.BookingStatusReserved && booking.HoldExpired(now) {
			next, err := l.expireAndReload(ctx, booking)
			if err != nil {
				return nil, err
			}
			booking = next
			continue
		}

		from := booking.Status
		fraction, amount := 0.0, 0.0
		if from == entity.BookingStatusConfirmed {
			showtime, err := l.repo.Showtime.FindByID(ctx, booking.ShowtimeID)
			if err != nil {
				return nil, apperror.Wrap(apperror.CodeInternal, err, "load showtime %s", booking.ShowtimeID)
			}
			if showtime == nil {
				return nil, apperror.New(apperror.CodeShowtimeNotFound, "showtime %s not found", booking.ShowtimeID)
			}
			fraction = rules.RefundFraction(now, showtime.StartsAt)
			amount = rules.RefundAmount(booking.TotalPrice, fraction)
		}

		next, err := booking.Cancelled(now, fraction, amount)
		if err != nil {
			return nil, apperror.Wrap(apperror.CodeInvalidState, err, "cancel booking %s", booking.ID)
		}

		won, err := l.repo.Booking.Transition(ctx, next, from)
		if err != nil {
			return nil, apperror.Wrap(apperror.CodeInternal, err, "cancel booking %s", booking.ID)
		}
		if !won {
			if booking, err = l.reload(ctx, booking.ID); err != nil {
				return nil, err
			}
			continue
		}

		l.releaseSeats(next)
		if from == entity.BookingStatusConfirmed {
			l.voidTicket(ctx, next.ID, now)
		}

		l.log.Info("Booking cancelled",
			zap.String("booking_id", next.ID),
			zap.String("showtime_id", next.ShowtimeID),
			zap.String("from", from.String()),
			zap.Float64("refund_fraction", fraction),
			zap.Float64("refund_amount", amount),
		)
		l.publish(ctx, queue.EventBookingCancelled, next)

		return next, nil
	}
}

// cancelledMeanwhile reports whether the stored booking has left CONFIRMED since this call confirmed it.
func (l *BookingLifecycle) cancelledMeanwhile(ctx context.Context, bookingID string) (bool, error) {
	current, err := l.reload(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return current.Status != entity.BookingStatusConfirmed, nil
}

// voidTicket voids whatever ticket the store holds for the booking. Failures are logged.
func (l *BookingLifecycle) voidTicket(ctx context.Context, bookingID string, at time.Time) {
	ticket, err := l.repo.Ticket.FindByBookingID(ctx, bookingID)
	if err == nil && ticket != nil {
		err = l.repo.Ticket.Void(ctx, ticket.ID, at)
	}
	if err != nil {
		l.log.Error("Failed to void ticket",
			zap.String("booking_id", bookingID),
			zap.Error(err),
		)
	}
}

// Expire moves an overdue RESERVED booking to EXPIRED and frees its seats. It reports
// false, without error, when the booking is not an overdue hold or another writer got there first.
func (l *BookingLifecycle) Expire(ctx context.Context, booking *entity.Booking) (bool, error) {
	if booking.Status != entity.BookingStatusReserved {
		return false, nil
	}

	now := l.clock.Now()
	if !booking.HoldExpired(now) {
		return false, nil
	}

	next, err := booking.Expired(now)
	if err != nil {
		return false, apperror.Wrap(apperror.CodeInvalidState, err, "expire booking %s", booking.ID)
	}

	won, err := l.repo.Booking.Transition(ctx, next, entity.BookingStatusReserved)
	if err != nil {
		return false, apperror.Wrap(apperror.CodeInternal, err, "expire booking %s", booking.ID)
	}
	if !won {
		return false, nil
	}

	l.releaseSeats(next)

	l.log.Info("Booking expired",
		zap.String("booking_id", next.ID),
		zap.String("showtime_id", next.ShowtimeID),
		zap.Int("seat_count", len(next.SeatIDs)),
	)
	l.publish(ctx, queue.EventBookingExpired, next)

	return true, nil
}

// Refresh expires booking if its hold is overdue and returns the current stored state.
func (l *BookingLifecycle) Refresh(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	if booking.Status != entity.BookingStatusReserved || !booking.HoldExpired(l.clock.Now()) {
		return booking, nil
	}
	return l.expireAndReload(ctx, booking)
}

func (l *BookingLifecycle) expireAndReload(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	if _, err := l.Expire(ctx, booking); err != nil {
		return nil, err
	}
	return l.reload(ctx, booking.ID)
}

func (l *BookingLifecycle) reload(ctx context.Context, id string) (*entity.Booking, error) {
	booking, err := l.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "load booking %s", id)
	}
	if booking == nil {
		return nil, apperror.New(apperror.CodeBookingNotFound, "booking %s not found", id)
	}
	return booking, nil
}

func (l *BookingLifecycle) releaseSeats(booking *entity.Booking) {
	released, err := l.inventory.Release(booking.ShowtimeID, booking.ID, booking.SeatIDs)
	if err != nil {
		l.log.Error("Failed to release seats",
			zap.String("booking_id", booking.ID),
			zap.String("showtime_id", booking.ShowtimeID),
			zap.Error(err),
		)
		return
	}
	l.log.Debug("Seats released",
		zap.String("booking_id", booking.ID),
		zap.Int("released", released),
	)
}

// publish runs after the transition is stored; a broker failure never undoes it.
func (l *BookingLifecycle) publish(ctx context.Context, eventType queue.EventType, booking *entity.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := queue.NewBookingEvent(eventType, booking, l.clock.Now())
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.log.Warn("Failed to publish booking event",
			zap.String("type", string(eventType)),
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}
