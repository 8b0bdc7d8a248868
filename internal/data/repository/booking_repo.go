package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)

	// Business queries
	FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error)
	FindActiveByShowtime(ctx context.Context, showtimeID string) ([]*entity.Booking, error)

	// Transition stores booking only if the stored status is still from.
	// It reports false, without error, when another writer moved the booking first.
	Transition(ctx context.Context, booking *entity.Booking, from entity.BookingStatus) (bool, error)
}

const bookingColumns = `id, user_id, showtime_id, seat_ids, status, total_price, expires_at,
		confirmed_at, ticket_id, cancelled_at, refund_fraction, refund_amount, expired_at,
		created_at, updated_at`

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.ShowtimeID,
		booking.SeatIDs,
		booking.Status,
		booking.TotalPrice,
		booking.ExpiresAt,
		booking.ConfirmedAt,
		booking.TicketID,
		booking.CancelledAt,
		booking.RefundFraction,
		booking.RefundAmount,
		booking.ExpiredAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID),
			zap.String("user_id", booking.UserID),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID, err)
	}

	return r.collect(rows)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID, err)
	}

	return count, nil
}

func (r *bookingRepository) FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at, id
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, entity.BookingStatusReserved, now, limit)
	if err != nil {
		r.log.Error("Failed to find expired holds",
			zap.Error(err),
			zap.Time("now", now),
		)
		return nil, fmt.Errorf("find expired holds: %w", err)
	}

	return r.collect(rows)
}

func (r *bookingRepository) FindActiveByShowtime(ctx context.Context, showtimeID string) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE showtime_id = $1 AND status IN ($2, $3)
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, showtimeID, entity.BookingStatusReserved, entity.BookingStatusConfirmed)
	if err != nil {
		r.log.Error("Failed to find active bookings by showtime ID",
			zap.Error(err),
			zap.String("showtime_id", showtimeID),
		)
		return nil, fmt.Errorf("find active bookings by showtime ID %s: %w", showtimeID, err)
	}

	return r.collect(rows)
}

func (r *bookingRepository) Transition(ctx context.Context, booking *entity.Booking, from entity.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $3, confirmed_at = $4, ticket_id = $5, cancelled_at = $6,
		    refund_fraction = $7, refund_amount = $8, expired_at = $9, updated_at = $10
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		from,
		booking.Status,
		booking.ConfirmedAt,
		booking.TicketID,
		booking.CancelledAt,
		booking.RefundFraction,
		booking.RefundAmount,
		booking.ExpiredAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to transition booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID),
			zap.String("from", from.String()),
			zap.String("to", booking.Status.String()),
		)
		return false, fmt.Errorf("transition booking %s from %s to %s: %w", booking.ID, from, booking.Status, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.Booking, error) {
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowtimeID,
		&booking.SeatIDs,
		&booking.Status,
		&booking.TotalPrice,
		&booking.ExpiresAt,
		&booking.ConfirmedAt,
		&booking.TicketID,
		&booking.CancelledAt,
		&booking.RefundFraction,
		&booking.RefundAmount,
		&booking.ExpiredAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if !booking.Status.IsValid() {
		return nil, fmt.Errorf("booking %s has unknown status %q", booking.ID, booking.Status)
	}
	return &booking, nil
}
