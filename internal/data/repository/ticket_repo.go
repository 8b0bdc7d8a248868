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

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	FindByID(ctx context.Context, id string) (*entity.Ticket, error)
	FindByBookingID(ctx context.Context, bookingID string) (*entity.Ticket, error)
	Void(ctx context.Context, id string, at time.Time) error
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, booking_id, qr_code, status, issued_at, voided_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.BookingID,
		ticket.QRCode,
		ticket.Status,
		ticket.IssuedAt,
		ticket.VoidedAt,
		ticket.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create ticket",
			zap.Error(err),
			zap.String("ticket_id", ticket.ID),
			zap.String("booking_id", ticket.BookingID),
		)
		return fmt.Errorf("create ticket for booking %s: %w", ticket.BookingID, err)
	}

	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id string) (*entity.Ticket, error) {
	query := `
		SELECT id, booking_id, qr_code, status, issued_at, voided_at, created_at
		FROM tickets
		WHERE id = $1
	`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by ID",
			zap.Error(err),
			zap.String("ticket_id", id),
		)
		return nil, fmt.Errorf("find ticket by ID %s: %w", id, err)
	}

	return ticket, nil
}

func (r *ticketRepository) FindByBookingID(ctx context.Context, bookingID string) (*entity.Ticket, error) {
	query := `
		SELECT id, booking_id, qr_code, status, issued_at, voided_at, created_at
		FROM tickets
		WHERE booking_id = $1
	`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("find ticket by booking ID %s: %w", bookingID, err)
	}

	return ticket, nil
}

func (r *ticketRepository) Void(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE tickets SET status = $2, voided_at = $3 WHERE id = $1 AND status = $4`

	result, err := r.db.Exec(ctx, query, id, entity.TicketStatusVoided, at, entity.TicketStatusIssued)
	if err != nil {
		r.log.Error("Failed to void ticket",
			zap.Error(err),
			zap.String("ticket_id", id),
		)
		return fmt.Errorf("void ticket %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		r.log.Debug("Ticket already voided or missing", zap.String("ticket_id", id))
	}

	return nil
}

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.BookingID,
		&ticket.QRCode,
		&ticket.Status,
		&ticket.IssuedAt,
		&ticket.VoidedAt,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
