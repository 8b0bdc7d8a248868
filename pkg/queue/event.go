// Package queue publishes booking lifecycle events to a message broker.
package queue

import (
	"context"
	"time"

	"cinema-reservation/internal/data/entity"
)

type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingExpired   EventType = "booking.expired"
)

// BookingEvent is emitted once per successful booking transition.
type BookingEvent struct {
	Type           EventType `json:"type"`
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	ShowtimeID     string    `json:"showtime_id"`
	SeatIDs        []string  `json:"seat_ids"`
	Status         string    `json:"status"`
	TotalPrice     float64   `json:"total_price"`
	TicketID       *string   `json:"ticket_id,omitempty"`
	RefundFraction *float64  `json:"refund_fraction,omitempty"`
	RefundAmount   *float64  `json:"refund_amount,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType EventType, booking *entity.Booking, at time.Time) BookingEvent {
	b := booking.Clone()
	return BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		UserID:         b.UserID,
		ShowtimeID:     b.ShowtimeID,
		SeatIDs:        b.SeatIDs,
		Status:         b.Status.String(),
		TotalPrice:     b.TotalPrice,
		TicketID:       b.TicketID,
		RefundFraction: b.RefundFraction,
		RefundAmount:   b.RefundAmount,
		OccurredAt:     at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, BookingEvent) error { return nil }

func (nopPublisher) Close() error { return nil }
