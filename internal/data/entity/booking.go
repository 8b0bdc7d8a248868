package entity

import (
	"fmt"
	"time"
)

// HoldDuration is how long a RESERVED booking keeps its seats while waiting for payment.
const HoldDuration = 10 * time.Minute

type BookingStatus string

const (
	BookingStatusReserved  BookingStatus = "RESERVED"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

// IsValid reports whether s is one of the known booking statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusReserved, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no transition can leave s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCancelled, BookingStatusExpired:
		return true
	case BookingStatusReserved, BookingStatusConfirmed:
		return false
	}
	panic(fmt.Sprintf("unknown booking status %q", string(s)))
}

// HoldsSeats reports whether a booking in status s occupies its seats.
func (s BookingStatus) HoldsSeats() bool {
	return s == BookingStatusReserved || s == BookingStatusConfirmed
}

// CanTransitionTo encodes the booking state machine.
//
//	RESERVED  -> CONFIRMED | CANCELLED | EXPIRED
//	CONFIRMED -> CANCELLED
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusReserved:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled || next == BookingStatusExpired
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	case BookingStatusCancelled, BookingStatusExpired:
		return false
	}
	panic(fmt.Sprintf("unknown booking status %q", string(s)))
}

func (s BookingStatus) String() string {
	return string(s)
}

type Booking struct {
	Base
	UserID         string        `db:"user_id" json:"user_id"`
	ShowtimeID     string        `db:"showtime_id" json:"showtime_id"`
	SeatIDs        []string      `db:"seat_ids" json:"seat_ids"`
	Status         BookingStatus `db:"status" json:"status"`
	TotalPrice     float64       `db:"total_price" json:"total_price"`
	ExpiresAt      time.Time     `db:"expires_at" json:"expires_at"`
	ConfirmedAt    *time.Time    `db:"confirmed_at" json:"confirmed_at,omitempty"`
	TicketID       *string       `db:"ticket_id" json:"ticket_id,omitempty"`
	CancelledAt    *time.Time    `db:"cancelled_at" json:"cancelled_at,omitempty"`
	RefundFraction *float64      `db:"refund_fraction" json:"refund_fraction,omitempty"`
	RefundAmount   *float64      `db:"refund_amount" json:"refund_amount,omitempty"`
	ExpiredAt      *time.Time    `db:"expired_at" json:"expired_at,omitempty"`
}

// NewBooking builds a RESERVED booking whose hold ends HoldDuration after now.
func NewBooking(id, userID string, showtime *Showtime, seatIDs []string, now time.Time) *Booking {
	return &Booking{
		Base: Base{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:     userID,
		ShowtimeID: showtime.ID,
		SeatIDs:    append([]string(nil), seatIDs...),
		Status:     BookingStatusReserved,
		TotalPrice: showtime.PricePerSeat * float64(len(seatIDs)),
		ExpiresAt:  now.Add(HoldDuration),
	}
}

// HoldExpired reports whether the payment window is over at now. The deadline itself is expired.
func (b *Booking) HoldExpired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// RemainingHold is the time left to pay, zero once expired.
func (b *Booking) RemainingHold(now time.Time) time.Duration {
	if b.HoldExpired(now) {
		return 0
	}
	return b.ExpiresAt.Sub(now)
}

// Confirmed returns a copy of b moved to CONFIRMED with the given ticket.
func (b *Booking) Confirmed(now time.Time, ticketID string) (*Booking, error) {
	next, err := b.moveTo(BookingStatusConfirmed, now)
	if err != nil {
		return nil, err
	}
	next.ConfirmedAt = &now
	next.TicketID = &ticketID
	return next, nil
}

// Cancelled returns a copy of b moved to CANCELLED with its refund recorded.
func (b *Booking) Cancelled(now time.Time, fraction, amount float64) (*Booking, error) {
	next, err := b.moveTo(BookingStatusCancelled, now)
	if err != nil {
		return nil, err
	}
	next.CancelledAt = &now
	next.RefundFraction = &fraction
	next.RefundAmount = &amount
	return next, nil
}

// Expired returns a copy of b moved to EXPIRED.
func (b *Booking) Expired(now time.Time) (*Booking, error) {
	next, err := b.moveTo(BookingStatusExpired, now)
	if err != nil {
		return nil, err
	}
	next.ExpiredAt = &now
	return next, nil
}

func (b *Booking) moveTo(status BookingStatus, now time.Time) (*Booking, error) {
	if !b.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("booking %s cannot move from %s to %s", b.ID, b.Status, status)
	}
	next := b.Clone()
	next.Status = status
	next.UpdatedAt = now
	return next, nil
}

// Clone returns a deep copy of b.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	out := *b
	out.SeatIDs = append([]string(nil), b.SeatIDs...)
	out.ConfirmedAt = cloneTime(b.ConfirmedAt)
	out.CancelledAt = cloneTime(b.CancelledAt)
	out.ExpiredAt = cloneTime(b.ExpiredAt)
	out.RefundFraction = cloneFloat(b.RefundFraction)
	out.RefundAmount = cloneFloat(b.RefundAmount)
	if b.TicketID != nil {
		id := *b.TicketID
		out.TicketID = &id
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
