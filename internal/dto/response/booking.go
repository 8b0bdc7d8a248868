package response

import (
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
)

type BookingSummary struct {
	ID         string               `json:"id"`
	ShowtimeID string               `json:"showtime_id"`
	SeatIDs    []string             `json:"seat_ids"`
	Status     entity.BookingStatus `json:"status"`
	TotalPrice float64              `json:"total_price"`
	ExpiresAt  time.Time            `json:"expires_at"`
	TicketID   *string              `json:"ticket_id,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	Message    string               `json:"message,omitempty"`
}

type BookingDetail struct {
	BookingSummary
	UserID         string         `json:"user_id"`
	Showtime       *ShowtimeBrief `json:"showtime,omitempty"`
	RemainingHold  int64          `json:"remaining_hold_seconds"`
	ConfirmedAt    *time.Time     `json:"confirmed_at,omitempty"`
	CancelledAt    *time.Time     `json:"cancelled_at,omitempty"`
	ExpiredAt      *time.Time     `json:"expired_at,omitempty"`
	RefundFraction *float64       `json:"refund_fraction,omitempty"`
	RefundAmount   *float64       `json:"refund_amount,omitempty"`
}

type ShowtimeBrief struct {
	ID       string    `json:"id"`
	MovieID  string    `json:"movie_id"`
	ScreenID string    `json:"screen_id"`
	StartsAt time.Time `json:"starts_at"`
}

type CancellationSummary struct {
	BookingID        string               `json:"booking_id"`
	Status           entity.BookingStatus `json:"status"`
	RefundApplicable bool                 `json:"refund_applicable"`
	RefundFraction   float64              `json:"refund_fraction"`
	RefundAmount     float64              `json:"refund_amount"`
	CancelledAt      time.Time            `json:"cancelled_at"`
}

type TicketResponse struct {
	ID        string              `json:"id"`
	BookingID string              `json:"booking_id"`
	QRCode    string              `json:"qr_code"`
	Status    entity.TicketStatus `json:"status"`
	IssuedAt  time.Time           `json:"issued_at"`
	VoidedAt  *time.Time          `json:"voided_at,omitempty"`
}

// StatusMessage describes what a booking's holder can do next.
func StatusMessage(b *entity.Booking, now time.Time) string {
	switch b.Status {
	case entity.BookingStatusReserved:
		if b.HoldExpired(now) {
			return "Booking has expired."
		}
		minutes := int(b.RemainingHold(now) / time.Minute)
		return fmt.Sprintf("Booking is reserved. Please complete payment within %d minutes.", minutes)
	case entity.BookingStatusConfirmed:
		return "Booking is confirmed. Ticket has been issued."
	case entity.BookingStatusCancelled:
		return "Booking has been cancelled."
	case entity.BookingStatusExpired:
		return "Booking has expired."
	}
	return ""
}

func ToBookingSummary(b *entity.Booking, now time.Time) BookingSummary {
	return BookingSummary{
		ID:         b.ID,
		ShowtimeID: b.ShowtimeID,
		SeatIDs:    append([]string(nil), b.SeatIDs...),
		Status:     b.Status,
		TotalPrice: b.TotalPrice,
		ExpiresAt:  b.ExpiresAt,
		TicketID:   b.TicketID,
		CreatedAt:  b.CreatedAt,
		Message:    StatusMessage(b, now),
	}
}

func ToBookingDetail(b *entity.Booking, showtime *entity.Showtime, now time.Time) BookingDetail {
	detail := BookingDetail{
		BookingSummary: ToBookingSummary(b, now),
		UserID:         b.UserID,
		ConfirmedAt:    b.ConfirmedAt,
		CancelledAt:    b.CancelledAt,
		ExpiredAt:      b.ExpiredAt,
		RefundFraction: b.RefundFraction,
		RefundAmount:   b.RefundAmount,
	}
	if b.Status == entity.BookingStatusReserved {
		detail.RemainingHold = int64(b.RemainingHold(now) / time.Second)
	}
	if showtime != nil {
		detail.Showtime = &ShowtimeBrief{
			ID:       showtime.ID,
			MovieID:  showtime.MovieID,
			ScreenID: showtime.ScreenID,
			StartsAt: showtime.StartsAt,
		}
	}
	return detail
}

func ToCancellationSummary(b *entity.Booking) CancellationSummary {
	summary := CancellationSummary{
		BookingID:        b.ID,
		Status:           b.Status,
		RefundApplicable: b.ConfirmedAt != nil,
	}
	if b.RefundFraction != nil {
		summary.RefundFraction = *b.RefundFraction
	}
	if b.RefundAmount != nil {
		summary.RefundAmount = *b.RefundAmount
	}
	if b.CancelledAt != nil {
		summary.CancelledAt = *b.CancelledAt
	}
	return summary
}

func ToTicketResponse(t *entity.Ticket) TicketResponse {
	return TicketResponse{
		ID:        t.ID,
		BookingID: t.BookingID,
		QRCode:    t.QRCode,
		Status:    t.Status,
		IssuedAt:  t.IssuedAt,
		VoidedAt:  t.VoidedAt,
	}
}
