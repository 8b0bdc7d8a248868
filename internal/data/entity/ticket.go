package entity

import "time"

type TicketStatus string

const (
	TicketStatusIssued TicketStatus = "ISSUED"
	TicketStatusVoided TicketStatus = "VOIDED"
)

type Ticket struct {
	BaseSimple
	BookingID string       `db:"booking_id" json:"booking_id"`
	QRCode    string       `db:"qr_code" json:"qr_code"`
	Status    TicketStatus `db:"status" json:"status"`
	IssuedAt  time.Time    `db:"issued_at" json:"issued_at"`
	VoidedAt  *time.Time   `db:"voided_at" json:"voided_at,omitempty"`
}

func (t *Ticket) IsValid() bool {
	return t.Status == TicketStatusIssued
}

func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	out := *t
	if t.VoidedAt != nil {
		v := *t.VoidedAt
		out.VoidedAt = &v
	}
	return &out
}
