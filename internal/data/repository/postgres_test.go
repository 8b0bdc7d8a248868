package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var bookingColumnNames = []string{
	"id", "user_id", "showtime_id", "seat_ids", "status", "total_price", "expires_at",
	"confirmed_at", "ticket_id", "cancelled_at", "refund_fraction", "refund_amount", "expired_at",
	"created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestBookingRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewBookingRepository(mock, zap.NewNop())

	rows := pgxmock.NewRows(bookingColumnNames).AddRow(
		"b1", "u1", "s1", []string{"A1", "A2"}, entity.BookingStatusReserved, 100000.0, base.Add(entity.HoldDuration),
		nil, nil, nil, nil, nil, nil,
		base, base,
	)
	mock.ExpectQuery("SELECT id, user_id").WithArgs("b1").WillReturnRows(rows)

	booking, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, []string{"A1", "A2"}, booking.SeatIDs)
	assert.Equal(t, entity.BookingStatusReserved, booking.Status)
	assert.Nil(t, booking.TicketID)

	mock.ExpectQuery("SELECT id, user_id").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	booking, err = repo.FindByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, booking)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Transition(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewBookingRepository(mock, zap.NewNop())

	show := testShowtime("s1", base.Add(24*time.Hour))
	booking := entity.NewBooking("b1", "u1", show, []string{"A1"}, base)
	expired, err := booking.Expired(base.Add(entity.HoldDuration))
	require.NoError(t, err)

	anyArgs := func() []any {
		args := []any{"b1", entity.BookingStatusReserved, entity.BookingStatusExpired}
		for i := 0; i < 7; i++ {
			args = append(args, pgxmock.AnyArg())
		}
		return args
	}

	mock.ExpectExec("UPDATE bookings").WithArgs(anyArgs()...).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE bookings").WithArgs(anyArgs()...).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.Transition(ctx, expired, entity.BookingStatusReserved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Transition(ctx, expired, entity.BookingStatusReserved)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindExpiredHolds(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewBookingRepository(mock, zap.NewNop())

	now := base.Add(time.Hour)
	rows := pgxmock.NewRows(bookingColumnNames).AddRow(
		"b1", "u1", "s1", []string{"A1"}, entity.BookingStatusReserved, 50000.0, base.Add(entity.HoldDuration),
		nil, nil, nil, nil, nil, nil,
		base, base,
	)
	mock.ExpectQuery("SELECT id, user_id").
		WithArgs(entity.BookingStatusReserved, now, 100).
		WillReturnRows(rows)

	holds, err := repo.FindExpiredHolds(ctx, now, 100)
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, "b1", holds[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowtimeRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewShowtimeRepository(mock, zap.NewNop())

	layout, err := json.Marshal(entity.NewGridLayout(2, 3))
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{
		"id", "movie_id", "screen_id", "starts_at", "ends_at", "price_per_seat", "layout", "created_at", "updated_at",
	}).AddRow("s1", "m1", "screen-1", base, base.Add(2*time.Hour), 50000.0, layout, base, base)
	mock.ExpectQuery("SELECT id, movie_id").WithArgs("s1").WillReturnRows(rows)

	showtime, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, showtime)
	assert.Equal(t, 6, showtime.Layout.Capacity())
	assert.Equal(t, "B3", showtime.Layout.Rows[1].Seats[2])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_Void(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewTicketRepository(mock, zap.NewNop())

	at := base.Add(time.Hour)
	mock.ExpectExec("UPDATE tickets").
		WithArgs("t1", entity.TicketStatusVoided, at, entity.TicketStatusIssued).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.Void(ctx, "t1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
