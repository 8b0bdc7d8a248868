package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestReaper(f *fixture, interval time.Duration, batchSize int) *Reaper {
	return NewReaper(f.service.Lifecycle, f.repo.Booking, f.clock, interval, batchSize, zap.NewNop())
}

func TestReaper_SweepExpiresOverdueHolds(t *testing.T) {
	f := newFixture(t, 10, 48*time.Hour)
	reaper := newTestReaper(f, time.Minute, 10)

	overdue := f.reserve(t, "u1", "A1", "A2")
	f.clock.Advance(5 * time.Minute)
	paid := f.reserve(t, "u2", "A5")
	_, _, err := f.service.Lifecycle.Confirm(f.ctx, paid)
	require.NoError(t, err)
	fresh := f.reserve(t, "u3", "A8")

	f.clock.Advance(6 * time.Minute)
	n, err := reaper.Sweep(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, entity.BookingStatusExpired, f.stored(t, overdue.ID).Status)
	assert.Equal(t, entity.SeatStatusAvailable, f.seat(t, "A1"))
	assert.Equal(t, entity.SeatStatusAvailable, f.seat(t, "A2"))

	assert.Equal(t, entity.BookingStatusConfirmed, f.stored(t, paid.ID).Status)
	assert.Equal(t, entity.SeatStatusBooked, f.seat(t, "A5"))
	assert.Equal(t, entity.BookingStatusReserved, f.stored(t, fresh.ID).Status)

	_, _, err = f.service.Lifecycle.Confirm(f.ctx, f.stored(t, overdue.ID))
	assert.True(t, errors.Is(err, apperror.ErrBookingExpired))

	n, err = reaper.Sweep(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReaper_SweepWalksBatches(t *testing.T) {
	f := newFixture(t, 15, 48*time.Hour)
	reaper := newTestReaper(f, time.Minute, 2)

	for _, seat := range []string{"A1", "A4", "A7", "A10", "A13"} {
		f.reserve(t, "u1", seat)
	}

	f.clock.Advance(entity.HoldDuration)
	n, err := reaper.Sweep(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	snap, err := f.inventory.Snapshot(f.showtime.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, snap.Available)
}

func TestReaper_StartStop(t *testing.T) {
	f := newFixture(t, 3, 48*time.Hour)
	reaper := newTestReaper(f, 5*time.Millisecond, 10)

	booking := f.reserve(t, "u1", "A1")
	f.clock.Advance(11 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper.Start(ctx)
	reaper.Start(ctx)

	assert.Eventually(t, func() bool {
		return f.stored(t, booking.ID).Status == entity.BookingStatusExpired
	}, time.Second, 5*time.Millisecond)

	reaper.Stop()
	reaper.Stop()
}

func TestNewReaper_Defaults(t *testing.T) {
	f := newFixture(t, 3, 48*time.Hour)
	reaper := newTestReaper(f, 0, 0)

	assert.Equal(t, DefaultReaperInterval, reaper.interval)
	assert.Equal(t, DefaultReaperBatchSize, reaper.batchSize)
}
