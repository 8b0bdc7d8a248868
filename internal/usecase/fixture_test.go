package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/inventory"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/queue"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(eventType queue.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	ctx       context.Context
	clock     *fakeClock
	repo      *repository.Repository
	inventory *inventory.SeatInventory
	publisher *recordingPublisher
	service   *Service
	showtime  *entity.Showtime
}

// newFixture stores one showtime with a single row of columns seats, starting startsIn after base.
func newFixture(t *testing.T, columns int, startsIn time.Duration) *fixture {
	t.Helper()

	log := zap.NewNop()
	f := &fixture{
		ctx:       context.Background(),
		clock:     &fakeClock{now: base},
		repo:      repository.NewMemoryRepository(log),
		inventory: inventory.New(log),
		publisher: &recordingPublisher{},
	}
	f.service = NewService(f.repo, cache.NewNopShowtimeCache(), f.inventory, f.publisher, f.clock, log)

	f.showtime = &entity.Showtime{
		Base:         entity.Base{ID: "s1", CreatedAt: base, UpdatedAt: base},
		MovieID:      "movie-1",
		ScreenID:     "screen-1",
		StartsAt:     base.Add(startsIn),
		EndsAt:       base.Add(startsIn + 2*time.Hour),
		PricePerSeat: 50000,
		Layout:       entity.NewGridLayout(1, columns),
	}
	require.NoError(t, f.repo.Showtime.Create(f.ctx, f.showtime))
	require.NoError(t, f.inventory.Register(f.showtime.ID, f.showtime.Layout))
	return f
}

func (f *fixture) reserve(t *testing.T, userID string, seats ...string) *entity.Booking {
	t.Helper()
	booking, err := f.service.Lifecycle.Create(f.ctx, userID, f.showtime, seats)
	require.NoError(t, err)
	return booking
}

func (f *fixture) seat(t *testing.T, id string) entity.SeatStatus {
	t.Helper()
	snap, err := f.inventory.Snapshot(f.showtime.ID)
	require.NoError(t, err)
	return snap.Status(id)
}

func (f *fixture) stored(t *testing.T, id string) *entity.Booking {
	t.Helper()
	booking, err := f.repo.Booking.FindByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, booking)
	return booking
}

// hookedTickets runs a callback around the first ticket insert, to interleave another writer.
type hookedTickets struct {
	repository.TicketRepository
	once         sync.Once
	beforeCreate func()
	afterCreate  func()
}

func (h *hookedTickets) Create(ctx context.Context, ticket *entity.Ticket) error {
	first := false
	h.once.Do(func() { first = true })

	if first && h.beforeCreate != nil {
		h.beforeCreate()
	}
	if err := h.TicketRepository.Create(ctx, ticket); err != nil {
		return err
	}
	if first && h.afterCreate != nil {
		h.afterCreate()
	}
	return nil
}

// settled checks that a booking's seats and ticket agree with its stored status.
func (f *fixture) settled(t *testing.T, id string) entity.BookingStatus {
	t.Helper()
	booking := f.stored(t, id)
	ticket, err := f.repo.Ticket.FindByBookingID(f.ctx, id)
	require.NoError(t, err)

	switch booking.Status {
	case entity.BookingStatusConfirmed:
		require.NotNil(t, ticket)
		require.Equal(t, entity.TicketStatusIssued, ticket.Status)
		for _, seat := range booking.SeatIDs {
			require.Equal(t, entity.SeatStatusBooked, f.seat(t, seat), seat)
		}
	case entity.BookingStatusCancelled:
		if ticket != nil {
			require.Equal(t, entity.TicketStatusVoided, ticket.Status)
		}
		for _, seat := range booking.SeatIDs {
			require.Equal(t, entity.SeatStatusAvailable, f.seat(t, seat), seat)
		}
	default:
		t.Fatalf("booking %s left in %s", id, booking.Status)
	}
	return booking.Status
}
