package usecase

import (
	"context"
	"sync"
	"time"

	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

const (
	DefaultReaperInterval  = 20 * time.Second
	DefaultReaperBatchSize = 100
)

// Reaper periodically expires RESERVED bookings whose hold has run out. Expiry goes
// through BookingLifecycle.Expire, so a sweep racing Confirm, Cancel or another sweep
// simply skips the bookings it loses.
type Reaper struct {
	lifecycle *BookingLifecycle
	bookings  repository.BookingRepository
	clock     utils.Clock
	interval  time.Duration
	batchSize int
	log       *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

func NewReaper(
	lifecycle *BookingLifecycle,
	bookings repository.BookingRepository,
	clock utils.Clock,
	interval time.Duration,
	batchSize int,
	log *zap.Logger,
) *Reaper {
	if interval <= 0 {
		interval = DefaultReaperInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultReaperBatchSize
	}
	return &Reaper{
		lifecycle: lifecycle,
		bookings:  bookings,
		clock:     clock,
		interval:  interval,
		batchSize: batchSize,
		log:       log.With(zap.String("component", "reaper")),
	}
}

// Start launches the sweep loop. It returns immediately; calling Start on a running reaper does nothing.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stop != nil {
		return
	}
	stop := make(chan struct{})
	r.stop = stop

	r.wg.Add(1)
	go r.run(ctx, stop)

	r.log.Info("Reaper started",
		zap.Duration("interval", r.interval),
		zap.Int("batch_size", r.batchSize),
	)
}

// Stop signals the loop and waits for an in-flight sweep to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	stop := r.stop
	r.stop = nil
	r.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	r.wg.Wait()

	r.log.Info("Reaper stopped")
}

func (r *Reaper) run(ctx context.Context, stop <-chan struct{}) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.log.Error("Sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep expires every overdue hold visible now and returns how many it expired.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	expired := 0
	for {
		holds, err := r.bookings.FindExpiredHolds(ctx, r.clock.Now(), r.batchSize)
		if err != nil {
			return expired, err
		}

		progressed := 0
		for _, booking := range holds {
			if ctx.Err() != nil {
				return expired, ctx.Err()
			}
			ok, err := r.lifecycle.Expire(ctx, booking)
			if err != nil {
				r.log.Error("Failed to expire booking",
					zap.String("booking_id", booking.ID),
					zap.Error(err),
				)
				continue
			}
			if ok {
				expired++
				progressed++
			}
		}

		if len(holds) < r.batchSize || progressed == 0 {
			break
		}
	}

	if expired > 0 {
		r.log.Info("Expired overdue holds", zap.Int("count", expired))
	}
	return expired, nil
}
