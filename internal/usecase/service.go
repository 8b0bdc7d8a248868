package usecase

import (
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/inventory"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/queue"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking   BookingService
	Showtime  ShowtimeService
	Lifecycle *BookingLifecycle
}

func NewService(
	repo *repository.Repository,
	showtimeCache cache.ShowtimeCache,
	inv *inventory.SeatInventory,
	publisher queue.Publisher,
	clock utils.Clock,
	log *zap.Logger,
) *Service {
	lifecycle := NewBookingLifecycle(repo, inv, publisher, clock, log)
	return &Service{
		Booking:   NewBookingService(repo, lifecycle, showtimeCache, inv, clock, log),
		Showtime:  NewShowtimeService(repo, showtimeCache, inv, clock, log),
		Lifecycle: lifecycle,
	}
}
