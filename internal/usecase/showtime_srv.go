package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/inventory"
	"cinema-reservation/pkg/apperror"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DemoShowtimeID is the showtime created by SeedDemo.
const DemoShowtimeID = "demo-showtime-1"

type ShowtimeService interface {
	CreateShowtime(ctx context.Context, req *request.CreateShowtimeRequest) (*response.ShowtimeResponse, error)
	ListShowtimes(ctx context.Context) ([]response.ShowtimeResponse, error)
	GetShowtime(ctx context.Context, id string) (*response.ShowtimeResponse, error)

	// LoadInventory registers every stored showtime not yet in the inventory and replays
	// the seats held by its active bookings. It runs at startup, before requests are served.
	LoadInventory(ctx context.Context) error
	SeedDemo(ctx context.Context) error
}

type showtimeService struct {
	repo      *repository.Repository
	catalog   *showtimeCatalog
	inventory *inventory.SeatInventory
	clock     utils.Clock
	log       *zap.Logger
}

func NewShowtimeService(
	repo *repository.Repository,
	showtimeCache cache.ShowtimeCache,
	inv *inventory.SeatInventory,
	clock utils.Clock,
	log *zap.Logger,
) ShowtimeService {
	return &showtimeService{
		repo:      repo,
		catalog:   newShowtimeCatalog(repo.Showtime, showtimeCache, log),
		inventory: inv,
		clock:     clock,
		log:       log.With(zap.String("service", "showtime")),
	}
}

func (s *showtimeService) CreateShowtime(ctx context.Context, req *request.CreateShowtimeRequest) (*response.ShowtimeResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create showtime validation failed", zap.Any("errors", errs))
		return nil, apperror.New(apperror.CodeInvalidRequest, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	layout, err := layoutFromRequest(req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	showtime := &entity.Showtime{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MovieID:      req.MovieID,
		ScreenID:     req.ScreenID,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		PricePerSeat: req.PricePerSeat,
		Layout:       layout,
	}

	if err := s.create(ctx, showtime); err != nil {
		return nil, err
	}

	resp := response.ToShowtimeResponse(showtime, showtime.Layout.Capacity())
	return &resp, nil
}

func (s *showtimeService) ListShowtimes(ctx context.Context) ([]response.ShowtimeResponse, error) {
	showtimes, err := s.repo.Showtime.FindAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "list showtimes")
	}

	out := make([]response.ShowtimeResponse, 0, len(showtimes))
	for _, showtime := range showtimes {
		out = append(out, response.ToShowtimeResponse(showtime, s.available(showtime.ID)))
	}
	return out, nil
}

func (s *showtimeService) GetShowtime(ctx context.Context, id string) (*response.ShowtimeResponse, error) {
	showtime, err := s.catalog.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.ToShowtimeResponse(showtime, s.available(id))
	return &resp, nil
}

func (s *showtimeService) LoadInventory(ctx context.Context) error {
	showtimes, err := s.repo.Showtime.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load showtimes: %w", err)
	}

	restored, loaded := 0, 0
	for _, showtime := range showtimes {
		// Already live here; its holds are tracked by this inventory.
		if s.inventory.Has(showtime.ID) {
			continue
		}
		loaded++

		if err := s.inventory.Register(showtime.ID, showtime.Layout); err != nil {
			return fmt.Errorf("register showtime %s: %w", showtime.ID, err)
		}

		bookings, err := s.repo.Booking.FindActiveByShowtime(ctx, showtime.ID)
		if err != nil {
			return fmt.Errorf("load bookings of showtime %s: %w", showtime.ID, err)
		}

		for _, booking := range bookings {
			status := entity.SeatStatusReserved
			if booking.Status == entity.BookingStatusConfirmed {
				status = entity.SeatStatusBooked
			}
			if err := s.inventory.Restore(showtime.ID, booking.ID, booking.SeatIDs, status); err != nil {
				return fmt.Errorf("restore seats of booking %s: %w", booking.ID, err)
			}
			restored++
		}
	}

	s.log.Info("Inventory loaded",
		zap.Int("showtimes", loaded),
		zap.Int("active_bookings", restored),
	)
	return nil
}

// SeedDemo creates one showtime with row A, seats 1 to 10, starting in two days. It is a no-op
// when the demo showtime already exists.
func (s *showtimeService) SeedDemo(ctx context.Context) error {
	existing, err := s.repo.Showtime.FindByID(ctx, DemoShowtimeID)
	if err != nil {
		return fmt.Errorf("check demo showtime: %w", err)
	}
	if existing != nil {
		return nil
	}

	now := s.clock.Now()
	startsAt := now.Add(48 * time.Hour).Truncate(time.Hour)
	showtime := &entity.Showtime{
		Base:         entity.Base{ID: DemoShowtimeID, CreatedAt: now, UpdatedAt: now},
		MovieID:      "demo-movie-1",
		ScreenID:     "screen-1",
		StartsAt:     startsAt,
		EndsAt:       startsAt.Add(2 * time.Hour),
		PricePerSeat: 50000,
		Layout:       entity.NewGridLayout(1, 10),
	}

	return s.create(ctx, showtime)
}

func (s *showtimeService) create(ctx context.Context, showtime *entity.Showtime) error {
	if err := s.repo.Showtime.Create(ctx, showtime); err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "create showtime")
	}
	if err := s.inventory.Register(showtime.ID, showtime.Layout); err != nil {
		return err
	}
	s.catalog.remember(ctx, showtime)

	s.log.Info("Showtime created",
		zap.String("showtime_id", showtime.ID),
		zap.String("movie_id", showtime.MovieID),
		zap.Time("starts_at", showtime.StartsAt),
		zap.Int("capacity", showtime.Layout.Capacity()),
	)
	return nil
}

func (s *showtimeService) available(id string) int {
	snap, err := s.inventory.Snapshot(id)
	if err != nil {
		return 0
	}
	return snap.Available
}

func layoutFromRequest(req *request.CreateShowtimeRequest) (entity.SeatLayout, error) {
	grid := req.Rows > 0 || req.Columns > 0
	switch {
	case grid && len(req.Layout) > 0:
		return entity.SeatLayout{}, apperror.New(apperror.CodeInvalidRequest, "give either rows and columns or layout, not both")
	case grid:
		if req.Rows == 0 || req.Columns == 0 {
			return entity.SeatLayout{}, apperror.New(apperror.CodeInvalidRequest, "rows and columns must both be set")
		}
		return entity.NewGridLayout(req.Rows, req.Columns), nil
	case len(req.Layout) == 0:
		return entity.SeatLayout{}, apperror.New(apperror.CodeInvalidRequest, "a seat layout is required")
	}

	layout := entity.SeatLayout{Rows: make([]entity.SeatRow, 0, len(req.Layout))}
	for _, row := range req.Layout {
		layout.Rows = append(layout.Rows, entity.SeatRow{
			Label: row.Label,
			Seats: append([]string(nil), row.Seats...),
		})
	}
	if err := layout.Validate(); err != nil {
		return entity.SeatLayout{}, apperror.Wrap(apperror.CodeInvalidRequest, err, "invalid layout")
	}
	return layout, nil
}

// showtimeCatalog is a read-through cache in front of the showtime repository.
type showtimeCatalog struct {
	showtimes repository.ShowtimeRepository
	cache     cache.ShowtimeCache
	log       *zap.Logger
}

func newShowtimeCatalog(showtimes repository.ShowtimeRepository, showtimeCache cache.ShowtimeCache, log *zap.Logger) *showtimeCatalog {
	return &showtimeCatalog{
		showtimes: showtimes,
		cache:     showtimeCache,
		log:       log.With(zap.String("component", "showtime_catalog")),
	}
}

func (c *showtimeCatalog) find(ctx context.Context, id string) (*entity.Showtime, error) {
	cached, err := c.cache.Get(ctx, id)
	if err != nil {
		c.log.Warn("Showtime cache read failed", zap.String("showtime_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	showtime, err := c.showtimes.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "load showtime %s", id)
	}
	if showtime == nil {
		return nil, apperror.New(apperror.CodeShowtimeNotFound, "showtime %s not found", id)
	}

	c.remember(ctx, showtime)
	return showtime, nil
}

func (c *showtimeCatalog) remember(ctx context.Context, showtime *entity.Showtime) {
	if err := c.cache.Set(ctx, showtime); err != nil {
		c.log.Warn("Showtime cache write failed", zap.String("showtime_id", showtime.ID), zap.Error(err))
	}
}
