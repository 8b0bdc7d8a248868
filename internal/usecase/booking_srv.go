package usecase

import (
	"context"
	"strings"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/inventory"
	"cinema-reservation/pkg/apperror"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingSummary, error)
	ConfirmPayment(ctx context.Context, userID, bookingID string) (*response.BookingSummary, error)
	CancelBooking(ctx context.Context, userID, bookingID string) (*response.CancellationSummary, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*response.BookingDetail, error)
	ListMyBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingSummary], error)
	GetTicket(ctx context.Context, userID, bookingID string) (*response.TicketResponse, error)

	GetShowtimeAvailability(ctx context.Context, showtimeID string) (*response.AvailabilityResponse, error)
}

type bookingService struct {
	repo      *repository.Repository
	lifecycle *BookingLifecycle
	catalog   *showtimeCatalog
	inventory *inventory.SeatInventory
	clock     utils.Clock
	log       *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	lifecycle *BookingLifecycle,
	showtimeCache cache.ShowtimeCache,
	inv *inventory.SeatInventory,
	clock utils.Clock,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		lifecycle: lifecycle,
		catalog:   newShowtimeCatalog(repo.Showtime, showtimeCache, log),
		inventory: inv,
		clock:     clock,
		log:       log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingSummary, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperror.New(validationCode(errs), "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	showtime, err := s.catalog.find(ctx, req.ShowtimeID)
	if err != nil {
		return nil, err
	}

	booking, err := s.lifecycle.Create(ctx, userID, showtime, req.SeatIDs)
	if err != nil {
		return nil, err
	}

	summary := response.ToBookingSummary(booking, s.clock.Now())
	return &summary, nil
}

func (s *bookingService) ConfirmPayment(ctx context.Context, userID, bookingID string) (*response.BookingSummary, error) {
	booking, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	confirmed, _, err := s.lifecycle.Confirm(ctx, booking)
	if err != nil {
		return nil, err
	}

	summary := response.ToBookingSummary(confirmed, s.clock.Now())
	return &summary, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*response.CancellationSummary, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.lifecycle.Cancel(ctx, booking, userID)
	if err != nil {
		return nil, err
	}

	summary := response.ToCancellationSummary(cancelled)
	return &summary, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID string) (*response.BookingDetail, error) {
	booking, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	booking, err = s.lifecycle.Refresh(ctx, booking)
	if err != nil {
		return nil, err
	}

	showtime, err := s.catalog.find(ctx, booking.ShowtimeID)
	if err != nil {
		s.log.Warn("Showtime of booking unavailable",
			zap.String("booking_id", booking.ID),
			zap.String("showtime_id", booking.ShowtimeID),
			zap.Error(err),
		)
	}

	detail := response.ToBookingDetail(booking, showtime, s.clock.Now())
	return &detail, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingSummary], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.New(apperror.CodeInvalidRequest, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "list bookings of user %s", userID)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "count bookings of user %s", userID)
	}

	now := s.clock.Now()
	items := make([]response.BookingSummary, 0, len(bookings))
	for _, booking := range bookings {
		refreshed, err := s.lifecycle.Refresh(ctx, booking)
		if err != nil {
			return nil, err
		}
		items = append(items, response.ToBookingSummary(refreshed, now))
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetTicket(ctx context.Context, userID, bookingID string) (*response.TicketResponse, error) {
	booking, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.repo.Ticket.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "load ticket of booking %s", booking.ID)
	}
	if ticket == nil {
		return nil, apperror.New(apperror.CodeTicketNotFound, "booking %s has no ticket", booking.ID)
	}

	resp := response.ToTicketResponse(ticket)
	return &resp, nil
}

func (s *bookingService) GetShowtimeAvailability(ctx context.Context, showtimeID string) (*response.AvailabilityResponse, error) {
	// Served only for showtimes loaded together with their active holds.
	layout, err := s.inventory.Layout(showtimeID)
	if err != nil {
		return nil, err
	}
	snap, err := s.inventory.Snapshot(showtimeID)
	if err != nil {
		return nil, err
	}

	resp := response.ToAvailabilityResponse(showtimeID, layout, snap.Version, snap.Seats)
	return &resp, nil
}

func (s *bookingService) load(ctx context.Context, bookingID string) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "load booking %s", bookingID)
	}
	if booking == nil {
		return nil, apperror.New(apperror.CodeBookingNotFound, "booking %s not found", bookingID)
	}
	return booking, nil
}

func (s *bookingService) owned(ctx context.Context, userID, bookingID string) (*entity.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		s.log.Warn("Booking accessed by another user",
			zap.String("booking_id", bookingID),
			zap.String("user_id", userID),
		)
		return nil, apperror.New(apperror.CodeForbidden, "booking %s belongs to another user", bookingID)
	}
	return booking, nil
}

// validationCode reports a seat list problem as an invalid selection.
func validationCode(errs map[string]string) apperror.Code {
	for field := range errs {
		if !strings.HasPrefix(field, "seat_ids") {
			return apperror.CodeInvalidRequest
		}
	}
	return apperror.CodeInvalidSelection
}
