package adaptor

import (
	"encoding/json"
	"net/http"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, booking.Message, booking)
}

// ListMyBookings handles GET /api/bookings?page=&per_page=
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.ListMyBookings(r.Context(), userID, request.PaginationFromQuery(r.URL.Query()))
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.bookingParams(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, booking.Message, booking)
}

// ConfirmPayment handles POST /api/bookings/{id}/confirm-payment
func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.bookingParams(w, r)
	if !ok {
		return
	}

	booking, err := h.service.ConfirmPayment(r.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm payment")
		return
	}

	utils.ResponseSuccess(w, "Payment confirmed and ticket issued", booking)
}

// CancelBooking handles DELETE /api/bookings/{id}
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.bookingParams(w, r)
	if !ok {
		return
	}

	summary, err := h.service.CancelBooking(r.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	message := "Booking cancelled"
	if summary.RefundApplicable {
		message = "Booking cancelled, refund issued"
	}
	utils.ResponseSuccess(w, message, summary)
}

// GetTicket handles GET /api/bookings/{id}/ticket
func (h *BookingHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.bookingParams(w, r)
	if !ok {
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", ticket)
}

func (h *BookingHandler) bookingParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return "", "", false
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return "", "", false
	}
	return userID, bookingID, true
}
