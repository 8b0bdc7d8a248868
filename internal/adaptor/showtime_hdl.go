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

type ShowtimeHandler struct {
	showtimes usecase.ShowtimeService
	bookings  usecase.BookingService
	log       *zap.Logger
}

func NewShowtimeHandler(showtimes usecase.ShowtimeService, bookings usecase.BookingService, log *zap.Logger) *ShowtimeHandler {
	return &ShowtimeHandler{
		showtimes: showtimes,
		bookings:  bookings,
		log:       log.With(zap.String("handler", "showtime")),
	}
}

// CreateShowtime handles POST /api/admin/showtimes
func (h *ShowtimeHandler) CreateShowtime(w http.ResponseWriter, r *http.Request) {
	var req request.CreateShowtimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	showtime, err := h.showtimes.CreateShowtime(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create showtime")
		return
	}

	utils.ResponseCreated(w, "success", showtime)
}

// ListShowtimes handles GET /api/showtimes
func (h *ShowtimeHandler) ListShowtimes(w http.ResponseWriter, r *http.Request) {
	showtimes, err := h.showtimes.ListShowtimes(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list showtimes")
		return
	}

	utils.ResponseSuccess(w, "success", showtimes)
}

// GetShowtime handles GET /api/showtimes/{id}
func (h *ShowtimeHandler) GetShowtime(w http.ResponseWriter, r *http.Request) {
	showtime, err := h.showtimes.GetShowtime(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get showtime")
		return
	}

	utils.ResponseSuccess(w, "success", showtime)
}

// GetAvailability handles GET /api/showtimes/{id}/availability
func (h *ShowtimeHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := h.bookings.GetShowtimeAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}
