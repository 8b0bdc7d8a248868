package adaptor

import (
	"net/http"

	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/apperror"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking  *BookingHandler
	Showtime *ShowtimeHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking:  NewBookingHandler(service.Booking, log),
		Showtime: NewShowtimeHandler(service.Showtime, service.Booking, log),
	}
}

type errorBody struct {
	Code apperror.Code `json:"code"`
}

// statusFor maps an error kind to its HTTP status. An expired hold is reported as 410 Gone.
func statusFor(err error) int {
	if apperror.CodeOf(err) == apperror.CodeBookingExpired {
		return http.StatusGone
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict, apperror.KindState:
		return http.StatusConflict
	case apperror.KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError writes err in the response envelope. Internal failures are logged
// with their cause and answered with a generic message.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	status := statusFor(err)
	code := apperror.CodeOf(err)

	if status == http.StatusInternalServerError {
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseError(w, status, "Internal server error", errorBody{Code: apperror.CodeInternal})
		return
	}

	log.Warn(operation+" failed",
		zap.Error(err),
		zap.String("code", string(code)),
		zap.String("operation", operation))
	utils.ResponseError(w, status, err.Error(), errorBody{Code: code})
}
