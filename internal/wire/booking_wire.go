package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/pkg/middleware"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))

		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/", bookingHandler.ListMyBookings)

		r.Get("/{id}", bookingHandler.GetBooking)
		r.Delete("/{id}", bookingHandler.CancelBooking)
		r.Post("/{id}/confirm-payment", bookingHandler.ConfirmPayment)
		r.Get("/{id}/ticket", bookingHandler.GetTicket)
	})
}
