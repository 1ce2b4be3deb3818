package routers

import (
	"citamed-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachSchedulingRoutes(r chi.Router, ctrl *controllers.SchedulingController) {
	r.Post("/slots/search", ctrl.SearchSlots)
	r.Post("/bookings", ctrl.CreateBooking)
	r.Post("/bookings/confirm", ctrl.ConfirmBooking)
	r.Post("/bookings/cancel", ctrl.CancelBooking)
	r.Get("/bookings/blocks", ctrl.ListBookingBlocks)
}
