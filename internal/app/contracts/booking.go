package contracts

import (
	"context"

	"citamed-service/internal/app/models"
)

// BookingStore is the write side of the booking store plus the narrow reads
// the write path needs.
type BookingStore interface {
	InsertAppointment(ctx context.Context, appointment *models.Appointment) (string, error)
	FindAppointmentByID(ctx context.Context, bookingID string) (*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, bookingID string, status models.AppointmentStatus) error
	FindPatientBookingsByStatus(ctx context.Context, patientID string, status models.AppointmentStatus) ([]models.Appointment, error)
	CountFutureBookingsWithProcedure(ctx context.Context, patientID, procedureCode, fromDate string) (int64, error)
	SumGroupConsumptionForMonth(ctx context.Context, group *models.CupsGroup, monthStart, monthEnd string) (int, error)
}
