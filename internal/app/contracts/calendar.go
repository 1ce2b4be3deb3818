package contracts

import (
	"context"

	"citamed-service/internal/app/models"
)

// CalendarSource is the read side of the booking store: doctor assignments,
// working days, weekly templates and existing bookings. Implementations
// resolve the tenant from the context and translate logical field names to
// the tenant's physical schema.
type CalendarSource interface {
	FindDoctorsForProcedure(ctx context.Context, procedureCode string) ([]models.Doctor, error)
	FindAgenda(ctx context.Context, agendaID string) (*models.Agenda, error)
	FindFutureWorkingDays(ctx context.Context, doctorIDs []string, afterDate string) ([]models.WorkingDay, error)
	FindScheduleConfig(ctx context.Context, agendaID, doctorID string) (*models.ScheduleConfig, error)
	FindBookingsForAgendaAndDate(ctx context.Context, agendaID, date string) ([]models.Appointment, error)
}

type ProcedureRepository interface {
	FindProcedureByCode(ctx context.Context, code string) (*models.Procedure, error)
	FindGroupContainingCode(ctx context.Context, code string) (*models.CupsGroup, error)
	ListGroups(ctx context.Context) ([]models.CupsGroup, error)
}
