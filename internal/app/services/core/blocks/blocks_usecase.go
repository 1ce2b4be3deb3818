package blocks

import (
	"context"

	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type BlockResolverUsecase struct {
	bookings contracts.BookingStore
	calendar contracts.CalendarSource
	logger   *zap.Logger
}

func NewBlockResolverUsecase(
	bookings contracts.BookingStore,
	calendar contracts.CalendarSource,
	logger *zap.Logger,
) contracts.BlockResolver {
	return &BlockResolverUsecase{
		bookings: bookings,
		calendar: calendar,
		logger:   logger,
	}
}

// ResolveBlocks folds a patient's bookings into maximal contiguous runs and
// returns the first booking of each run. A booking continues the current run
// when it shares the doctor and date of the previous one and starts exactly
// one agenda duration after it. Everything else, including an unknown agenda
// duration, starts a new run.
func (u *BlockResolverUsecase) ResolveBlocks(ctx context.Context, patientID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	bookings, err := u.bookings.FindPatientBookingsByStatus(ctx, patientID, status)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return []models.Appointment{}, nil
	}

	// One duration lookup per agenda and doctor pair.
	durations := make(map[string]int)

	representatives := []models.Appointment{bookings[0]}
	for i := 1; i < len(bookings); i++ {
		if !u.continuesRun(ctx, bookings[i-1], bookings[i], durations) {
			representatives = append(representatives, bookings[i])
		}
	}

	u.logger.Info("resolved consecutive booking blocks",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingPatientIDKey, patientID),
		zap.Int("bookings", len(bookings)),
		zap.Int("blocks", len(representatives)),
	)
	return representatives, nil
}

func (u *BlockResolverUsecase) continuesRun(ctx context.Context, previous, current models.Appointment, durations map[string]int) bool {
	if current.DoctorID != previous.DoctorID || current.Date != previous.Date {
		return false
	}

	duration := u.agendaDuration(ctx, previous.AgendaID, previous.DoctorID, durations)
	if duration <= 0 {
		return false
	}

	_, previousClock, err := utils.SplitTimeSlotKey(previous.TimeSlot)
	if err != nil {
		return false
	}
	expected, err := utils.AddMinutesToClock(previousClock, duration)
	if err != nil {
		return false
	}

	_, currentClock, err := utils.SplitTimeSlotKey(current.TimeSlot)
	if err != nil {
		return false
	}
	return currentClock == expected
}

func (u *BlockResolverUsecase) agendaDuration(ctx context.Context, agendaID, doctorID string, durations map[string]int) int {
	key := agendaID + "|" + doctorID
	if duration, cached := durations[key]; cached {
		return duration
	}

	scheduleConfig, err := u.calendar.FindScheduleConfig(ctx, agendaID, doctorID)
	if err != nil || scheduleConfig == nil {
		durations[key] = 0
		return 0
	}
	durations[key] = scheduleConfig.DurationMinutes
	return scheduleConfig.DurationMinutes
}
