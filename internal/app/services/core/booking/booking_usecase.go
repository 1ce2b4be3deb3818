package booking

import (
	"context"
	"fmt"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/requests"
	"citamed-service/internal/pkg/dto/responses"
	"citamed-service/internal/pkg/exceptions"
	"citamed-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type BookingCoordinatorUsecase struct {
	calendar contracts.CalendarSource
	bookings contracts.BookingStore
	capacity contracts.CapacityLimiter
	locker   contracts.LockerService
	notifier contracts.NotificationSender
	config   *config.InternalConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingCoordinatorUsecase(
	calendar contracts.CalendarSource,
	bookings contracts.BookingStore,
	capacity contracts.CapacityLimiter,
	locker contracts.LockerService,
	notifier contracts.NotificationSender,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.BookingCoordinator {
	return &BookingCoordinatorUsecase{
		calendar: calendar,
		bookings: bookings,
		capacity: capacity,
		locker:   locker,
		notifier: notifier,
		config:   internalConfig,
		logger:   logger,
		now:      time.Now,
	}
}

// Book admits a multi-unit booking. All business checks run before any write;
// under the per-agenda-per-day lock every unit is re-checked against the
// store, and only when all of them are still free are the N appointments
// inserted. Procedure line items ride on the first unit only so quota
// aggregation never double counts.
func (u *BookingCoordinatorUsecase) Book(ctx context.Context, request *requests.CreateBookingRequest) (*responses.CreateBookingResult, error) {
	log := u.logger.With(
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingTenantKey, utils.GetTenant(ctx)),
		zap.String(constvars.LoggingPatientIDKey, request.PatientID),
		zap.String(constvars.LoggingAgendaIDKey, request.AgendaID),
		zap.String(constvars.LoggingDateKey, request.Date),
	)

	if _, err := utils.ParseClock(request.Time); err != nil {
		return nil, exceptions.ErrInvalidTimeFormat(err)
	}
	if utils.IsPastDate(request.Date, u.now()) {
		return nil, exceptions.ErrPastDate(request.Date)
	}
	if err := u.checkContrastRestriction(request); err != nil {
		return nil, err
	}

	today := u.now().Format(constvars.DateLayout)
	for _, line := range request.ProcedureLines {
		count, err := u.bookings.CountFutureBookingsWithProcedure(ctx, request.PatientID, line.Code, today)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, exceptions.ErrDuplicateProcedureBooking(line.Code)
		}

		atLimit, err := u.capacity.IsAtLimit(ctx, line.Code, request.Date, line.Quantity)
		if err != nil {
			return nil, err
		}
		if atLimit {
			return nil, exceptions.ErrQuotaExceeded(line.Code)
		}
	}

	scheduleConfig, err := u.calendar.FindScheduleConfig(ctx, request.AgendaID, request.DoctorID)
	if err != nil {
		return nil, err
	}
	if scheduleConfig == nil || scheduleConfig.DurationMinutes <= 0 {
		return nil, exceptions.ErrScheduleConfigMissing(request.AgendaID)
	}

	timeSlots, err := u.unitTimeSlots(request, scheduleConfig.DurationMinutes)
	if err != nil {
		return nil, err
	}

	lockKey := u.dayLockKey(ctx, request.AgendaID, request.Date)
	lockTTL := time.Duration(u.config.Booking.DayLockTTLInSeconds) * time.Second
	acquired, token, err := u.locker.TryLock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrBookingLockBusy(lockKey)
	}
	defer func() {
		if err := u.locker.Unlock(ctx, lockKey, token); err != nil {
			log.Warn("failed to release booking day lock", zap.Error(err))
		}
	}()

	occupied, err := u.occupiedTimeSlots(ctx, request.AgendaID, request.Date)
	if err != nil {
		return nil, err
	}
	for _, timeSlot := range timeSlots {
		if occupied[timeSlot] {
			return nil, exceptions.ErrSlotNotAvailable(timeSlot)
		}
	}

	result := &responses.CreateBookingResult{
		Date:       request.Date,
		StartTime:  request.Time,
		TotalUnits: request.TotalUnits,
	}
	for i, timeSlot := range timeSlots {
		appointment := u.buildAppointment(request, timeSlot, i == 0)
		bookingID, err := u.bookings.InsertAppointment(ctx, appointment)
		if err != nil {
			return nil, err
		}
		result.Bookings = append(result.Bookings, responses.CreatedBooking{
			BookingID: bookingID,
			TimeSlot:  timeSlot,
		})
	}

	log.Info("booking committed",
		zap.String(constvars.LoggingTimeSlotKey, timeSlots[0]),
		zap.Int("total_units", request.TotalUnits),
	)
	return result, nil
}

func (u *BookingCoordinatorUsecase) Confirm(ctx context.Context, request *requests.ConfirmBookingRequest) (*responses.BookingStatusResult, error) {
	appointment, err := u.findBooking(ctx, request.BookingID)
	if err != nil {
		return nil, err
	}

	next, err := models.Transition(appointment.Status, models.EventConfirm)
	if err != nil {
		return nil, exceptions.ErrInvalidStatusChange(err)
	}
	if err := u.bookings.UpdateAppointmentStatus(ctx, request.BookingID, next); err != nil {
		return nil, err
	}

	u.sendNotice(ctx, appointment, request.ChannelID, request.ChannelType,
		fmt.Sprintf("your appointment on %s at %s is confirmed", appointment.Date, u.startClock(appointment)))

	return &responses.BookingStatusResult{BookingID: request.BookingID, Status: string(next)}, nil
}

func (u *BookingCoordinatorUsecase) Cancel(ctx context.Context, request *requests.CancelBookingRequest) (*responses.BookingStatusResult, error) {
	appointment, err := u.findBooking(ctx, request.BookingID)
	if err != nil {
		return nil, err
	}

	next, err := models.Transition(appointment.Status, models.EventCancel)
	if err != nil {
		return nil, exceptions.ErrInvalidStatusChange(err)
	}
	if err := u.bookings.UpdateAppointmentStatus(ctx, request.BookingID, next); err != nil {
		return nil, err
	}

	u.sendNotice(ctx, appointment, request.ChannelID, request.ChannelType,
		fmt.Sprintf("your appointment on %s has been cancelled: %s", appointment.Date, request.Reason))

	return &responses.BookingStatusResult{BookingID: request.BookingID, Status: string(next)}, nil
}

// checkContrastRestriction enforces the contrast-medium safety window before
// any availability check: never on a Saturday, never starting at or after the
// cutoff hour.
func (u *BookingCoordinatorUsecase) checkContrastRestriction(request *requests.CreateBookingRequest) error {
	if !request.ContrastFlag {
		return nil
	}

	date, err := utils.ParseDate(request.Date)
	if err != nil {
		return exceptions.ErrCannotParseTime(err)
	}
	if date.Weekday() == time.Saturday {
		return exceptions.ErrContrastRestriction("requested date falls on a Saturday")
	}

	clock, err := utils.ParseClock(request.Time)
	if err != nil {
		return exceptions.ErrInvalidTimeFormat(err)
	}
	if clock.Hour() >= constvars.ContrastCutoffHour {
		return exceptions.ErrContrastRestriction("start time is at or after the cutoff hour")
	}
	return nil
}

// unitTimeSlots expands the requested start into TotalUnits consecutive
// YYYYMMDDHHMM keys, one agenda duration apart.
func (u *BookingCoordinatorUsecase) unitTimeSlots(request *requests.CreateBookingRequest, durationMinutes int) ([]string, error) {
	timeSlots := make([]string, 0, request.TotalUnits)
	clock := request.Time
	for i := 0; i < request.TotalUnits; i++ {
		timeSlot, err := utils.BuildTimeSlotKey(request.Date, clock)
		if err != nil {
			return nil, exceptions.ErrCannotParseTime(err)
		}
		timeSlots = append(timeSlots, timeSlot)

		clock, err = utils.AddMinutesToClock(clock, durationMinutes)
		if err != nil {
			return nil, exceptions.ErrCannotParseTime(err)
		}
	}
	return timeSlots, nil
}

func (u *BookingCoordinatorUsecase) occupiedTimeSlots(ctx context.Context, agendaID, date string) (map[string]bool, error) {
	existing, err := u.calendar.FindBookingsForAgendaAndDate(ctx, agendaID, date)
	if err != nil {
		return nil, err
	}

	occupied := make(map[string]bool, len(existing))
	for _, booking := range existing {
		occupied[booking.TimeSlot] = true
	}
	return occupied, nil
}

func (u *BookingCoordinatorUsecase) buildAppointment(request *requests.CreateBookingRequest, timeSlot string, firstUnit bool) *models.Appointment {
	now := u.now().UTC()
	appointment := &models.Appointment{
		AgendaID:  request.AgendaID,
		DoctorID:  request.DoctorID,
		PatientID: request.PatientID,
		Date:      request.Date,
		TimeSlot:  timeSlot,
		Status:    models.AppointmentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if firstUnit {
		for _, line := range request.ProcedureLines {
			appointment.ProcedureLines = append(appointment.ProcedureLines, models.ProcedureLineItem{
				Code:       line.Code,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				PayerClass: line.PayerClass,
			})
		}
	}
	return appointment
}

func (u *BookingCoordinatorUsecase) findBooking(ctx context.Context, bookingID string) (*models.Appointment, error) {
	appointment, err := u.bookings.FindAppointmentByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrBookingNotFound(bookingID)
	}
	return appointment, nil
}

// sendNotice is best effort: a failed notice never rolls back the status
// change it announces.
func (u *BookingCoordinatorUsecase) sendNotice(ctx context.Context, appointment *models.Appointment, channelID, channelType, message string) {
	if u.notifier == nil || channelID == "" {
		return
	}

	err := u.notifier.SendBookingNotice(ctx, &contracts.SendBookingNoticeInput{
		PatientID:   appointment.PatientID,
		BookingID:   appointment.ID,
		ChannelID:   channelID,
		ChannelType: channelType,
		Message:     message,
	})
	if err != nil {
		u.logger.Warn("booking notice delivery failed",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingPatientIDKey, appointment.PatientID),
			zap.Error(err),
		)
	}
}

func (u *BookingCoordinatorUsecase) startClock(appointment *models.Appointment) string {
	_, clock, err := utils.SplitTimeSlotKey(appointment.TimeSlot)
	if err != nil {
		return ""
	}
	return clock
}

func (u *BookingCoordinatorUsecase) dayLockKey(ctx context.Context, agendaID, date string) string {
	return constvars.RedisKeyBookingDayLock + utils.GetTenant(ctx) + ":" + agendaID + ":" + date
}
