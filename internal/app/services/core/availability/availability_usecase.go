package availability

import (
	"context"
	"strings"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/requests"
	"citamed-service/internal/pkg/dto/responses"
	"citamed-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type SlotFinderUsecase struct {
	calendar   contracts.CalendarSource
	procedures contracts.ProcedureRepository
	redisRepo  contracts.RedisRepository
	config     *config.InternalConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewSlotFinderUsecase(
	calendar contracts.CalendarSource,
	procedures contracts.ProcedureRepository,
	redisRepo contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.SlotFinder {
	return &SlotFinderUsecase{
		calendar:   calendar,
		procedures: procedures,
		redisRepo:  redisRepo,
		config:     internalConfig,
		logger:     logger,
		now:        time.Now,
	}
}

// FindSlots scans future working days after the pagination cursor and returns
// the first candidate windows with enough free contiguous units, capped
// globally at MaxCandidateSlots. The unit count is the larger of the request's
// TotalUnits and the procedure's configured units; procedures that require
// their own schedule only match dedicated procedure agendas. An empty
// paginated page resets the cursor and restarts the scan once from today.
func (u *SlotFinderUsecase) FindSlots(ctx context.Context, request *requests.SearchSlotsRequest) (*responses.SearchSlotsResult, error) {
	log := u.logger.With(
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingTenantKey, utils.GetTenant(ctx)),
		zap.String(constvars.LoggingPatientIDKey, request.PatientID),
	)

	primaryCode := request.ProcedureLines[0].Code
	cursorKey := u.cursorKey(ctx, request.PatientID, primaryCode)

	afterDate := request.AfterDateCursor
	if afterDate == "" {
		stored, err := u.redisRepo.Get(ctx, cursorKey)
		if err != nil {
			return nil, err
		}
		// String values pass through the repository's JSON encoding.
		afterDate = strings.Trim(stored, `"`)
	}

	today := u.now().Format(constvars.DateLayout)
	paginated := afterDate != ""
	if afterDate < today {
		afterDate = today
	}

	procedure, err := u.procedures.FindProcedureByCode(ctx, primaryCode)
	if err != nil {
		return nil, err
	}
	// The procedure's configured unit requirement is a floor: a caller asking
	// for fewer units than the procedure consumes still needs the full run.
	unitCount := request.TotalUnits
	ownScheduleOnly := false
	if procedure != nil {
		if procedure.Units > unitCount {
			unitCount = procedure.Units
		}
		ownScheduleOnly = procedure.RequiresOwnSchedule
	}

	doctors, err := u.eligibleDoctors(ctx, primaryCode, request.PatientAge)
	if err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		log.Info("no eligible doctors for procedure", zap.String(constvars.LoggingCupsCodeKey, primaryCode))
		return &responses.SearchSlotsResult{Slots: []responses.CandidateSlot{}}, nil
	}

	slots, err := u.collectCandidates(ctx, doctors, afterDate, unitCount, ownScheduleOnly)
	if err != nil {
		return nil, err
	}

	if len(slots) == 0 && paginated {
		// The cursor walked past the last bookable day. Drop it and rescan
		// once from today so the caller is not stranded on an empty page.
		if err := u.redisRepo.Delete(ctx, cursorKey); err != nil {
			return nil, err
		}
		slots, err = u.collectCandidates(ctx, doctors, today, unitCount, ownScheduleOnly)
		if err != nil {
			return nil, err
		}
	}

	result := &responses.SearchSlotsResult{Slots: slots}
	if len(slots) > 0 {
		result.NextDateAfter = slots[len(slots)-1].Date
		cursorTTL := time.Duration(u.config.Scheduling.SlotCursorTTLInMinutes) * time.Minute
		if err := u.redisRepo.Set(ctx, cursorKey, result.NextDateAfter, cursorTTL); err != nil {
			return nil, err
		}
	} else {
		result.Slots = []responses.CandidateSlot{}
	}

	log.Info("slot search finished",
		zap.Int("candidates", len(result.Slots)),
		zap.String("next_date_after", result.NextDateAfter),
	)
	return result, nil
}

func (u *SlotFinderUsecase) cursorKey(ctx context.Context, patientID, procedureCode string) string {
	return constvars.RedisKeySlotCursor + utils.GetTenant(ctx) + ":" + patientID + ":" + procedureCode
}

func (u *SlotFinderUsecase) eligibleDoctors(ctx context.Context, procedureCode string, patientAge int) ([]models.Doctor, error) {
	doctors, err := u.calendar.FindDoctorsForProcedure(ctx, procedureCode)
	if err != nil {
		return nil, err
	}

	eligible := make([]models.Doctor, 0, len(doctors))
	for _, doctor := range doctors {
		if doctor.CanTreat(patientAge) {
			eligible = append(eligible, doctor)
		}
	}
	return eligible, nil
}

func (u *SlotFinderUsecase) collectCandidates(ctx context.Context, doctors []models.Doctor, afterDate string, unitCount int, ownScheduleOnly bool) ([]responses.CandidateSlot, error) {
	doctorIDs := make([]string, 0, len(doctors))
	doctorNames := make(map[string]string, len(doctors))
	for _, doctor := range doctors {
		doctorIDs = append(doctorIDs, doctor.ID)
		doctorNames[doctor.ID] = doctor.Name
	}

	workingDays, err := u.calendar.FindFutureWorkingDays(ctx, doctorIDs, afterDate)
	if err != nil {
		return nil, err
	}

	// One config and agenda lookup per agenda and doctor pair per scan.
	configs := make(map[configKey]*models.ScheduleConfig)
	agendas := make(map[string]*models.Agenda)

	var slots []responses.CandidateSlot
	for _, day := range workingDays {
		if ownScheduleOnly {
			dedicated, err := u.isProcedureAgenda(ctx, agendas, day.AgendaID)
			if err != nil {
				return nil, err
			}
			if !dedicated {
				continue
			}
		}

		key := configKey{agendaID: day.AgendaID, doctorID: day.DoctorID}
		scheduleConfig, cached := configs[key]
		if !cached {
			scheduleConfig, err = u.calendar.FindScheduleConfig(ctx, day.AgendaID, day.DoctorID)
			if err != nil {
				return nil, err
			}
			configs[key] = scheduleConfig
		}
		if scheduleConfig == nil || scheduleConfig.DurationMinutes <= 0 {
			continue
		}

		date, err := utils.ParseDate(day.Date)
		if err != nil {
			continue
		}
		windows := activeSessionWindows(scheduleConfig.Days[int(date.Weekday())], day)
		if len(windows) == 0 {
			continue
		}

		occupied, err := u.occupiedStarts(ctx, day.AgendaID, day.Date)
		if err != nil {
			return nil, err
		}

		var unitStarts []string
		for _, window := range windows {
			unitStarts = append(unitStarts, availableUnitStarts(window, scheduleConfig.DurationMinutes, occupied)...)
		}

		for _, start := range contiguousRunStarts(unitStarts, unitCount, scheduleConfig.DurationMinutes) {
			slots = append(slots, responses.CandidateSlot{
				AgendaID:        day.AgendaID,
				DoctorID:        day.DoctorID,
				DoctorName:      doctorNames[day.DoctorID],
				Date:            day.Date,
				StartTime:       start,
				DurationMinutes: scheduleConfig.DurationMinutes * unitCount,
			})
			if len(slots) == constvars.MaxCandidateSlots {
				return slots, nil
			}
		}
	}
	return slots, nil
}

// isProcedureAgenda resolves the agenda (cached per scan) and reports whether
// it is a dedicated procedure calendar.
func (u *SlotFinderUsecase) isProcedureAgenda(ctx context.Context, cache map[string]*models.Agenda, agendaID string) (bool, error) {
	agenda, cached := cache[agendaID]
	if !cached {
		var err error
		agenda, err = u.calendar.FindAgenda(ctx, agendaID)
		if err != nil {
			return false, err
		}
		cache[agendaID] = agenda
	}
	return agenda != nil && strings.EqualFold(agenda.Name, constvars.AgendaNameProcedures), nil
}

func (u *SlotFinderUsecase) occupiedStarts(ctx context.Context, agendaID, date string) (map[string]bool, error) {
	bookings, err := u.calendar.FindBookingsForAgendaAndDate(ctx, agendaID, date)
	if err != nil {
		return nil, err
	}

	occupied := make(map[string]bool, len(bookings))
	for _, booking := range bookings {
		_, clock, err := utils.SplitTimeSlotKey(booking.TimeSlot)
		if err != nil {
			continue
		}
		occupied[clock] = true
	}
	return occupied, nil
}
