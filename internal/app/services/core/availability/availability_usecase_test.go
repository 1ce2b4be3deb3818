package availability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/dto/requests"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCalendar struct {
	doctors    []models.Doctor
	agendas    map[string]*models.Agenda
	days       []models.WorkingDay
	configs    map[string]*models.ScheduleConfig
	bookings   map[string][]models.Appointment
	afterDates []string
}

func (f *fakeCalendar) FindDoctorsForProcedure(ctx context.Context, procedureCode string) ([]models.Doctor, error) {
	return f.doctors, nil
}

func (f *fakeCalendar) FindAgenda(ctx context.Context, agendaID string) (*models.Agenda, error) {
	return f.agendas[agendaID], nil
}

func (f *fakeCalendar) FindFutureWorkingDays(ctx context.Context, doctorIDs []string, afterDate string) ([]models.WorkingDay, error) {
	f.afterDates = append(f.afterDates, afterDate)
	allowed := make(map[string]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		allowed[id] = true
	}
	var matched []models.WorkingDay
	for _, day := range f.days {
		if day.Date > afterDate && allowed[day.DoctorID] {
			matched = append(matched, day)
		}
	}
	return matched, nil
}

func (f *fakeCalendar) FindScheduleConfig(ctx context.Context, agendaID, doctorID string) (*models.ScheduleConfig, error) {
	return f.configs[agendaID+"|"+doctorID], nil
}

func (f *fakeCalendar) FindBookingsForAgendaAndDate(ctx context.Context, agendaID, date string) ([]models.Appointment, error) {
	return f.bookings[agendaID+"|"+date], nil
}

type fakeProcedures struct {
	procedure *models.Procedure
}

func (f *fakeProcedures) FindProcedureByCode(ctx context.Context, code string) (*models.Procedure, error) {
	return f.procedure, nil
}

func (f *fakeProcedures) FindGroupContainingCode(ctx context.Context, code string) (*models.CupsGroup, error) {
	return nil, nil
}

func (f *fakeProcedures) ListGroups(ctx context.Context) ([]models.CupsGroup, error) {
	return nil, nil
}

type fakeRedis struct {
	values map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	f.values[key] = fmt.Sprintf("%q", fmt.Sprint(value))
	return nil
}

func (f *fakeRedis) Delete(ctx context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func (f *fakeRedis) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int, error) {
	return 1, nil
}

func (f *fakeRedis) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	if _, held := f.values[key]; held {
		return false, nil
	}
	return true, f.Set(ctx, key, value, exp)
}

// mondayConfig opens Monday mornings 08:00-10:00 with 30-minute units.
func mondayConfig(agendaID, doctorID string) *models.ScheduleConfig {
	cfg := &models.ScheduleConfig{AgendaID: agendaID, DoctorID: doctorID, DurationMinutes: 30}
	cfg.Days[1] = models.DayWindows{Enabled: true, MorningStart: "08:00", MorningEnd: "10:00"}
	return cfg
}

func bookingAt(agendaID, doctorID, timeSlot string) models.Appointment {
	return models.Appointment{
		AgendaID: agendaID,
		DoctorID: doctorID,
		TimeSlot: timeSlot,
		Status:   models.AppointmentPending,
	}
}

func newFinder(calendar *fakeCalendar, redis *fakeRedis) *SlotFinderUsecase {
	return &SlotFinderUsecase{
		calendar:   calendar,
		procedures: &fakeProcedures{},
		redisRepo:  redis,
		config: &config.InternalConfig{
			Scheduling: config.AppScheduling{SlotCursorTTLInMinutes: 30},
		},
		logger: zap.NewNop(),
		// 2026-01-01 is a Thursday; the next Monday is 2026-01-05.
		now: func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func searchRequest(totalUnits int) *requests.SearchSlotsRequest {
	return &requests.SearchSlotsRequest{
		PatientID:      "patient-1",
		PatientAge:     40,
		ProcedureLines: []requests.SearchProcedureLine{{Code: "870101", Quantity: 1}},
		TotalUnits:     totalUnits,
		CallbackURL:    "https://caller.example/cb",
	}
}

func TestFindSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("skips occupied unit starts", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
			},
			bookings: map[string][]models.Appointment{
				"agenda-10|2026-01-05": {bookingAt("agenda-10", "doc-1", "202601050830")},
			},
		}

		result, err := newFinder(calendar, newFakeRedis()).FindSlots(ctx, searchRequest(1))
		require.NoError(t, err)
		require.Len(t, result.Slots, 3)

		starts := []string{result.Slots[0].StartTime, result.Slots[1].StartTime, result.Slots[2].StartTime}
		assert.Equal(t, []string{"08:00", "09:00", "09:30"}, starts)
		assert.NotContains(t, starts, "08:30")
		assert.Equal(t, "Dra. Rojas", result.Slots[0].DoctorName)
		assert.Equal(t, 30, result.Slots[0].DurationMinutes)
		assert.Equal(t, "2026-01-05", result.NextDateAfter)
	})

	t.Run("multi unit windows must be contiguous", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
			},
			bookings: map[string][]models.Appointment{
				"agenda-10|2026-01-05": {bookingAt("agenda-10", "doc-1", "202601050900")},
			},
		}

		result, err := newFinder(calendar, newFakeRedis()).FindSlots(ctx, searchRequest(2))
		require.NoError(t, err)

		// Free units are 08:00, 08:30 and 09:30. Only 08:00 starts two
		// back-to-back units; 08:30's neighbour 09:00 is taken.
		require.Len(t, result.Slots, 1)
		assert.Equal(t, "08:00", result.Slots[0].StartTime)
		assert.Equal(t, 60, result.Slots[0].DurationMinutes)
	})

	t.Run("procedure unit requirement widens a narrower request", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
			},
			bookings: map[string][]models.Appointment{
				"agenda-10|2026-01-05": {bookingAt("agenda-10", "doc-1", "202601050900")},
			},
		}

		finder := newFinder(calendar, newFakeRedis())
		finder.procedures = &fakeProcedures{procedure: &models.Procedure{Code: "870101", Units: 2}}

		// The caller asked for one unit but the procedure consumes two, so
		// only the 08:00 pair qualifies.
		result, err := finder.FindSlots(ctx, searchRequest(1))
		require.NoError(t, err)
		require.Len(t, result.Slots, 1)
		assert.Equal(t, "08:00", result.Slots[0].StartTime)
		assert.Equal(t, 60, result.Slots[0].DurationMinutes)
	})

	t.Run("own schedule procedures only match procedure agendas", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			agendas: map[string]*models.Agenda{
				"agenda-10": {ID: "agenda-10", DoctorID: "doc-1", Name: "consulta externa"},
				"agenda-20": {ID: "agenda-20", DoctorID: "doc-1", Name: "Procedimientos"},
			},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: true},
				{DoctorID: "doc-1", AgendaID: "agenda-20", Date: "2026-01-05", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
				"agenda-20|doc-1": mondayConfig("agenda-20", "doc-1"),
			},
		}

		finder := newFinder(calendar, newFakeRedis())
		finder.procedures = &fakeProcedures{procedure: &models.Procedure{Code: "870101", Units: 1, RequiresOwnSchedule: true}}

		result, err := finder.FindSlots(ctx, searchRequest(1))
		require.NoError(t, err)
		require.NotEmpty(t, result.Slots)
		for _, slot := range result.Slots {
			assert.Equal(t, "agenda-20", slot.AgendaID)
		}
	})

	t.Run("filters doctors by minimum age", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas", MinimumAge: 18}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
			},
		}

		request := searchRequest(1)
		request.PatientAge = 10

		result, err := newFinder(calendar, newFakeRedis()).FindSlots(ctx, request)
		require.NoError(t, err)
		assert.Empty(t, result.Slots)
		assert.Empty(t, calendar.afterDates)
	})

	t.Run("caps candidates at five across days", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: true},
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-12", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
			},
		}

		result, err := newFinder(calendar, newFakeRedis()).FindSlots(ctx, searchRequest(1))
		require.NoError(t, err)

		// Each Monday morning offers four units; the scan stops mid second day.
		require.Len(t, result.Slots, 5)
		assert.Equal(t, "2026-01-05", result.Slots[3].Date)
		assert.Equal(t, "2026-01-12", result.Slots[4].Date)
		assert.Equal(t, "2026-01-12", result.NextDateAfter)
	})

	t.Run("honours working day session flags", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: false},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
			},
		}

		result, err := newFinder(calendar, newFakeRedis()).FindSlots(ctx, searchRequest(1))
		require.NoError(t, err)
		assert.Empty(t, result.Slots)
	})

	t.Run("uses stored cursor when request carries none", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: true},
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-12", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
			},
		}

		finder := newFinder(calendar, newFakeRedis())
		redis := finder.redisRepo.(*fakeRedis)
		redis.values[finder.cursorKey(ctx, "patient-1", "870101")] = `"2026-01-05"`

		result, err := finder.FindSlots(ctx, searchRequest(1))
		require.NoError(t, err)

		require.NotEmpty(t, calendar.afterDates)
		assert.Equal(t, "2026-01-05", calendar.afterDates[0])
		require.Len(t, result.Slots, 4)
		assert.Equal(t, "2026-01-12", result.Slots[0].Date)
	})

	t.Run("empty paginated page resets cursor and rescans", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-10", Date: "2026-01-05", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{
				"agenda-10|doc-1": mondayConfig("agenda-10", "doc-1"),
			},
		}

		request := searchRequest(1)
		request.AfterDateCursor = "2026-02-01"

		finder := newFinder(calendar, newFakeRedis())
		result, err := finder.FindSlots(ctx, request)
		require.NoError(t, err)

		require.Len(t, calendar.afterDates, 2)
		assert.Equal(t, "2026-02-01", calendar.afterDates[0])
		assert.Equal(t, "2026-01-01", calendar.afterDates[1])
		require.Len(t, result.Slots, 4)
		assert.Equal(t, "2026-01-05", result.NextDateAfter)
	})

	t.Run("skips agendas without schedule config", func(t *testing.T) {
		calendar := &fakeCalendar{
			doctors: []models.Doctor{{ID: "doc-1", Name: "Dra. Rojas"}},
			days: []models.WorkingDay{
				{DoctorID: "doc-1", AgendaID: "agenda-99", Date: "2026-01-05", MorningEnabled: true},
			},
			configs: map[string]*models.ScheduleConfig{},
		}

		result, err := newFinder(calendar, newFakeRedis()).FindSlots(ctx, searchRequest(1))
		require.NoError(t, err)
		assert.Empty(t, result.Slots)
	})
}

func TestContiguousRunStarts(t *testing.T) {
	t.Run("single unit keeps every free start", func(t *testing.T) {
		starts := contiguousRunStarts([]string{"08:00", "09:00"}, 1, 30)
		assert.Equal(t, []string{"08:00", "09:00"}, starts)
	})

	t.Run("rejects runs broken by a gap", func(t *testing.T) {
		starts := contiguousRunStarts([]string{"08:00", "08:30", "09:30"}, 2, 30)
		assert.Equal(t, []string{"08:00"}, starts)
	})

	t.Run("three unit run across adjacent starts", func(t *testing.T) {
		starts := contiguousRunStarts([]string{"08:00", "08:30", "09:00", "10:00"}, 3, 30)
		assert.Equal(t, []string{"08:00"}, starts)
	})
}
