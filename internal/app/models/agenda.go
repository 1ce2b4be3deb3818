package models

// Agenda is one named calendar bound to a doctor. The name disambiguates
// special-purpose calendars, notably the dedicated procedure agenda.
type Agenda struct {
	ID       string `json:"id" bson:"_id"`
	DoctorID string `json:"doctor_id" bson:"doctor_id"`
	Name     string `json:"name" bson:"name"`
}

// DayWindows holds the two optional session windows for one weekday. A half
// day runs only when the day is enabled and both bounds are present.
type DayWindows struct {
	Enabled        bool   `json:"enabled" bson:"enabled"`
	MorningStart   string `json:"morning_start,omitempty" bson:"morning_start,omitempty"`
	MorningEnd     string `json:"morning_end,omitempty" bson:"morning_end,omitempty"`
	AfternoonStart string `json:"afternoon_start,omitempty" bson:"afternoon_start,omitempty"`
	AfternoonEnd   string `json:"afternoon_end,omitempty" bson:"afternoon_end,omitempty"`
}

func (d DayWindows) MorningActive() bool {
	return d.Enabled && d.MorningStart != "" && d.MorningEnd != ""
}

func (d DayWindows) AfternoonActive() bool {
	return d.Enabled && d.AfternoonStart != "" && d.AfternoonEnd != ""
}

// ScheduleConfig fixes the appointment unit duration for one agenda and
// doctor and the weekly session template, indexed 0=Sunday through
// 6=Saturday.
type ScheduleConfig struct {
	AgendaID        string        `json:"agenda_id" bson:"agenda_id"`
	DoctorID        string        `json:"doctor_id" bson:"doctor_id"`
	DurationMinutes int           `json:"duration_minutes" bson:"duration_minutes"`
	Days            [7]DayWindows `json:"days" bson:"days"`
}

// WorkingDay is a per-date record of which sessions run, overriding the
// weekly template for that exact date.
type WorkingDay struct {
	DoctorID         string `json:"doctor_id" bson:"doctor_id"`
	AgendaID         string `json:"agenda_id" bson:"agenda_id"`
	Date             string `json:"date" bson:"date"`
	MorningEnabled   bool   `json:"morning_enabled" bson:"morning_enabled"`
	AfternoonEnabled bool   `json:"afternoon_enabled" bson:"afternoon_enabled"`
}
