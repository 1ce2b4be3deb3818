package responses

// SubmissionResponse is the body of every 202 Accepted reply. The resume token
// correlates the submission with its single terminal callback.
type SubmissionResponse struct {
	ResumeToken string `json:"resume_token"`
}

// CandidateSlot is one bookable window. DurationMinutes covers the whole
// window, unit duration times the searched unit count.
type CandidateSlot struct {
	AgendaID        string `json:"agenda_id"`
	DoctorID        string `json:"doctor_id"`
	DoctorName      string `json:"doctor_name"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type SearchSlotsResult struct {
	Slots         []CandidateSlot `json:"slots"`
	NextDateAfter string          `json:"next_date_after,omitempty"`
}

type CreatedBooking struct {
	BookingID string `json:"booking_id"`
	TimeSlot  string `json:"time_slot"`
}

type CreateBookingResult struct {
	Bookings   []CreatedBooking `json:"bookings"`
	Date       string           `json:"date"`
	StartTime  string           `json:"start_time"`
	TotalUnits int              `json:"total_units"`
}

type BookingStatusResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CallbackPayload is POSTed exactly once per resume token. Status "exists"
// means the slot was taken between discovery and commit and the caller should
// retry selection.
type CallbackPayload struct {
	ResumeToken string      `json:"resume_token"`
	Status      string      `json:"status"`
	Message     string      `json:"message"`
	Data        interface{} `json:"data,omitempty"`
}
