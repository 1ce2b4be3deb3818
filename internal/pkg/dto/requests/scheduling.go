package requests

type SearchProcedureLine struct {
	Code     string `json:"code" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type ProcedureLine struct {
	Code       string  `json:"code" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" validate:"min=0"`
	PayerClass string  `json:"payer_class" validate:"required,payer_class"`
}

type SearchSlotsRequest struct {
	PatientID       string                `json:"patient_id" validate:"required"`
	PatientAge      int                   `json:"patient_age" validate:"min=0"`
	ProcedureLines  []SearchProcedureLine `json:"procedure_lines" validate:"required,min=1,dive"`
	TotalUnits      int                   `json:"total_units" validate:"required,gt=0"`
	ContrastFlag    bool                  `json:"contrast_flag"`
	SedationFlag    bool                  `json:"sedation_flag"`
	AfterDateCursor string                `json:"after_date_cursor,omitempty" validate:"omitempty,dateiso"`
	CallbackURL     string                `json:"callback_url" validate:"required,url"`
}

type CreateBookingRequest struct {
	PatientID      string          `json:"patient_id" validate:"required"`
	DoctorID       string          `json:"doctor_id" validate:"required"`
	AgendaID       string          `json:"agenda_id" validate:"required"`
	Date           string          `json:"date" validate:"required,dateiso"`
	Time           string          `json:"time" validate:"required,hhmm"`
	ProcedureLines []ProcedureLine `json:"procedure_lines" validate:"required,min=1,dive"`
	TotalUnits     int             `json:"total_units" validate:"required,gt=0"`
	ContrastFlag   bool            `json:"contrast_flag"`
	SedationFlag   bool            `json:"sedation_flag"`
	CallbackURL    string          `json:"callback_url" validate:"required,url"`
}

type ConfirmBookingRequest struct {
	BookingID   string `json:"booking_id" validate:"required"`
	ChannelID   string `json:"channel_id,omitempty"`
	ChannelType string `json:"channel_type,omitempty"`
	CallbackURL string `json:"callback_url" validate:"required,url"`
}

type CancelBookingRequest struct {
	BookingID   string `json:"booking_id" validate:"required"`
	Reason      string `json:"reason" validate:"required"`
	ChannelID   string `json:"channel_id,omitempty"`
	ChannelType string `json:"channel_type,omitempty"`
	CallbackURL string `json:"callback_url" validate:"required,url"`
}
