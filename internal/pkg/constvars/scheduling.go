package constvars

// Time layouts shared by the slot finder and the booking coordinator. TimeSlot
// keys are fixed-width YYYYMMDDHHMM strings so lexicographic order equals
// chronological order.
const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	TimeSlotLayout = "200601021504"
)

// Queue names. Each standard queue has a companion dead-letter queue named
// <queue>_dlq, declared by the jobqueue service.
const (
	SearchQueueName   = "scheduling_search_queue"
	BookingQueueName  = "scheduling_booking_queue"
	CallbackQueueName = "scheduling_callback_queue"
)

// Job kinds routed through the queues.
const (
	JobKindSearchSlots   = "search_slots"
	JobKindCreateBooking = "create_booking"
	JobKindConfirm       = "confirm_booking"
	JobKindCancel        = "cancel_booking"
	JobKindCallback      = "deliver_callback"
)

// Terminal callback statuses. "exists" specifically means "slot no longer
// available, retry selection" as opposed to a hard error.
const (
	CallbackStatusOK     = "ok"
	CallbackStatusError  = "error"
	CallbackStatusExists = "exists"
)

// Redis key prefixes.
const (
	RedisKeySlotCursor        = "slots:cursor:"
	RedisKeyCallbackDelivered = "callback:delivered:"
	RedisKeyBookingDayLock    = "booking:lock:"
	RedisKeyCapacitySnapshot  = "capacity:snapshot:"
	RedisKeyCapacityLeader    = "capacity:snapshot:leader"
)

// Slot search policy.
const (
	MaxCandidateSlots = 5
	WeekdaysPerWeek   = 7
)

// Agendas carrying this name are a doctor's dedicated procedure calendar;
// procedures flagged requires_own_schedule book only on those.
const (
	AgendaNameProcedures = "procedimientos"
)

// Contrast-medium safety window: never on Saturday, never starting at or
// after 17:00.
const (
	ContrastCutoffHour = 17
)

// Payer classifications carried on procedure line items. Shared-risk quota
// groups restrict consumption for a single classification.
const (
	PayerClassContributivo = "contributivo"
	PayerClassSubsidiado   = "subsidiado"
	PayerClassParticular   = "particular"
)

const (
	LogicalCollectionDoctors         = "doctors"
	LogicalCollectionAgendas         = "agendas"
	LogicalCollectionScheduleConfigs = "schedule_configs"
	LogicalCollectionWorkingDays     = "working_days"
	LogicalCollectionAppointments    = "appointments"
	LogicalCollectionProcedures      = "procedures"
	LogicalCollectionCupsGroups      = "cups_groups"
)
