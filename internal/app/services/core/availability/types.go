package availability

// sessionWindow is one active half-day, bounds in HH:mm.
type sessionWindow struct {
	start string
	end   string
}

// configKey caches ScheduleConfig lookups within one finder run.
type configKey struct {
	agendaID string
	doctorID string
}
