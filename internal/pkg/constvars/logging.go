package constvars

const (
	LoggingRequestIDKey   = "request_id"
	LoggingTenantKey      = "tenant"
	LoggingResumeTokenKey = "resume_token"
	LoggingJobKindKey     = "job_kind"
	LoggingQueueKey       = "queue"
	LoggingDataKey        = "data"
	LoggingRequestKey     = "request"
	LoggingResponseKey    = "response"
)

const (
	LoggingAgendaIDKey  = "agenda_id"
	LoggingDoctorIDKey  = "doctor_id"
	LoggingPatientIDKey = "patient_id"
	LoggingDateKey      = "date"
	LoggingTimeSlotKey  = "time_slot"
	LoggingCupsCodeKey  = "cups_code"
	LoggingCupsGroupKey = "cups_group"
)

const (
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockStoredValueKey    = "stored_value"
	LoggingLockExpectedValueKey  = "expected_value"
	LoggingCallbackURLKey        = "callback_url"
	LoggingFailedCountKey        = "failed_count"
)

const (
	LoggingMethodKey         = "method"
	LoggingEndpointKey       = "endpoint"
	LoggingRemoteAddrKey     = "remote_addr"
	LoggingUserAgentKey      = "user_agent"
	LoggingQueryKey          = "query"
	LoggingStatusCodeKey     = "status_code"
	LoggingDurationKey       = "duration"
	LoggingSuccessKey        = "success"
	LoggingResponseLengthKey = "response_length"
)
