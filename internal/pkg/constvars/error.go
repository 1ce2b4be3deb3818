package constvars

// Validation messages for users, map it with respective tag field
var CustomValidationErrorMessages = map[string]string{
	"required":    "is required",
	"min":         "must be at least %s",
	"max":         "must be at most %s",
	"gt":          "must be greater than %s",
	"oneof":       "must be one of: %s",
	"url":         "must be a valid URL",
	"hhmm":        "must be a time in HH:mm format",
	"dateiso":     "must be a date in YYYY-MM-DD format",
	"payer_class": "must be a known payer classification",
}

var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"gt":    true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientUnknownTenant                 = "unknown clinic tenant"
	ErrClientSlotTaken                     = "the selected time is no longer available, please pick another slot"
	ErrClientQuotaExceeded                 = "the monthly quota for this procedure group has been reached"
	ErrClientDuplicateProcedure            = "the patient already has a pending appointment for this procedure"
	ErrClientContrastRestriction           = "contrast procedures cannot be scheduled on Saturdays or after 5 pm"
	ErrClientPastDate                      = "the requested date is in the past"
	ErrClientNotFound                      = "the requested record was not found"
)

// Error messages for developers
const (
	ErrDevInvalidRequestPayload  = "invalid request payload"
	ErrDevValidationFailed       = "request validation failed"
	ErrDevCannotParseJSON        = "cannot parse JSON"
	ErrDevCannotParseTime        = "cannot parse time value"
	ErrDevCannotMarshalJSON      = "cannot marshal JSON"
	ErrDevMissingRequestID       = "request id not found in context"
	ErrDevMissingTenant          = "tenant not found in context"
	ErrDevUnknownTenant          = "tenant is not configured"
	ErrDevServerDeadlineExceeded = "server deadline exceeded"
	ErrDevCreateHTTPRequest      = "failed to create HTTP request"
	ErrDevSendHTTPRequest        = "failed to send HTTP request"

	// Scheduling
	ErrDevSlotNotAvailable      = "time slot already occupied at commit time"
	ErrDevQuotaExceeded         = "monthly cups group quota exceeded"
	ErrDevDuplicateProcedure    = "patient already holds a future booking for procedure"
	ErrDevContrastRestriction   = "contrast restriction violated"
	ErrDevPastDate              = "requested date is in the past"
	ErrDevInvalidTimeFormat     = "time must be HH:mm"
	ErrDevScheduleConfigMissing = "no schedule config for agenda"
	ErrDevBookingNotFound       = "booking not found"
	ErrDevInvalidStatusChange   = "invalid appointment status transition"

	// Mongo DB
	ErrDevDBNotObjectID              = "given id is not a valid object id"
	ErrDevDBFailedToFindDocument     = "failed to find document on database"
	ErrDevDBFailedToInsertDocument   = "failed to insert document to database"
	ErrDevDBFailedToUpdateDocument   = "failed to update document on database"
	ErrDevDBFailedToIterateDocuments = "failed to iterate documents"
	ErrDevDBFailedToAggregate        = "failed to run aggregation on database"

	// Redis
	ErrDevRedisGetNoData      = "no data retrieved from redis with key: %s"
	ErrDevRedisGetData        = "failed to get data from redis"
	ErrDevRedisSetData        = "failed to set data to redis"
	ErrDevRedisDeleteData     = "failed to delete data from redis"
	ErrDevRedisIncrementValue = "failed to increment value on redis"
	ErrDevRedisUnlock         = "failed to release redis lock"

	ErrDevBookingLockBusy = "booking day lock held by another writer: %s"
	ErrDevUnknownJobKind  = "unknown job kind: %s"

	// RabbitMQ
	ErrDevRabbitMQPublish = "failed to publish message to queue: %s"
	ErrDevRabbitMQConsume = "failed to fetch message from queue: %s"
)
