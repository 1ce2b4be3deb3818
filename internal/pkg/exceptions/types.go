package exceptions

import (
	"citamed-service/internal/pkg/constvars"
	"errors"
	"fmt"
)

var (
	ErrInputValidation = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed, KindInvalidInput, 3)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON, KindInvalidInput, 3)
	}
	ErrCannotParseTime = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseTime, KindInvalidInput, 3)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON, KindInternal, 3)
	}
	ErrMissingRequestID = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMissingRequestID, KindInternal, 3)
	}
	ErrMissingTenant = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusBadRequest, constvars.ErrClientUnknownTenant, constvars.ErrDevMissingTenant, KindInvalidInput, 3)
	}
	ErrUnknownTenant = func(err error, tenant string) *CustomError {
		return buildWithKind(err, constvars.StatusBadRequest, constvars.ErrClientUnknownTenant, fmt.Sprintf("%s: %s", constvars.ErrDevUnknownTenant, tenant), KindInvalidInput, 3)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusGatewayTimeout, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded, KindTransient, 3)
	}
)

// Scheduling business outcomes. These are delivered as a terminal callback on
// the first attempt; the job runner never retries them.
var (
	ErrInvalidTimeFormat = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevInvalidTimeFormat, KindInvalidInput, 3)
	}
	ErrPastDate = func(date string) *CustomError {
		return buildWithKind(nil, constvars.StatusBadRequest, constvars.ErrClientPastDate, fmt.Sprintf("%s: %s", constvars.ErrDevPastDate, date), KindInvalidInput, 3)
	}
	ErrContrastRestriction = func(detail string) *CustomError {
		return buildWithKind(nil, constvars.StatusBadRequest, constvars.ErrClientContrastRestriction, fmt.Sprintf("%s: %s", constvars.ErrDevContrastRestriction, detail), KindContrastRestriction, 3)
	}
	ErrDuplicateProcedureBooking = func(cupsCode string) *CustomError {
		return buildWithKind(nil, constvars.StatusConflict, constvars.ErrClientDuplicateProcedure, fmt.Sprintf("%s %s", constvars.ErrDevDuplicateProcedure, cupsCode), KindDuplicateProcedure, 3)
	}
	ErrSlotNotAvailable = func(timeSlot string) *CustomError {
		return buildWithKind(nil, constvars.StatusConflict, constvars.ErrClientSlotTaken, fmt.Sprintf("%s: %s", constvars.ErrDevSlotNotAvailable, timeSlot), KindSlotNotAvailable, 3)
	}
	ErrQuotaExceeded = func(groupName string) *CustomError {
		return buildWithKind(nil, constvars.StatusConflict, constvars.ErrClientQuotaExceeded, fmt.Sprintf("%s: %s", constvars.ErrDevQuotaExceeded, groupName), KindQuotaExceeded, 3)
	}
	ErrBookingNotFound = func(bookingID string) *CustomError {
		return buildWithKind(nil, constvars.StatusNotFound, constvars.ErrClientNotFound, fmt.Sprintf("%s: %s", constvars.ErrDevBookingNotFound, bookingID), KindNotFound, 3)
	}
	ErrInvalidStatusChange = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusConflict, constvars.ErrClientCannotProcessRequest, constvars.ErrDevInvalidStatusChange, KindInvalidInput, 3)
	}
	ErrScheduleConfigMissing = func(agendaID string) *CustomError {
		return buildWithKind(nil, constvars.StatusNotFound, constvars.ErrClientNotFound, fmt.Sprintf("%s %s", constvars.ErrDevScheduleConfigMissing, agendaID), KindNotFound, 3)
	}
)

// Infrastructure failures. All transient: the job runner retries them with
// backoff before delivering a generic failure.
var (
	ErrMongoDBNotObjectID = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusNotFound, constvars.ErrClientNotFound, constvars.ErrDevDBNotObjectID, KindNotFound, 3)
	}
	ErrMongoDBFindDocument = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToFindDocument, KindTransient, 3)
	}
	ErrMongoDBInsertDocument = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToInsertDocument, KindTransient, 3)
	}
	ErrMongoDBUpdateDocument = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToUpdateDocument, KindTransient, 3)
	}
	ErrMongoDBIterateDocuments = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToIterateDocuments, KindTransient, 3)
	}
	ErrMongoDBAggregate = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToAggregate, KindTransient, 3)
	}
	ErrRedisGetNoData = func(err error, redisKey string) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisGetNoData, redisKey), KindTransient, 3)
	}
	ErrRedisGet = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisGetData, KindTransient, 3)
	}
	ErrRedisSet = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSetData, KindTransient, 3)
	}
	ErrRedisDelete = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDeleteData, KindTransient, 3)
	}
	ErrRedisIncrement = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisIncrementValue, KindTransient, 3)
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisUnlock, KindTransient, 3)
	}
	ErrUnknownJobKind = func(kind string) *CustomError {
		return buildWithKind(nil, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevUnknownJobKind, kind), KindInvalidInput, 3)
	}
	ErrBookingLockBusy = func(lockKey string) *CustomError {
		return buildWithKind(nil, constvars.StatusConflict, constvars.ErrClientSlotTaken, fmt.Sprintf(constvars.ErrDevBookingLockBusy, lockKey), KindTransient, 3)
	}
	ErrRabbitMQPublishMessage = func(err error, queueName string) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQPublish, queueName), KindTransient, 3)
	}
	ErrRabbitMQConsumeMessage = func(err error, queueName string) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQConsume, queueName), KindTransient, 3)
	}
	ErrCreateHTTPRequest = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCreateHTTPRequest, KindTransient, 3)
	}
	ErrSendHTTPRequest = func(err error) *CustomError {
		return buildWithKind(err, constvars.StatusInternalServerError, constvars.ErrClientCannotProcessRequest, constvars.ErrDevSendHTTPRequest, KindTransient, 3)
	}
)

// KindOf extracts the taxonomy kind, defaulting unknown errors to transient so
// unexpected failures get the retry path instead of a silent terminal error.
func KindOf(err error) Kind {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Kind
	}
	return KindTransient
}

// IsRetryable reports whether the job runner may retry err. Business outcomes
// are final; only infrastructure-level failures consume retry attempts.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
