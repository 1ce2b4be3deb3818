package exceptions

import (
	"citamed-service/internal/pkg/constvars"
	"fmt"
	"runtime"
)

// Kind classifies an error for the job boundary: business outcomes are
// delivered as a terminal callback and never retried, transient failures
// consume retry attempts.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindContrastRestriction Kind = "contrast_restriction"
	KindDuplicateProcedure  Kind = "duplicate_procedure_booking"
	KindSlotNotAvailable    Kind = "slot_not_available"
	KindQuotaExceeded       Kind = "quota_exceeded"
	KindNotFound            Kind = "not_found"
	KindTransient           Kind = "transient"
	KindInternal            Kind = "internal"
)

type CustomError struct {
	StatusCode    int        `json:"status_code"`
	Success       bool       `json:"success"`
	ClientMessage string     `json:"message"`
	DevMessage    string     `json:"-"`
	Kind          Kind       `json:"-"`
	Locations     []Location `json:"-"`
}

type Location struct {
	File         string
	Line         int
	FunctionName string
}

func (e *CustomError) Error() string {
	if len(e.Locations) == 0 {
		return e.DevMessage
	}
	loc := e.Locations[0]
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, loc.File, loc.Line, loc.FunctionName)
}

// BuildNewCustomError wraps err with a status code and the two-audience
// message pair used across the service. err may be nil.
func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	return buildWithKind(err, statusCode, clientMessage, devMessage, KindInternal, 3)
}

func buildWithKind(err error, statusCode int, clientMessage, devMessage string, kind Kind, skip int) *CustomError {
	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Kind:          kind,
		Locations:     []Location{getLocation(skip)},
	}
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ResponseUnknown,
			Line:         0,
			FunctionName: constvars.ResponseUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
