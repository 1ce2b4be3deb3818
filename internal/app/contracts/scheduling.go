package contracts

import (
	"context"

	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/dto/requests"
	"citamed-service/internal/pkg/dto/responses"
)

// SlotFinder computes up to a fixed cap of bookable candidate windows.
type SlotFinder interface {
	FindSlots(ctx context.Context, request *requests.SearchSlotsRequest) (*responses.SearchSlotsResult, error)
}

// BlockResolver partitions a patient's bookings into maximal contiguous runs
// and returns the first booking of each run.
type BlockResolver interface {
	ResolveBlocks(ctx context.Context, patientID string, status models.AppointmentStatus) ([]models.Appointment, error)
}

// CapacityLimiter guards the shared monthly quota of a procedure group.
// IsAtLimit reports whether booking additionalQuantity more units of
// procedureCode in targetDate's month would exceed the group ceiling.
type CapacityLimiter interface {
	IsAtLimit(ctx context.Context, procedureCode, targetDate string, additionalQuantity int) (bool, error)
}

// BookingCoordinator is the admission-control write path.
type BookingCoordinator interface {
	Book(ctx context.Context, request *requests.CreateBookingRequest) (*responses.CreateBookingResult, error)
	Confirm(ctx context.Context, request *requests.ConfirmBookingRequest) (*responses.BookingStatusResult, error)
	Cancel(ctx context.Context, request *requests.CancelBookingRequest) (*responses.BookingStatusResult, error)
}

// SchedulingUsecase accepts submissions, issues resume tokens and enqueues
// the corresponding job.
type SchedulingUsecase interface {
	SubmitSearchSlots(ctx context.Context, request *requests.SearchSlotsRequest) (*responses.SubmissionResponse, error)
	SubmitCreateBooking(ctx context.Context, request *requests.CreateBookingRequest) (*responses.SubmissionResponse, error)
	SubmitConfirmBooking(ctx context.Context, request *requests.ConfirmBookingRequest) (*responses.SubmissionResponse, error)
	SubmitCancelBooking(ctx context.Context, request *requests.CancelBookingRequest) (*responses.SubmissionResponse, error)
}
