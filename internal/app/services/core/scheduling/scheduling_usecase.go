package scheduling

import (
	"context"

	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/services/shared/jobqueue"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/requests"
	"citamed-service/internal/pkg/dto/responses"
	"citamed-service/internal/pkg/exceptions"
	"citamed-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// jobQueue is the slice of jobqueue.Service the scheduling flow uses.
type jobQueue interface {
	Enqueue(ctx context.Context, in *jobqueue.EnqueueInput) (*jobqueue.EnqueueOutput, error)
	Reenqueue(ctx context.Context, in *jobqueue.ReenqueueInput) (*jobqueue.ReenqueueOutput, error)
	EnqueueToDeadQueue(ctx context.Context, in *jobqueue.EnqueueToDLQInput) (*jobqueue.EnqueueToDLQOutput, error)
	FetchN(ctx context.Context, in *jobqueue.FetchNInput) (*jobqueue.FetchNOutput, error)
	AckMessage(ctx context.Context, in *jobqueue.AckMessageInput) (*jobqueue.AckMessageOutput, error)
}

// SchedulingUsecaseImpl turns validated submissions into queued jobs. Searches
// go to the parallel search queue; every write goes to the single-writer
// booking queue so commits for one tenant never race each other.
type SchedulingUsecaseImpl struct {
	searchQueue  jobQueue
	bookingQueue jobQueue
	logger       *zap.Logger
}

func NewSchedulingUsecase(searchQueue, bookingQueue *jobqueue.Service, logger *zap.Logger) contracts.SchedulingUsecase {
	return &SchedulingUsecaseImpl{
		searchQueue:  searchQueue,
		bookingQueue: bookingQueue,
		logger:       logger,
	}
}

func (u *SchedulingUsecaseImpl) SubmitSearchSlots(ctx context.Context, request *requests.SearchSlotsRequest) (*responses.SubmissionResponse, error) {
	return u.submit(ctx, u.searchQueue, constvars.JobKindSearchSlots, request, request.CallbackURL)
}

func (u *SchedulingUsecaseImpl) SubmitCreateBooking(ctx context.Context, request *requests.CreateBookingRequest) (*responses.SubmissionResponse, error) {
	return u.submit(ctx, u.bookingQueue, constvars.JobKindCreateBooking, request, request.CallbackURL)
}

func (u *SchedulingUsecaseImpl) SubmitConfirmBooking(ctx context.Context, request *requests.ConfirmBookingRequest) (*responses.SubmissionResponse, error) {
	return u.submit(ctx, u.bookingQueue, constvars.JobKindConfirm, request, request.CallbackURL)
}

func (u *SchedulingUsecaseImpl) SubmitCancelBooking(ctx context.Context, request *requests.CancelBookingRequest) (*responses.SubmissionResponse, error) {
	return u.submit(ctx, u.bookingQueue, constvars.JobKindCancel, request, request.CallbackURL)
}

// submit issues the resume token and durably enqueues the job. The 202 only
// goes out after the queue confirms the publish.
func (u *SchedulingUsecaseImpl) submit(ctx context.Context, queue jobQueue, kind string, request interface{}, callbackURL string) (*responses.SubmissionResponse, error) {
	tenant := utils.GetTenant(ctx)
	if tenant == "" {
		return nil, exceptions.ErrMissingTenant(nil)
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	resumeToken := utils.GenerateResumeToken()
	message := jobqueue.JobMessage{
		ID:          resumeToken,
		Tenant:      tenant,
		Kind:        kind,
		Body:        body,
		CallbackURL: callbackURL,
	}
	if _, err := queue.Enqueue(ctx, &jobqueue.EnqueueInput{Message: message}); err != nil {
		return nil, err
	}

	u.logger.Info("scheduling job accepted",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingTenantKey, tenant),
		zap.String(constvars.LoggingJobKindKey, kind),
		zap.String(constvars.LoggingResumeTokenKey, resumeToken),
	)
	return &responses.SubmissionResponse{ResumeToken: resumeToken}, nil
}
