package scheduling

import (
	"context"
	"errors"
	"sync"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/services/shared/jobqueue"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/requests"
	"citamed-service/internal/pkg/dto/responses"
	"citamed-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// JobWorker drains one scheduling queue and turns every job into exactly one
// terminal callback enqueue. Transient failures are retried with spaced
// backoff; business outcomes are final on the first attempt.
type JobWorker struct {
	log         *zap.Logger
	cfg         *config.InternalConfig
	queue       jobQueue
	callbacks   jobQueue
	finder      contracts.SlotFinder
	coordinator contracts.BookingCoordinator
	name        string
	consumers   int
	jobTimeout  time.Duration
	stop        chan struct{}
	wg          sync.WaitGroup
	now         func() time.Time
}

// NewSearchWorker builds the parallel consumer pool for the search queue.
func NewSearchWorker(log *zap.Logger, cfg *config.InternalConfig, queue, callbacks *jobqueue.Service, finder contracts.SlotFinder) *JobWorker {
	consumers := cfg.Scheduling.SearchWorkers
	if consumers <= 0 {
		consumers = 1
	}
	return &JobWorker{
		log:        log,
		cfg:        cfg,
		queue:      queue,
		callbacks:  callbacks,
		finder:     finder,
		name:       "scheduling.search",
		consumers:  consumers,
		jobTimeout: time.Duration(cfg.Scheduling.SearchTimeoutInSeconds) * time.Second,
		stop:       make(chan struct{}),
		now:        time.Now,
	}
}

// NewBookingWorker builds the single consumer of the booking queue. One
// consumer means commits within a tenant are serialized by construction; the
// redis day lock only guards against a second process.
func NewBookingWorker(log *zap.Logger, cfg *config.InternalConfig, queue, callbacks *jobqueue.Service, coordinator contracts.BookingCoordinator) *JobWorker {
	return &JobWorker{
		log:         log,
		cfg:         cfg,
		queue:       queue,
		callbacks:   callbacks,
		coordinator: coordinator,
		name:        "scheduling.booking",
		consumers:   1,
		jobTimeout:  time.Duration(cfg.Booking.WriteTimeoutInSeconds) * time.Second,
		stop:        make(chan struct{}),
		now:         time.Now,
	}
}

// Start launches the consumer goroutines. It returns a stop function that
// halts polling and waits for in-flight jobs.
func (w *JobWorker) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(w.cfg.Scheduling.WorkerPollIntervalInSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	for i := 0; i < w.consumers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-w.stop:
					return
				case <-ticker.C:
					w.runOnce(ctx)
				}
			}
		}()
	}

	return func() {
		close(w.stop)
		w.wg.Wait()
	}
}

func (w *JobWorker) runOnce(ctx context.Context) {
	max := w.cfg.Scheduling.MaxQueue
	if max <= 0 {
		max = 1
	}
	out, err := w.queue.FetchN(ctx, &jobqueue.FetchNInput{Max: max})
	if err != nil {
		w.log.Warn(w.name+": queue fetch failed", zap.Error(err))
		return
	}

	for _, item := range out.Items {
		w.processItem(ctx, item)
	}
}

func (w *JobWorker) processItem(ctx context.Context, item jobqueue.QueuedItem) {
	msg := item.Message

	if !msg.Ready(w.now()) {
		// Backoff has not elapsed; return the message to the tail untouched.
		if _, err := w.queue.Reenqueue(ctx, &jobqueue.ReenqueueInput{Message: msg}); err != nil {
			w.log.Warn(w.name+": requeue of backed-off message failed", zap.Error(err))
			return
		}
		w.ack(ctx, item.DeliveryTag)
		return
	}

	jobCtx := context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, msg.ID)
	jobCtx = context.WithValue(jobCtx, constvars.CONTEXT_TENANT_KEY, msg.Tenant)
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, w.jobTimeout)
		defer cancel()
	}

	data, err := w.dispatch(jobCtx, msg)
	if err == nil {
		w.finish(ctx, item, msg, responses.CallbackPayload{
			ResumeToken: msg.ID,
			Status:      constvars.CallbackStatusOK,
			Message:     completedMessage(msg.Kind),
			Data:        data,
		})
		return
	}

	if exceptions.IsRetryable(err) {
		w.retryOrBury(ctx, item, msg, err)
		return
	}

	// Business outcome: exactly one terminal callback, never retried.
	status := constvars.CallbackStatusError
	if exceptions.KindOf(err) == exceptions.KindSlotNotAvailable {
		status = constvars.CallbackStatusExists
	}
	w.finish(ctx, item, msg, responses.CallbackPayload{
		ResumeToken: msg.ID,
		Status:      status,
		Message:     clientMessage(err),
	})
}

func (w *JobWorker) dispatch(ctx context.Context, msg jobqueue.JobMessage) (interface{}, error) {
	switch msg.Kind {
	case constvars.JobKindSearchSlots:
		var request requests.SearchSlotsRequest
		if err := json.Unmarshal(msg.Body, &request); err != nil {
			return nil, exceptions.ErrCannotParseJSON(err)
		}
		return w.finder.FindSlots(ctx, &request)
	case constvars.JobKindCreateBooking:
		var request requests.CreateBookingRequest
		if err := json.Unmarshal(msg.Body, &request); err != nil {
			return nil, exceptions.ErrCannotParseJSON(err)
		}
		return w.coordinator.Book(ctx, &request)
	case constvars.JobKindConfirm:
		var request requests.ConfirmBookingRequest
		if err := json.Unmarshal(msg.Body, &request); err != nil {
			return nil, exceptions.ErrCannotParseJSON(err)
		}
		return w.coordinator.Confirm(ctx, &request)
	case constvars.JobKindCancel:
		var request requests.CancelBookingRequest
		if err := json.Unmarshal(msg.Body, &request); err != nil {
			return nil, exceptions.ErrCannotParseJSON(err)
		}
		return w.coordinator.Cancel(ctx, &request)
	default:
		return nil, exceptions.ErrUnknownJobKind(msg.Kind)
	}
}

// retryOrBury increments the failure count, reenqueues with backoff, and
// after the retry budget delivers a generic failure callback and parks the
// message in the DLQ for inspection.
func (w *JobWorker) retryOrBury(ctx context.Context, item jobqueue.QueuedItem, msg jobqueue.JobMessage, cause error) {
	msg.FailedCount++

	if msg.FailedCount >= w.cfg.Callback.MaxRetries {
		w.log.Error(w.name+": retry budget exhausted",
			zap.String(constvars.LoggingResumeTokenKey, msg.ID),
			zap.String(constvars.LoggingJobKindKey, msg.Kind),
			zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
			zap.Error(cause),
		)
		if _, err := w.queue.EnqueueToDeadQueue(ctx, &jobqueue.EnqueueToDLQInput{Message: msg}); err != nil {
			w.log.Error(w.name+": DLQ publish failed", zap.Error(err))
			return
		}
		w.finish(ctx, item, msg, responses.CallbackPayload{
			ResumeToken: msg.ID,
			Status:      constvars.CallbackStatusError,
			Message:     constvars.JobFailedMessage,
		})
		return
	}

	msg.NotBefore = w.now().Add(w.backoff(msg.FailedCount)).Unix()
	w.log.Warn(w.name+": transient failure, retrying",
		zap.String(constvars.LoggingResumeTokenKey, msg.ID),
		zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
		zap.Error(cause),
	)
	if _, err := w.queue.Reenqueue(ctx, &jobqueue.ReenqueueInput{Message: msg}); err != nil {
		w.log.Error(w.name+": reenqueue failed", zap.Error(err))
		return
	}
	w.ack(ctx, item.DeliveryTag)
}

// finish enqueues the terminal callback and acks the job. The callback
// publish happens first so a crash in between duplicates the callback job
// instead of losing it; the delivery marker dedupes on the other side.
func (w *JobWorker) finish(ctx context.Context, item jobqueue.QueuedItem, msg jobqueue.JobMessage, payload responses.CallbackPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.log.Error(w.name+": callback payload marshal failed", zap.Error(err))
		return
	}

	callbackMsg := jobqueue.JobMessage{
		ID:          msg.ID,
		Tenant:      msg.Tenant,
		Kind:        constvars.JobKindCallback,
		Body:        body,
		CallbackURL: msg.CallbackURL,
	}
	if _, err := w.callbacks.Enqueue(ctx, &jobqueue.EnqueueInput{Message: callbackMsg}); err != nil {
		w.log.Error(w.name+": callback enqueue failed, job will be redelivered", zap.Error(err))
		return
	}
	w.ack(ctx, item.DeliveryTag)
}

func (w *JobWorker) ack(ctx context.Context, deliveryTag uint64) {
	if _, err := w.queue.AckMessage(ctx, &jobqueue.AckMessageInput{DeliveryTag: deliveryTag}); err != nil {
		w.log.Warn(w.name+": ack failed", zap.Error(err))
	}
}

func (w *JobWorker) backoff(failedCount int) time.Duration {
	if failedCount <= 1 {
		return time.Duration(w.cfg.Callback.FirstBackoffInSeconds) * time.Second
	}
	return time.Duration(w.cfg.Callback.SecondBackoffInSeconds) * time.Second
}

func completedMessage(kind string) string {
	switch kind {
	case constvars.JobKindSearchSlots:
		return constvars.SearchSlotsCompletedMessage
	case constvars.JobKindCreateBooking:
		return constvars.CreateBookingCompletedMessage
	case constvars.JobKindConfirm:
		return constvars.ConfirmCompletedMessage
	case constvars.JobKindCancel:
		return constvars.CancelCompletedMessage
	default:
		return constvars.ResponseUnknown
	}
}

// clientMessage extracts the client-facing message of a business error.
func clientMessage(err error) string {
	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		return customErr.ClientMessage
	}
	return constvars.ErrClientSomethingWrongWithApplication
}
