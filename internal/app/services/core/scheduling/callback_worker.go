package scheduling

import (
	"context"
	"sync"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/services/shared/callback"
	"citamed-service/internal/app/services/shared/jobqueue"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/responses"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type callbackDispatcher interface {
	Deliver(ctx context.Context, in *callback.DeliverInput) (*callback.DeliverOutput, error)
}

// CallbackWorker drains the callback queue and posts each terminal payload
// through the dispatcher. The dispatcher's delivery marker makes duplicate
// queue entries harmless.
type CallbackWorker struct {
	log        *zap.Logger
	cfg        *config.InternalConfig
	queue      jobQueue
	dispatcher callbackDispatcher
	stop       chan struct{}
	wg         sync.WaitGroup
	now        func() time.Time
}

func NewCallbackWorker(log *zap.Logger, cfg *config.InternalConfig, queue *jobqueue.Service, dispatcher *callback.Dispatcher) *CallbackWorker {
	return &CallbackWorker{
		log:        log,
		cfg:        cfg,
		queue:      queue,
		dispatcher: dispatcher,
		stop:       make(chan struct{}),
		now:        time.Now,
	}
}

// Start launches the single delivery loop. It returns a stop function.
func (w *CallbackWorker) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(w.cfg.Scheduling.WorkerPollIntervalInSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

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

	return func() {
		close(w.stop)
		w.wg.Wait()
	}
}

func (w *CallbackWorker) runOnce(ctx context.Context) {
	max := w.cfg.Scheduling.MaxQueue
	if max <= 0 {
		max = 1
	}
	out, err := w.queue.FetchN(ctx, &jobqueue.FetchNInput{Max: max})
	if err != nil {
		w.log.Warn("scheduling.callback: queue fetch failed", zap.Error(err))
		return
	}

	for _, item := range out.Items {
		w.processItem(ctx, item)
	}
}

func (w *CallbackWorker) processItem(ctx context.Context, item jobqueue.QueuedItem) {
	msg := item.Message

	if !msg.Ready(w.now()) {
		if _, err := w.queue.Reenqueue(ctx, &jobqueue.ReenqueueInput{Message: msg}); err != nil {
			w.log.Warn("scheduling.callback: requeue of backed-off message failed", zap.Error(err))
			return
		}
		w.ack(ctx, item.DeliveryTag)
		return
	}

	var payload responses.CallbackPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		// Undeliverable payload; park it for inspection.
		w.log.Error("scheduling.callback: payload unmarshal failed",
			zap.String(constvars.LoggingResumeTokenKey, msg.ID), zap.Error(err))
		if _, err := w.queue.EnqueueToDeadQueue(ctx, &jobqueue.EnqueueToDLQInput{Message: msg}); err != nil {
			w.log.Error("scheduling.callback: DLQ publish failed", zap.Error(err))
			return
		}
		w.ack(ctx, item.DeliveryTag)
		return
	}

	deliverCtx := context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, msg.ID)
	out, err := w.dispatcher.Deliver(deliverCtx, &callback.DeliverInput{
		ResumeToken: msg.ID,
		CallbackURL: msg.CallbackURL,
		Payload:     payload,
	})
	if err != nil {
		w.retryOrBury(ctx, item, msg, err)
		return
	}

	if out.AlreadyDelivered {
		w.log.Info("scheduling.callback: token already consumed, dropping duplicate",
			zap.String(constvars.LoggingResumeTokenKey, msg.ID))
	}
	w.ack(ctx, item.DeliveryTag)
}

func (w *CallbackWorker) retryOrBury(ctx context.Context, item jobqueue.QueuedItem, msg jobqueue.JobMessage, cause error) {
	msg.FailedCount++

	if msg.FailedCount >= w.cfg.Callback.MaxRetries {
		w.log.Error("scheduling.callback: delivery retry budget exhausted",
			zap.String(constvars.LoggingResumeTokenKey, msg.ID),
			zap.String(constvars.LoggingCallbackURLKey, msg.CallbackURL),
			zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
			zap.Error(cause),
		)
		if _, err := w.queue.EnqueueToDeadQueue(ctx, &jobqueue.EnqueueToDLQInput{Message: msg}); err != nil {
			w.log.Error("scheduling.callback: DLQ publish failed", zap.Error(err))
			return
		}
		w.ack(ctx, item.DeliveryTag)
		return
	}

	msg.NotBefore = w.now().Add(w.backoff(msg.FailedCount)).Unix()
	w.log.Warn("scheduling.callback: delivery failed, retrying",
		zap.String(constvars.LoggingResumeTokenKey, msg.ID),
		zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
		zap.Error(cause),
	)
	if _, err := w.queue.Reenqueue(ctx, &jobqueue.ReenqueueInput{Message: msg}); err != nil {
		w.log.Error("scheduling.callback: reenqueue failed", zap.Error(err))
		return
	}
	w.ack(ctx, item.DeliveryTag)
}

func (w *CallbackWorker) ack(ctx context.Context, deliveryTag uint64) {
	if _, err := w.queue.AckMessage(ctx, &jobqueue.AckMessageInput{DeliveryTag: deliveryTag}); err != nil {
		w.log.Warn("scheduling.callback: ack failed", zap.Error(err))
	}
}

func (w *CallbackWorker) backoff(failedCount int) time.Duration {
	if failedCount <= 1 {
		return time.Duration(w.cfg.Callback.FirstBackoffInSeconds) * time.Second
	}
	return time.Duration(w.cfg.Callback.SecondBackoffInSeconds) * time.Second
}
