package scheduling

import (
	"context"
	"testing"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/services/shared/callback"
	"citamed-service/internal/app/services/shared/jobqueue"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/requests"
	"citamed-service/internal/pkg/dto/responses"
	"citamed-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeQueue struct {
	enqueued   []jobqueue.JobMessage
	reenqueued []jobqueue.JobMessage
	dead       []jobqueue.JobMessage
	acked      []uint64
}

func (f *fakeQueue) Enqueue(ctx context.Context, in *jobqueue.EnqueueInput) (*jobqueue.EnqueueOutput, error) {
	f.enqueued = append(f.enqueued, in.Message)
	return &jobqueue.EnqueueOutput{}, nil
}

func (f *fakeQueue) Reenqueue(ctx context.Context, in *jobqueue.ReenqueueInput) (*jobqueue.ReenqueueOutput, error) {
	f.reenqueued = append(f.reenqueued, in.Message)
	return &jobqueue.ReenqueueOutput{}, nil
}

func (f *fakeQueue) EnqueueToDeadQueue(ctx context.Context, in *jobqueue.EnqueueToDLQInput) (*jobqueue.EnqueueToDLQOutput, error) {
	f.dead = append(f.dead, in.Message)
	return &jobqueue.EnqueueToDLQOutput{}, nil
}

func (f *fakeQueue) FetchN(ctx context.Context, in *jobqueue.FetchNInput) (*jobqueue.FetchNOutput, error) {
	return &jobqueue.FetchNOutput{}, nil
}

func (f *fakeQueue) AckMessage(ctx context.Context, in *jobqueue.AckMessageInput) (*jobqueue.AckMessageOutput, error) {
	f.acked = append(f.acked, in.DeliveryTag)
	return &jobqueue.AckMessageOutput{}, nil
}

type fakeFinder struct {
	result *responses.SearchSlotsResult
	err    error
	tenant string
}

func (f *fakeFinder) FindSlots(ctx context.Context, request *requests.SearchSlotsRequest) (*responses.SearchSlotsResult, error) {
	if tenant, ok := ctx.Value(constvars.CONTEXT_TENANT_KEY).(string); ok {
		f.tenant = tenant
	}
	return f.result, f.err
}

type fakeCoordinator struct {
	bookErr error
}

func (f *fakeCoordinator) Book(ctx context.Context, request *requests.CreateBookingRequest) (*responses.CreateBookingResult, error) {
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return &responses.CreateBookingResult{TotalUnits: request.TotalUnits}, nil
}

func (f *fakeCoordinator) Confirm(ctx context.Context, request *requests.ConfirmBookingRequest) (*responses.BookingStatusResult, error) {
	return &responses.BookingStatusResult{BookingID: request.BookingID, Status: "confirmed"}, nil
}

func (f *fakeCoordinator) Cancel(ctx context.Context, request *requests.CancelBookingRequest) (*responses.BookingStatusResult, error) {
	return &responses.BookingStatusResult{BookingID: request.BookingID, Status: "cancelled"}, nil
}

func workerConfig() *config.InternalConfig {
	return &config.InternalConfig{
		Scheduling: config.AppScheduling{
			SearchWorkers:               2,
			MaxQueue:                    5,
			WorkerPollIntervalInSeconds: 1,
			SearchTimeoutInSeconds:      120,
		},
		Booking: config.AppBooking{WriteTimeoutInSeconds: 60},
		Callback: config.AppCallback{
			MaxRetries:             3,
			FirstBackoffInSeconds:  30,
			SecondBackoffInSeconds: 120,
		},
	}
}

func searchMessage(t *testing.T) jobqueue.JobMessage {
	t.Helper()
	body, err := json.Marshal(&requests.SearchSlotsRequest{
		PatientID:      "patient-1",
		ProcedureLines: []requests.SearchProcedureLine{{Code: "870101", Quantity: 1}},
		TotalUnits:     1,
		CallbackURL:    "https://caller.example/cb",
	})
	require.NoError(t, err)
	return jobqueue.JobMessage{
		ID:          "token-1",
		Tenant:      "clinic-a",
		Kind:        constvars.JobKindSearchSlots,
		Body:        body,
		CallbackURL: "https://caller.example/cb",
	}
}

func decodePayload(t *testing.T, msg jobqueue.JobMessage) responses.CallbackPayload {
	t.Helper()
	var payload responses.CallbackPayload
	require.NoError(t, json.Unmarshal(msg.Body, &payload))
	return payload
}

func newTestWorker(queue, callbacks *fakeQueue, finder *fakeFinder, coordinator *fakeCoordinator) *JobWorker {
	return &JobWorker{
		log:         zap.NewNop(),
		cfg:         workerConfig(),
		queue:       queue,
		callbacks:   callbacks,
		finder:      finder,
		coordinator: coordinator,
		name:        "scheduling.test",
		consumers:   1,
		stop:        make(chan struct{}),
		now:         func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestJobWorkerProcessItem(t *testing.T) {
	ctx := context.Background()

	t.Run("successful search produces an ok callback", func(t *testing.T) {
		queue, callbacks := &fakeQueue{}, &fakeQueue{}
		finder := &fakeFinder{result: &responses.SearchSlotsResult{NextDateAfter: "2026-01-05"}}
		worker := newTestWorker(queue, callbacks, finder, &fakeCoordinator{})

		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 7, Message: searchMessage(t)})

		require.Len(t, callbacks.enqueued, 1)
		payload := decodePayload(t, callbacks.enqueued[0])
		assert.Equal(t, constvars.CallbackStatusOK, payload.Status)
		assert.Equal(t, "token-1", payload.ResumeToken)
		assert.Equal(t, constvars.JobKindCallback, callbacks.enqueued[0].Kind)
		assert.Equal(t, []uint64{7}, queue.acked)
		assert.Equal(t, "clinic-a", finder.tenant)
	})

	t.Run("slot conflict maps to the exists status", func(t *testing.T) {
		queue, callbacks := &fakeQueue{}, &fakeQueue{}
		coordinator := &fakeCoordinator{bookErr: exceptions.ErrSlotNotAvailable("202601050800")}
		worker := newTestWorker(queue, callbacks, &fakeFinder{}, coordinator)

		msg := searchMessage(t)
		msg.Kind = constvars.JobKindCreateBooking
		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 8, Message: msg})

		require.Len(t, callbacks.enqueued, 1)
		payload := decodePayload(t, callbacks.enqueued[0])
		assert.Equal(t, constvars.CallbackStatusExists, payload.Status)
		assert.Empty(t, queue.reenqueued)
		assert.Equal(t, []uint64{8}, queue.acked)
	})

	t.Run("business error is terminal on the first attempt", func(t *testing.T) {
		queue, callbacks := &fakeQueue{}, &fakeQueue{}
		coordinator := &fakeCoordinator{bookErr: exceptions.ErrQuotaExceeded("resonance")}
		worker := newTestWorker(queue, callbacks, &fakeFinder{}, coordinator)

		msg := searchMessage(t)
		msg.Kind = constvars.JobKindCreateBooking
		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 9, Message: msg})

		require.Len(t, callbacks.enqueued, 1)
		payload := decodePayload(t, callbacks.enqueued[0])
		assert.Equal(t, constvars.CallbackStatusError, payload.Status)
		assert.Equal(t, constvars.ErrClientQuotaExceeded, payload.Message)
		assert.Empty(t, queue.reenqueued)
		assert.Empty(t, queue.dead)
	})

	t.Run("transient failure reenqueues with first backoff", func(t *testing.T) {
		queue, callbacks := &fakeQueue{}, &fakeQueue{}
		finder := &fakeFinder{err: exceptions.ErrRedisGet(assert.AnError)}
		worker := newTestWorker(queue, callbacks, finder, &fakeCoordinator{})

		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 10, Message: searchMessage(t)})

		assert.Empty(t, callbacks.enqueued)
		require.Len(t, queue.reenqueued, 1)
		retried := queue.reenqueued[0]
		assert.Equal(t, 1, retried.FailedCount)
		assert.Equal(t, worker.now().Add(30*time.Second).Unix(), retried.NotBefore)
		assert.Equal(t, []uint64{10}, queue.acked)
	})

	t.Run("second transient failure uses the longer backoff", func(t *testing.T) {
		queue, callbacks := &fakeQueue{}, &fakeQueue{}
		finder := &fakeFinder{err: exceptions.ErrRedisGet(assert.AnError)}
		worker := newTestWorker(queue, callbacks, finder, &fakeCoordinator{})

		msg := searchMessage(t)
		msg.FailedCount = 1
		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 11, Message: msg})

		require.Len(t, queue.reenqueued, 1)
		assert.Equal(t, 2, queue.reenqueued[0].FailedCount)
		assert.Equal(t, worker.now().Add(120*time.Second).Unix(), queue.reenqueued[0].NotBefore)
	})

	t.Run("exhausted retry budget buries the job and reports failure", func(t *testing.T) {
		queue, callbacks := &fakeQueue{}, &fakeQueue{}
		finder := &fakeFinder{err: exceptions.ErrRedisGet(assert.AnError)}
		worker := newTestWorker(queue, callbacks, finder, &fakeCoordinator{})

		msg := searchMessage(t)
		msg.FailedCount = 2
		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 12, Message: msg})

		require.Len(t, queue.dead, 1)
		require.Len(t, callbacks.enqueued, 1)
		payload := decodePayload(t, callbacks.enqueued[0])
		assert.Equal(t, constvars.CallbackStatusError, payload.Status)
		assert.Equal(t, constvars.JobFailedMessage, payload.Message)
		assert.Empty(t, queue.reenqueued)
	})

	t.Run("messages inside their backoff window go back untouched", func(t *testing.T) {
		queue, callbacks := &fakeQueue{}, &fakeQueue{}
		worker := newTestWorker(queue, callbacks, &fakeFinder{}, &fakeCoordinator{})

		msg := searchMessage(t)
		msg.FailedCount = 1
		msg.NotBefore = worker.now().Add(time.Minute).Unix()
		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 13, Message: msg})

		require.Len(t, queue.reenqueued, 1)
		assert.Equal(t, 1, queue.reenqueued[0].FailedCount)
		assert.Empty(t, callbacks.enqueued)
	})

	t.Run("unknown job kind yields a terminal error callback", func(t *testing.T) {
		queue, callbacks := &fakeQueue{}, &fakeQueue{}
		worker := newTestWorker(queue, callbacks, &fakeFinder{}, &fakeCoordinator{})

		msg := searchMessage(t)
		msg.Kind = "reindex_everything"
		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 14, Message: msg})

		require.Len(t, callbacks.enqueued, 1)
		assert.Equal(t, constvars.CallbackStatusError, decodePayload(t, callbacks.enqueued[0]).Status)
		assert.Empty(t, queue.reenqueued)
	})
}

type fakeDispatcher struct {
	err              error
	alreadyDelivered bool
	delivered        []*callback.DeliverInput
}

func (f *fakeDispatcher) Deliver(ctx context.Context, in *callback.DeliverInput) (*callback.DeliverOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.delivered = append(f.delivered, in)
	return &callback.DeliverOutput{AlreadyDelivered: f.alreadyDelivered}, nil
}

func callbackMessage(t *testing.T) jobqueue.JobMessage {
	t.Helper()
	body, err := json.Marshal(responses.CallbackPayload{
		ResumeToken: "token-1",
		Status:      constvars.CallbackStatusOK,
		Message:     constvars.SearchSlotsCompletedMessage,
	})
	require.NoError(t, err)
	return jobqueue.JobMessage{
		ID:          "token-1",
		Tenant:      "clinic-a",
		Kind:        constvars.JobKindCallback,
		Body:        body,
		CallbackURL: "https://caller.example/cb",
	}
}

func newTestCallbackWorker(queue *fakeQueue, dispatcher *fakeDispatcher) *CallbackWorker {
	return &CallbackWorker{
		log:        zap.NewNop(),
		cfg:        workerConfig(),
		queue:      queue,
		dispatcher: dispatcher,
		stop:       make(chan struct{}),
		now:        func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestCallbackWorkerProcessItem(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers the payload and acks", func(t *testing.T) {
		queue := &fakeQueue{}
		dispatcher := &fakeDispatcher{}
		worker := newTestCallbackWorker(queue, dispatcher)

		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 1, Message: callbackMessage(t)})

		require.Len(t, dispatcher.delivered, 1)
		assert.Equal(t, "token-1", dispatcher.delivered[0].ResumeToken)
		assert.Equal(t, []uint64{1}, queue.acked)
	})

	t.Run("duplicate delivery is dropped silently", func(t *testing.T) {
		queue := &fakeQueue{}
		worker := newTestCallbackWorker(queue, &fakeDispatcher{alreadyDelivered: true})

		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 2, Message: callbackMessage(t)})

		assert.Equal(t, []uint64{2}, queue.acked)
		assert.Empty(t, queue.reenqueued)
	})

	t.Run("transient delivery failure retries with backoff", func(t *testing.T) {
		queue := &fakeQueue{}
		worker := newTestCallbackWorker(queue, &fakeDispatcher{err: exceptions.ErrSendHTTPRequest(assert.AnError)})

		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 3, Message: callbackMessage(t)})

		require.Len(t, queue.reenqueued, 1)
		assert.Equal(t, 1, queue.reenqueued[0].FailedCount)
		assert.Equal(t, worker.now().Add(30*time.Second).Unix(), queue.reenqueued[0].NotBefore)
	})

	t.Run("exhausted delivery retries park the message", func(t *testing.T) {
		queue := &fakeQueue{}
		worker := newTestCallbackWorker(queue, &fakeDispatcher{err: exceptions.ErrSendHTTPRequest(assert.AnError)})

		msg := callbackMessage(t)
		msg.FailedCount = 2
		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 4, Message: msg})

		require.Len(t, queue.dead, 1)
		assert.Equal(t, []uint64{4}, queue.acked)
		assert.Empty(t, queue.reenqueued)
	})

	t.Run("unparseable payload goes straight to the dead queue", func(t *testing.T) {
		queue := &fakeQueue{}
		worker := newTestCallbackWorker(queue, &fakeDispatcher{})

		msg := callbackMessage(t)
		msg.Body = []byte("{not json")
		worker.processItem(ctx, jobqueue.QueuedItem{DeliveryTag: 5, Message: msg})

		require.Len(t, queue.dead, 1)
		assert.Equal(t, []uint64{5}, queue.acked)
	})
}
