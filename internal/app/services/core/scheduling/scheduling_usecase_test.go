package scheduling

import (
	"context"
	"testing"

	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/requests"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tenantContext() context.Context {
	return context.WithValue(context.Background(), constvars.CONTEXT_TENANT_KEY, "clinic-a")
}

func newUsecase(search, booking *fakeQueue) *SchedulingUsecaseImpl {
	return &SchedulingUsecaseImpl{searchQueue: search, bookingQueue: booking, logger: zap.NewNop()}
}

func TestSubmit(t *testing.T) {
	t.Run("search submissions go to the search queue", func(t *testing.T) {
		search, booking := &fakeQueue{}, &fakeQueue{}
		usecase := newUsecase(search, booking)

		result, err := usecase.SubmitSearchSlots(tenantContext(), &requests.SearchSlotsRequest{
			PatientID:      "patient-1",
			ProcedureLines: []requests.SearchProcedureLine{{Code: "870101", Quantity: 1}},
			TotalUnits:     1,
			CallbackURL:    "https://caller.example/cb",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.ResumeToken)

		require.Len(t, search.enqueued, 1)
		assert.Empty(t, booking.enqueued)
		msg := search.enqueued[0]
		assert.Equal(t, result.ResumeToken, msg.ID)
		assert.Equal(t, "clinic-a", msg.Tenant)
		assert.Equal(t, constvars.JobKindSearchSlots, msg.Kind)
		assert.Equal(t, "https://caller.example/cb", msg.CallbackURL)
	})

	t.Run("every write lands on the booking queue", func(t *testing.T) {
		search, booking := &fakeQueue{}, &fakeQueue{}
		usecase := newUsecase(search, booking)

		_, err := usecase.SubmitCreateBooking(tenantContext(), &requests.CreateBookingRequest{CallbackURL: "https://caller.example/cb"})
		require.NoError(t, err)
		_, err = usecase.SubmitConfirmBooking(tenantContext(), &requests.ConfirmBookingRequest{BookingID: "b1", CallbackURL: "https://caller.example/cb"})
		require.NoError(t, err)
		_, err = usecase.SubmitCancelBooking(tenantContext(), &requests.CancelBookingRequest{BookingID: "b1", Reason: "r", CallbackURL: "https://caller.example/cb"})
		require.NoError(t, err)

		require.Len(t, booking.enqueued, 3)
		assert.Empty(t, search.enqueued)
		assert.Equal(t, constvars.JobKindCreateBooking, booking.enqueued[0].Kind)
		assert.Equal(t, constvars.JobKindConfirm, booking.enqueued[1].Kind)
		assert.Equal(t, constvars.JobKindCancel, booking.enqueued[2].Kind)
	})

	t.Run("each submission issues a fresh resume token", func(t *testing.T) {
		search, booking := &fakeQueue{}, &fakeQueue{}
		usecase := newUsecase(search, booking)
		request := &requests.SearchSlotsRequest{
			PatientID:      "patient-1",
			ProcedureLines: []requests.SearchProcedureLine{{Code: "870101", Quantity: 1}},
			TotalUnits:     1,
			CallbackURL:    "https://caller.example/cb",
		}

		first, err := usecase.SubmitSearchSlots(tenantContext(), request)
		require.NoError(t, err)
		second, err := usecase.SubmitSearchSlots(tenantContext(), request)
		require.NoError(t, err)
		assert.NotEqual(t, first.ResumeToken, second.ResumeToken)
	})

	t.Run("missing tenant is rejected before enqueue", func(t *testing.T) {
		search, booking := &fakeQueue{}, &fakeQueue{}
		usecase := newUsecase(search, booking)

		_, err := usecase.SubmitSearchSlots(context.Background(), &requests.SearchSlotsRequest{CallbackURL: "https://caller.example/cb"})
		require.Error(t, err)
		assert.Empty(t, search.enqueued)
	})
}
