package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	t.Run("Confirm Pending", func(t *testing.T) {
		next, err := Transition(AppointmentPending, EventConfirm)

		assert.NoError(t, err)
		assert.Equal(t, AppointmentConfirmed, next)
	})

	t.Run("Cancel Pending", func(t *testing.T) {
		next, err := Transition(AppointmentPending, EventCancel)

		assert.NoError(t, err)
		assert.Equal(t, AppointmentCancelled, next)
	})

	t.Run("Complete Confirmed", func(t *testing.T) {
		next, err := Transition(AppointmentConfirmed, EventComplete)

		assert.NoError(t, err)
		assert.Equal(t, AppointmentCompleted, next)
	})

	t.Run("No Show Confirmed", func(t *testing.T) {
		next, err := Transition(AppointmentConfirmed, EventMarkNoShow)

		assert.NoError(t, err)
		assert.Equal(t, AppointmentNoShow, next)
	})

	t.Run("Confirm Already Confirmed", func(t *testing.T) {
		next, err := Transition(AppointmentConfirmed, EventConfirm)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, AppointmentConfirmed, next, "status should be unchanged on rejected transition")
	})

	t.Run("Cancel Completed", func(t *testing.T) {
		_, err := Transition(AppointmentCompleted, EventCancel)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Complete Cancelled", func(t *testing.T) {
		_, err := Transition(AppointmentCancelled, EventComplete)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
