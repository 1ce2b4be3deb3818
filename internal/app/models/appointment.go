package models

import (
	"errors"
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

type AppointmentEvent string

const (
	EventConfirm    AppointmentEvent = "confirm"
	EventCancel     AppointmentEvent = "cancel"
	EventComplete   AppointmentEvent = "complete"
	EventMarkNoShow AppointmentEvent = "mark_no_show"
)

var ErrInvalidTransition = errors.New("invalid appointment status transition")

// Transition is the closed status machine for appointments. Confirm and
// cancel only apply to pending appointments; complete and no-show only to
// confirmed ones.
func Transition(status AppointmentStatus, event AppointmentEvent) (AppointmentStatus, error) {
	switch event {
	case EventConfirm:
		if status == AppointmentPending {
			return AppointmentConfirmed, nil
		}
	case EventCancel:
		if status == AppointmentPending {
			return AppointmentCancelled, nil
		}
	case EventComplete:
		if status == AppointmentConfirmed {
			return AppointmentCompleted, nil
		}
	case EventMarkNoShow:
		if status == AppointmentConfirmed {
			return AppointmentNoShow, nil
		}
	}
	return status, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, status)
}

type ProcedureLineItem struct {
	Code       string  `json:"code" bson:"code"`
	Quantity   int     `json:"quantity" bson:"quantity"`
	UnitPrice  float64 `json:"unit_price" bson:"unit_price"`
	PayerClass string  `json:"payer_class" bson:"payer_class"`
}

type Appointment struct {
	ID             string              `json:"id,omitempty" bson:"_id,omitempty"`
	AgendaID       string              `json:"agenda_id" bson:"agenda_id"`
	DoctorID       string              `json:"doctor_id" bson:"doctor_id"`
	PatientID      string              `json:"patient_id" bson:"patient_id"`
	Date           string              `json:"date" bson:"date"`
	TimeSlot       string              `json:"time_slot" bson:"time_slot"`
	Status         AppointmentStatus   `json:"status" bson:"status"`
	Notes          string              `json:"notes,omitempty" bson:"notes,omitempty"`
	ProcedureLines []ProcedureLineItem `json:"procedure_lines,omitempty" bson:"procedure_lines,omitempty"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}
