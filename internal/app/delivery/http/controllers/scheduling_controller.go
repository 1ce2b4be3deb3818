package controllers

import (
	"errors"
	"net/http"
	"sync"

	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/requests"
	"citamed-service/internal/pkg/exceptions"
	"citamed-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type SchedulingController struct {
	Log     *zap.Logger
	Usecase contracts.SchedulingUsecase
	Blocks  contracts.BlockResolver
}

var (
	schedulingControllerInstance *SchedulingController
	onceSchedulingController     sync.Once
)

func NewSchedulingController(logger *zap.Logger, usecase contracts.SchedulingUsecase, blocks contracts.BlockResolver) *SchedulingController {
	onceSchedulingController.Do(func() {
		schedulingControllerInstance = &SchedulingController{Log: logger, Usecase: usecase, Blocks: blocks}
	})
	return schedulingControllerInstance
}

// SearchSlots handles POST /scheduling/slots/search. The reply is always a
// 202 with a resume token; the result arrives on the callback URL.
func (ctrl *SchedulingController) SearchSlots(w http.ResponseWriter, r *http.Request) {
	var request requests.SearchSlotsRequest
	if !ctrl.decode(w, r, &request) {
		return
	}

	result, err := ctrl.Usecase.SubmitSearchSlots(r.Context(), &request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.SubmitSearchSlotsSuccessMessage, result)
}

// CreateBooking handles POST /scheduling/bookings.
func (ctrl *SchedulingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var request requests.CreateBookingRequest
	if !ctrl.decode(w, r, &request) {
		return
	}

	result, err := ctrl.Usecase.SubmitCreateBooking(r.Context(), &request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.SubmitCreateBookingSuccessMessage, result)
}

// ConfirmBooking handles POST /scheduling/bookings/confirm.
func (ctrl *SchedulingController) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var request requests.ConfirmBookingRequest
	if !ctrl.decode(w, r, &request) {
		return
	}

	result, err := ctrl.Usecase.SubmitConfirmBooking(r.Context(), &request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.SubmitConfirmSuccessMessage, result)
}

// CancelBooking handles POST /scheduling/bookings/cancel.
func (ctrl *SchedulingController) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var request requests.CancelBookingRequest
	if !ctrl.decode(w, r, &request) {
		return
	}

	result, err := ctrl.Usecase.SubmitCancelBooking(r.Context(), &request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.SubmitCancelSuccessMessage, result)
}

// ListBookingBlocks handles GET /scheduling/bookings/blocks. It is the one
// synchronous read: multi-unit bookings are folded into their block
// representative so callers can render one entry per visit.
func (ctrl *SchedulingController) ListBookingBlocks(w http.ResponseWriter, r *http.Request) {
	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(errors.New("patient_id query parameter is required")))
		return
	}

	status := models.AppointmentStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.AppointmentPending
	}

	blocksResult, err := ctrl.Blocks.ResolveBlocks(r.Context(), patientID, status)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ListBookingBlocksSuccessMessage, blocksResult)
}

// decode parses and validates the request body, writing the error response
// itself when either step fails.
func (ctrl *SchedulingController) decode(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return false
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return false
	}
	return true
}
