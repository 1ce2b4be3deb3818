package constvars

const (
	SubmitSearchSlotsSuccessMessage   = "slot search accepted, result will be delivered to the callback"
	SubmitCreateBookingSuccessMessage = "booking request accepted, result will be delivered to the callback"
	SubmitConfirmSuccessMessage       = "confirmation request accepted"
	SubmitCancelSuccessMessage        = "cancellation request accepted"
)

// Terminal callback messages, one per job kind.
const (
	SearchSlotsCompletedMessage   = "slot search completed"
	CreateBookingCompletedMessage = "booking created"
	ConfirmCompletedMessage       = "booking confirmed"
	CancelCompletedMessage        = "booking cancelled"
	JobFailedMessage              = "the request could not be processed, please try again later"
)

const (
	ListBookingBlocksSuccessMessage = "booking blocks retrieved"
)
