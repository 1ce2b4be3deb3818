package contracts

import "context"

// NotificationSender delivers confirmation and cancellation notices to the
// patient's channel. Implemented by an external messaging provider adapter.
type NotificationSender interface {
	SendBookingNotice(ctx context.Context, input *SendBookingNoticeInput) error
}

type SendBookingNoticeInput struct {
	PatientID   string
	BookingID   string
	ChannelID   string
	ChannelType string
	Message     string
}
