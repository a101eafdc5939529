package notifications

import "context"

type BookingConfirmationInput struct {
	BookingID string
	EventID   string
	Email     string
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, input BookingConfirmationInput) error
}
