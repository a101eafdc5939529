package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/devevents/internal/domain/schema"
	"github.com/google/uuid"
)

// Collection is the document collection bookings live in.
const Collection = "bookings"

type Booking struct {
	ID        string    `json:"id" bson:"_id"`
	EventID   string    `json:"eventId" bson:"eventId" validate:"required"`
	Email     string    `json:"email" bson:"email" validate:"required,mailbox"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (b Booking) DocumentID() string { return b.ID }

// ErrDanglingReference means the booking points at an event that does not exist.
var ErrDanglingReference = errors.New("booking references an event that does not exist")

type CreateBookingRequest struct {
	EventID string `json:"eventId"`
	Email   string `json:"email"`
}

// a factory to build a Booking from the incoming DTO
func NewFromCreateRequest(req CreateBookingRequest) Booking {
	now := time.Now().UTC()

	return Booking{
		ID:        uuid.NewString(),
		EventID:   req.EventID,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Prepare normalizes the email and checks field constraints. The event
// reference itself is checked by the write path against the store.
func Prepare(b *Booking) error {
	b.EventID = strings.TrimSpace(b.EventID)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))

	return schema.Validate(b)
}
