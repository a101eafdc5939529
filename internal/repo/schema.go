package repo

import (
	"github.com/geocoder89/devevents/internal/domain/booking"
	"github.com/geocoder89/devevents/internal/domain/event"
	"github.com/geocoder89/devevents/internal/store"
)

// Schema is the index set every store driver is opened with.
func Schema() store.Schema {
	return store.Schema{
		event.Collection: {
			{Name: "events_slug_unique", Fields: []string{"slug"}, Unique: true},
		},
		booking.Collection: {
			{Name: "bookings_event_id", Fields: []string{"eventId"}},
			// not unique: repeat bookings for the same email are allowed
			{Name: "bookings_event_email", Fields: []string{"eventId", "email"}},
		},
	}
}
