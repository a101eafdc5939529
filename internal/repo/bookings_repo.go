package repo

import (
	"context"
	"fmt"

	"github.com/geocoder89/devevents/internal/domain/booking"
	"github.com/geocoder89/devevents/internal/observability"
	"github.com/geocoder89/devevents/internal/store"
)

// EventLookup answers whether a booking's event exists.
type EventLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type BookingsRepo struct {
	gw     store.Gateway
	events EventLookup
	prom   *observability.Prom
}

func NewBookingsRepo(gw store.Gateway, events EventLookup, prom *observability.Prom) *BookingsRepo {
	return &BookingsRepo{
		gw:     gw,
		events: events,
		prom:   prom,
	}
}

func (r *BookingsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create validates the booking, checks that its event exists and inserts it.
// The existence check and the insert are separate store calls, so an event
// removed in between is not detected.
func (r *BookingsRepo) Create(ctx context.Context, req booking.CreateBookingRequest) (booking.Booking, error) {
	b := booking.NewFromCreateRequest(req)

	if err := booking.Prepare(&b); err != nil {
		return booking.Booking{}, err
	}

	ok, err := r.events.Exists(ctx, b.EventID)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("check event %s: %w", b.EventID, err)
	}
	if !ok {
		return booking.Booking{}, fmt.Errorf("%w: %s", booking.ErrDanglingReference, b.EventID)
	}

	err = r.observe("bookings.create", func() error {
		return r.gw.Insert(ctx, booking.Collection, b)
	})
	if err != nil {
		return booking.Booking{}, fmt.Errorf("insert booking: %w", err)
	}

	return b, nil
}

func (r *BookingsRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64

	err := r.observe("bookings.count_by_event", func() error {
		var err error
		n, err = r.gw.Count(ctx, booking.Collection, store.Where(store.Eq("eventId", eventID)))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return n, nil
}
