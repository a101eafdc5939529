package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/geocoder89/devevents/internal/domain/event"
	"github.com/geocoder89/devevents/internal/observability"
	"github.com/geocoder89/devevents/internal/store"
	"github.com/geocoder89/devevents/internal/store/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) (*EventsRepo, *BookingsRepo, store.Gateway) {
	t.Helper()

	gw := memory.New(Schema())
	prom := observability.NewProm(prometheus.NewRegistry())

	events := NewEventsRepo(gw, prom)
	bookings := NewBookingsRepo(gw, events, prom)

	return events, bookings, gw
}

func createReq(title string, tags ...string) event.CreateEventRequest {
	if len(tags) == 0 {
		tags = []string{"go"}
	}

	return event.CreateEventRequest{
		Title:       title,
		Description: "An evening of talks for people who build things.",
		Overview:    "Talks and networking.",
		Image:       "/images/event.png",
		Venue:       "Hall A",
		Location:    "Berlin, DE",
		Date:        "2025-06-13",
		Time:        "18:00",
		Mode:        event.ModeOffline,
		Audience:    "Developers",
		Agenda:      []string{"Doors open", "Talks"},
		Organizer:   "Berlin Go Meetup",
		Tags:        tags,
	}
}

func mustCreate(t *testing.T, r *EventsRepo, req event.CreateEventRequest) event.Event {
	t.Helper()

	e, err := r.Create(context.Background(), req)
	require.NoError(t, err)
	return e
}

// unavailableGateway fails every call the way a driver does when the
// database cannot be reached.
type unavailableGateway struct{ store.Gateway }

func (unavailableGateway) err() error { return fmt.Errorf("%w: dial tcp: refused", store.ErrUnavailable) }

func (g unavailableGateway) FindOne(context.Context, string, store.Filter, any) error { return g.err() }
func (g unavailableGateway) FindByID(context.Context, string, string, any) error     { return g.err() }
func (g unavailableGateway) Insert(context.Context, string, store.Document) error    { return g.err() }
func (g unavailableGateway) EnsureIndexes(context.Context, string, []store.Index) error {
	return g.err()
}
func (g unavailableGateway) Count(context.Context, string, store.Filter) (int64, error) {
	return 0, g.err()
}
func (g unavailableGateway) Find(context.Context, string, store.Filter, store.FindOptions, any) error {
	return g.err()
}
