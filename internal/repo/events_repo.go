package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/devevents/internal/domain/event"
	"github.com/geocoder89/devevents/internal/observability"
	"github.com/geocoder89/devevents/internal/store"
)

const (
	DefaultListLimit    = 20
	DefaultSimilarLimit = 3
)

type EventsRepo struct {
	gw   store.Gateway
	prom *observability.Prom
}

func NewEventsRepo(gw store.Gateway, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		gw:   gw,
		prom: prom,
	}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create runs the full write pipeline on a fresh event and inserts it.
func (r *EventsRepo) Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	e := event.NewFromCreateRequest(req)

	if err := event.Prepare(&e, event.AllFields); err != nil {
		return event.Event{}, err
	}

	err := r.observe("events.create", func() error {
		return r.gw.Insert(ctx, event.Collection, e)
	})

	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return event.Event{}, fmt.Errorf("%w: %q", event.ErrDuplicateSlug, e.Slug)
		}
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return e, nil
}

// Update patches the event stored under slug. Only fields whose value
// actually changes go through normalization, so an untouched title keeps its
// slug and untouched date/time keep their stored form.
func (r *EventsRepo) Update(ctx context.Context, slug string, req event.UpdateEventRequest) (event.Event, error) {
	current, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return event.Event{}, err
	}

	next := current.Clone()
	changed := req.Apply(&next)

	if changed.Empty() {
		return current, nil
	}

	if err := event.Prepare(&next, changed); err != nil {
		return event.Event{}, err
	}

	next.UpdatedAt = time.Now().UTC()

	err = r.observe("events.update", func() error {
		return r.gw.Replace(ctx, event.Collection, next)
	})

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, store.ErrDuplicateKey):
		return event.Event{}, fmt.Errorf("%w: %q", event.ErrDuplicateSlug, next.Slug)
	case errors.Is(err, store.ErrNoDocument):
		return event.Event{}, event.ErrNotFound
	default:
		return event.Event{}, fmt.Errorf("replace event: %w", err)
	}
}

func (r *EventsRepo) GetBySlug(ctx context.Context, slug string) (event.Event, error) {
	var e event.Event

	err := r.observe("events.get_by_slug", func() error {
		return r.gw.FindOne(ctx, event.Collection, store.Where(store.Eq("slug", slug)), &e)
	})

	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("find event %q: %w", slug, err)
	}

	return e, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var e event.Event

	err := r.observe("events.get_by_id", func() error {
		return r.gw.FindByID(ctx, event.Collection, id, &e)
	})

	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("find event %s: %w", id, err)
	}

	return e, nil
}

// Exists reports whether an event with id is stored.
func (r *EventsRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, event.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// List returns events newest first.
func (r *EventsRepo) List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, error) {
	var f store.Filter
	if filter.Tag != nil {
		f = store.Where(store.AnyOf("tags", []string{*filter.Tag}))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	out := make([]event.Event, 0)

	err := r.observe("events.list", func() error {
		return r.gw.Find(ctx, event.Collection, f, store.FindOptions{SortBy: "createdAt", Desc: true, Limit: limit}, &out)
	})

	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return out, nil
}

// Similar returns events sharing at least one tag with e, excluding e.
func (r *EventsRepo) Similar(ctx context.Context, e event.Event, limit int) ([]event.Event, error) {
	out := make([]event.Event, 0)

	if len(e.Tags) == 0 {
		return out, nil
	}

	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	f := store.Where(
		store.AnyOf("tags", e.Tags),
		store.Ne(store.IDField, e.ID),
	)

	err := r.observe("events.similar", func() error {
		return r.gw.Find(ctx, event.Collection, f, store.FindOptions{SortBy: "createdAt", Desc: true, Limit: limit}, &out)
	})

	if err != nil {
		return nil, fmt.Errorf("similar events: %w", err)
	}

	return out, nil
}
