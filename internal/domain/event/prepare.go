package event

import (
	"strings"

	"github.com/geocoder89/devevents/internal/domain/schema"
)

// Prepare runs the write pipeline on e, in order:
//
//  1. trim and check static field constraints
//  2. regenerate the slug when the title changed
//  3. normalize the date when it changed
//  4. normalize the time when it changed
//
// e is mutated in place. Any error means e must not be persisted.
func Prepare(e *Event, changed FieldSet) error {
	trimFields(e)

	if err := schema.Validate(e); err != nil {
		return err
	}

	// a title with no slug-able characters stores an empty slug; the unique
	// index still allows only one such event
	if changed.Has(FieldTitle) {
		e.Slug = schema.GenerateSlug(e.Title)
	}

	if changed.Has(FieldDate) {
		date, err := schema.NormalizeDate(e.Date)
		if err != nil {
			return err
		}
		e.Date = date
	}

	if changed.Has(FieldTime) {
		clock, err := schema.NormalizeTime(e.Time)
		if err != nil {
			return err
		}
		e.Time = clock
	}

	return nil
}

func trimFields(e *Event) {
	for _, s := range []*string{
		&e.Title, &e.Description, &e.Overview, &e.Image, &e.Venue,
		&e.Location, &e.Date, &e.Time, &e.Audience, &e.Organizer,
	} {
		*s = strings.TrimSpace(*s)
	}

	e.Mode = Mode(strings.TrimSpace(string(e.Mode)))
	e.Agenda = trimAll(e.Agenda)
	e.Tags = uniqueTags(trimAll(e.Tags))
}

// uniqueTags drops repeated tags, keeping the first occurrence.
func uniqueTags(tags []string) []string {
	if tags == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]

	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
