package event

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds an unvalidated Event; run Prepare before storing it.
func NewFromCreateRequest(req CreateEventRequest) Event {
	now := time.Now().UTC()

	return Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Overview:    req.Overview,
		Image:       req.Image,
		Venue:       req.Venue,
		Location:    req.Location,
		Date:        req.Date,
		Time:        req.Time,
		Mode:        req.Mode,
		Audience:    req.Audience,
		Agenda:      slices.Clone(req.Agenda),
		Organizer:   req.Organizer,
		Tags:        slices.Clone(req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply copies the set fields of req onto e and reports which of them
// actually differ from what e held before.
func (req UpdateEventRequest) Apply(e *Event) FieldSet {
	var changed FieldSet

	setString := func(dst *string, src *string, f FieldSet) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if v != *dst {
			*dst = v
			changed |= f
		}
	}

	setList := func(dst *[]string, src *[]string, f FieldSet) {
		if src == nil {
			return
		}
		v := trimAll(*src)
		if !slices.Equal(v, *dst) {
			*dst = v
			changed |= f
		}
	}

	setString(&e.Title, req.Title, FieldTitle)
	setString(&e.Description, req.Description, FieldDescription)
	setString(&e.Overview, req.Overview, FieldOverview)
	setString(&e.Image, req.Image, FieldImage)
	setString(&e.Venue, req.Venue, FieldVenue)
	setString(&e.Location, req.Location, FieldLocation)
	setString(&e.Date, req.Date, FieldDate)
	setString(&e.Time, req.Time, FieldTime)
	setString(&e.Audience, req.Audience, FieldAudience)
	setString(&e.Organizer, req.Organizer, FieldOrganizer)
	setList(&e.Agenda, req.Agenda, FieldAgenda)
	setList(&e.Tags, req.Tags, FieldTags)

	if req.Mode != nil {
		m := Mode(strings.TrimSpace(string(*req.Mode)))
		if m != e.Mode {
			e.Mode = m
			changed |= FieldMode
		}
	}

	return changed
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
