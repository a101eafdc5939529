package event

import (
	"errors"
	"slices"
	"time"
)

// Collection is the document collection events live in.
const Collection = "events"

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

type Event struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title" validate:"required,min=3,max=200"`
	Slug        string    `json:"slug" bson:"slug"`
	Description string    `json:"description" bson:"description" validate:"required,min=10,max=1000"`
	Overview    string    `json:"overview" bson:"overview" validate:"required,max=500"`
	Image       string    `json:"image" bson:"image" validate:"required"`
	Venue       string    `json:"venue" bson:"venue" validate:"required"`
	Location    string    `json:"location" bson:"location" validate:"required"`
	Date        string    `json:"date" bson:"date" validate:"required"`
	Time        string    `json:"time" bson:"time" validate:"required"`
	Mode        Mode      `json:"mode" bson:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string    `json:"audience" bson:"audience" validate:"required"`
	Agenda      []string  `json:"agenda" bson:"agenda" validate:"required,min=1,dive,required"`
	Organizer   string    `json:"organizer" bson:"organizer" validate:"required"`
	Tags        []string  `json:"tags" bson:"tags" validate:"required,min=1,dive,required"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (e Event) DocumentID() string { return e.ID }

// Clone returns a copy that shares no slices with e.
func (e Event) Clone() Event {
	e.Agenda = slices.Clone(e.Agenda)
	e.Tags = slices.Clone(e.Tags)
	return e
}

type ListEventsFilter struct {
	Tag   *string
	Limit int
}

var (
	ErrNotFound      = errors.New("event not found")
	ErrDuplicateSlug = errors.New("an event with this slug already exists")
)

type CreateEventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Overview    string   `json:"overview"`
	Image       string   `json:"image"`
	Venue       string   `json:"venue"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Mode        Mode     `json:"mode"`
	Audience    string   `json:"audience"`
	Agenda      []string `json:"agenda"`
	Organizer   string   `json:"organizer"`
	Tags        []string `json:"tags"`
}

// UpdateEventRequest is a partial update; nil fields are left alone.
type UpdateEventRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Overview    *string   `json:"overview"`
	Image       *string   `json:"image"`
	Venue       *string   `json:"venue"`
	Location    *string   `json:"location"`
	Date        *string   `json:"date"`
	Time        *string   `json:"time"`
	Mode        *Mode     `json:"mode"`
	Audience    *string   `json:"audience"`
	Agenda      *[]string `json:"agenda"`
	Organizer   *string   `json:"organizer"`
	Tags        *[]string `json:"tags"`
}
