package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/devevents/internal/domain/event"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

type EventsStore interface {
	Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	Update(ctx context.Context, slug string, req event.UpdateEventRequest) (event.Event, error)
	GetBySlug(ctx context.Context, slug string) (event.Event, error)
	List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, error)
	Similar(ctx context.Context, e event.Event, limit int) ([]event.Event, error)
}

type EventsHandler struct {
	repo EventsStore
}

func NewEventsHandler(repo EventsStore) *EventsHandler {
	return &EventsHandler{repo: repo}
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	var req event.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	e, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondRepoError(ctx, err, "Could not create event")
		return
	}

	ctx.Header("Location", "/events/"+e.Slug)
	ctx.JSON(http.StatusCreated, e)
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	slug, ok := slugParam(ctx)
	if !ok {
		return
	}

	var req event.UpdateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	e, err := h.repo.Update(cctx, slug, req)
	if err != nil {
		RespondRepoError(ctx, err, "Could not update event")
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	limit, ok := intQuery(ctx, "limit", 20, 1, 100)
	if !ok {
		return
	}

	filter := event.ListEventsFilter{Limit: limit}

	if tag := strings.TrimSpace(ctx.Query("tag")); tag != "" {
		filter.Tag = &tag
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	events, err := h.repo.List(cctx, filter)
	if err != nil {
		RespondRepoError(ctx, err, "Could not list events")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": events,
		"count": len(events),
	})
}

func (h *EventsHandler) GetEventBySlug(ctx *gin.Context) {
	slug, ok := slugParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	e, err := h.repo.GetBySlug(cctx, slug)
	if err != nil {
		RespondRepoError(ctx, err, "Could not fetch event")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

func (h *EventsHandler) SimilarEvents(ctx *gin.Context) {
	slug, ok := slugParam(ctx)
	if !ok {
		return
	}

	limit, ok := intQuery(ctx, "limit", 3, 1, 20)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	e, err := h.repo.GetBySlug(cctx, slug)
	if err != nil {
		RespondRepoError(ctx, err, "Could not fetch event")
		return
	}

	similar, err := h.repo.Similar(cctx, e, limit)
	if err != nil {
		RespondRepoError(ctx, err, "Could not fetch similar events")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": similar,
		"count": len(similar),
	})
}
