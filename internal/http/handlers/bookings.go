package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/devevents/internal/domain/booking"
	"github.com/geocoder89/devevents/internal/notifications"
	"github.com/geocoder89/devevents/internal/observability"
	"github.com/gin-gonic/gin"
)

type BookingsStore interface {
	Create(ctx context.Context, req booking.CreateBookingRequest) (booking.Booking, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}

type BookingsHandler struct {
	repo     BookingsStore
	events   EventsStore
	notifier notifications.Notifier
	prom     *observability.Prom
}

// NewBookingsHandler wires the booking routes. notifier and prom may be nil.
func NewBookingsHandler(repo BookingsStore, events EventsStore, notifier notifications.Notifier, prom *observability.Prom) *BookingsHandler {
	return &BookingsHandler{
		repo:     repo,
		events:   events,
		notifier: notifier,
		prom:     prom,
	}
}

func (h *BookingsHandler) CreateBooking(ctx *gin.Context) {
	var req booking.CreateBookingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	b, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondRepoError(ctx, err, "Could not create booking")
		return
	}

	h.confirm(cctx, b)

	ctx.JSON(http.StatusCreated, b)
}

// confirm sends the booking confirmation. The booking is already stored, so
// a failed send is logged and otherwise ignored.
func (h *BookingsHandler) confirm(ctx context.Context, b booking.Booking) {
	if h.notifier == nil {
		return
	}

	err := h.notifier.SendBookingConfirmation(ctx, notifications.BookingConfirmationInput{
		BookingID: b.ID,
		EventID:   b.EventID,
		Email:     b.Email,
	})

	result := "sent"
	switch {
	case errors.Is(err, notifications.ErrCircuitOpen):
		result = "skipped"
	case err != nil:
		result = "failed"
	}

	if err != nil {
		slog.Default().WarnContext(ctx, "booking confirmation not sent", "booking_id", b.ID, "result", result, "err", err)
	}

	if h.prom != nil {
		h.prom.NotificationsTotal.WithLabelValues(result).Inc()
	}
}

func (h *BookingsHandler) CountForEvent(ctx *gin.Context) {
	slug, ok := slugParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	e, err := h.events.GetBySlug(cctx, slug)
	if err != nil {
		RespondRepoError(ctx, err, "Could not fetch event")
		return
	}

	n, err := h.repo.CountByEvent(cctx, e.ID)
	if err != nil {
		RespondRepoError(ctx, err, "Could not count bookings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"eventId": e.ID,
		"count":   n,
	})
}
