package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/devevents/internal/domain/booking"
	"github.com/geocoder89/devevents/internal/domain/event"
	"github.com/geocoder89/devevents/internal/domain/schema"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondRepoError maps repository errors onto the API envelope. Anything
// unrecognized is logged and reported as a 500 with fallback as message.
func RespondRepoError(ctx *gin.Context, err error, fallback string) {
	var verr *schema.ValidationError

	switch {
	case errors.As(err, &verr):
		RespondError(ctx, http.StatusBadRequest, "validation_failed", "Validation failed", gin.H{"fields": verr.Fields})
	case errors.Is(err, schema.ErrInvalidDateFormat):
		RespondError(ctx, http.StatusBadRequest, "invalid_date", "date could not be parsed", gin.H{"field": "date"})
	case errors.Is(err, schema.ErrInvalidTimeFormat):
		RespondError(ctx, http.StatusBadRequest, "invalid_time", "time must be HH:MM or h:MM AM/PM", gin.H{"field": "time"})
	case errors.Is(err, event.ErrDuplicateSlug):
		RespondConflict(ctx, "duplicate_slug", "An event with this title already exists")
	case errors.Is(err, event.ErrNotFound):
		RespondNotFound(ctx, "Event not found")
	case errors.Is(err, booking.ErrDanglingReference):
		RespondError(ctx, http.StatusNotFound, "event_not_found", "The event for this booking does not exist", nil)
	default:
		_ = ctx.Error(err)
		slog.Default().ErrorContext(ctx.Request.Context(), fallback, "err", err)
		RespondInternal(ctx, fallback)
	}
}
