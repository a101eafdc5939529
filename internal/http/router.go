package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/devevents/internal/auth"
	"github.com/geocoder89/devevents/internal/http/handlers"
	"github.com/geocoder89/devevents/internal/http/middlewares"
	"github.com/geocoder89/devevents/internal/notifications"
	"github.com/geocoder89/devevents/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "devevents-api"

// Deps is everything the router needs from the composition root.
type Deps struct {
	Env            string
	Log            *slog.Logger
	Events         handlers.EventsStore
	Bookings       handlers.BookingsStore
	Ping           func(ctx context.Context) error
	Tokens         middlewares.TokenVerifier
	Notifier       notifications.Notifier
	WriteLimiter   middlewares.Limiter
	AllowedOrigins []string

	// Prom and Gatherer default to a fresh registry when nil.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	if d.Prom == nil {
		reg := prometheus.NewRegistry()
		d.Prom = observability.NewProm(reg)
		d.Gatherer = reg
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.AllowedOrigins))
	r.Use(d.Prom.GinHandleMiddleware())

	// health
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	eventsHandler := handlers.NewEventsHandler(d.Events)
	bookingsHandler := handlers.NewBookingsHandler(d.Bookings, d.Events, d.Notifier, d.Prom)

	// reads
	r.GET("/events", eventsHandler.ListEvents)
	r.GET("/events/:slug", eventsHandler.GetEventBySlug)
	r.GET("/events/:slug/similar", eventsHandler.SimilarEvents)
	r.GET("/events/:slug/bookings/count", bookingsHandler.CountForEvent)

	// writes
	writes := r.Group("/")
	writes.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBody))
	writes.Use(middlewares.RequireJSON())

	writeLimit := func(key func(*gin.Context) string) gin.HandlerFunc {
		if d.WriteLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middlewares.RateLimit(d.WriteLimiter, key, d.Prom)
	}

	writes.POST("/bookings", writeLimit(middlewares.KeyByIP), bookingsHandler.CreateBooking)

	authMW := middlewares.NewAuthMiddleware(d.Tokens)
	admin := writes.Group("/")
	admin.Use(authMW.RequireAuth(), authMW.RequireRole(auth.RoleAdmin), writeLimit(middlewares.KeyBySubjectOrIP))

	admin.POST("/events", eventsHandler.CreateEvent)
	admin.PATCH("/events/:slug", eventsHandler.UpdateEvent)

	return r
}
