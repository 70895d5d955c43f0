package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/azure-divers/booking-api/internal/config"
	"github.com/azure-divers/booking-api/internal/handler"
	"github.com/azure-divers/booking-api/internal/middleware"
	"github.com/azure-divers/booking-api/internal/model"
)

// Handlers bundles everything RegisterRoutes needs to wire the API.
type Handlers struct {
	Bookings     *handler.BookingHandler
	Availability *handler.AvailabilityHandler
	Contacts     *handler.ContactHandler
	Auth         *handler.AuthHandler
}

// RegisterRoutes registers the full route table on the provided Echo
// instance.
//
// Public (rate limited): booking creation, availability reads, the
// contact form and auth login. Admin (JWT + ADMIN role): booking
// management and the contact inbox. The health check sits outside the
// /api group so probes bypass the rate limiter entirely.
//
// rdb may be nil, in which case the rate limiter and the response
// cache become passthroughs and the API serves straight from MySQL.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Availability reads are the hottest endpoints (the booking form's
	// date picker polls them), so they go through the Redis response cache.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	api.GET("/availability", h.Availability.ListRange, cache)
	api.GET("/availability/date/:date", h.Availability.GetByDate, cache)

	api.POST("/bookings", h.Bookings.Create)
	api.POST("/contacts", h.Contacts.Create)

	api.POST("/auth/login", h.Auth.Login)

	// Everything below requires a valid staff token.
	admin := api.Group("")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))

	admin.GET("/auth/me", h.Auth.Me)

	staff := admin.Group("", middleware.RequireRole(model.RoleAdmin))
	staff.GET("/bookings", h.Bookings.List)
	staff.GET("/bookings/:id", h.Bookings.GetByID)
	staff.GET("/bookings/:id/history", h.Bookings.History)
	staff.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus)
	staff.DELETE("/bookings/:id", h.Bookings.Delete)
	staff.GET("/contacts", h.Contacts.List)
}
