package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/azure-divers/booking-api/internal/model"
	"github.com/azure-divers/booking-api/internal/queue"
	"github.com/azure-divers/booking-api/internal/service"
)

// BookingHandler exposes the booking operations over HTTP. Creation is
// public (the website booking form posts here); list, get, status
// update and delete sit behind admin auth. Expected business outcomes
// arrive from the service as typed errors and are mapped to the
// response codes clients depend on: validation and unprovisioned dates
// are 400, a full date is 409, a missing booking is 404. Unexpected
// failures are logged and surface only as a generic 500.
type BookingHandler struct {
	Svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler. The service must be non-nil.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc}
}

// businessError is the structured error body returned for expected
// business failures, mirroring what the booking form consumes.
type businessError struct {
	Message  string               `json:"message"`
	Status   int                  `json:"status"`
	Details  []service.FieldError `json:"details,omitempty"`
	Metadata echo.Map             `json:"metadata,omitempty"`
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var in service.BookingInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": businessError{
			Message: "Invalid request body", Status: http.StatusBadRequest,
		}})
	}
	if errs := service.ValidateBookingInput(in); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": businessError{
			Message: "Validation failed", Status: http.StatusBadRequest, Details: errs,
		}})
	}

	res, err := h.Svc.Create(c.Request().Context(), in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": businessError{
				Message: "Business rule validation failed", Status: http.StatusBadRequest,
				Details: verr.Fields,
			}})
		}
		if errors.Is(err, service.ErrDateNotAvailable) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": businessError{
				Message: "Date not available for booking", Status: http.StatusBadRequest,
				Details: []service.FieldError{{Field: "preferredDate", Message: "No availability slots for this date"}},
			}})
		}
		var ierr *service.InsufficientSlotsError
		if errors.As(err, &ierr) {
			return c.JSON(http.StatusConflict, echo.Map{"error": businessError{
				Message: "Not enough slots available", Status: http.StatusConflict,
				Details:  []service.FieldError{{Field: "participants", Message: ierr.Error()}},
				Metadata: echo.Map{"available": ierr.Available, "requested": ierr.Requested},
			}})
		}
		log.Printf("handler: create booking failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	day, _, _ := service.NormalizeDay(in.PreferredDate)
	go publishCreated(in, day, res)

	return c.JSON(http.StatusCreated, echo.Map{
		"message":        "Booking created successfully",
		"bookingId":      res.BookingID,
		"availableSlots": res.AvailableSlots,
		"status":         res.Status,
	})
}

// List handles GET /api/bookings with optional ?status=&limit=&offset=.
func (h *BookingHandler) List(c echo.Context) error {
	var f service.ListFilter

	if s := c.QueryParam("status"); s != "" {
		if !model.ValidStatus(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status filter must be pending, confirmed, or cancelled"})
		}
		f.Status = s
	}
	f.Limit = 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be between 1 and 100"})
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "offset must be a non-negative integer"})
		}
		f.Offset = n
	}

	res, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		log.Printf("handler: list bookings failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookings": res.Bookings,
		"count":    res.Count,
		"hasMore":  res.HasMore,
	})
}

// GetByID handles GET /api/bookings/:id.
func (h *BookingHandler) GetByID(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": businessError{
				Message: "Booking not found", Status: http.StatusNotFound,
			}})
		}
		log.Printf("handler: get booking failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// History handles GET /api/bookings/:id/history.
func (h *BookingHandler) History(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	entries, err := h.Svc.History(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": businessError{
				Message: "Booking not found", Status: http.StatusNotFound,
			}})
		}
		log.Printf("handler: booking history failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking history"})
	}
	return c.JSON(http.StatusOK, echo.Map{"history": entries})
}

// UpdateStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be pending, confirmed, or cancelled"})
	}

	res, err := h.Svc.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": businessError{
				Message: "Booking not found", Status: http.StatusNotFound,
			}})
		}
		log.Printf("handler: update booking status failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking status"})
	}

	if !res.Changed {
		return c.JSON(http.StatusOK, echo.Map{
			"message":   "Status already up to date",
			"bookingId": res.BookingID,
			"status":    res.NewStatus,
		})
	}

	go publishStatusChanged(res)

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Booking status updated successfully",
		"bookingId": res.BookingID,
		"oldStatus": res.OldStatus,
		"newStatus": res.NewStatus,
	})
}

// Delete handles DELETE /api/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	res, err := h.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": businessError{
				Message: "Booking not found", Status: http.StatusNotFound,
			}})
		}
		log.Printf("handler: delete booking failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Booking deleted successfully",
		"bookingId": res.BookingID,
	})
}

func bookingID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Events are best-effort and published off the request path after the
// transaction committed; failures are logged inside the publisher.
func publishCreated(in service.BookingInput, day string, res *service.CreateResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = queue.PublishBookingCreated(ctx, queue.BookingCreatedEvent{
		EventID:        uuid.NewString(),
		BookingID:      res.BookingID,
		Name:           in.Name,
		Email:          in.Email,
		PreferredDate:  day,
		Participants:   in.Participants,
		BookingType:    in.BookingType,
		Status:         res.Status,
		AvailableSlots: res.AvailableSlots,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

func publishStatusChanged(res *service.StatusUpdateResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = queue.PublishBookingStatusChanged(ctx, queue.BookingStatusChangedEvent{
		EventID:       uuid.NewString(),
		BookingID:     res.BookingID,
		OldStatus:     res.OldStatus,
		NewStatus:     res.NewStatus,
		PreferredDate: res.PreferredDate,
		Participants:  res.Participants,
		ChangedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}
