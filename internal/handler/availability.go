package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/azure-divers/booking-api/internal/repository"
)

// AvailabilityHandler exposes read-only availability lookups for the
// booking form's date picker. Responses here are good candidates for
// the Redis response cache since counters change only on bookings.
type AvailabilityHandler struct {
	Repo *repository.AvailabilityRepo
}

func NewAvailabilityHandler(repo *repository.AvailabilityRepo) *AvailabilityHandler {
	if repo == nil {
		panic("nil repository passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Repo: repo}
}

const dayLayout = "2006-01-02"

// ListRange handles GET /api/availability?startDate=&endDate=.
// Defaults to the next 30 days when no range is given.
func (h *AvailabilityHandler) ListRange(c echo.Context) error {
	now := time.Now().UTC()
	start := now.Format(dayLayout)
	end := now.AddDate(0, 0, 30).Format(dayLayout)

	if v := c.QueryParam("startDate"); v != "" {
		t, err := time.Parse(dayLayout, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate must be in YYYY-MM-DD format"})
		}
		start = t.Format(dayLayout)
	}
	if v := c.QueryParam("endDate"); v != "" {
		t, err := time.Parse(dayLayout, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "endDate must be in YYYY-MM-DD format"})
		}
		end = t.Format(dayLayout)
	}
	if start > end {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate must not be after endDate"})
	}

	days, err := h.Repo.ListRange(c.Request().Context(), start, end)
	if err != nil {
		log.Printf("handler: list availability failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"startDate":    start,
		"endDate":      end,
		"availability": days,
	})
}

// GetByDate handles GET /api/availability/date/:date.
func (h *AvailabilityHandler) GetByDate(c echo.Context) error {
	t, err := time.Parse(dayLayout, c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be in YYYY-MM-DD format"})
	}
	day := t.Format(dayLayout)

	a, err := h.Repo.GetByDate(c.Request().Context(), day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no availability for this date"})
		}
		log.Printf("handler: get availability failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{"availability": a})
}
