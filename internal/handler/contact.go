package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/azure-divers/booking-api/internal/model"
	"github.com/azure-divers/booking-api/internal/repository"
	"github.com/azure-divers/booking-api/internal/service"
)

// ContactHandler handles the public contact form and the admin inbox
// listing. Submissions are plain inserts, so validation lives here
// rather than in a service.
type ContactHandler struct {
	Repo *repository.ContactRepo
}

func NewContactHandler(repo *repository.ContactRepo) *ContactHandler {
	if repo == nil {
		panic("nil repository passed to NewContactHandler")
	}
	return &ContactHandler{Repo: repo}
}

type contactRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Subject *string `json:"subject"`
	Message string  `json:"message"`
}

func validateContact(in contactRequest) []service.FieldError {
	var errs []service.FieldError
	if n := len(strings.TrimSpace(in.Name)); n < 2 || n > 255 {
		errs = append(errs, service.FieldError{Field: "name", Message: "Name must be between 2 and 255 characters"})
	}
	if !service.ValidEmail(in.Email) {
		errs = append(errs, service.FieldError{Field: "email", Message: "A valid email address is required"})
	}
	if in.Phone != nil {
		if n := len(*in.Phone); n < 8 || n > 50 {
			errs = append(errs, service.FieldError{Field: "phone", Message: "Phone must be between 8 and 50 characters"})
		}
	}
	if in.Subject != nil && len(*in.Subject) > 255 {
		errs = append(errs, service.FieldError{Field: "subject", Message: "Subject must be at most 255 characters"})
	}
	if n := len(strings.TrimSpace(in.Message)); n < 10 || n > 5000 {
		errs = append(errs, service.FieldError{Field: "message", Message: "Message must be between 10 and 5000 characters"})
	}
	return errs
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(c echo.Context) error {
	var in contactRequest
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if errs := validateContact(in); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": businessError{
			Message: "Validation failed", Status: http.StatusBadRequest, Details: errs,
		}})
	}

	id, err := h.Repo.Create(c.Request().Context(), &model.Contact{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   in.Phone,
		Subject: in.Subject,
		Message: strings.TrimSpace(in.Message),
	})
	if err != nil {
		log.Printf("handler: create contact failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to submit contact form"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Thank you for contacting us, we will get back to you soon",
		"contactId": id,
	})
}

// List handles GET /api/contacts (admin only).
func (h *ContactHandler) List(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be between 1 and 100"})
		}
		limit = n
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "offset must be a non-negative integer"})
		}
		offset = n
	}

	contacts, err := h.Repo.List(c.Request().Context(), c.QueryParam("status"), limit, offset)
	if err != nil {
		log.Printf("handler: list contacts failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch contacts"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"contacts": contacts,
		"count":    len(contacts),
	})
}
