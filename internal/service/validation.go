package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/azure-divers/booking-api/internal/model"
)

// BookingInput is the sanitized booking request consumed by Create.
// Handlers bind and structurally validate it (ValidateBookingInput)
// before handing it to the service, which re-checks the business rules
// (validateBusinessRules) on its own.
type BookingInput struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	PreferredDate   string  `json:"preferredDate"`
	Participants    int     `json:"participants"`
	BookingType     string  `json:"bookingType"`
	CourseID        *string `json:"courseId"`
	DiveSiteID      *string `json:"diveSiteId"`
	SpecialRequests *string `json:"specialRequests"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address. Shared by
// the booking and contact form validation.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

const maxParticipants = 20
const maxCourseParticipants = 6

// NormalizeDay parses a date given as YYYY-MM-DD or RFC3339 and returns
// the day-granularity key used by the availability table plus the
// parsed time in UTC.
func NormalizeDay(s string) (string, time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return "", time.Time{}, err
		}
	}
	t = t.UTC()
	return t.Format("2006-01-02"), t, nil
}

// ValidateBookingInput checks structure and basic constraints of a
// booking request. It returns one FieldError per failing field; an
// empty slice means the input is well formed.
func ValidateBookingInput(in BookingInput) []FieldError {
	var errs []FieldError

	if n := len(strings.TrimSpace(in.Name)); n < 2 || n > 255 {
		errs = append(errs, FieldError{"name", "Name must be between 2 and 255 characters"})
	}
	if !ValidEmail(in.Email) {
		errs = append(errs, FieldError{"email", "Valid email address is required"})
	}
	if n := len(strings.TrimSpace(in.Phone)); n < 8 || n > 50 {
		errs = append(errs, FieldError{"phone", "Phone number must be between 8 and 50 characters"})
	}
	if _, _, err := NormalizeDay(in.PreferredDate); err != nil {
		errs = append(errs, FieldError{"preferredDate", "Valid date is required"})
	}
	if in.Participants < 1 || in.Participants > maxParticipants {
		errs = append(errs, FieldError{"participants", "Participants must be between 1 and 20"})
	}
	if !model.ValidBookingType(in.BookingType) {
		errs = append(errs, FieldError{"bookingType", "Valid booking type is required"})
	}
	if in.CourseID != nil && len(*in.CourseID) > 255 {
		errs = append(errs, FieldError{"courseId", "Course ID must not exceed 255 characters"})
	}
	if in.DiveSiteID != nil && len(*in.DiveSiteID) > 255 {
		errs = append(errs, FieldError{"diveSiteId", "Dive site ID must not exceed 255 characters"})
	}
	if in.SpecialRequests != nil && len(*in.SpecialRequests) > 2000 {
		errs = append(errs, FieldError{"specialRequests", "Special requests must not exceed 2000 characters"})
	}
	return errs
}

// validateBusinessRules enforces the booking policies that depend on
// the requested date and type. now is injectable for tests.
func validateBusinessRules(in BookingInput, now time.Time) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(in.PreferredDate) == "" {
		return []FieldError{{"preferredDate", "Preferred date is required"}}
	}
	_, date, err := NormalizeDay(in.PreferredDate)
	if err != nil {
		return []FieldError{{"preferredDate", "Valid date is required"}}
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if date.Before(today) {
		errs = append(errs, FieldError{"preferredDate", "Booking date must be in the future"})
	}
	if date.Before(now.Add(24*time.Hour)) && !date.Before(today) {
		errs = append(errs, FieldError{"preferredDate", "Bookings must be made at least 24 hours in advance"})
	}
	if date.After(now.AddDate(1, 0, 0)) {
		errs = append(errs, FieldError{"preferredDate", "Booking date cannot be more than 1 year in advance"})
	}

	switch in.BookingType {
	case model.TypeCourse:
		if in.CourseID == nil || strings.TrimSpace(*in.CourseID) == "" {
			errs = append(errs, FieldError{"courseId", "Course ID is required for course bookings"})
		}
		if in.Participants > maxCourseParticipants {
			errs = append(errs, FieldError{"participants", "Course bookings are limited to 6 participants maximum"})
		}
	case model.TypeDive, model.TypeDiscover, model.TypeAdvanced:
		if in.DiveSiteID == nil || strings.TrimSpace(*in.DiveSiteID) == "" {
			errs = append(errs, FieldError{"diveSiteId", "Dive site ID is required for dive bookings"})
		}
	}

	if in.BookingType == model.TypeDiscover {
		if wd := date.Weekday(); wd != time.Saturday && wd != time.Sunday {
			errs = append(errs, FieldError{"preferredDate", "Discover scuba sessions are only available on weekends"})
		}
	}

	return errs
}
