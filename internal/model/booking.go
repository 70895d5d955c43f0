package model

import "time"

// Booking statuses. Only "cancelled" has transactional effect: it
// releases the slots the booking holds on its availability date.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking types offered by the dive centre.
const (
	TypeDive     = "dive"
	TypeCourse   = "course"
	TypeDiscover = "discover"
	TypeAdvanced = "advanced"
)

// ValidStatus reports whether s is one of the known booking statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// ValidBookingType reports whether t is one of the known booking types.
func ValidBookingType(t string) bool {
	return t == TypeDive || t == TypeCourse || t == TypeDiscover || t == TypeAdvanced
}

// Booking records a single customer's reservation request against one
// calendar date. Participants is the number of slots the booking
// consumes on that date.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – customer name.
//  Email           – customer email.
//  Phone           – customer phone number.
//  PreferredDate   – day being booked, normalized to YYYY-MM-DD.
//  Participants    – slot count this booking consumes (>= 1).
//  BookingType     – dive, course, discover or advanced.
//  CourseID        – course reference, required for course bookings.
//  DiveSiteID      – dive site reference, required for dive-type bookings.
//  SpecialRequests – free-text customer notes.
//  Status          – pending, confirmed or cancelled.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64    `json:"id"`               // bookings.id
	Name            string    `json:"name"`             // bookings.name
	Email           string    `json:"email"`            // bookings.email
	Phone           string    `json:"phone"`            // bookings.phone
	PreferredDate   string    `json:"preferred_date"`   // bookings.preferred_date (DATE)
	Participants    int       `json:"participants"`     // bookings.participants
	BookingType     string    `json:"booking_type"`     // bookings.booking_type
	CourseID        *string   `json:"course_id"`        // bookings.course_id (nullable)
	DiveSiteID      *string   `json:"dive_site_id"`     // bookings.dive_site_id (nullable)
	SpecialRequests *string   `json:"special_requests"` // bookings.special_requests (nullable)
	Status          string    `json:"status"`           // bookings.status
	CreatedAt       time.Time `json:"created_at"`       // bookings.created_at
	UpdatedAt       time.Time `json:"updated_at"`       // bookings.updated_at
}

// BookingHistory is an append-only audit record of a booking's
// lifecycle events. Rows are never mutated; they disappear only via
// cascade when the parent booking is hard-deleted.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – parent booking.
//  Action    – "created" or "status_changed".
//  OldStatus – status before the event (null for "created").
//  NewStatus – status after the event.
//  Notes     – optional free-text note.
//  CreatedAt – event timestamp.
type BookingHistory struct {
	ID        uint64    `json:"id"`         // booking_history.id
	BookingID uint64    `json:"booking_id"` // booking_history.booking_id
	Action    string    `json:"action"`     // booking_history.action
	OldStatus *string   `json:"old_status"` // booking_history.old_status (nullable)
	NewStatus string    `json:"new_status"` // booking_history.new_status
	Notes     *string   `json:"notes"`      // booking_history.notes (nullable)
	CreatedAt time.Time `json:"created_at"` // booking_history.created_at
}

// History actions.
const (
	ActionCreated       = "created"
	ActionStatusChanged = "status_changed"
)
