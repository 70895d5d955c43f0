package model

import "time"

// Availability is the per-date capacity counter. One row exists per
// calendar date; rows are provisioned by the dbinit seeding (or an
// admin process), never by the booking flow itself. The invariant the
// service preserves under concurrency is
//
//	booked_slots == sum(participants of non-cancelled bookings for the date)
//
// and available slots are always total_slots - booked_slots.
//
// Fields:
//  ID             – primary key identifier.
//  Date           – calendar date (unique), normalized to YYYY-MM-DD.
//  TotalSlots     – capacity ceiling for the date.
//  BookedSlots    – participants currently committed.
//  AvailableSlots – generated column: total_slots - booked_slots.
//  Notes          – optional admin note for the date.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Availability struct {
	ID             uint64    `json:"id"`              // availability.id
	Date           string    `json:"date"`            // availability.date (DATE, unique)
	TotalSlots     int       `json:"total_slots"`     // availability.total_slots
	BookedSlots    int       `json:"booked_slots"`    // availability.booked_slots
	AvailableSlots int       `json:"available_slots"` // availability.available_slots (generated)
	Notes          *string   `json:"notes,omitempty"` // availability.notes (nullable)
	CreatedAt      time.Time `json:"created_at"`      // availability.created_at
	UpdatedAt      time.Time `json:"updated_at"`      // availability.updated_at
}
