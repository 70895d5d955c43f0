// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published after a booking transaction commits.
// It carries enough information for downstream consumers (notification
// mailer, analytics) to act without querying the primary database.
type BookingCreatedEvent struct {
	EventID        string `json:"event_id"`
	BookingID      uint64 `json:"booking_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PreferredDate  string `json:"preferred_date"`
	Participants   int    `json:"participants"`
	BookingType    string `json:"booking_type"`
	Status         string `json:"status"`
	AvailableSlots int    `json:"available_slots"`
	CreatedAt      string `json:"created_at"`
}

// BookingStatusChangedEvent is published when a status transition
// commits. No-op updates (same status) do not produce an event.
type BookingStatusChangedEvent struct {
	EventID       string `json:"event_id"`
	BookingID     uint64 `json:"booking_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	PreferredDate string `json:"preferred_date"`
	Participants  int    `json:"participants"`
	ChangedAt     string `json:"changed_at"`
}
