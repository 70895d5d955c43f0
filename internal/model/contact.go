package model

import "time"

// Contact stores a contact-form submission. These are informational
// only and never touch the booking transaction path.
type Contact struct {
	ID        uint64    `json:"id"`              // contacts.id
	Name      string    `json:"name"`            // contacts.name
	Email     string    `json:"email"`           // contacts.email
	Phone     *string   `json:"phone"`           // contacts.phone (nullable)
	Subject   *string   `json:"subject"`         // contacts.subject (nullable)
	Message   string    `json:"message"`         // contacts.message
	Status    string    `json:"status"`          // contacts.status (default "new")
	CreatedAt time.Time `json:"created_at"`      // contacts.created_at
	UpdatedAt time.Time `json:"updated_at"`      // contacts.updated_at
}
