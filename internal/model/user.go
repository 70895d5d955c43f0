package model

import "time"

// RoleAdmin is the only role the API issues today. Booking creation,
// availability reads and the contact form are public; everything else
// is staff-only.
const RoleAdmin = "ADMIN"

// User represents a staff account as stored in the `users` table.
// Only the bcrypt hash of the password is persisted.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (ADMIN).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
