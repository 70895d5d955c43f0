package repository

import (
	"context"
	"database/sql"

	"github.com/azure-divers/booking-api/internal/model"
)

// ContactRepo stores contact-form submissions. Contacts never interact
// with the booking transaction path.
type ContactRepo struct {
	db *sql.DB
}

// NewContactRepo returns a new ContactRepo bound to the given database.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts a submission and returns its generated ID.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) (uint64, error) {
	const q = `INSERT INTO contacts (name, email, phone, subject, message) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Email, c.Phone, c.Subject, c.Message)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns submissions newest first, optionally filtered by status.
func (r *ContactRepo) List(ctx context.Context, status string, limit, offset int) ([]model.Contact, error) {
	q := `SELECT id, name, email, phone, subject, message, status, created_at, updated_at FROM contacts`
	args := make([]interface{}, 0, 3)
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Contact, 0, limit)
	for rows.Next() {
		var c model.Contact
		var phone, subject sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &phone, &subject, &c.Message,
			&c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if phone.Valid {
			v := phone.String
			c.Phone = &v
		}
		if subject.Valid {
			v := subject.String
			c.Subject = &v
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
