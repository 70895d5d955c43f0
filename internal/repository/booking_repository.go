package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/azure-divers/booking-api/internal/model"
)

// BookingRepo provides CRUD operations for bookings. Mutating methods
// come in ...Tx variants taking a *sql.Tx so the service layer controls
// transaction boundaries; the repo itself never commits or rolls back.
// All timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, name, email, phone, preferred_date, participants, booking_type,
	   course_id, dive_site_id, special_requests, status, created_at, updated_at`

// GetForUpdateTx reads a booking row under an exclusive row lock
// (SELECT ... FOR UPDATE) inside the given transaction, serializing
// concurrent status updates and deletes against the same booking.
// Returns sql.ErrNoRows when the booking does not exist.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id)
	return scanBooking(row)
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID on the provided record.
// The caller must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (name, email, phone, preferred_date, participants, booking_type,
			   course_id, dive_site_id, special_requests, status)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.Name, b.Email, b.Phone, b.PreferredDate, b.Participants, b.BookingType,
		b.CourseID, b.DiveSiteID, b.SpecialRequests, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// UpdateStatusTx sets a booking's status and bumps updated_at within
// the given transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = NOW() WHERE id = ?`, status, id)
	return err
}

// DeleteTx hard-deletes a booking within the given transaction. The
// cascading foreign key on booking_history removes the audit rows.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}

// GetByID returns a single booking without locking. Returns
// sql.ErrNoRows when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// List returns bookings ordered newest first, optionally filtered by
// status, paginated by limit/offset. Plain reads, no locking.
func (r *BookingRepo) List(ctx context.Context, status string, limit, offset int) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings`
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

	out := make([]model.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBookingRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan path.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row *sql.Row) (*model.Booking, error)      { return scanBookingFrom(row) }
func scanBookingRows(rows *sql.Rows) (*model.Booking, error) { return scanBookingFrom(rows) }

func scanBookingFrom(s rowScanner) (*model.Booking, error) {
	var b model.Booking
	var day time.Time
	var courseID, diveSiteID, special sql.NullString
	err := s.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &day, &b.Participants, &b.BookingType,
		&courseID, &diveSiteID, &special, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.PreferredDate = day.Format(dayFormat)
	if courseID.Valid {
		v := courseID.String
		b.CourseID = &v
	}
	if diveSiteID.Valid {
		v := diveSiteID.String
		b.DiveSiteID = &v
	}
	if special.Valid {
		v := special.String
		b.SpecialRequests = &v
	}
	return &b, nil
}
