package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/azure-divers/booking-api/internal/model"
)

// AvailabilityRepo provides access to the per-date capacity counters.
// The booking service is the only writer; rows themselves are
// provisioned by the dbinit seeding. All dates are day-granularity
// strings in YYYY-MM-DD form.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo returns a new AvailabilityRepo bound to the given database.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

const dayFormat = "2006-01-02"

// GetByDateForUpdateTx reads the availability row for a date under an
// exclusive row lock (SELECT ... FOR UPDATE) inside the given
// transaction. The lock is held until the transaction commits or rolls
// back and serializes every concurrent capacity check against the same
// date. Returns sql.ErrNoRows when no row is provisioned for the date.
func (r *AvailabilityRepo) GetByDateForUpdateTx(ctx context.Context, tx *sql.Tx, date string) (*model.Availability, error) {
	const q = `SELECT id, date, total_slots, booked_slots, notes, created_at, updated_at
			   FROM availability WHERE date = ? FOR UPDATE`
	var a model.Availability
	var day time.Time
	var notes sql.NullString
	err := tx.QueryRowContext(ctx, q, date).Scan(
		&a.ID, &day, &a.TotalSlots, &a.BookedSlots, &notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Date = day.Format(dayFormat)
	a.AvailableSlots = a.TotalSlots - a.BookedSlots
	if notes.Valid {
		n := notes.String
		a.Notes = &n
	}
	return &a, nil
}

// AddBookedSlotsTx adjusts booked_slots for a date by delta (positive
// to reserve, negative to release) within the given transaction. The
// caller must already hold the row lock when the adjustment depends on
// a capacity check.
func (r *AvailabilityRepo) AddBookedSlotsTx(ctx context.Context, tx *sql.Tx, date string, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE availability SET booked_slots = booked_slots + ? WHERE date = ?`,
		delta, date)
	return err
}

// GetByDate returns the availability row for a single date without
// locking. Returns sql.ErrNoRows when the date is not provisioned.
func (r *AvailabilityRepo) GetByDate(ctx context.Context, date string) (*model.Availability, error) {
	const q = `SELECT id, date, total_slots, booked_slots, available_slots, notes, created_at, updated_at
			   FROM availability WHERE date = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, date))
}

// ListRange returns the availability rows for dates in [start, end],
// ordered by date ascending. Plain reads, no locking.
func (r *AvailabilityRepo) ListRange(ctx context.Context, start, end string) ([]model.Availability, error) {
	const q = `SELECT id, date, total_slots, booked_slots, available_slots, notes, created_at, updated_at
			   FROM availability WHERE date BETWEEN ? AND ? ORDER BY date`
	rows, err := r.db.QueryContext(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Availability, 0)
	for rows.Next() {
		var a model.Availability
		var day time.Time
		var notes sql.NullString
		if err := rows.Scan(&a.ID, &day, &a.TotalSlots, &a.BookedSlots, &a.AvailableSlots,
			&notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Date = day.Format(dayFormat)
		if notes.Valid {
			n := notes.String
			a.Notes = &n
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AvailabilityRepo) scanOne(row *sql.Row) (*model.Availability, error) {
	var a model.Availability
	var day time.Time
	var notes sql.NullString
	err := row.Scan(&a.ID, &day, &a.TotalSlots, &a.BookedSlots, &a.AvailableSlots,
		&notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Date = day.Format(dayFormat)
	if notes.Valid {
		n := notes.String
		a.Notes = &n
	}
	return &a, nil
}
