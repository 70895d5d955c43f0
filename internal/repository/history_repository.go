package repository

import (
	"context"
	"database/sql"

	"github.com/azure-divers/booking-api/internal/model"
)

// HistoryRepo appends to and reads the booking_history audit log.
// Rows are written once per lifecycle event and never mutated; they are
// removed only by the cascade when the parent booking is deleted.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo returns a new HistoryRepo bound to the given database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// AppendTx inserts one audit row within the given transaction so the
// history entry commits atomically with the state change it records.
func (r *HistoryRepo) AppendTx(ctx context.Context, tx *sql.Tx, h *model.BookingHistory) error {
	const q = `INSERT INTO booking_history (booking_id, action, old_status, new_status, notes)
			   VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, h.BookingID, h.Action, h.OldStatus, h.NewStatus, h.Notes)
	return err
}

// ListByBooking returns all audit rows for a booking, oldest first.
func (r *HistoryRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.BookingHistory, error) {
	const q = `SELECT id, booking_id, action, old_status, new_status, notes, created_at
			   FROM booking_history WHERE booking_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BookingHistory, 0)
	for rows.Next() {
		var h model.BookingHistory
		var oldStatus, notes sql.NullString
		if err := rows.Scan(&h.ID, &h.BookingID, &h.Action, &oldStatus, &h.NewStatus,
			&notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		if oldStatus.Valid {
			v := oldStatus.String
			h.OldStatus = &v
		}
		if notes.Valid {
			v := notes.String
			h.Notes = &v
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
