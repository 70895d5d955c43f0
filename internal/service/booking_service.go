package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/azure-divers/booking-api/internal/model"
	"github.com/azure-divers/booking-api/internal/repository"
)

// BookingService owns every mutation of the bookings, availability and
// booking_history tables. All serialization between concurrent callers
// is pushed down to the database: creates lock the availability row for
// the target date, status updates and deletes lock the booking row.
// There is no in-process queue or optimistic versioning.
type BookingService struct {
	db           *sql.DB
	bookings     *repository.BookingRepo
	availability *repository.AvailabilityRepo
	history      *repository.HistoryRepo
}

// NewBookingService constructs a BookingService. All dependencies must
// be non-nil.
func NewBookingService(db *sql.DB, bookings *repository.BookingRepo, availability *repository.AvailabilityRepo, history *repository.HistoryRepo) *BookingService {
	if db == nil || bookings == nil || availability == nil || history == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{db: db, bookings: bookings, availability: availability, history: history}
}

// CreateResult is returned by Create on success. AvailableSlots is the
// free capacity for the date after this booking committed.
type CreateResult struct {
	BookingID      uint64
	AvailableSlots int
	Status         string
}

// ListFilter narrows and paginates List results.
type ListFilter struct {
	Status string // empty = all statuses
	Limit  int    // defaults to 50 when <= 0
	Offset int
}

// ListResult carries one page of bookings. HasMore is the cheap
// heuristic count == limit, which reports a false positive when the
// table size is an exact multiple of the page size; callers that need
// an exact count would have to issue a separate COUNT(*).
type ListResult struct {
	Bookings []model.Booking
	Count    int
	HasMore  bool
}

// StatusUpdateResult is returned by UpdateStatus. Changed is false for
// the no-op case (new status equals current status), which is reported
// as success without persisting anything.
type StatusUpdateResult struct {
	BookingID     uint64
	OldStatus     string
	NewStatus     string
	Changed       bool
	PreferredDate string
	Participants  int
}

// DeleteResult is returned by Delete.
type DeleteResult struct {
	BookingID     uint64
	SlotsReleased int
}

// Create validates the business rules, then books the requested slots
// inside a single transaction:
//
//  1. lock the availability row for the normalized date (FOR UPDATE)
//  2. check capacity against the locked counters
//  3. insert the pending booking, bump booked_slots, append history
//  4. commit
//
// The lock is taken strictly before the capacity check, so two
// concurrent requests for the last slots serialize and the second one
// deterministically fails with InsufficientSlotsError instead of
// overbooking. Business failures roll back and return typed errors;
// unexpected failures roll back and propagate.
func (s *BookingService) Create(ctx context.Context, in BookingInput) (*CreateResult, error) {
	if errs := validateBusinessRules(in, time.Now()); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	day, _, err := NormalizeDay(in.PreferredDate)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{"preferredDate", "Valid date is required"}}}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	avail, err := s.availability.GetByDateForUpdateTx(ctx, tx, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDateNotAvailable
	}
	if err != nil {
		return nil, err
	}

	free := avail.TotalSlots - avail.BookedSlots
	if free < in.Participants {
		return nil, &InsufficientSlotsError{Available: free, Requested: in.Participants}
	}

	b := &model.Booking{
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		PreferredDate:   day,
		Participants:    in.Participants,
		BookingType:     in.BookingType,
		CourseID:        in.CourseID,
		DiveSiteID:      in.DiveSiteID,
		SpecialRequests: in.SpecialRequests,
		Status:          model.StatusPending,
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := s.availability.AddBookedSlotsTx(ctx, tx, day, in.Participants); err != nil {
		return nil, err
	}
	notes := "Booking created via API"
	if err := s.history.AppendTx(ctx, tx, &model.BookingHistory{
		BookingID: b.ID,
		Action:    model.ActionCreated,
		NewStatus: model.StatusPending,
		Notes:     &notes,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	log.Printf("booking: created id=%d date=%s participants=%d", b.ID, day, in.Participants)
	return &CreateResult{
		BookingID:      b.ID,
		AvailableSlots: free - in.Participants,
		Status:         model.StatusPending,
	}, nil
}

// List returns one page of bookings, newest first. Plain reads, no
// locking.
func (s *BookingService) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	bookings, err := s.bookings.List(ctx, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Bookings: bookings,
		Count:    len(bookings),
		HasMore:  len(bookings) == f.Limit,
	}, nil
}

// GetByID returns a single booking or ErrBookingNotFound.
func (s *BookingService) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// History returns the audit trail for a booking, oldest first, or
// ErrBookingNotFound when the booking does not exist.
func (s *BookingService) History(ctx context.Context, id uint64) ([]model.BookingHistory, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListByBooking(ctx, id)
}

// UpdateStatus transitions a booking between pending, confirmed and
// cancelled, reconciling the date's booked_slots inside the same
// transaction that locks the booking row:
//
//   - into cancelled: release the booking's slots
//   - out of cancelled: re-reserve them
//   - any other transition: no slot change
//
// Re-reserving does not re-check capacity, so booked_slots can exceed
// total_slots when the freed slots were rebooked in the interim.
// Setting the status a booking already has is a no-op reported as
// success (Changed=false); the open transaction is discarded and no
// history row is written.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint64, newStatus string) (*StatusUpdateResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetForUpdateTx(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	oldStatus := b.Status
	if oldStatus == newStatus {
		return &StatusUpdateResult{
			BookingID:     id,
			OldStatus:     oldStatus,
			NewStatus:     newStatus,
			Changed:       false,
			PreferredDate: b.PreferredDate,
			Participants:  b.Participants,
		}, nil
	}

	if err := s.bookings.UpdateStatusTx(ctx, tx, id, newStatus); err != nil {
		return nil, err
	}

	switch {
	case newStatus == model.StatusCancelled && oldStatus != model.StatusCancelled:
		if err := s.availability.AddBookedSlotsTx(ctx, tx, b.PreferredDate, -b.Participants); err != nil {
			return nil, err
		}
	case oldStatus == model.StatusCancelled && newStatus != model.StatusCancelled:
		if err := s.availability.AddBookedSlotsTx(ctx, tx, b.PreferredDate, b.Participants); err != nil {
			return nil, err
		}
	}

	if err := s.history.AppendTx(ctx, tx, &model.BookingHistory{
		BookingID: id,
		Action:    model.ActionStatusChanged,
		OldStatus: &oldStatus,
		NewStatus: newStatus,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	log.Printf("booking: status updated id=%d %s -> %s", id, oldStatus, newStatus)
	return &StatusUpdateResult{
		BookingID:     id,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		Changed:       true,
		PreferredDate: b.PreferredDate,
		Participants:  b.Participants,
	}, nil
}

// Delete hard-deletes a booking, releasing its slots first unless it
// was already cancelled (cancellation released them). History rows go
// with it via the cascading foreign key.
func (s *BookingService) Delete(ctx context.Context, id uint64) (*DeleteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetForUpdateTx(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	released := 0
	if b.Status != model.StatusCancelled {
		if err := s.availability.AddBookedSlotsTx(ctx, tx, b.PreferredDate, -b.Participants); err != nil {
			return nil, err
		}
		released = b.Participants
	}

	if err := s.bookings.DeleteTx(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	log.Printf("booking: deleted id=%d released=%d", id, released)
	return &DeleteResult{BookingID: id, SlotsReleased: released}, nil
}
