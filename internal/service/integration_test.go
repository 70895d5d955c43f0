//go:build integration

// Integration tests exercising the real transaction paths against a
// MySQL instance. Point TEST_DATABASE_DSN at a throwaway database, e.g.
//
//	TEST_DATABASE_DSN='root@tcp(127.0.0.1:3306)/booking_test?parseTime=true&loc=UTC&multiStatements=false' \
//	  go test -tags integration ./internal/service/
//
// The schema is created on first connect and every test provisions its
// own availability date, so tests stay independent.
package service_test

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/azure-divers/booking-api/internal/database"
	"github.com/azure-divers/booking-api/internal/model"
	"github.com/azure-divers/booking-api/internal/repository"
	"github.com/azure-divers/booking-api/internal/service"
)

var (
	dbOnce  sync.Once
	testDB  *sql.DB
	dateSeq atomic.Int64
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	dbOnce.Do(func() {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			t.Fatalf("open test db: %v", err)
		}
		if err := db.Ping(); err != nil {
			t.Fatalf("ping test db: %v", err)
		}
		if err := database.EnsureSchema(context.Background(), db); err != nil {
			t.Fatalf("ensure schema: %v", err)
		}
		testDB = db
	})
	return testDB
}

type fixture struct {
	db  *sql.DB
	svc *service.BookingService
	av  *repository.AvailabilityRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	bookings := repository.NewBookingRepo(db)
	av := repository.NewAvailabilityRepo(db)
	history := repository.NewHistoryRepo(db)
	return &fixture{
		db:  db,
		svc: service.NewBookingService(db, bookings, av, history),
		av:  av,
	}
}

// provisionDate inserts an availability row for a unique future date so
// tests never contend for the same row. Rows are removed on cleanup.
func (f *fixture) provisionDate(t *testing.T, totalSlots int) string {
	t.Helper()
	// 10..N days out keeps every date inside the 24h/1yr booking window.
	day := time.Now().UTC().AddDate(0, 0, 10+int(dateSeq.Add(1))%300).Format("2006-01-02")
	_, err := f.db.Exec(
		`INSERT INTO availability (date, total_slots, booked_slots) VALUES (?, ?, 0)
		 ON DUPLICATE KEY UPDATE total_slots = VALUES(total_slots), booked_slots = 0`,
		day, totalSlots)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = f.db.Exec(`DELETE FROM bookings WHERE preferred_date = ?`, day)
		_, _ = f.db.Exec(`DELETE FROM availability WHERE date = ?`, day)
	})
	return day
}

func (f *fixture) bookedSlots(t *testing.T, day string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(
		`SELECT booked_slots FROM availability WHERE date = ?`, day).Scan(&n))
	return n
}

func (f *fixture) historyCount(t *testing.T, bookingID uint64) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(
		`SELECT COUNT(*) FROM booking_history WHERE booking_id = ?`, bookingID).Scan(&n))
	return n
}

func diveInput(day string, participants int) service.BookingInput {
	site := "shark-point"
	return service.BookingInput{
		Name:          "Integration Tester",
		Email:         "it@example.com",
		Phone:         "+66812345678",
		PreferredDate: day,
		Participants:  participants,
		BookingType:   model.TypeDive,
		DiveSiteID:    &site,
	}
}

func TestCreateBooksSlotsAndHistory(t *testing.T) {
	f := newFixture(t)
	day := f.provisionDate(t, 20)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, diveInput(day, 3))
	require.NoError(t, err)
	require.NotZero(t, res.BookingID)
	require.Equal(t, model.StatusPending, res.Status)
	require.Equal(t, 17, res.AvailableSlots)

	require.Equal(t, 3, f.bookedSlots(t, day))

	b, err := f.svc.GetByID(ctx, res.BookingID)
	require.NoError(t, err)
	require.Equal(t, day, b.PreferredDate)
	require.Equal(t, model.StatusPending, b.Status)

	hist, err := f.svc.History(ctx, res.BookingID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, model.ActionCreated, hist[0].Action)
}

func TestCreateUnprovisionedDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Far-future date inside the 1yr window that no test provisions.
	day := time.Now().UTC().AddDate(0, 11, 0).Format("2006-01-02")
	_, _ = f.db.Exec(`DELETE FROM availability WHERE date = ?`, day)

	_, err := f.svc.Create(ctx, diveInput(day, 2))
	require.ErrorIs(t, err, service.ErrDateNotAvailable)
}

func TestCreateInsufficientSlots(t *testing.T) {
	f := newFixture(t)
	day := f.provisionDate(t, 5)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, diveInput(day, 4))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, diveInput(day, 2))
	var ierr *service.InsufficientSlotsError
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, 1, ierr.Available)
	require.Equal(t, 2, ierr.Requested)

	// The failed attempt must not leak any state.
	require.Equal(t, 4, f.bookedSlots(t, day))
}

func TestCreateBusinessRuleRejection(t *testing.T) {
	f := newFixture(t)
	day := f.provisionDate(t, 20)
	ctx := context.Background()

	in := diveInput(day, 2)
	in.DiveSiteID = nil
	_, err := f.svc.Create(ctx, in)
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 0, f.bookedSlots(t, day))
}

// TestConcurrentCreatesNeverOverbook is the core overbooking guarantee:
// many goroutines race for a small date and the row lock must let
// through exactly as many participants as there are slots.
func TestConcurrentCreatesNeverOverbook(t *testing.T) {
	f := newFixture(t)
	const totalSlots = 10
	day := f.provisionDate(t, totalSlots)
	ctx := context.Background()

	const workers = 20 // each wants 2 slots, only 5 can win
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, diveInput(day, 2))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var ierr *service.InsufficientSlotsError
		require.ErrorAs(t, err, &ierr, "losers must fail with InsufficientSlotsError only")
		conflicts++
	}
	require.Equal(t, 5, successes)
	require.Equal(t, workers-5, conflicts)
	require.Equal(t, totalSlots, f.bookedSlots(t, day))
}

func TestUpdateStatusCancelAndRestore(t *testing.T) {
	f := newFixture(t)
	day := f.provisionDate(t, 20)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, diveInput(day, 4))
	require.NoError(t, err)
	require.Equal(t, 4, f.bookedSlots(t, day))

	// pending -> confirmed: no slot movement
	up, err := f.svc.UpdateStatus(ctx, res.BookingID, model.StatusConfirmed)
	require.NoError(t, err)
	require.True(t, up.Changed)
	require.Equal(t, model.StatusPending, up.OldStatus)
	require.Equal(t, 4, f.bookedSlots(t, day))

	// confirmed -> cancelled: slots released
	up, err = f.svc.UpdateStatus(ctx, res.BookingID, model.StatusCancelled)
	require.NoError(t, err)
	require.True(t, up.Changed)
	require.Equal(t, 0, f.bookedSlots(t, day))

	// cancelled -> pending: slots re-reserved
	up, err = f.svc.UpdateStatus(ctx, res.BookingID, model.StatusPending)
	require.NoError(t, err)
	require.True(t, up.Changed)
	require.Equal(t, 4, f.bookedSlots(t, day))

	// create + 3 transitions
	require.Equal(t, 4, f.historyCount(t, res.BookingID))
}

func TestUpdateStatusNoOp(t *testing.T) {
	f := newFixture(t)
	day := f.provisionDate(t, 20)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, diveInput(day, 2))
	require.NoError(t, err)
	before := f.historyCount(t, res.BookingID)

	up, err := f.svc.UpdateStatus(ctx, res.BookingID, model.StatusPending)
	require.NoError(t, err)
	require.False(t, up.Changed)
	require.Equal(t, before, f.historyCount(t, res.BookingID), "no-op must not write history")
	require.Equal(t, 2, f.bookedSlots(t, day))
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), 999999999, model.StatusConfirmed)
	require.ErrorIs(t, err, service.ErrBookingNotFound)
}

func TestDeleteReleasesSlots(t *testing.T) {
	f := newFixture(t)
	day := f.provisionDate(t, 20)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, diveInput(day, 5))
	require.NoError(t, err)

	del, err := f.svc.Delete(ctx, res.BookingID)
	require.NoError(t, err)
	require.Equal(t, 5, del.SlotsReleased)
	require.Equal(t, 0, f.bookedSlots(t, day))

	_, err = f.svc.GetByID(ctx, res.BookingID)
	require.ErrorIs(t, err, service.ErrBookingNotFound)

	// history cascades with the booking
	require.Equal(t, 0, f.historyCount(t, res.BookingID))
}

func TestDeleteCancelledReleasesNothing(t *testing.T) {
	f := newFixture(t)
	day := f.provisionDate(t, 20)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, diveInput(day, 3))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, res.BookingID, model.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, 0, f.bookedSlots(t, day))

	del, err := f.svc.Delete(ctx, res.BookingID)
	require.NoError(t, err)
	require.Equal(t, 0, del.SlotsReleased)
	require.Equal(t, 0, f.bookedSlots(t, day))
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	day := f.provisionDate(t, 20)
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 3; i++ {
		res, err := f.svc.Create(ctx, diveInput(day, 1))
		require.NoError(t, err)
		ids = append(ids, res.BookingID)
	}

	page, err := f.svc.List(ctx, service.ListFilter{Status: model.StatusPending, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 2, page.Count)
	require.True(t, page.HasMore)

	// a status no booking has
	empty, err := f.svc.List(ctx, service.ListFilter{Status: model.StatusCancelled, Limit: 100})
	require.NoError(t, err)
	for _, b := range empty.Bookings {
		require.Equal(t, model.StatusCancelled, b.Status)
	}

	for _, id := range ids {
		_, err := f.svc.Delete(ctx, id)
		require.NoError(t, err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetByID(context.Background(), 999999999)
	require.ErrorIs(t, err, service.ErrBookingNotFound)
	_, err = f.svc.History(context.Background(), 999999999)
	require.ErrorIs(t, err, service.ErrBookingNotFound)
}
