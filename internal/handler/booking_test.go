package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/azure-divers/booking-api/internal/repository"
	"github.com/azure-divers/booking-api/internal/service"
)

// newTestHandler wires a BookingHandler over a lazy *sql.DB handle.
// sql.Open never dials, so these tests cover only the request paths
// that are rejected before any query runs.
func newTestHandler(t *testing.T) *BookingHandler {
	t.Helper()
	db, err := sql.Open("mysql", "test@tcp(127.0.0.1:1)/test")
	if err != nil {
		t.Fatalf("open lazy db handle: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	svc := service.NewBookingService(db,
		repository.NewBookingRepo(db),
		repository.NewAvailabilityRepo(db),
		repository.NewHistoryRepo(db))
	return NewBookingHandler(svc)
}

func doJSON(h echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	_ = h(c)
	return rec
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(h.Create, http.MethodPost, "/api/bookings", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	h := newTestHandler(t)
	body := `{"name":"J","email":"nope","phone":"123","preferredDate":"someday","participants":0,"bookingType":"snorkel"}`
	rec := doJSON(h.Create, http.MethodPost, "/api/bookings", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Error struct {
			Message string               `json:"message"`
			Details []service.FieldError `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if resp.Error.Message != "Validation failed" {
		t.Errorf("message = %q", resp.Error.Message)
	}
	fields := make(map[string]bool)
	for _, d := range resp.Error.Details {
		fields[d.Field] = true
	}
	for _, want := range []string{"name", "email", "phone", "preferredDate", "participants", "bookingType"} {
		if !fields[want] {
			t.Errorf("missing detail for field %q in %v", want, resp.Error.Details)
		}
	}
}

func TestBookingIDParamValidation(t *testing.T) {
	h := newTestHandler(t)
	for _, bad := range []string{"abc", "-1", "1.5", ""} {
		for name, fn := range map[string]echo.HandlerFunc{
			"get":     h.GetByID,
			"history": h.History,
			"delete":  h.Delete,
		} {
			rec := doJSON(fn, http.MethodGet, "/api/bookings/"+bad, "", map[string]string{"id": bad})
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s with id %q: status = %d, want 400", name, bad, rec.Code)
			}
		}
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(h.UpdateStatus, http.MethodPatch, "/api/bookings/1/status",
		`{"status":"archived"}`, map[string]string{"id": "1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListRejectsBadPagination(t *testing.T) {
	h := newTestHandler(t)
	for _, q := range []string{"limit=0", "limit=101", "limit=x", "offset=-1", "status=archived"} {
		rec := doJSON(h.List, http.MethodGet, "/api/bookings?"+q, "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", q, rec.Code)
		}
	}
}
