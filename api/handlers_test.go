/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Booking CRUD and its status-code mapping
- CSV import (raw body and multipart)
- Report endpoints over a seeded ledger
- Store failures surfacing as 500s (mocked store)
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/tidehouse/innledger/engine"
	"github.com/tidehouse/innledger/engine/mocks"
	"github.com/tidehouse/innledger/store/memory"
)

// newTestHandler wires a handler over an in-memory store with the clock
// pinned to 2025-03-10, so "today" is stable in every assertion.
func newTestHandler(t *testing.T) (*Handler, *engine.Ledger) {
	t.Helper()

	ledger := engine.NewLedger(memory.New())
	eng, err := engine.NewEngine(engine.Config{
		Capacity:                    4,
		Collectors:                  []string{"LOC LE", "THAO LE"},
		CommissionPriorityThreshold: engine.MoneyFromInt(50000),
	})
	if err != nil {
		t.Fatalf("engine config: %v", err)
	}
	eng = eng.WithClock(func() time.Time {
		return time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	})
	return NewHandler(ledger, eng), ledger
}

func seedBooking(t *testing.T, ledger *engine.Ledger, id, guest, in, out, room, commission string) {
	t.Helper()
	_, _, err := ledger.AppendRaw(context.Background(), engine.RawBooking{
		ID:         id,
		GuestName:  guest,
		CheckIn:    in,
		CheckOut:   out,
		RoomAmount: room,
		Commission: commission,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// BOOKING CRUD
// =============================================================================

func TestCreateBooking_NormalizesTheRawRecord(t *testing.T) {
	// GIVEN: A raw record the way a spreadsheet export writes it
	h, _ := newTestHandler(t)

	body := `{
		"id": "bk-1",
		"guest_name": "Tran Van A",
		"checkin_date": "10/03/2025",
		"checkout_date": "12/03/2025",
		"room_amount": "300.000",
		"commission": "30000"
	}`

	// WHEN: Creating it through the API
	rec := doRequest(t, h, http.MethodPost, "/api/v1/bookings", body)

	// THEN: The canonical record comes back clean
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp BookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Booking.CheckIn != "2025-03-10" {
		t.Errorf("Expected checkin 2025-03-10, got %q", resp.Booking.CheckIn)
	}
	if resp.Booking.RoomAmount != 300000 {
		t.Errorf("Expected room amount 300000, got %v", resp.Booking.RoomAmount)
	}
	if resp.Booking.Nights != 2 {
		t.Errorf("Expected 2 nights, got %d", resp.Booking.Nights)
	}
	if len(resp.Issues) != 0 {
		t.Errorf("Expected no issues, got %v", resp.Issues)
	}
}

func TestCreateBooking_DuplicateIDConflicts(t *testing.T) {
	// GIVEN: A stored record
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "300000", "0")

	// WHEN: Creating another record with the same id
	rec := doRequest(t, h, http.MethodPost, "/api/v1/bookings", `{"id": "bk-1", "guest_name": "Le Thi B"}`)

	// THEN: 409 with the duplicate code
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if resp.Code != "duplicate_id" {
		t.Errorf("Expected code duplicate_id, got %q", resp.Code)
	}
}

func TestCreateBooking_FlaggedRecordIsStoredWithIssues(t *testing.T) {
	// GIVEN: A record with a negative amount
	h, _ := newTestHandler(t)

	body := `{
		"id": "bk-neg",
		"guest_name": "Pham Van C",
		"checkin_date": "2025-03-10",
		"checkout_date": "2025-03-11",
		"room_amount": "-120000"
	}`

	// WHEN: Creating it
	rec := doRequest(t, h, http.MethodPost, "/api/v1/bookings", body)

	// THEN: Stored anyway, flagged, value preserved
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp BookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Booking.Invalid {
		t.Error("Expected the record to be marked invalid")
	}
	if resp.Booking.RoomAmount != -120000 {
		t.Errorf("Expected the negative value preserved, got %v", resp.Booking.RoomAmount)
	}
	if len(resp.Issues) == 0 {
		t.Error("Expected validation issues on the response")
	}
}

func TestCreateBooking_MalformedBody(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/bookings", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestGetBooking_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/bookings/missing", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if resp.Code != "not_found" {
		t.Errorf("Expected code not_found, got %q", resp.Code)
	}
}

func TestUpdateBooking_ReNormalizesUnderTheSameID(t *testing.T) {
	// GIVEN: A stored record
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "300000", "0")

	// WHEN: Replacing it with a messier rendition of a new amount
	body := `{
		"guest_name": "Tran Van A",
		"checkin_date": "2025-03-10",
		"checkout_date": "2025-03-12",
		"room_amount": "400,000"
	}`
	rec := doRequest(t, h, http.MethodPut, "/api/v1/bookings/bk-1", body)

	// THEN: The canonical value lands under the old id
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp BookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Booking.ID != "bk-1" {
		t.Errorf("Expected id bk-1, got %q", resp.Booking.ID)
	}
	if resp.Booking.RoomAmount != 400000 {
		t.Errorf("Expected room amount 400000, got %v", resp.Booking.RoomAmount)
	}
}

func TestDeleteBooking_SoftDeleteKeepsTheRow(t *testing.T) {
	// GIVEN: A stored record
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "300000", "0")

	// WHEN: Deleting it
	rec := doRequest(t, h, http.MethodDelete, "/api/v1/bookings/bk-1", "")

	// THEN: 204, and the row is still fetchable under the deleted status
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/bookings/bk-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on get after delete, got %d", rec.Code)
	}
	var dto BookingDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("Failed to decode booking: %v", err)
	}
	if dto.Status != string(engine.StatusDeleted) {
		t.Errorf("Expected status deleted, got %q", dto.Status)
	}
}

func TestDeleteBooking_MissingID(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodDelete, "/api/v1/bookings/missing", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestListBookings_GuestFilter(t *testing.T) {
	// GIVEN: Three guests
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "300000", "0")
	seedBooking(t, ledger, "bk-2", "Le Thi B", "2025-03-11", "2025-03-13", "200000", "0")
	seedBooking(t, ledger, "bk-3", "Pham Van C", "2025-03-12", "2025-03-14", "100000", "0")

	// WHEN: Filtering by a name fragment
	rec := doRequest(t, h, http.MethodGet, "/api/v1/bookings?guest=tran", "")

	// THEN: Only the match comes back
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var dtos []BookingDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dtos); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(dtos) != 1 || dtos[0].ID != "bk-1" {
		t.Errorf("Expected only bk-1, got %v", dtos)
	}
}

func TestListBookings_BadParams(t *testing.T) {
	h, _ := newTestHandler(t)

	if rec := doRequest(t, h, http.MethodGet, "/api/v1/bookings?from=garbage", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad from date, got %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodGet, "/api/v1/bookings?limit=ten", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", rec.Code)
	}
}

// =============================================================================
// CSV IMPORT
// =============================================================================

func TestImportCSV_RawBody(t *testing.T) {
	// GIVEN: A small export as the request body
	h, ledger := newTestHandler(t)

	csv := "Booking ID,Guest,Check-in,Check-out,Amount,Commission\n" +
		"bk-1,Tran Van A,2025-03-10,2025-03-12,300.000,30000\n" +
		"bk-2,Le Thi B,2025-03-11,2025-03-13,None,0\n"

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	// THEN: Both rows land
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Total != 2 || resp.Stored != 2 {
		t.Errorf("Expected 2/2 stored, got %+v", resp)
	}

	stored, err := ledger.List(context.Background(), engine.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("Expected 2 records in the store, got %d", len(stored))
	}
}

func TestImportCSV_MultipartFileField(t *testing.T) {
	// GIVEN: The same export uploaded as a form file
	h, _ := newTestHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "export.csv")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte("id,guest,checkin,checkout\nbk-9,Hoang Van D,2025-04-01,2025-04-03\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	// THEN: The row lands
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Stored != 1 {
		t.Errorf("Expected 1 stored, got %+v", resp)
	}
}

func TestImportCSV_UnreadableFileIsBadRequest(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader("foo,bar\n1,2\n"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

// =============================================================================
// REPORTS
// =============================================================================

func TestCalendar_SplitsRevenueAcrossTheWindow(t *testing.T) {
	// GIVEN: One two-night stay
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "200000", "20000")

	// WHEN: Asking for the stay's window
	rec := doRequest(t, h, http.MethodGet, "/api/v1/calendar?from=2025-03-10&to=2025-03-12", "")

	// THEN: One row per day, the nightly share on each occupied night
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var dtos []DailyFigureDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dtos); err != nil {
		t.Fatalf("Failed to decode figures: %v", err)
	}
	if len(dtos) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(dtos))
	}
	if dtos[0].RevenueTotal != 100000 {
		t.Errorf("Expected 100000 on the first night, got %v", dtos[0].RevenueTotal)
	}
	if dtos[0].OccupiedUnits != 1 || dtos[0].AvailableUnits != 3 {
		t.Errorf("Expected 1 occupied / 3 available, got %d/%d", dtos[0].OccupiedUnits, dtos[0].AvailableUnits)
	}
	if dtos[2].RevenueTotal != 0 {
		t.Errorf("Expected the checkout day to earn nothing, got %v", dtos[2].RevenueTotal)
	}
}

func TestCalendar_BadWindow(t *testing.T) {
	h, _ := newTestHandler(t)

	if rec := doRequest(t, h, http.MethodGet, "/api/v1/calendar?from=garbage", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad from date, got %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodGet, "/api/v1/calendar?from=2025-03-12&to=2025-03-10", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an inverted window, got %d", rec.Code)
	}
}

func TestOccupancy_SingleDate(t *testing.T) {
	// GIVEN: An arrival on the asked date
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "300000", "0")

	// WHEN: Asking for that date
	rec := doRequest(t, h, http.MethodGet, "/api/v1/occupancy?date=2025-03-10", "")

	// THEN: The guest shows as an arrival
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var dto OccupancyDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	if len(dto.Arrivals) != 1 || dto.Arrivals[0].BookingID != "bk-1" {
		t.Errorf("Expected bk-1 arriving, got %v", dto.Arrivals)
	}
	if dto.OccupiedUnits != 1 || dto.AvailableUnits != 3 {
		t.Errorf("Expected 1 occupied / 3 available, got %d/%d", dto.OccupiedUnits, dto.AvailableUnits)
	}
}

func TestWeeklyCollections_BadWeeksParam(t *testing.T) {
	h, _ := newTestHandler(t)

	if rec := doRequest(t, h, http.MethodGet, "/api/v1/collections/weekly?weeks=four", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestNotifications_UsesThePinnedClock(t *testing.T) {
	// GIVEN: An arrival today with a commission above the threshold
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "300000", "60000")

	// WHEN: Asking for the digest
	rec := doRequest(t, h, http.MethodGet, "/api/v1/notifications", "")

	// THEN: One high-priority arrival
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var dto NotificationDigestDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("Failed to decode digest: %v", err)
	}
	if len(dto.Arrivals) != 1 {
		t.Fatalf("Expected 1 arrival, got %d", len(dto.Arrivals))
	}
	if dto.Arrivals[0].Priority != string(engine.PriorityHigh) {
		t.Errorf("Expected high priority, got %q", dto.Arrivals[0].Priority)
	}
	if dto.Arrivals[0].DaysUntil != 0 {
		t.Errorf("Expected days_until 0, got %d", dto.Arrivals[0].DaysUntil)
	}
}

// =============================================================================
// STORE FAILURES
// =============================================================================

func TestReportEndpoint_StoreFailureMapsTo500(t *testing.T) {
	// GIVEN: A store whose snapshot fails
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.New("disk gone"))

	eng, err := engine.NewEngine(engine.Config{
		Capacity:   4,
		Collectors: []string{"LOC LE"},
	})
	if err != nil {
		t.Fatalf("engine config: %v", err)
	}
	h := NewHandler(engine.NewLedger(store), eng)

	// WHEN: Hitting a report endpoint
	rec := doRequest(t, h, http.MethodGet, "/api/v1/collections/monthly", "")

	// THEN: The failure surfaces as a 500
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if resp.Code != "internal" {
		t.Errorf("Expected code internal, got %q", resp.Code)
	}
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Expected an ok body, got %s", rec.Body.String())
	}
}
