/*
handlers.go - HTTP API handlers for the booking ledger

PURPOSE:
  Exposes the ledger and the derived reports via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Bookings:
    GET    /api/v1/bookings            List records (status/guest/date filters)
    POST   /api/v1/bookings            Append a raw record (normalized on write)
    GET    /api/v1/bookings/{id}       Fetch one record
    PUT    /api/v1/bookings/{id}       Replace a record (re-normalized)
    DELETE /api/v1/bookings/{id}       Soft delete

  Import:
    POST   /api/v1/import              CSV feed (multipart "file" or raw body)

  Reports:
    GET    /api/v1/calendar            Daily revenue + occupancy figures
    GET    /api/v1/occupancy           House state for one date
    GET    /api/v1/collections/monthly Collection totals per month+collector
    GET    /api/v1/collections/weekly  Rolling ISO-week collection totals
    GET    /api/v1/collections/overdue Uncollected stays already checked in

  Alerts:
    GET    /api/v1/alerts/duplicates   Probable double entries
    GET    /api/v1/alerts/overcrowding Days booked beyond capacity

  Notifications:
    GET    /api/v1/notifications       Upcoming arrivals/departures digest

ERROR HANDLING:
  - 400: unparseable query parameters or request body
  - 404: unknown booking id (engine.IsNotFound)
  - 409: duplicate booking id on create (engine.IsDuplicateID)
  - 500: store failures
  Validation flags are NOT errors. A messy record is stored anyway and the
  response carries its issues, exactly as the normalizer promises.

SEE ALSO:
  - dto.go: Request/response types
  - server.go: Route definitions
  - engine/ledger.go: The write path these handlers call
*/
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tidehouse/innledger/engine"
	"github.com/tidehouse/innledger/importer"
)

// Handler holds the wiring for all API endpoints.
type Handler struct {
	Ledger   *engine.Ledger
	Engine   *engine.Engine
	Importer *importer.Importer
}

// NewHandler creates a handler over a ledger and its report engine.
func NewHandler(ledger *engine.Ledger, eng *engine.Engine) *Handler {
	return &Handler{
		Ledger:   ledger,
		Engine:   eng,
		Importer: importer.New(ledger),
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health is the liveness probe.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// BOOKING ENDPOINTS
// =============================================================================

// ListBookings returns ledger records matching the query filters.
// GET /api/v1/bookings?status=&guest=&from=&to=&limit=
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	var f engine.ListFilter

	if s := r.URL.Query().Get("status"); s != "" {
		f.Status = engine.ParseStatus(s)
	}
	f.Guest = r.URL.Query().Get("guest")

	from, ok, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err)
		return
	}
	if ok {
		f.From = from
	}
	to, ok, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err)
		return
	}
	if ok {
		f.To = to
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		f.Limit = limit
	}

	bookings, err := h.Ledger.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTOs(bookings))
}

// CreateBooking appends a raw record to the ledger. The record is
// normalized on the way in; flags come back with the stored row.
// POST /api/v1/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bookingsIngested.WithLabelValues(outcomeRejected).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	b, flags, err := h.Ledger.AppendRaw(r.Context(), toRawBooking(req))
	if engine.IsDuplicateID(err) {
		bookingsIngested.WithLabelValues(outcomeDuplicate).Inc()
		writeError(w, http.StatusConflict, "booking id already exists", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store booking", err)
		return
	}

	bookingsIngested.WithLabelValues(outcomeStored).Inc()
	if len(flags) > 0 {
		bookingsIngested.WithLabelValues(outcomeFlagged).Inc()
	}
	writeJSON(w, http.StatusCreated, BookingResponse{
		Booking: toBookingDTO(b),
		Issues:  toIssueDTOs(flags),
	})
}

// GetBooking fetches one record by id.
// GET /api/v1/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.Ledger.Get(r.Context(), id)
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "booking not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// UpdateBooking replaces a record. The submitted raw fields run through the
// normalizer again under the same id.
// PUT /api/v1/bookings/{id}
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	b, flags, err := h.Ledger.UpdateRaw(r.Context(), id, toRawBooking(req))
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "booking not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update booking", err)
		return
	}
	writeJSON(w, http.StatusOK, BookingResponse{
		Booking: toBookingDTO(b),
		Issues:  toIssueDTOs(flags),
	})
}

// DeleteBooking soft-deletes a record. The row stays listable under the
// deleted status and drops out of every derived report.
// DELETE /api/v1/bookings/{id}
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Ledger.SoftDelete(r.Context(), id)
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "booking not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete booking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportCSV ingests a channel-manager CSV export. Accepts either a
// multipart upload under the "file" field or the CSV as the raw body.
// POST /api/v1/import
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field", err)
			return
		}
		defer file.Close()
		src = file
	}

	stats, err := h.Importer.Import(r.Context(), src)
	if err != nil {
		// A zero total means the reader failed before any row was tried,
		// so the fault is the file, not the store.
		if stats.Total == 0 {
			writeError(w, http.StatusBadRequest, "unreadable CSV", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "import aborted", err)
		return
	}

	bookingsIngested.WithLabelValues(outcomeStored).Add(float64(stats.Stored))
	bookingsIngested.WithLabelValues(outcomeFlagged).Add(float64(stats.Flagged))
	bookingsIngested.WithLabelValues(outcomeDuplicate).Add(float64(stats.Duplicates))

	writeJSON(w, http.StatusOK, ImportResponse{
		Total:      stats.Total,
		Stored:     stats.Stored,
		Flagged:    stats.Flagged,
		Duplicates: stats.Duplicates,
	})
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// Calendar returns the per-day revenue and occupancy figures for a window.
// Defaults to the 30 days either side of today.
// GET /api/v1/calendar?from=&to=
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	today := engine.DateOf(time.Now())
	window := engine.WindowAround(today, 30)

	from, ok, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err)
		return
	}
	if ok {
		window.From = from
	}
	to, ok, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err)
		return
	}
	if ok {
		window.To = to
	}
	if window.To.Before(window.From) {
		writeError(w, http.StatusBadRequest, "from is after to", nil)
		return
	}

	ledger, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	figures := h.Engine.DailyFigures(ledger, window)
	dtos := make([]DailyFigureDTO, 0, len(figures))
	for _, f := range figures {
		dtos = append(dtos, toDailyFigureDTO(f))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Occupancy returns who arrives, stays and departs on one date.
// Defaults to today.
// GET /api/v1/occupancy?date=
func (h *Handler) Occupancy(w http.ResponseWriter, r *http.Request) {
	day := engine.DateOf(time.Now())

	d, ok, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}
	if ok {
		day = d
	}

	ledger, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOccupancyDTO(h.Engine.Occupancy(ledger, day)))
}

// MonthlyCollections returns collection totals per month and collector.
// GET /api/v1/collections/monthly
func (h *Handler) MonthlyCollections(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCollectionSummaryDTOs(h.Engine.MonthlyCollections(ledger)))
}

// WeeklyCollections returns the rolling ISO-week collection totals.
// GET /api/v1/collections/weekly?weeks=
func (h *Handler) WeeklyCollections(w http.ResponseWriter, r *http.Request) {
	weeks := 0
	if s := r.URL.Query().Get("weeks"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid weeks", err)
			return
		}
		weeks = n
	}

	ledger, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCollectionSummaryDTOs(h.Engine.WeeklyCollections(ledger, weeks)))
}

// OverdueCollections returns every uncollected stay already checked in.
// GET /api/v1/collections/overdue
func (h *Handler) OverdueCollections(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOverdueReportDTO(h.Engine.OverdueCollections(ledger)))
}

// =============================================================================
// ALERT ENDPOINTS
// =============================================================================

// DuplicateAlerts returns probable double entries.
// GET /api/v1/alerts/duplicates
func (h *Handler) DuplicateAlerts(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDuplicateGroupDTOs(h.Engine.Duplicates(ledger)))
}

// OvercrowdingAlerts returns the days booked beyond capacity.
// GET /api/v1/alerts/overcrowding
func (h *Handler) OvercrowdingAlerts(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOvercrowdedDayDTOs(h.Engine.Overcrowding(ledger)))
}

// =============================================================================
// NOTIFICATION ENDPOINTS
// =============================================================================

// Notifications returns the upcoming arrivals/departures digest.
// GET /api/v1/notifications
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toNotificationDigestDTO(h.Engine.Notifications(ledger)))
}

// =============================================================================
// HELPERS
// =============================================================================

// snapshot loads the full ledger for a derived report, writing the 500
// itself so report handlers stay one-liners.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) ([]engine.Booking, bool) {
	ledger, err := h.Ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ledger", err)
		return nil, false
	}
	return ledger, true
}

func parseDateParam(r *http.Request, name string) (engine.Date, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return engine.Date{}, false, nil
	}
	d, err := engine.ParseDate(s)
	if err != nil {
		return engine.Date{}, false, err
	}
	return d, true, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: codeForStatus(status)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "duplicate_id"
	case http.StatusInternalServerError:
		return "internal"
	default:
		return ""
	}
}
