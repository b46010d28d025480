/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal ledger model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific representations (money as float64, dates as ISO strings)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Bookings:
    BookingDTO, BookingRequest, BookingResponse, ValidationIssueDTO

  Reports:
    DailyFigureDTO, NightlyShareDTO, OccupancyDTO, StayRefDTO,
    CollectionSummaryDTO, OverdueReportDTO, OverdueEntryDTO

  Alerts:
    DuplicateGroupDTO, OvercrowdedDayDTO

  Notifications:
    NotificationDTO, NotificationDigestDTO

  Import:
    ImportResponse

VALIDATION:
  Validation is done by the normalizer, not in DTOs. A BookingRequest is
  deliberately all-strings: the engine owns every parsing rule, and the API
  must not pre-judge what the feed layer would accept.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: The canonical model these mirror
*/
package api

import (
	"github.com/tidehouse/innledger/engine"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// BookingRequest is the raw record clients submit. Every field is a string
// because the values arrive exactly as a spreadsheet or channel export would
// carry them; the normalizer decides what they mean.
type BookingRequest struct {
	ID              string `json:"id"`
	GuestName       string `json:"guest_name"`
	CheckIn         string `json:"checkin_date"`
	CheckOut        string `json:"checkout_date"`
	RoomAmount      string `json:"room_amount"`
	Commission      string `json:"commission"`
	Taxi            string `json:"taxi"`
	CollectedAmount string `json:"collected_amount"`
	Collector       string `json:"collector"`
	Status          string `json:"status"`
	Source          string `json:"source"`
	Notes           string `json:"notes"`
}

// BookingDTO is the canonical record as clients see it.
type BookingDTO struct {
	ID              string  `json:"id"`
	GuestName       string  `json:"guest_name"`
	CheckIn         string  `json:"checkin_date,omitempty"`
	CheckOut        string  `json:"checkout_date,omitempty"`
	Nights          int     `json:"nights"`
	RoomAmount      float64 `json:"room_amount"`
	Commission      float64 `json:"commission"`
	TaxiRaw         string  `json:"taxi,omitempty"`
	TaxiAmount      float64 `json:"taxi_amount"`
	CollectedAmount float64 `json:"collected_amount"`
	Collector       string  `json:"collector,omitempty"`
	Status          string  `json:"status"`
	Source          string  `json:"source,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Invalid         bool    `json:"invalid"`
}

// ValidationIssueDTO reports one normalization flag on a stored record.
type ValidationIssueDTO struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// BookingResponse pairs a stored record with the flags it was stored under.
type BookingResponse struct {
	Booking BookingDTO           `json:"booking"`
	Issues  []ValidationIssueDTO `json:"issues,omitempty"`
}

// ImportResponse reports the outcome of a CSV import.
type ImportResponse struct {
	Total      int `json:"total"`
	Stored     int `json:"stored"`
	Flagged    int `json:"flagged"`
	Duplicates int `json:"duplicates"`
}

// NightlyShareDTO is one booking's contribution to one night.
type NightlyShareDTO struct {
	BookingID  string  `json:"booking_id"`
	GuestName  string  `json:"guest_name"`
	Amount     float64 `json:"amount"`
	Commission float64 `json:"commission"`
}

// DailyFigureDTO is one calendar day's combined revenue and occupancy row.
type DailyFigureDTO struct {
	Date            string            `json:"date"`
	OccupiedUnits   int               `json:"occupied_units"`
	AvailableUnits  int               `json:"available_units"`
	Arrivals        int               `json:"arrivals"`
	Departures      int               `json:"departures"`
	Staying         int               `json:"staying"`
	RevenueTotal    float64           `json:"revenue_total"`
	RevenueNet      float64           `json:"revenue_net"`
	CommissionTotal float64           `json:"commission_total"`
	Contributions   []NightlyShareDTO `json:"contributions"`
}

// StayRefDTO identifies a booking inside an occupancy bucket.
type StayRefDTO struct {
	BookingID string `json:"booking_id"`
	GuestName string `json:"guest_name"`
}

// OccupancyDTO is the house state for one date.
type OccupancyDTO struct {
	Date           string       `json:"date"`
	Arrivals       []StayRefDTO `json:"arrivals"`
	Staying        []StayRefDTO `json:"staying"`
	Departures     []StayRefDTO `json:"departures"`
	OccupiedUnits  int          `json:"occupied_units"`
	AvailableUnits int          `json:"available_units"`
}

// CollectionSummaryDTO is one period+collector reconciliation row.
type CollectionSummaryDTO struct {
	Period          string  `json:"period"`
	Bucket          string  `json:"bucket"`
	AmountCollected float64 `json:"amount_collected"`
	BookingCount    int     `json:"booking_count"`
	CommissionTotal float64 `json:"commission_total"`
}

// OverdueEntryDTO is one booking whose payment is outstanding.
type OverdueEntryDTO struct {
	BookingID         string  `json:"booking_id"`
	GuestName         string  `json:"guest_name"`
	CheckIn           string  `json:"checkin_date"`
	Collector         string  `json:"collector,omitempty"`
	RoomAmount        float64 `json:"room_amount"`
	TaxiAmount        float64 `json:"taxi_amount"`
	OutstandingAmount float64 `json:"outstanding_amount"`
}

// OverdueReportDTO lists every overdue booking plus the grand total.
type OverdueReportDTO struct {
	Entries []OverdueEntryDTO `json:"entries"`
	Total   float64           `json:"total"`
}

// DuplicateRefDTO is one half of a suspected double entry.
type DuplicateRefDTO struct {
	BookingID string `json:"booking_id"`
	CheckIn   string `json:"checkin_date"`
}

// DuplicateGroupDTO flags two bookings as a probable double entry.
type DuplicateGroupDTO struct {
	GuestKey  string          `json:"guest_key"`
	GuestName string          `json:"guest_name"`
	First     DuplicateRefDTO `json:"first"`
	Second    DuplicateRefDTO `json:"second"`
	DayGap    int             `json:"day_gap"`
}

// OvercrowdedDayDTO is one date booked beyond capacity.
type OvercrowdedDayDTO struct {
	Date        string   `json:"date"`
	GuestCount  int      `json:"guest_count"`
	Capacity    int      `json:"capacity"`
	GuestNames  []string `json:"guest_names"`
	BookingIDs  []string `json:"booking_ids"`
	TotalAmount float64  `json:"total_amount"`
	DaysUntil   int      `json:"days_until"`
	Urgency     string   `json:"urgency"`
}

// NotificationDTO is one upcoming arrival or departure.
type NotificationDTO struct {
	Kind       string  `json:"kind"`
	BookingID  string  `json:"booking_id"`
	GuestName  string  `json:"guest_name"`
	Date       string  `json:"date"`
	DaysUntil  int     `json:"days_until"`
	Priority   string  `json:"priority"`
	Commission float64 `json:"commission"`
}

// NotificationDigestDTO is the full upcoming-stays digest.
type NotificationDigestDTO struct {
	Arrivals   []NotificationDTO `json:"arrivals"`
	Departures []NotificationDTO `json:"departures"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toRawBooking(req BookingRequest) engine.RawBooking {
	return engine.RawBooking{
		ID:              req.ID,
		GuestName:       req.GuestName,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		RoomAmount:      req.RoomAmount,
		Commission:      req.Commission,
		Taxi:            req.Taxi,
		CollectedAmount: req.CollectedAmount,
		Collector:       req.Collector,
		Status:          req.Status,
		Source:          req.Source,
		Notes:           req.Notes,
	}
}

func toBookingDTO(b engine.Booking) BookingDTO {
	return BookingDTO{
		ID:              b.ID,
		GuestName:       b.GuestName,
		CheckIn:         b.CheckIn.String(),
		CheckOut:        b.CheckOut.String(),
		Nights:          b.Nights(),
		RoomAmount:      b.RoomAmount.Float64(),
		Commission:      b.Commission.Float64(),
		TaxiRaw:         b.TaxiRaw,
		TaxiAmount:      b.TaxiAmount.Float64(),
		CollectedAmount: b.CollectedAmount.Float64(),
		Collector:       b.Collector,
		Status:          string(b.Status),
		Source:          b.Source,
		Notes:           b.Notes,
		Invalid:         b.Invalid,
	}
}

func toBookingDTOs(bs []engine.Booking) []BookingDTO {
	dtos := make([]BookingDTO, 0, len(bs))
	for _, b := range bs {
		dtos = append(dtos, toBookingDTO(b))
	}
	return dtos
}

func toIssueDTOs(flags []*engine.ValidationError) []ValidationIssueDTO {
	if len(flags) == 0 {
		return nil
	}
	issues := make([]ValidationIssueDTO, 0, len(flags))
	for _, f := range flags {
		issues = append(issues, ValidationIssueDTO{Field: f.Field, Value: f.Value, Reason: f.Reason})
	}
	return issues
}

func toStayRefDTOs(refs []engine.StayRef) []StayRefDTO {
	dtos := make([]StayRefDTO, 0, len(refs))
	for _, ref := range refs {
		dtos = append(dtos, StayRefDTO{BookingID: ref.BookingID, GuestName: ref.GuestName})
	}
	return dtos
}

func toOccupancyDTO(s engine.OccupancySnapshot) OccupancyDTO {
	return OccupancyDTO{
		Date:           s.Date.String(),
		Arrivals:       toStayRefDTOs(s.Arrivals),
		Staying:        toStayRefDTOs(s.Staying),
		Departures:     toStayRefDTOs(s.Departures),
		OccupiedUnits:  s.OccupiedUnits,
		AvailableUnits: s.AvailableUnits,
	}
}

func toDailyFigureDTO(f engine.DailyFigure) DailyFigureDTO {
	shares := make([]NightlyShareDTO, 0, len(f.Contributions))
	for _, c := range f.Contributions {
		shares = append(shares, NightlyShareDTO{
			BookingID:  c.BookingID,
			GuestName:  c.GuestName,
			Amount:     c.Amount.Float64(),
			Commission: c.Commission.Float64(),
		})
	}
	return DailyFigureDTO{
		Date:            f.Date.String(),
		OccupiedUnits:   f.OccupiedUnits,
		AvailableUnits:  f.AvailableUnits,
		Arrivals:        f.Arrivals,
		Departures:      f.Departures,
		Staying:         f.Staying,
		RevenueTotal:    f.RevenueTotal.Float64(),
		RevenueNet:      f.RevenueNet.Float64(),
		CommissionTotal: f.CommissionTotal.Float64(),
		Contributions:   shares,
	}
}

func toCollectionSummaryDTOs(rows []engine.CollectionSummary) []CollectionSummaryDTO {
	dtos := make([]CollectionSummaryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, CollectionSummaryDTO{
			Period:          row.Period,
			Bucket:          row.Bucket,
			AmountCollected: row.AmountCollected.Float64(),
			BookingCount:    row.BookingCount,
			CommissionTotal: row.CommissionTotal.Float64(),
		})
	}
	return dtos
}

func toOverdueReportDTO(r engine.OverdueReport) OverdueReportDTO {
	entries := make([]OverdueEntryDTO, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, OverdueEntryDTO{
			BookingID:         e.BookingID,
			GuestName:         e.GuestName,
			CheckIn:           e.CheckIn.String(),
			Collector:         e.Collector,
			RoomAmount:        e.RoomAmount.Float64(),
			TaxiAmount:        e.TaxiAmount.Float64(),
			OutstandingAmount: e.OutstandingAmount.Float64(),
		})
	}
	return OverdueReportDTO{Entries: entries, Total: r.Total.Float64()}
}

func toDuplicateGroupDTOs(groups []engine.DuplicateGroup) []DuplicateGroupDTO {
	dtos := make([]DuplicateGroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, DuplicateGroupDTO{
			GuestKey:  g.GuestKey,
			GuestName: g.GuestName,
			First:     DuplicateRefDTO{BookingID: g.First.BookingID, CheckIn: g.First.CheckIn.String()},
			Second:    DuplicateRefDTO{BookingID: g.Second.BookingID, CheckIn: g.Second.CheckIn.String()},
			DayGap:    g.DayGap,
		})
	}
	return dtos
}

func toOvercrowdedDayDTOs(days []engine.OvercrowdedDay) []OvercrowdedDayDTO {
	dtos := make([]OvercrowdedDayDTO, 0, len(days))
	for _, d := range days {
		dtos = append(dtos, OvercrowdedDayDTO{
			Date:        d.Date.String(),
			GuestCount:  d.GuestCount,
			Capacity:    d.Capacity,
			GuestNames:  d.GuestNames,
			BookingIDs:  d.BookingIDs,
			TotalAmount: d.TotalAmount.Float64(),
			DaysUntil:   d.DaysUntil,
			Urgency:     string(d.Urgency),
		})
	}
	return dtos
}

func toNotificationDTOs(ns []engine.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, 0, len(ns))
	for _, n := range ns {
		dtos = append(dtos, NotificationDTO{
			Kind:       string(n.Kind),
			BookingID:  n.BookingID,
			GuestName:  n.GuestName,
			Date:       n.Date.String(),
			DaysUntil:  n.DaysUntil,
			Priority:   string(n.Priority),
			Commission: n.Commission.Float64(),
		})
	}
	return dtos
}

func toNotificationDigestDTO(d engine.NotificationDigest) NotificationDigestDTO {
	return NotificationDigestDTO{
		Arrivals:   toNotificationDTOs(d.Arrivals),
		Departures: toNotificationDTOs(d.Departures),
	}
}
