package models

import "time"

// Booking statuses used by the backend.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusSeated    = "seated"
	BookingStatusCancelled = "cancelled"
	BookingStatusNoShow    = "no_show"
)

// Booking is a restaurant reservation record as returned by the backend.
type Booking struct {
	ID         string    `json:"id"`
	VenueID    string    `json:"venue_id"`
	GuestName  string    `json:"guest_name"`
	PartySize  int       `json:"party_size"`
	Date       string    `json:"date"` // YYYY-MM-DD
	TimeSlot   string    `json:"time_slot"`
	TableID    string    `json:"table_id,omitempty"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// BookingRequest is the payload for creating a booking manually.
type BookingRequest struct {
	VenueID   string `json:"venue_id"`
	GuestName string `json:"guest_name"`
	PartySize int    `json:"party_size"`
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
	TableID   string `json:"table_id,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Voice submission response statuses. The backend owns this contract; the
// client only branches on the discriminant.
const (
	VoiceStatusSuccess            = "success"
	VoiceStatusNeedsClarification = "needs_clarification"
	VoiceStatusError              = "error"
)

// ErrCodeNoTables is the backend error code for no tables being available
// at the requested time. The response may carry alternative time
// suggestions in that case.
const ErrCodeNoTables = "no_tables_available"

// Clarification describes one booking field the backend could not resolve
// from the submitted transcript.
type Clarification struct {
	Field  string `json:"field"`
	Prompt string `json:"prompt,omitempty"`
}

// AlternativeTime is a backend-suggested alternative when the requested
// slot is unavailable.
type AlternativeTime struct {
	Time      string `json:"time"`
	TableSize int    `json:"table_size,omitempty"`
}

// VoiceBookingResponse is the tagged backend response to a voice
// submission. Exactly one of the optional groups is populated depending
// on Status.
type VoiceBookingResponse struct {
	Status string `json:"status"`

	// success
	BookingID string   `json:"booking_id,omitempty"`
	Booking   *Booking `json:"booking,omitempty"`

	// needs_clarification
	ClarificationsNeeded []Clarification `json:"clarifications_needed,omitempty"`

	// error
	ErrorCode             string            `json:"error_code,omitempty"`
	Message               string            `json:"message,omitempty"`
	SuggestedAlternatives []AlternativeTime `json:"suggested_alternatives,omitempty"`
}
