package models

// CaptureCompleted is published when a recording session finishes the
// on-device pipeline, before the backend round-trip.
type CaptureCompleted struct {
	EventType          string `json:"eventType"`
	SessionID          string `json:"sessionId"`
	VenueID            string `json:"venueId"`
	StaffID            string `json:"staffId"`
	Locale             string `json:"locale"`
	Timestamp          int64  `json:"timestamp"`
	Transcript         string `json:"transcript"`
	WordCount          int    `json:"wordCount"`
	ConfidenceScore    int    `json:"confidenceScore"`
	DurationMs         int64  `json:"durationMs"`
	NeedsServerRecheck bool   `json:"needsServerRecheck"`
}

// BookingOutcome is published after the backend answered a voice
// submission, one event per completed round-trip.
type BookingOutcome struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	VenueID   string `json:"venueId"`
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"`
	BookingID string `json:"bookingId,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}
