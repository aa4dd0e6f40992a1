// Package models defines the data structures shared across the voice
// booking capture pipeline.
package models

// ExtractedTokens holds the booking-relevant tokens pulled out of a
// transcript. Recomputed from scratch on every extraction run; never
// persisted.
type ExtractedTokens struct {
	Numbers   []int    `json:"numbers"`
	Times     []string `json:"times"`
	Names     []string `json:"names"`
	PartySize *int     `json:"partySize"`
	TimeSlot  *string  `json:"timeSlot"`
}

// ValidationResult reports whether a transcript is usable and which
// booking fields could not be recovered from it.
//
// IsValid depends only on the word count. A three-word transcript with no
// recognizable party size, time or name is still valid; MissingFields is
// informational and does not gate validity.
type ValidationResult struct {
	IsValid       bool     `json:"isValid"`
	HasPartySize  bool     `json:"hasPartySize"`
	HasTimeSlot   bool     `json:"hasTimeSlot"`
	HasName       bool     `json:"hasName"`
	WordCount     int      `json:"wordCount"`
	MissingFields []string `json:"missingFields"`
}

// AudioRef points at the captured audio for one recording session.
type AudioRef struct {
	// URI is a playable reference, typically a file path under the spool dir.
	URI        string `json:"uri"`
	DurationMs int64  `json:"durationMs"`
}

// RecordingResult is the bundle assembled when a recording stops. It is
// created once per completed recording, handed to the submission step, and
// then discarded.
type RecordingResult struct {
	SessionID          string           `json:"sessionId"`
	Transcript         string           `json:"transcript"`
	Locale             string           `json:"locale"`
	DurationMs         int64            `json:"durationMs"`
	ConfidenceScore    int              `json:"confidenceScore"`
	WordCount          int              `json:"wordCount"`
	Tokens             ExtractedTokens  `json:"tokens"`
	Validation         ValidationResult `json:"validation"`
	NeedsServerRecheck bool             `json:"needsServerRecheck"`
	Audio              *AudioRef        `json:"audio,omitempty"`
}
