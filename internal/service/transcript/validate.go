package transcript

import (
	"voice-booking-capture-service/internal/models"
)

// minValidWords is the loose sanity floor for a usable transcript.
const minValidWords = 3

// Validate combines a transcript and its extracted tokens into a
// pass/fail report. Validity is a word-count sanity check only; a valid
// transcript can still be missing every booking field, which the backend
// resolves through its clarification flow.
func Validate(text string, tokens models.ExtractedTokens) models.ValidationResult {
	wc := WordCount(text)

	res := models.ValidationResult{
		IsValid:       wc >= minValidWords,
		HasPartySize:  tokens.PartySize != nil,
		HasTimeSlot:   tokens.TimeSlot != nil,
		HasName:       len(tokens.Names) > 0,
		WordCount:     wc,
		MissingFields: []string{},
	}

	// Fixed reporting order, matching the backend's clarification fields.
	if !res.HasPartySize {
		res.MissingFields = append(res.MissingFields, "party size")
	}
	if !res.HasTimeSlot {
		res.MissingFields = append(res.MissingFields, "time")
	}
	if !res.HasName {
		res.MissingFields = append(res.MissingFields, "name")
	}
	return res
}
