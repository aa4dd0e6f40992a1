package transcript

import (
	"regexp"
	"strings"
	"unicode"

	"voice-booking-capture-service/internal/lexicon"
)

var (
	clockTimeRe  = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`)
	clockDigitRe = regexp.MustCompile(`\d+`)
	nameTokenRe  = regexp.MustCompile(`^[A-Z][a-z]+$`)
)

// DefaultRecheckThreshold is the confidence score below which the raw
// audio is escalated to the backend for a server-side recheck.
const DefaultRecheckThreshold = 70

// Signals are the inputs to confidence scoring for one recording.
type Signals struct {
	DurationMs int64
	Transcript string
	WordCount  int
	HasNumbers bool
	HasTimes   bool
}

// Score computes a 0-100 confidence estimate for a transcript. It is a
// deliberately crude additive heuristic from a base of 80: a policy
// threshold, not a calibrated probability.
func Score(s Signals) int {
	if s.WordCount == 0 {
		return 0
	}

	score := 80

	switch {
	case s.DurationMs < 300:
		// Too short to be a real utterance.
		score -= 40
	case s.DurationMs > 40000:
		score -= 5
	}
	if s.DurationMs >= 800 && s.DurationMs <= 15000 {
		// Typical utterance length.
		score += 15
	}

	switch {
	case s.WordCount < 2:
		score -= 30
	case s.WordCount >= 4 && s.WordCount <= 40:
		score += 15
	default:
		score += 5
	}

	if s.HasNumbers {
		score += 10
	}
	if s.HasTimes {
		score += 10
	}

	if strings.ContainsFunc(s.Transcript, unicode.IsUpper) {
		// Proxy for a capitalized guest name.
		score += 5
	}
	if len(s.Transcript) > 30 {
		score += 5
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NeedsServerRecheck reports whether a score falls below the escalation
// threshold. A score exactly at the threshold does not escalate.
func NeedsServerRecheck(score, threshold int) bool {
	return score < threshold
}

// HasNumbers reports whether the transcript contains a digit or a
// spelled-out number in any supported language.
func HasNumbers(lex *lexicon.Lexicon, text string) bool {
	if strings.ContainsFunc(text, unicode.IsDigit) {
		return true
	}
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		if _, ok := lex.NumberWord(trimPunct(raw)); ok {
			return true
		}
	}
	return false
}

// HasTimeReferences reports whether the transcript contains an explicit
// clock time or any per-language time word.
func HasTimeReferences(lex *lexicon.Lexicon, text string) bool {
	if clockTimeRe.MatchString(text) {
		return true
	}
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		if lex.IsTimeWord(trimPunct(raw)) {
			return true
		}
	}
	return false
}

// HasNameReferences reports whether any token looks like a capitalized
// name that is not a known domain word.
func HasNameReferences(lex *lexicon.Lexicon, text string) bool {
	for _, raw := range strings.Fields(text) {
		tok := trimPunct(raw)
		if nameTokenRe.MatchString(tok) && !lex.IsStopword(tok) {
			return true
		}
	}
	return false
}
