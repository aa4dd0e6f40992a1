// Package transcript implements the on-device heuristics that turn a raw
// speech transcript into booking fields: token extraction, confidence
// scoring and validation. Everything here is pure string processing over
// an injected lexicon; malformed or empty input degrades to empty/zero
// results, never an error.
package transcript

import (
	"fmt"
	"strconv"
	"strings"

	"voice-booking-capture-service/internal/lexicon"
	"voice-booking-capture-service/internal/models"
)

// maxPartySize caps phrase-resolved party sizes. Larger groups are phoned
// in, not dictated.
const maxPartySize = 20

// Extract pulls party size, time slot and name candidates out of a
// transcript. The order of operations is load-bearing: explicit clock
// times are claimed first so their digits can never be mistaken for a
// party size ("20:30" is not a table for twenty).
func Extract(lex *lexicon.Lexicon, text string) models.ExtractedTokens {
	var tokens models.ExtractedTokens

	// 1. Explicit HH:MM / HH.MM times.
	timeSpans := extractClockTimes(text, &tokens)

	// 2. Spoken-hour phrases, only when no explicit time was found.
	if tokens.TimeSlot == nil {
		if span, ok := extractPhraseTime(lex, text, &tokens); ok {
			timeSpans = append(timeSpans, span)
		}
	}

	// 3. Every literal digit sequence.
	digitSpans := clockDigitRe.FindAllStringIndex(text, -1)
	for _, span := range digitSpans {
		if n, err := strconv.Atoi(text[span[0]:span[1]]); err == nil {
			tokens.Numbers = append(tokens.Numbers, n)
		}
	}

	// 4. Party size: phrase patterns first, then the smallest digit token
	// that is not part of an extracted time.
	if size, ok := resolvePartyPhrase(lex, text); ok {
		tokens.PartySize = &size
	} else if size, ok := smallestFreeNumber(text, digitSpans, timeSpans); ok {
		tokens.PartySize = &size
	}

	// 5. Capitalized tokens that survive the stoplist.
	tokens.Names = extractNames(lex, text)

	return tokens
}

// span is a [start, end) byte range into the transcript.
type span [2]int

func (s span) overlaps(o []int) bool {
	return s[0] < o[1] && o[0] < s[1]
}

// extractClockTimes fills Times and TimeSlot from explicit HH:MM or HH.MM
// patterns and returns the byte ranges they occupy.
func extractClockTimes(text string, tokens *models.ExtractedTokens) []span {
	var spans []span
	for _, m := range clockTimeRe.FindAllStringSubmatchIndex(text, -1) {
		hh, _ := strconv.Atoi(text[m[2]:m[3]])
		mm, _ := strconv.Atoi(text[m[4]:m[5]])
		if hh > 23 || mm > 59 {
			continue
		}
		slot := fmt.Sprintf("%02d:%02d", hh, mm)
		tokens.Times = append(tokens.Times, slot)
		if tokens.TimeSlot == nil {
			tokens.TimeSlot = &slot
		}
		spans = append(spans, span{m[0], m[1]})
	}
	return spans
}

// extractPhraseTime resolves "alle otto" / "at eight" / "a las ocho" style
// phrases. Values 8-23 are taken as-is; 1-7 are assumed to mean the
// evening and shifted by 12 hours. Dinner reservations skew evening; this
// default is documented behavior, not a bug to fix.
func extractPhraseTime(lex *lexicon.Lexicon, text string, tokens *models.ExtractedTokens) (span, bool) {
	for _, re := range lex.TimePhrasePatterns() {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			word := text[m[2]:m[3]]
			hour, ok := resolveNumber(lex, word, 23)
			if !ok {
				continue
			}
			if hour <= 7 {
				hour += 12
			}
			slot := fmt.Sprintf("%02d:00", hour)
			tokens.TimeSlot = &slot
			return span{m[2], m[3]}, true
		}
	}
	return span{}, false
}

// resolvePartyPhrase tries the per-language party phrases in lexicon
// order and returns the first capture that resolves to a count.
func resolvePartyPhrase(lex *lexicon.Lexicon, text string) (int, bool) {
	for _, re := range lex.PartyPatterns() {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if n, ok := resolveNumber(lex, m[1], maxPartySize); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// smallestFreeNumber picks the smallest digit token whose span does not
// overlap any extracted time.
func smallestFreeNumber(text string, digitSpans [][]int, timeSpans []span) (int, bool) {
	best := 0
	found := false
	for _, ds := range digitSpans {
		inTime := false
		for _, ts := range timeSpans {
			if ts.overlaps(ds) {
				inTime = true
				break
			}
		}
		if inTime {
			continue
		}
		n, err := strconv.Atoi(text[ds[0]:ds[1]])
		if err != nil || n == 0 {
			continue
		}
		if !found || n < best {
			best = n
			found = true
		}
	}
	return best, found
}

// resolveNumber turns a captured token into a value in [1, max], either a
// digit sequence or a spelled-out number word.
func resolveNumber(lex *lexicon.Lexicon, word string, max int) (int, bool) {
	if n, err := strconv.Atoi(word); err == nil {
		if n >= 1 && n <= max {
			return n, true
		}
		return 0, false
	}
	if n, ok := lex.NumberWord(word); ok && n >= 1 && n <= max {
		return n, true
	}
	return 0, false
}

// extractNames collects capitalized tokens that are not domain words.
// Duplicates are dropped, first occurrence order kept.
func extractNames(lex *lexicon.Lexicon, text string) []string {
	var names []string
	seen := map[string]bool{}
	for _, raw := range strings.Fields(text) {
		tok := trimPunct(raw)
		if !nameTokenRe.MatchString(tok) || lex.IsStopword(tok) || seen[tok] {
			continue
		}
		seen[tok] = true
		names = append(names, tok)
	}
	return names
}

// WordCount counts whitespace-delimited tokens, discarding empty ones.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func trimPunct(tok string) string {
	return strings.Trim(tok, ".,!?;:\"'()")
}
