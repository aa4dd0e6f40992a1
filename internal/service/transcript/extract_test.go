package transcript

import (
	"reflect"
	"testing"

	"voice-booking-capture-service/internal/lexicon"
)

var lex = lexicon.Default()

func TestExtract_ItalianFullBooking(t *testing.T) {
	tokens := Extract(lex, "Tavolo per quattro persone alle 20:00 per Mario Rossi")

	if tokens.PartySize == nil || *tokens.PartySize != 4 {
		t.Errorf("expected party size 4, got %v", tokens.PartySize)
	}
	if tokens.TimeSlot == nil || *tokens.TimeSlot != "20:00" {
		t.Errorf("expected time slot 20:00, got %v", tokens.TimeSlot)
	}
	if !containsString(tokens.Names, "Mario") || !containsString(tokens.Names, "Rossi") {
		t.Errorf("expected names to include Mario and Rossi, got %v", tokens.Names)
	}
}

func TestExtract_EnglishWithDigitHour(t *testing.T) {
	tokens := Extract(lex, "Table for 4 at 8 PM for Mario Rossi")

	if tokens.PartySize == nil || *tokens.PartySize != 4 {
		t.Errorf("expected party size 4, got %v", tokens.PartySize)
	}
	// No HH:MM present, so the "at N" phrase fallback must fire.
	if tokens.TimeSlot == nil {
		t.Fatal("expected phrase fallback to produce a time slot")
	}
	if *tokens.TimeSlot != "08:00" {
		t.Errorf("expected 08:00 from direct 8-23 mapping, got %s", *tokens.TimeSlot)
	}
}

func TestExtract_SpanishEveningShift(t *testing.T) {
	// Spoken hours 1-7 are assumed to mean the evening and get +12.
	tokens := Extract(lex, "Una mesa para dos a las ocho para Carmen")
	if tokens.TimeSlot == nil || *tokens.TimeSlot != "08:00" {
		t.Errorf("ocho (8) maps directly, got %v", tokens.TimeSlot)
	}
	if tokens.PartySize == nil || *tokens.PartySize != 2 {
		t.Errorf("expected party size 2, got %v", tokens.PartySize)
	}

	tokens = Extract(lex, "Reserva para tres a las siete")
	if tokens.TimeSlot == nil || *tokens.TimeSlot != "19:00" {
		t.Errorf("siete (7) is evening-shifted to 19:00, got %v", tokens.TimeSlot)
	}
}

func TestExtract_EveningShiftItalianWords(t *testing.T) {
	tokens := Extract(lex, "Prenotazione per sei alle otto")
	if tokens.TimeSlot == nil || *tokens.TimeSlot != "08:00" {
		t.Errorf("otto maps directly to 08:00, got %v", tokens.TimeSlot)
	}

	tokens = Extract(lex, "Prenotazione per sei alle cinque")
	if tokens.TimeSlot == nil || *tokens.TimeSlot != "17:00" {
		t.Errorf("cinque is evening-shifted to 17:00, got %v", tokens.TimeSlot)
	}
}

func TestExtract_ExplicitTimeWinsOverPhrase(t *testing.T) {
	tokens := Extract(lex, "Booking at eight, I mean 21:30")
	if tokens.TimeSlot == nil || *tokens.TimeSlot != "21:30" {
		t.Errorf("explicit HH:MM must win, got %v", tokens.TimeSlot)
	}
}

func TestExtract_FirstClockTimeBecomesSlot(t *testing.T) {
	tokens := Extract(lex, "Either 19:00 or 20:30 works")

	if tokens.TimeSlot == nil || *tokens.TimeSlot != "19:00" {
		t.Errorf("expected first valid time 19:00, got %v", tokens.TimeSlot)
	}
	if !reflect.DeepEqual(tokens.Times, []string{"19:00", "20:30"}) {
		t.Errorf("expected all times captured, got %v", tokens.Times)
	}
}

func TestExtract_DotSeparatedTimeNormalized(t *testing.T) {
	tokens := Extract(lex, "Tavolo per due alle 20.30")
	if tokens.TimeSlot == nil || *tokens.TimeSlot != "20:30" {
		t.Errorf("expected 20.30 normalized to 20:30, got %v", tokens.TimeSlot)
	}
}

func TestExtract_InvalidClockTimesSkipped(t *testing.T) {
	tokens := Extract(lex, "Strange values 25:99 then 18:00")
	if tokens.TimeSlot == nil || *tokens.TimeSlot != "18:00" {
		t.Errorf("out-of-range HH:MM must be skipped, got %v", tokens.TimeSlot)
	}
}

func TestExtract_TimeDigitsExcludedFromPartyFallback(t *testing.T) {
	// No party phrase matches here; the fallback must not read "20" out of
	// the time. The only free digit token is 6.
	tokens := Extract(lex, "Mario Rossi 20:30 tavolo 6")

	if tokens.TimeSlot == nil || *tokens.TimeSlot != "20:30" {
		t.Fatalf("expected time slot 20:30, got %v", tokens.TimeSlot)
	}
	if tokens.PartySize == nil || *tokens.PartySize != 6 {
		t.Errorf("expected fallback party size 6, got %v", tokens.PartySize)
	}
}

func TestExtract_NoPartyWhenOnlyTimeDigits(t *testing.T) {
	tokens := Extract(lex, "Mario vuole il tavolo 20:30 stasera")
	if tokens.PartySize != nil {
		t.Errorf("expected no party size when all digits belong to the time, got %d", *tokens.PartySize)
	}
}

func TestExtract_SmallestFreeNumberFallback(t *testing.T) {
	tokens := Extract(lex, "Mario Rossi 12 guests maybe 8")
	// "for/per/para" never appears, so fallback picks the smallest digit.
	if tokens.PartySize == nil || *tokens.PartySize != 8 {
		t.Errorf("expected smallest free number 8, got %v", tokens.PartySize)
	}
}

func TestExtract_NamesExcludeStoplist(t *testing.T) {
	tokens := Extract(lex, "Buongiorno Tavolo per Giulia Bianchi")

	if containsString(tokens.Names, "Buongiorno") || containsString(tokens.Names, "Tavolo") {
		t.Errorf("stoplisted words leaked into names: %v", tokens.Names)
	}
	if !containsString(tokens.Names, "Giulia") || !containsString(tokens.Names, "Bianchi") {
		t.Errorf("expected Giulia Bianchi, got %v", tokens.Names)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	tokens := Extract(lex, "")

	if tokens.PartySize != nil || tokens.TimeSlot != nil {
		t.Error("empty input must not produce fields")
	}
	if len(tokens.Numbers) != 0 || len(tokens.Times) != 0 || len(tokens.Names) != 0 {
		t.Errorf("empty input must produce empty slices, got %+v", tokens)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	input := "Tavolo per quattro persone alle 20:00 per Mario Rossi"
	first := Extract(lex, input)
	second := Extract(lex, input)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"Prenotazione", 1},
		{"tavolo per due", 3},
		{"  spaced   out  words ", 3},
	}
	for _, tt := range tests {
		if got := WordCount(tt.in); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
