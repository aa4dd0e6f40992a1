package lexicon

import "regexp"

// Built-in tables for the three launch languages. The capture groups use
// \p{L} rather than \w so accented words ("ventitré", "dieciséis") match.

func italian() *Table {
	return &Table{
		NumberWords: map[string]int{
			"uno": 1, "una": 1, "due": 2, "tre": 3, "quattro": 4,
			"cinque": 5, "sei": 6, "sette": 7, "otto": 8, "nove": 9,
			"dieci": 10, "undici": 11, "dodici": 12, "tredici": 13,
			"quattordici": 14, "quindici": 15, "sedici": 16,
			"diciassette": 17, "diciotto": 18, "diciannove": 19,
			"venti": 20, "ventuno": 21, "ventidue": 22,
			"ventitre": 23, "ventitré": 23,
		},
		TimeWords: []string{
			"alle", "ore", "orario", "stasera", "pranzo", "cena",
			"mezzogiorno", "mezzanotte",
		},
		PartyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bper\s+([\p{L}\d]+)`),
			regexp.MustCompile(`(?i)\b([\p{L}\d]+)\s+person[ae]\b`),
		},
		TimePhrasePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\balle\s+ore\s+([\p{L}\d]+)`),
			regexp.MustCompile(`(?i)\balle\s+([\p{L}\d]+)`),
		},
		NameStoplist: []string{
			"Buongiorno", "Buonasera", "Salve", "Ciao", "Grazie",
			"Tavolo", "Prenotazione", "Prenota", "Persone", "Stasera",
		},
	}
}

func english() *Table {
	return &Table{
		NumberWords: map[string]int{
			"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
			"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
			"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
			"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
			"nineteen": 19, "twenty": 20,
		},
		TimeWords: []string{
			"at", "o'clock", "am", "pm", "noon", "midnight", "tonight",
			"lunch", "dinner",
		},
		PartyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bfor\s+([\p{L}\d]+)`),
			regexp.MustCompile(`(?i)\bparty\s+of\s+([\p{L}\d]+)`),
			regexp.MustCompile(`(?i)\b([\p{L}\d]+)\s+people\b`),
		},
		TimePhrasePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bat\s+([\p{L}\d]+)`),
		},
		NameStoplist: []string{
			"Hello", "Good", "Thanks", "Thank", "Please", "Table",
			"Booking", "Reservation", "Reserve", "Tonight", "People",
		},
	}
}

func spanish() *Table {
	return &Table{
		NumberWords: map[string]int{
			"uno": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4,
			"cinco": 5, "seis": 6, "siete": 7, "ocho": 8, "nueve": 9,
			"diez": 10, "once": 11, "doce": 12, "trece": 13,
			"catorce": 14, "quince": 15, "dieciseis": 16, "dieciséis": 16,
			"diecisiete": 17, "dieciocho": 18, "diecinueve": 19,
			"veinte": 20, "veintiuno": 21, "veintidos": 22,
			"veintidós": 22, "veintitres": 23, "veintitrés": 23,
		},
		TimeWords: []string{
			"las", "hora", "mediodia", "mediodía", "medianoche",
			"tarde", "noche", "almuerzo", "cena",
		},
		PartyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bpara\s+([\p{L}\d]+)`),
			regexp.MustCompile(`(?i)\b([\p{L}\d]+)\s+personas?\b`),
		},
		TimePhrasePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\ba\s+las?\s+([\p{L}\d]+)`),
		},
		NameStoplist: []string{
			"Hola", "Buenas", "Buenos", "Gracias", "Mesa", "Reserva",
			"Reservar", "Personas", "Noche",
		},
	}
}
