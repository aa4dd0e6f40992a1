// Package lexicon holds the per-locale word tables and phrase patterns the
// transcript heuristics run against. Tables are plain data so a locale can
// be added or adjusted from a YAML file without touching extraction logic.
package lexicon

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table holds the heuristic vocabulary for one locale.
type Table struct {
	// NumberWords maps lowercase spelled-out numbers to their value.
	NumberWords map[string]int

	// TimeWords are lowercase tokens whose presence counts as a time
	// reference ("alle", "at", "pm", ...).
	TimeWords []string

	// PartyPatterns capture a party-size candidate in group 1
	// ("per due", "for two", "4 people").
	PartyPatterns []*regexp.Regexp

	// TimePhrasePatterns capture an hour candidate in group 1
	// ("alle otto", "at eight", "a las ocho").
	TimePhrasePatterns []*regexp.Regexp

	// NameStoplist lists capitalized domain words that must not be taken
	// for guest names ("Buongiorno", "Table", "Mesa").
	NameStoplist []string
}

// Lexicon is a set of locale tables. The heuristic functions match against
// every table so mixed-language utterances still resolve; ForLocale narrows
// to a single locale when the caller wants that.
type Lexicon struct {
	tables map[string]*Table

	numberWords map[string]int
	timeWords   map[string]struct{}
	stoplist    map[string]struct{}
	party       []*regexp.Regexp
	timePhrases []*regexp.Regexp
}

// New builds a Lexicon from locale tables keyed by language code ("it",
// "en", "es").
func New(tables map[string]*Table) *Lexicon {
	l := &Lexicon{tables: tables}
	l.rebuild()
	return l
}

// Default returns the built-in Italian/English/Spanish lexicon.
func Default() *Lexicon {
	return New(map[string]*Table{
		"it": italian(),
		"en": english(),
		"es": spanish(),
	})
}

// Locales lists the language codes present in the lexicon.
func (l *Lexicon) Locales() []string {
	out := make([]string, 0, len(l.tables))
	for k := range l.tables {
		out = append(out, k)
	}
	return out
}

// ForLocale returns the table for a BCP-47 tag ("it-IT" resolves to "it"),
// or nil when the language is not covered. Callers that get nil should keep
// using the full lexicon.
func (l *Lexicon) ForLocale(tag string) *Table {
	lang := strings.ToLower(tag)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return l.tables[lang]
}

// NumberWord resolves a spelled-out number across all locales.
func (l *Lexicon) NumberWord(word string) (int, bool) {
	n, ok := l.numberWords[strings.ToLower(word)]
	return n, ok
}

// IsTimeWord reports whether a lowercase token is a time reference in any
// locale.
func (l *Lexicon) IsTimeWord(token string) bool {
	_, ok := l.timeWords[token]
	return ok
}

// IsStopword reports whether a capitalized token is a known domain word
// rather than a plausible guest name.
func (l *Lexicon) IsStopword(token string) bool {
	_, ok := l.stoplist[token]
	return ok
}

// PartyPatterns returns the party-size phrase patterns of every locale, in
// a stable locale order (it, en, es, then any extras).
func (l *Lexicon) PartyPatterns() []*regexp.Regexp {
	return l.party
}

// TimePhrasePatterns returns the spoken-hour phrase patterns of every
// locale, in the same stable order.
func (l *Lexicon) TimePhrasePatterns() []*regexp.Regexp {
	return l.timePhrases
}

// localeFile is the on-disk YAML shape of one locale table.
type localeFile struct {
	NumberWords  map[string]int `yaml:"number_words"`
	TimeWords    []string       `yaml:"time_words"`
	PartyPhrases []string       `yaml:"party_phrases"`
	TimePhrases  []string       `yaml:"time_phrases"`
	NameStoplist []string       `yaml:"name_stoplist"`
}

// LoadDir merges every `<lang>.yaml` file under dir into the lexicon,
// replacing the table for that language. Files with invalid patterns are
// rejected as a whole.
func (l *Lexicon) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("lexicon: read dir %q: %w", dir, err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		lang := strings.TrimSuffix(name, ".yaml")
		tbl, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		l.tables[lang] = tbl
	}
	l.rebuild()
	return nil
}

func loadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: read %q: %w", path, err)
	}

	var lf localeFile
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&lf); err != nil {
		return nil, fmt.Errorf("lexicon: parse %q: %w", path, err)
	}

	tbl := &Table{
		NumberWords:  lf.NumberWords,
		TimeWords:    lf.TimeWords,
		NameStoplist: lf.NameStoplist,
	}
	for _, p := range lf.PartyPhrases {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("lexicon: %q: party phrase %q: %w", path, p, err)
		}
		tbl.PartyPatterns = append(tbl.PartyPatterns, re)
	}
	for _, p := range lf.TimePhrases {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("lexicon: %q: time phrase %q: %w", path, p, err)
		}
		tbl.TimePhrasePatterns = append(tbl.TimePhrasePatterns, re)
	}
	return tbl, nil
}

// rebuild recomputes the merged lookup structures after tables change.
func (l *Lexicon) rebuild() {
	l.numberWords = map[string]int{}
	l.timeWords = map[string]struct{}{}
	l.stoplist = map[string]struct{}{}
	l.party = nil
	l.timePhrases = nil

	for _, lang := range orderedLangs(l.tables) {
		tbl := l.tables[lang]
		for w, n := range tbl.NumberWords {
			l.numberWords[strings.ToLower(w)] = n
		}
		for _, w := range tbl.TimeWords {
			l.timeWords[strings.ToLower(w)] = struct{}{}
		}
		for _, w := range tbl.NameStoplist {
			l.stoplist[w] = struct{}{}
		}
		l.party = append(l.party, tbl.PartyPatterns...)
		l.timePhrases = append(l.timePhrases, tbl.TimePhrasePatterns...)
	}
}

// orderedLangs keeps pattern precedence stable: the built-in locales first,
// then anything loaded on top, alphabetically.
func orderedLangs(tables map[string]*Table) []string {
	known := []string{"it", "en", "es"}
	out := make([]string, 0, len(tables))
	seen := map[string]bool{}
	for _, k := range known {
		if _, ok := tables[k]; ok {
			out = append(out, k)
			seen[k] = true
		}
	}
	var extra []string
	for k := range tables {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	for i := 0; i < len(extra); i++ {
		for j := i + 1; j < len(extra); j++ {
			if extra[j] < extra[i] {
				extra[i], extra[j] = extra[j], extra[i]
			}
		}
	}
	return append(out, extra...)
}
