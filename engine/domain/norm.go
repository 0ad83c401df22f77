package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// circledToDigit maps the circled paragraph markers ①..⑳ used in statute
// text to plain digit strings.
var circledToDigit = map[string]string{
	"①": "1", "②": "2", "③": "3", "④": "4", "⑤": "5",
	"⑥": "6", "⑦": "7", "⑧": "8", "⑨": "9", "⑩": "10",
	"⑪": "11", "⑫": "12", "⑬": "13", "⑭": "14", "⑮": "15",
	"⑯": "16", "⑰": "17", "⑱": "18", "⑲": "19", "⑳": "20",
}

var digitToCircled = func() map[string]string {
	m := make(map[string]string, len(circledToDigit))
	for c, d := range circledToDigit {
		m[d] = c
	}
	return m
}()

// NFKC applies Unicode NFKC normalization, folding full-width digits and
// compatibility forms common in scraped legal text.
func NFKC(s string) string {
	if s == "" {
		return ""
	}
	return norm.NFKC.String(s)
}

// NormalizeSubNo normalizes a paragraph/clause/item number: NFKC plus
// circled-numeral to digit conversion.
func NormalizeSubNo(s string) string {
	s = NFKC(s)
	if d, ok := circledToDigit[s]; ok {
		return d
	}
	return s
}

// Circled returns the circled form of a plain paragraph number, or the
// input when no circled form exists (beyond ⑳).
func Circled(digits string) string {
	if c, ok := digitToCircled[digits]; ok {
		return c
	}
	return digits
}

// normalizeName lowers a law name to comparison form: NFKC and no spaces.
func normalizeName(s string) string {
	return strings.ReplaceAll(NFKC(s), " ", "")
}

// LawAliases maps a canonical short law name to the spellings the corpus
// may carry.
var LawAliases = map[string][]string{
	"헌법": {"헌법", "대한민국헌법"},
	"민법": {"민법"},
	"형법": {"형법"},
}

// LawNameMatches reports whether a row's law name effectively names the
// wanted law, tolerating aliases and containment ("헌법" vs "대한민국헌법").
func LawNameMatches(rowLaw, want string) bool {
	if rowLaw == "" || want == "" {
		return false
	}
	rl := normalizeName(rowLaw)
	for _, alias := range aliasesOf(want) {
		if rl == normalizeName(alias) {
			return true
		}
	}
	w := normalizeName(want)
	return strings.Contains(rl, w) || strings.Contains(w, rl)
}

func aliasesOf(name string) []string {
	if al, ok := LawAliases[name]; ok {
		return al
	}
	return []string{name}
}

// SubNo extracts the normalized subunit number from a composite row id
// like "250::1" or "250::①". Empty for article-body rows.
func SubNo(r Row) string {
	switch r.Unit {
	case UnitParagraph, UnitClause, UnitItem:
	default:
		return ""
	}
	_, sub, ok := strings.Cut(r.ID, "::")
	if !ok {
		return ""
	}
	return NormalizeSubNo(sub)
}

var leadingMarkerRest = regexp.MustCompile(`^[\.\)\s\-]+`)

// CleanLeadingCounter strips the row's own enumeration marker from the
// start of its text, exactly once: "①사람을 살해한 자는..." becomes
// "사람을 살해한 자는..." for the 제1항 row. Text that does not start with
// the row's marker is returned unchanged.
func CleanLeadingCounter(r Row, text string) string {
	if text == "" {
		return text
	}
	switch r.Unit {
	case UnitParagraph, UnitClause, UnitItem:
	default:
		return text
	}
	sub := SubNo(r)
	if sub == "" {
		return text
	}
	if circ := Circled(sub); circ != sub && strings.HasPrefix(text, circ) {
		return leadingMarkerRest.ReplaceAllString(strings.TrimPrefix(text, circ), "")
	}
	// A plain digit marker counts only when a separator follows it;
	// "1. 본문" carries a marker, "10년 이하의 징역" does not.
	if rest, ok := strings.CutPrefix(text, sub); ok {
		if sep := leadingMarkerRest.FindString(rest); sep != "" {
			return rest[len(sep):]
		}
	}
	return text
}
