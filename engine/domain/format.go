package domain

import "strings"

// FormatStatuteRef renders the article reference of a statute row, e.g.
// "제750조", "제250조 제1항", "제98조 3호". Rows with no article number fall
// back to their title and then to their hierarchical path.
func FormatStatuteRef(r Row) string {
	var parts []string
	if r.ArticleNo != "" {
		parts = append(parts, "제"+r.ArticleNo+"조")
	}
	if sub := SubNo(r); sub != "" {
		switch r.Unit {
		case UnitParagraph:
			parts = append(parts, "제"+sub+"항")
		case UnitClause:
			parts = append(parts, sub+"호")
		case UnitItem:
			parts = append(parts, sub+"목")
		}
	}
	if len(parts) == 0 {
		if r.Title != "" {
			return r.Title
		}
		return r.Path
	}
	return strings.Join(parts, " ")
}

// FormatCaseRef renders a compact case reference, e.g.
// "대법원 2000-12-22, 2000다56259, 급여등".
func FormatCaseRef(r Row) string {
	court := r.Court
	if court == "" {
		court = "법원"
	}
	base := court + " " + TidyDate(r.JudgedAt) + ", " + r.CaseNo
	if r.CaseName != "" {
		return base + ", " + r.CaseName
	}
	return base
}

// TidyDate converts an 8-digit judgment date like "20001222" to
// "2000-12-22"; anything else passes through.
func TidyDate(d string) string {
	if len(d) != 8 {
		return d
	}
	for _, c := range d {
		if c < '0' || c > '9' {
			return d
		}
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:8]
}

// Snippet collapses newlines and truncates to at most width runes,
// appending "…" when trimmed.
func Snippet(text string, width int) string {
	t := strings.Join(strings.Fields(text), " ")
	if width <= 0 {
		return t
	}
	runes := []rune(t)
	if len(runes) <= width {
		return t
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
