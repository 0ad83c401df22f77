// Package query turns free-form Korean legal text into retrieval inputs:
// parsed citations, extracted keywords, a summarized claim, and an
// expanded set of search queries.
package query

import (
	"regexp"
	"strings"

	"github.com/wing0907/lawai-engine/pkg/fn"
)

// Case numbers: 2-4 digit year, court-type marker, 3-6 digit serial.
var caseNoPat = regexp.MustCompile(`\d{2,4}(?:다|도|두|후|마|자)\d{3,6}`)

// Statute references: a law name ending in 법, an article number, and an
// optional paragraph number.
var statutePat = regexp.MustCompile(`[가-힣]+법\s*제?\s*\d+\s*조(?:\s*제?\s*\d+\s*항)?`)

// Citations holds the references parsed out of a piece of text.
type Citations struct {
	CaseNos []string `json:"case_nos"`
	Laws    []string `json:"laws"`
}

// ExtractCitations pulls case numbers and statute references from text,
// deduplicated, first occurrence first.
func ExtractCitations(text string) Citations {
	return Citations{
		CaseNos: fn.Unique(caseNoPat.FindAllString(text, -1)),
		Laws: fn.Unique(fn.Map(statutePat.FindAllString(text, -1), func(s string) string {
			return strings.Join(strings.Fields(s), " ")
		})),
	}
}

// SummarizeClaim extracts a rough core claim: the first non-empty line,
// capped at maxLen runes.
func SummarizeClaim(text string, maxLen int) string {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		runes := []rune(s)
		if maxLen > 0 && len(runes) > maxLen {
			return string(runes[:maxLen]) + "…"
		}
		return s
	}
	return ""
}
