// Package assemble renders retrieved evidence into the numbered context
// block handed to the language model, under a hard character budget.
package assemble

import (
	"fmt"
	"strings"

	"github.com/wing0907/lawai-engine/engine/domain"
)

const trimmedMarker = "…(trimmed)"

// Head renders the bracketed provenance head for one row: law article
// reference for statutes, court/date/case-number for case law.
func Head(r domain.Row) string {
	if r.IsCase() {
		return domain.FormatCaseRef(r)
	}
	if r.Law != "" {
		return r.Law + " " + domain.FormatStatuteRef(r)
	}
	return domain.FormatStatuteRef(r)
}

// Lines renders one numbered evidence line per row, each row's text
// capped at perItem runes. Statute rows lose their leading enumeration
// marker; the bracket head already names the paragraph.
func Lines(rows []domain.Row, perItem int) []string {
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		body := strings.TrimSpace(r.Text)
		if !r.IsCase() {
			body = domain.CleanLeadingCounter(r, body)
		}
		text := domain.Snippet(body, perItem)
		if r.IsCase() && r.Section != "" {
			lines = append(lines, fmt.Sprintf("%d. [%s] (%s) %s", i+1, Head(r), r.Section, text))
		} else {
			lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, Head(r), text))
		}
	}
	return lines
}

// CounterLines renders evidence for the counter-argument prompt, which
// carries the section inside the provenance bracket: for case rows
// "[court date case_no, section] text", for statute rows
// "[law article_ref] text".
func CounterLines(rows []domain.Row, perItem int) []string {
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		head := Head(r)
		if r.IsCase() {
			head = r.Court + " " + domain.TidyDate(r.JudgedAt) + " " + r.CaseNo
			if r.Section != "" {
				head += ", " + r.Section
			}
		}
		text := domain.Snippet(strings.TrimSpace(r.Text), perItem)
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, head, text))
	}
	return lines
}

// CounterBlock is Block in the counter-argument line format.
func CounterBlock(rows []domain.Row, perItem, maxChars int) string {
	return capBlock(strings.Join(CounterLines(rows, perItem), "\n"), maxChars)
}

// Block joins evidence lines into the final context, guaranteed to hold
// at most maxChars runes including the truncation marker it appends when
// it had to cut.
func Block(rows []domain.Row, perItem, maxChars int) string {
	return capBlock(strings.Join(Lines(rows, perItem), "\n"), maxChars)
}

func capBlock(block string, maxChars int) string {
	if maxChars <= 0 {
		return block
	}
	runes := []rune(block)
	if len(runes) <= maxChars {
		return block
	}
	marker := []rune(trimmedMarker)
	keep := maxChars - len(marker)
	if keep < 0 {
		keep = 0
		marker = marker[:maxChars]
	}
	return string(runes[:keep]) + string(marker)
}
