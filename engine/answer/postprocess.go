package answer

import (
	"regexp"
	"strings"
)

var (
	// Base models sometimes echo the chat scaffolding back; any line
	// led by a role marker is noise.
	roleLinePat = regexp.MustCompile(`(?i)^\s*\[?(SYSTEM|USER|ASSISTANT)\]?\s*:?.*$`)
	// Bare timestamps leak from training data.
	timestampPat = regexp.MustCompile(`^\d{2,4}[-/.: ]\d{1,2}[-/.: ]\d{1,2}(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?$`)
)

// Postprocess scrubs model output: role-marker lines and bare
// timestamps go, blank lines collapse, and a line repeated three or
// more times in a row is cut to two.
func Postprocess(text string) string {
	var cleaned []string
	for _, ln := range strings.Split(text, "\n") {
		s := strings.TrimSpace(ln)
		if s == "" || roleLinePat.MatchString(s) || timestampPat.MatchString(s) {
			continue
		}
		cleaned = append(cleaned, ln)
	}

	var out []string
	prev := ""
	repeat := 0
	for _, ln := range cleaned {
		cur := strings.TrimSpace(ln)
		if cur == prev {
			repeat++
			if repeat >= 2 {
				continue
			}
		} else {
			prev = cur
			repeat = 0
		}
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
