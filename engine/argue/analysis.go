package argue

import (
	"encoding/json"
	"strings"
)

// Analysis is the structured counter-argument the simulation returns.
type Analysis struct {
	LogicalGaps   []string `json:"logical_gaps"`
	CounterPoints []string `json:"counter_points"`
	Supports      []string `json:"supports"`
	Followups     []string `json:"followups"`
}

// ParseAnalysis extracts the analysis object from model output. Models
// wrap JSON in code fences or prose more often than not, so the parser
// tries the raw text, then the fenced block, then the outermost brace
// pair. A text that never parses becomes a degraded analysis carrying
// the whole completion as a single counter point.
func ParseAnalysis(text string, heuristicGaps []string) Analysis {
	for _, candidate := range jsonCandidates(text) {
		var a Analysis
		if err := json.Unmarshal([]byte(candidate), &a); err == nil {
			a.LogicalGaps = unionGaps(a.LogicalGaps, heuristicGaps)
			return a
		}
	}

	gaps := heuristicGaps
	if len(gaps) == 0 {
		gaps = []string{fallbackGap}
	}
	var points []string
	if t := strings.TrimSpace(text); t != "" {
		points = []string{t}
	}
	return Analysis{
		LogicalGaps:   gaps,
		CounterPoints: points,
		Supports:      []string{},
		Followups:     []string{},
	}
}

func jsonCandidates(text string) []string {
	var out []string
	t := strings.TrimSpace(text)
	if t != "" {
		out = append(out, t)
	}
	if fenced := stripFences(t); fenced != "" && fenced != t {
		out = append(out, fenced)
	}
	if lo, hi := strings.Index(t, "{"), strings.LastIndex(t, "}"); lo >= 0 && hi > lo {
		out = append(out, t[lo:hi+1])
	}
	return out
}

func stripFences(t string) string {
	if !strings.HasPrefix(t, "```") {
		return ""
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	if i := strings.LastIndex(t, "```"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
