package query

import (
	"strings"

	"github.com/wing0907/lawai-engine/pkg/fn"
)

// DefaultMaxExpansion bounds how many extracted keywords get their own
// suffixed query variants.
const DefaultMaxExpansion = 6

// Expand builds the ordered, deduplicated query set for a claim: the claim
// itself, the opponent text, precedent/summary/doctrine suffix variants,
// keyword-suffixed variants, and one targeted query per parsed citation.
// First-seen order is preserved.
func Expand(claim, opponentText string, cites Citations, maxExpansion int) []string {
	if maxExpansion <= 0 {
		maxExpansion = DefaultMaxExpansion
	}

	opponent := opponentText
	if opponent == "" {
		opponent = claim
	}

	queries := []string{
		claim,
		opponent,
		claim + " 판례",
		claim + " 요지",
		claim + " 법리",
	}

	kws := Keywords(claim+" "+opponentText, 8)
	if len(kws) > maxExpansion {
		kws = kws[:maxExpansion]
	}
	for _, w := range kws {
		queries = append(queries, w+" 판례", w+" 법리", w+" 요지")
	}

	for _, c := range cites.CaseNos {
		queries = append(queries, "사건번호 "+c)
	}
	queries = append(queries, cites.Laws...)

	queries = fn.Map(queries, strings.TrimSpace)
	return fn.Unique(fn.Filter(queries, func(q string) bool { return q != "" }))
}
