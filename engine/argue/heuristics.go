package argue

import (
	"fmt"
	"strings"
)

// keyFacts are the factual elements that decide nuisance and tort
// disputes in apartment-noise litigation, the corpus this mode was tuned
// on. A fact the opponent leans on but the evidence never mentions is a
// gap worth surfacing regardless of what the model reports.
var keyFacts = []string{
	"소음", "진동", "악취", "손해액", "불법행위", "과실", "인과관계",
	"야간", "지속성", "측정치", "공동주택", "관리주체", "입주자대표회의",
}

const fallbackGap = "컨텍스트 기반으로 추가 확인 필요"

// SpotGaps flags every key fact present in the opponent's text but
// absent from all context snippets.
func SpotGaps(opponentText string, snippets []string) []string {
	var gaps []string
	for _, fact := range keyFacts {
		if !strings.Contains(opponentText, fact) {
			continue
		}
		inContext := false
		for _, snip := range snippets {
			if strings.Contains(snip, fact) {
				inContext = true
				break
			}
		}
		if !inContext {
			gaps = append(gaps, fmt.Sprintf("상대가 강조한 '%s' 요소에 대한 근거가 컨텍스트에서 확인되지 않음", fact))
		}
	}
	return gaps
}

// unionGaps merges model-reported and heuristic gaps, first occurrence
// wins, order preserved.
func unionGaps(fromModel, fromHeuristics []string) []string {
	seen := make(map[string]bool, len(fromModel)+len(fromHeuristics))
	var out []string
	for _, g := range append(append([]string{}, fromModel...), fromHeuristics...) {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
