package query

import (
	"regexp"
	"sort"
	"strings"
)

var tokenPat = regexp.MustCompile(`[A-Za-z0-9]+|[가-힣]{2,}`)

var krStopwords = map[string]bool{
	"및": true, "또는": true, "그리고": true, "그러나": true, "등": true,
	"관련": true, "여부": true, "기준": true, "요건": true, "판단": true,
	"관계": true, "인정": true, "책임": true, "의무": true, "효력": true,
	"요의": true, "관": true, "문제": true, "사안": true, "사건": true,
	"해당": true, "경우": true, "것": true, "있다": true, "없다": true,
	"한다": true, "될": true, "수": true, "있는": true, "위": true, "같은": true,
}

var enStopwords = map[string]bool{
	"and": true, "or": true, "the": true, "of": true, "to": true,
	"in": true, "on": true, "with": true, "for": true, "by": true,
	"about": true, "case": true, "issue": true, "whether": true,
	"shall": true, "may": true,
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Keywords tokenizes text into content words and returns the topK most
// frequent, ties broken by first occurrence. Tokens are lowercased
// alphanumeric runs or Korean runs of length >= 2; stopwords, pure digits,
// and single characters are dropped. Deterministic for a given input.
func Keywords(text string, topK int) []string {
	counts := make(map[string]int)
	firstAt := make(map[string]int)
	for i, tok := range tokenPat.FindAllString(text, -1) {
		t := strings.ToLower(tok)
		if krStopwords[t] || enStopwords[t] || isDigits(t) {
			continue
		}
		if len([]rune(t)) < 2 {
			continue
		}
		if _, seen := counts[t]; !seen {
			firstAt[t] = i
		}
		counts[t]++
	}

	toks := make([]string, 0, len(counts))
	for t := range counts {
		toks = append(toks, t)
	}
	sort.Slice(toks, func(i, j int) bool {
		if counts[toks[i]] != counts[toks[j]] {
			return counts[toks[i]] > counts[toks[j]]
		}
		return firstAt[toks[i]] < firstAt[toks[j]]
	})

	if topK > 0 && len(toks) > topK {
		toks = toks[:topK]
	}
	return toks
}
