package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wing0907/lawai-engine/engine/domain"
)

// The short-circuit only triggers for the codes whose corpora are indexed
// with structured article metadata.
var statuteQueryPat = regexp.MustCompile(`(헌법|민법|형법)\s*제?\s*(\d+)\s*조(?:\s*제?\s*(\d+)\s*항)?`)

var (
	allHintPat = regexp.MustCompile(`모든|전부|전체|각\s*항|요건`)
	rangePat   = regexp.MustCompile(`(\d+)\s*[-~]\s*(\d+)\s*항`)
)

// forceAllKeywords name multi-requirement doctrines where the asker almost
// always wants every paragraph of the article.
var forceAllKeywords = []string{"정당행위", "정당방위", "긴급피난", "불법행위", "요건"}

// StatuteQuery is a parsed exact statute reference from a user query.
type StatuteQuery struct {
	Law       string
	Article   string
	Paragraph string // normalized digits, empty when the whole article is asked
	RangeLo   int    // inclusive paragraph range, 0 when absent
	RangeHi   int
	WantAll   bool
}

// HasRange reports whether the query asked for a paragraph range.
func (q StatuteQuery) HasRange() bool { return q.RangeLo > 0 }

// ParseStatuteQuery recognizes queries that unambiguously name a statute
// article, e.g. "형법 제250조 1항", "민법 750조", "헌법 제12조 1~3항".
// The second return value is false when the query names no article.
func ParseStatuteQuery(q string) (StatuteQuery, bool) {
	m := statuteQueryPat.FindStringSubmatch(q)
	if m == nil {
		return StatuteQuery{}, false
	}
	out := StatuteQuery{Law: m[1], Article: m[2]}
	if m[3] != "" {
		out.Paragraph = domain.NormalizeSubNo(m[3])
	}
	if r := rangePat.FindStringSubmatch(q); r != nil {
		lo, _ := strconv.Atoi(r[1])
		hi, _ := strconv.Atoi(r[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		out.RangeLo, out.RangeHi = lo, hi
		out.Paragraph = "" // a range supersedes the single-paragraph capture
	}
	if allHintPat.MatchString(q) {
		out.WantAll = true
	} else {
		for _, kw := range forceAllKeywords {
			if strings.Contains(q, kw) {
				out.WantAll = true
				break
			}
		}
	}
	return out, true
}
