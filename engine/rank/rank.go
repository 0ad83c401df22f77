// Package rank turns raw similarity hits into the final evidence list:
// keyword- and section-aware rescoring, duplicate removal, and a
// guaranteed statute/case mix.
package rank

import (
	"sort"
	"strings"

	"github.com/wing0907/lawai-engine/engine/domain"
	"github.com/wing0907/lawai-engine/engine/query"
	"github.com/wing0907/lawai-engine/engine/retrieve"
	"github.com/wing0907/lawai-engine/pkg/fn"
)

// Options tune the fused score. Raw similarity keeps weight Alpha; the
// lexical and section signals share the rest.
type Options struct {
	Alpha                float64 // weight of the raw vector score
	KeywordHitWeight     float64 // per shared keyword
	KeywordOverlapCap    float64 // ceiling for the keyword term
	HoldingBoost         float64 // 판시사항 and 판결요지 sections
	OpinionBoost         float64 // 판례내용 full-opinion chunks
	StatuteBoost         float64 // statute rows rank above opinions
	SupplementaryPenalty float64 // 부칙 rows are rarely the point
}

func DefaultOptions() Options {
	return Options{
		Alpha:                0.75,
		KeywordHitWeight:     0.02,
		KeywordOverlapCap:    0.1,
		HoldingBoost:         0.06,
		OpinionBoost:         0.02,
		StatuteBoost:         0.04,
		SupplementaryPenalty: 0.05,
	}
}

// Scored pairs a hit with its fused score. The raw score stays on the
// embedded hit for logging.
type Scored struct {
	retrieve.Hit
	Final float64
}

// Rerank fuses each hit's vector score with keyword overlap against the
// query and a section prior, and resorts by the fused score.
func Rerank(hits []retrieve.Hit, queryText string, opts Options) []Scored {
	kws := query.Keywords(queryText, 12)
	scored := make([]Scored, 0, len(hits))
	for _, h := range hits {
		bonus := keywordOverlap(h.Row.Text, kws, opts) + sectionBoost(h.Row, opts)
		final := opts.Alpha*float64(h.Score) + (1-opts.Alpha)*bonus
		scored = append(scored, Scored{Hit: h, Final: final})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Final > scored[j].Final })
	return scored
}

func keywordOverlap(text string, kws []string, opts Options) float64 {
	// Keywords come out of the extractor lowercased.
	haystack := strings.ToLower(text)
	hits := 0
	for _, kw := range kws {
		if strings.Contains(haystack, kw) {
			hits++
		}
	}
	v := opts.KeywordHitWeight * float64(hits)
	if v > opts.KeywordOverlapCap {
		v = opts.KeywordOverlapCap
	}
	return v
}

func sectionBoost(row domain.Row, opts Options) float64 {
	if row.IsCase() {
		switch row.Section {
		case domain.SectionHolding, domain.SectionSummary:
			return opts.HoldingBoost
		case domain.SectionOpinion:
			return opts.OpinionBoost
		}
		return 0
	}
	if row.Unit == domain.UnitSupplementary {
		return -opts.SupplementaryPenalty
	}
	return opts.StatuteBoost
}

// dedupKey is the composite identity of a chunk. Serial number alone is
// not enough: one judgment yields several sections, and statute rows
// have no serial at all.
type dedupKey struct {
	id      string
	path    string
	section string
	prefix  string
}

func keyOf(s Scored) dedupKey {
	id := s.Row.SerialNo
	if id == "" {
		id = s.Row.ID
	}
	return dedupKey{
		id:      id,
		path:    s.Row.Path,
		section: s.Row.Section,
		prefix:  textPrefix(s.Row.Text, 96),
	}
}

func textPrefix(text string, n int) string {
	r := []rune(text)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// Dedup keeps the first occurrence of each chunk, preserving order. The
// input is already sorted best-first, so first occurrence is also the
// best-scored one.
func Dedup(scored []Scored) []Scored {
	return fn.UniqueBy(scored, keyOf)
}

// MixGuarantee re-selects from a scored list so the result carries at
// least minCases case chunks and minLaws statute chunks when the pool
// has them, fills the remainder by rank, and caps at maxTotal. Relative
// order within the result follows the input ranking.
func MixGuarantee(scored []Scored, minCases, minLaws, maxTotal int) []Scored {
	if maxTotal <= 0 || len(scored) == 0 {
		return nil
	}

	picked := make([]bool, len(scored))
	take := func(want int, match func(Scored) bool) {
		for i, s := range scored {
			if want <= 0 {
				return
			}
			if !picked[i] && match(s) {
				picked[i] = true
				want--
			}
		}
	}
	take(min(minCases, maxTotal), func(s Scored) bool { return s.Row.IsCase() })
	take(min(minLaws, maxTotal), func(s Scored) bool { return !s.Row.IsCase() })

	count := 0
	for _, p := range picked {
		if p {
			count++
		}
	}
	take(maxTotal-count, func(Scored) bool { return true })

	out := make([]Scored, 0, maxTotal)
	for i, s := range scored {
		if picked[i] && len(out) < maxTotal {
			out = append(out, s)
		}
	}
	return out
}
