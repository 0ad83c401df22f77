package rank

import (
	"github.com/wing0907/lawai-engine/engine/domain"
	"github.com/wing0907/lawai-engine/engine/query"
	"github.com/wing0907/lawai-engine/engine/retrieve"
)

// exactTier orders hits relative to a parsed statute reference. Lower
// wins.
const (
	tierExact = iota // same law, same article, same paragraph
	tierArticle
	tierLaw
	tierOther
)

func tierOf(row domain.Row, sq query.StatuteQuery) int {
	if row.IsCase() || !domain.LawNameMatches(row.Law, sq.Law) {
		return tierOther
	}
	if domain.NormalizeSubNo(row.ArticleNo) != sq.Article {
		return tierLaw
	}
	if sq.Paragraph == "" {
		return tierExact
	}
	sub := domain.SubNo(row)
	if sub == sq.Paragraph {
		return tierExact
	}
	return tierArticle
}

// PartitionExact reorders hits so chunks matching the asked statute come
// first: exact paragraph, then the rest of the article, then the rest of
// the law, then everything else. Relative order inside each tier is
// preserved so the similarity ranking still decides ties.
func PartitionExact(hits []retrieve.Hit, sq query.StatuteQuery) []retrieve.Hit {
	if sq.Law == "" {
		return hits
	}
	tiers := [4][]retrieve.Hit{}
	for _, h := range hits {
		t := tierOf(h.Row, sq)
		tiers[t] = append(tiers[t], h)
	}
	out := make([]retrieve.Hit, 0, len(hits))
	for _, t := range tiers {
		out = append(out, t...)
	}
	return out
}
