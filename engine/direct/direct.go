// Package direct answers queries that name a concrete statute provision
// straight from the retrieved provision text, without calling the
// language model.
package direct

import (
	"sort"
	"strconv"
	"strings"

	"github.com/wing0907/lawai-engine/engine/domain"
	"github.com/wing0907/lawai-engine/engine/query"
	"github.com/wing0907/lawai-engine/engine/retrieve"
)

// Options bound the direct answer size.
type Options struct {
	MaxLines int
}

func DefaultOptions() Options {
	return Options{MaxLines: 12}
}

// Answer resolves a parsed statute reference against the retrieved hits.
// ok is false when no hit belongs to the asked law and article, in which
// case the caller falls through to generation.
func Answer(sq query.StatuteQuery, hits []retrieve.Hit, opts Options) (text string, rows []domain.Row, ok bool) {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultOptions().MaxLines
	}

	var body []domain.Row
	var paras []domain.Row
	for _, h := range hits {
		r := h.Row
		if r.IsCase() || !domain.LawNameMatches(r.Law, sq.Law) {
			continue
		}
		if domain.NormalizeSubNo(r.ArticleNo) != sq.Article {
			continue
		}
		if domain.SubNo(r) == "" {
			body = append(body, r)
		} else {
			paras = append(paras, r)
		}
	}
	if len(body) == 0 && len(paras) == 0 {
		return "", nil, false
	}
	sortByParagraph(paras)
	paras = DedupParagraphs(paras)
	if len(body) > 1 {
		body = body[:1]
	}

	var picked []domain.Row
	switch {
	// An all-paragraph hint beats the single-paragraph capture: the
	// asker naming one paragraph next to "모든"/"요건" wants the whole
	// article.
	case sq.Paragraph != "" && !sq.HasRange() && !sq.WantAll:
		for _, r := range paras {
			if domain.SubNo(r) == sq.Paragraph {
				picked = append(picked, r)
				break
			}
		}
	case sq.HasRange():
		for _, r := range paras {
			n, err := strconv.Atoi(domain.SubNo(r))
			if err != nil {
				continue
			}
			if n >= sq.RangeLo && n <= sq.RangeHi {
				picked = append(picked, r)
			}
		}
	case sq.WantAll:
		picked = append(picked, body...)
		picked = append(picked, paras...)
	}

	if len(picked) == 0 {
		// Default resolution: the article body, else the lowest
		// paragraph, else whatever candidate came first.
		switch {
		case len(body) > 0:
			picked = body[:1]
		case len(paras) > 0:
			picked = paras[:1]
		}
	}
	if len(picked) == 0 {
		return "", nil, false
	}
	if len(picked) > opts.MaxLines {
		picked = picked[:opts.MaxLines]
	}

	lines := make([]string, 0, len(picked))
	for _, r := range picked {
		head := sq.Law + " " + domain.FormatStatuteRef(r)
		lines = append(lines, "["+head+"] "+domain.CleanLeadingCounter(r, strings.TrimSpace(r.Text)))
	}
	return strings.Join(lines, "\n"), picked, true
}

// sortByParagraph orders paragraph rows ascending by numeric subunit.
func sortByParagraph(paras []domain.Row) {
	sort.SliceStable(paras, func(i, j int) bool {
		return paraNum(paras[i]) < paraNum(paras[j])
	})
}

func paraNum(r domain.Row) int {
	n, err := strconv.Atoi(domain.SubNo(r))
	if err != nil {
		return 1 << 30
	}
	return n
}

// DedupParagraphs keeps the first row per subunit number.
func DedupParagraphs(paras []domain.Row) []domain.Row {
	seen := make(map[string]bool, len(paras))
	out := paras[:0:0]
	for _, r := range paras {
		k := domain.SubNo(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
