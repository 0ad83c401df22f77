// Package retrieve fans a query vector out across every loaded corpus
// index and joins the scored offsets back to their metadata rows.
package retrieve

import (
	"context"
	"fmt"
	"sort"

	"github.com/wing0907/lawai-engine/engine/bundle"
	"github.com/wing0907/lawai-engine/engine/domain"
)

// Hit is one retrieved chunk with its similarity score and, for
// multi-query retrieval, the index of the query variant that found it.
type Hit struct {
	Row      domain.Row
	Score    float32
	QueryIdx int
}

// Retriever searches all bundles with one vector space. Bundles are
// loaded once at startup so no locking is needed.
type Retriever struct {
	bundles []bundle.Bundle
}

func New(bundles []bundle.Bundle) *Retriever {
	return &Retriever{bundles: bundles}
}

// Bundles exposes the loaded corpora for health and stats endpoints.
func (r *Retriever) Bundles() []bundle.Bundle { return r.bundles }

// Search queries every bundle for the topKEach nearest chunks, drops
// hits below minScore and returns the union sorted by score descending.
// A failing index fails the whole search; partial results would skew
// the statute/case mix downstream.
func (r *Retriever) Search(ctx context.Context, qvec []float32, topKEach int, minScore float32) ([]Hit, error) {
	var hits []Hit
	for _, b := range r.bundles {
		scored, err := b.Index.Search(ctx, qvec, topKEach)
		if err != nil {
			return nil, fmt.Errorf("retrieve: search %s: %w", b.Corpus, err)
		}
		for _, s := range scored {
			if s.Score < minScore {
				continue
			}
			row, ok := b.Row(s.Offset)
			if !ok {
				// Index has points the metadata does not know about.
				return nil, fmt.Errorf("retrieve: %s offset %d beyond %d rows", b.Corpus, s.Offset, len(b.Rows))
			}
			hits = append(hits, Hit{Row: row, Score: s.Score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits, nil
}

// SearchAll runs Search once per query vector, tagging each hit with the
// variant that produced it, and merges the results sorted by score. The
// same chunk found by several variants appears several times; dedup is
// the ranker's job, after fusion has seen every score.
func (r *Retriever) SearchAll(ctx context.Context, qvecs [][]float32, topKEach int, minScore float32) ([]Hit, error) {
	var all []Hit
	for qi, qvec := range qvecs {
		hits, err := r.Search(ctx, qvec, topKEach, minScore)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			hits[i].QueryIdx = qi
		}
		all = append(all, hits...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	return all, nil
}
