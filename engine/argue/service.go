// Package argue runs the adversarial simulation: given the opposing
// party's argument, it retrieves the case law and statutes that cut
// against it and produces a structured counter-analysis.
package argue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wing0907/lawai-engine/engine/answer"
	"github.com/wing0907/lawai-engine/engine/assemble"
	"github.com/wing0907/lawai-engine/engine/domain"
	"github.com/wing0907/lawai-engine/engine/prompt"
	"github.com/wing0907/lawai-engine/engine/query"
	"github.com/wing0907/lawai-engine/engine/rank"
	"github.com/wing0907/lawai-engine/engine/retrieve"
	"github.com/wing0907/lawai-engine/pkg/fn"
	"github.com/wing0907/lawai-engine/pkg/metrics"
	"github.com/wing0907/lawai-engine/pkg/resilience"
)

// Embedder embeds each query variant.
type Embedder interface {
	EmbedAll(ctx context.Context, texts []string, isQuery bool) ([][]float32, error)
}

// Searcher runs one retrieval per query vector.
type Searcher interface {
	SearchAll(ctx context.Context, qvecs [][]float32, topKEach int, minScore float32) ([]retrieve.Hit, error)
}

// claimMaxLen caps the summarized claim injected into prompts and query
// expansion.
const claimMaxLen = 200

// Options carry the simulation knobs. Retrieval casts a much wider net
// than question answering and compensates with a lower score floor plus
// reranking.
type Options struct {
	PreK         int     // per-corpus depth per query variant
	FinalK       int     // evidence rows handed to the model
	MinScore     float32 // variant retrieval floor
	MinCases     int     // guaranteed case-law rows
	MinLaws      int     // guaranteed statute rows
	MaxExpansion int     // keyword-derived query variants
	MaxCtxChars  int
	PerItemChars int
	MaxNewTokens int
	Rerank       rank.Options
}

func DefaultOptions() Options {
	return Options{
		PreK:         40,
		FinalK:       5,
		MinScore:     0.20,
		MinCases:     4,
		MinLaws:      2,
		MaxExpansion: query.DefaultMaxExpansion,
		MaxCtxChars:  8000,
		PerItemChars: 900,
		MaxNewTokens: 256,
		Rerank:       rank.DefaultOptions(),
	}
}

// Result is one finished simulation.
type Result struct {
	Analysis Analysis        `json:"analysis"`
	Sources  []domain.Source `json:"sources"`
	Claim    string          `json:"claim"`
}

// Service wires the simulation pipeline.
type Service struct {
	embed   Embedder
	search  Searcher
	gen     answer.Generator
	breaker *resilience.Breaker
	opts    Options
	log     *slog.Logger

	simulated *metrics.Counter
	degraded  *metrics.Counter
	latency   *metrics.Histogram
}

// New builds the service. reg may be nil when metrics are not served.
func New(embed Embedder, search Searcher, gen answer.Generator, opts Options, log *slog.Logger, reg *metrics.Registry) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		embed:   embed,
		search:  search,
		gen:     gen,
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		opts:    opts,
		log:     log,
	}
	if reg == nil {
		reg = metrics.New()
	}
	s.simulated = reg.Counter("lawai_simulations_total", "counter-argument simulations run")
	s.degraded = reg.Counter("lawai_simulation_degraded_total", "simulations whose model output was not valid JSON")
	s.latency = reg.Histogram("lawai_simulate_seconds", "end to end simulation latency", nil)
	return s
}

// Simulate analyzes the opponent's argument. The analysis degrades
// gracefully when the model emits malformed JSON; only pipeline failures
// return an error.
func (s *Service) Simulate(ctx context.Context, opponentText string) (Result, error) {
	start := time.Now()
	defer func() { s.latency.Since(start) }()
	s.simulated.Inc()

	cites := query.ExtractCitations(opponentText)
	claim := query.SummarizeClaim(opponentText, claimMaxLen)
	variants := query.Expand(claim, opponentText, cites, s.opts.MaxExpansion)

	qvecs, err := s.embed.EmbedAll(ctx, variants, true)
	if err != nil {
		return Result{}, fmt.Errorf("embed query variants: %w", err)
	}
	hits, err := s.search.SearchAll(ctx, qvecs, s.opts.PreK, s.opts.MinScore)
	if err != nil {
		return Result{}, err
	}

	scored := rank.Rerank(hits, claim, s.opts.Rerank)
	scored = rank.Dedup(scored)
	scored = rank.MixGuarantee(scored, s.opts.MinCases, s.opts.MinLaws, s.opts.FinalK)
	rows := fn.Map(scored, func(c rank.Scored) domain.Row { return c.Row })

	snippets := fn.Map(rows, func(r domain.Row) string { return r.Text })
	heuristicGaps := SpotGaps(opponentText, snippets)

	ctxBlock := assemble.CounterBlock(rows, s.opts.PerItemChars, s.opts.MaxCtxChars)
	p := prompt.ForCounter(claim, cites.CaseNos, cites.Laws, ctxBlock)

	var raw string
	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		var genErr error
		raw, genErr = s.gen.Generate(ctx, p.System, p.User, s.opts.MaxNewTokens)
		return genErr
	})
	if err != nil {
		return Result{}, fmt.Errorf("generate analysis: %w", err)
	}

	text := answer.Postprocess(raw)
	analysis := ParseAnalysis(text, heuristicGaps)
	if len(analysis.CounterPoints) == 1 && analysis.CounterPoints[0] == text {
		s.degraded.Inc()
		s.log.Warn("simulation output was not valid JSON", "chars", len(text))
	}

	s.log.Info("simulation complete",
		"variants", len(variants), "variants_hit", distinctVariants(scored),
		"hits", len(hits), "evidence", len(rows),
		"gaps", len(analysis.LogicalGaps))

	return Result{
		Analysis: analysis,
		Sources:  fn.Map(rows, domain.SourceOf),
		Claim:    claim,
	}, nil
}

// distinctVariants counts how many query variants contributed to the
// final evidence. A single dominating variant suggests the expansion
// added nothing for this claim.
func distinctVariants(scored []rank.Scored) int {
	seen := make(map[int]struct{}, len(scored))
	for _, c := range scored {
		seen[c.QueryIdx] = struct{}{}
	}
	return len(seen)
}
