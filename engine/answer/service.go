// Package answer runs the question-answering pipeline: embed the
// question, retrieve across every corpus, prefer exact statute matches,
// and either quote the provision directly or ground a generation call
// on the assembled context.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wing0907/lawai-engine/engine/assemble"
	"github.com/wing0907/lawai-engine/engine/direct"
	"github.com/wing0907/lawai-engine/engine/domain"
	"github.com/wing0907/lawai-engine/engine/prompt"
	"github.com/wing0907/lawai-engine/engine/query"
	"github.com/wing0907/lawai-engine/engine/rank"
	"github.com/wing0907/lawai-engine/engine/retrieve"
	"github.com/wing0907/lawai-engine/pkg/fn"
	"github.com/wing0907/lawai-engine/pkg/metrics"
	"github.com/wing0907/lawai-engine/pkg/resilience"
)

// Embedder turns text into a query vector in the corpus embedding space.
type Embedder interface {
	Embed(ctx context.Context, text string, isQuery bool) ([]float32, error)
}

// Generator produces a completion for a system/user prompt pair.
type Generator interface {
	Generate(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Searcher fans a query vector out across the loaded corpora.
type Searcher interface {
	Search(ctx context.Context, qvec []float32, topKEach int, minScore float32) ([]retrieve.Hit, error)
}

// Options carry the retrieval and generation knobs.
type Options struct {
	TopK         int     // final context row cap
	TopKEach     int     // per-corpus retrieval depth
	MinScore     float32 // similarity floor
	MaxCtxChars  int     // context block rune budget
	MaxNewTokens int
	MaxDirect    int  // direct answer line cap
	DedupHits    bool // collapse repeated provisions/sections before topK
}

func DefaultOptions() Options {
	return Options{
		TopK:         6,
		TopKEach:     6,
		MinScore:     0.5,
		MaxCtxChars:  12000,
		MaxNewTokens: 512,
		MaxDirect:    12,
		DedupHits:    true,
	}
}

// Result is one answered question. Direct marks answers quoted straight
// from statute text with no generation call.
type Result struct {
	Answer  string          `json:"answer"`
	Sources []domain.Source `json:"sources"`
	Direct  bool            `json:"direct"`
	Kind    domain.Kind     `json:"kind"`
}

// Service wires the pipeline stages together.
type Service struct {
	embed   Embedder
	search  Searcher
	gen     Generator
	breaker *resilience.Breaker
	opts    Options
	log     *slog.Logger

	asked      *metrics.Counter
	directHits *metrics.Counter
	notFound   *metrics.Counter
	latency    *metrics.Histogram
}

// New builds the service. reg may be nil when metrics are not served.
func New(embed Embedder, search Searcher, gen Generator, opts Options, log *slog.Logger, reg *metrics.Registry) *Service {
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
	s.asked = reg.Counter("lawai_questions_total", "questions answered")
	s.directHits = reg.Counter("lawai_direct_answers_total", "statute short-circuit answers")
	s.notFound = reg.Counter("lawai_not_found_total", "answers refused for lack of grounding")
	s.latency = reg.Histogram("lawai_ask_seconds", "end to end ask latency", nil)
	return s
}

// Ask answers one question. Insufficient grounding returns the refusal
// answer, not an error; errors mean a pipeline stage actually failed.
func (s *Service) Ask(ctx context.Context, question string) (Result, error) {
	start := time.Now()
	defer func() { s.latency.Since(start) }()
	s.asked.Inc()

	qvec, err := s.embed.Embed(ctx, question, true)
	if err != nil {
		return Result{}, fmt.Errorf("embed question: %w", err)
	}
	hits, err := s.search.Search(ctx, qvec, s.opts.TopKEach, 0)
	if err != nil {
		return Result{}, err
	}

	sq, isStatuteQuery := query.ParseStatuteQuery(question)
	if isStatuteQuery {
		hits = rank.PartitionExact(hits, sq)
	}
	hits = s.selectTop(hits)

	if isStatuteQuery {
		if text, rows, ok := direct.Answer(sq, hits, direct.Options{MaxLines: s.opts.MaxDirect}); ok {
			s.directHits.Inc()
			s.log.Info("direct statute answer", "law", sq.Law, "article", sq.Article, "rows", len(rows))
			return Result{
				Answer:  text,
				Sources: fn.Map(rows, domain.SourceOf),
				Direct:  true,
				Kind:    domain.KindStatute,
			}, nil
		}
	}

	rows := s.fitContext(hits)
	if len(rows) == 0 {
		s.notFound.Inc()
		return Result{Answer: domain.NotFoundAnswer, Kind: domain.KindStatute}, nil
	}

	kind := rows[0].Kind
	ctxBlock := assemble.Block(rows, 0, s.opts.MaxCtxChars)
	p := prompt.ForKind(kind, question, ctxBlock)

	var raw string
	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		var genErr error
		raw, genErr = s.gen.Generate(ctx, p.System, p.User, s.opts.MaxNewTokens)
		return genErr
	})
	if err != nil {
		return Result{}, fmt.Errorf("generate answer: %w", err)
	}

	text := Postprocess(raw)
	if text == "" {
		s.notFound.Inc()
		text = domain.NotFoundAnswer
	}
	return Result{
		Answer:  text,
		Sources: fn.Map(rows, domain.SourceOf),
		Kind:    kind,
	}, nil
}

// selectTop applies the similarity floor, optional per-provision dedup,
// and the final row cap, preserving the incoming order.
func (s *Service) selectTop(hits []retrieve.Hit) []retrieve.Hit {
	seen := map[string]bool{}
	var out []retrieve.Hit
	for _, h := range hits {
		if h.Score < s.opts.MinScore {
			continue
		}
		if s.opts.DedupHits {
			k := hitKey(h.Row)
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, h)
		if len(out) >= s.opts.TopK {
			break
		}
	}
	return out
}

func hitKey(r domain.Row) string {
	if r.IsCase() {
		id := r.SerialNo
		if id == "" {
			id = r.CaseNo
		}
		return "case|" + id + "|" + r.Section
	}
	return "law|" + r.Law + "|" + r.ArticleNo + "|" + r.Unit
}

// fitContext accumulates rows until the next row's text would overflow
// the context budget.
func (s *Service) fitContext(hits []retrieve.Hit) []domain.Row {
	var rows []domain.Row
	total := 0
	for _, h := range hits {
		n := len([]rune(h.Row.Text))
		if total+n > s.opts.MaxCtxChars {
			break
		}
		rows = append(rows, h.Row)
		total += n
	}
	return rows
}
