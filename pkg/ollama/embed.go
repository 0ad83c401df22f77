package ollama

import (
	"context"
	"fmt"
	"math"

	"github.com/ollama/ollama/api"
	"golang.org/x/time/rate"

	"github.com/wing0907/lawai-engine/pkg/fn"
)

// queryPrefix matches how the corpus vectors were built: retrieval
// models of the e5/bge family embed queries and passages asymmetrically.
const queryPrefix = "query: "

// embedAPI is the slice of api.Client the embedder needs; tests stub it.
type embedAPI interface {
	Embeddings(ctx context.Context, req *api.EmbeddingRequest) (*api.EmbeddingResponse, error)
}

// Embedder produces L2-normalized query vectors from an Ollama
// embedding model.
type Embedder struct {
	api     embedAPI
	model   string
	limiter *rate.Limiter
}

// NewEmbedder wraps an Ollama client. rps <= 0 disables rate limiting.
func NewEmbedder(client *api.Client, model string, rps float64) *Embedder {
	return newEmbedder(client, model, rps)
}

func newEmbedder(client embedAPI, model string, rps float64) *Embedder {
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Embedder{api: client, model: model, limiter: lim}
}

// Embed returns the vector for text. isQuery prepends the asymmetric
// query prefix so query vectors live in the same space as the indexed
// passages.
func (e *Embedder) Embed(ctx context.Context, text string, isQuery bool) ([]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if isQuery {
		text = queryPrefix + text
	}
	resp, err := e.api.Embeddings(ctx, &api.EmbeddingRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embed: empty vector from model %s", e.model)
	}
	return normalize(resp.Embedding), nil
}

// embedWorkers bounds concurrent embedding calls; the rate limiter, when
// configured, throttles below this.
const embedWorkers = 4

// EmbedAll embeds every text, preserving input order and failing on the
// first error.
func (e *Embedder) EmbedAll(ctx context.Context, texts []string, isQuery bool) ([][]float32, error) {
	results := fn.ParMapResult(texts, embedWorkers, func(t string) fn.Result[[]float32] {
		return fn.FromPair(e.Embed(ctx, t, isQuery))
	})
	out, err := fn.Collect(results).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("embed all: %w", err)
	}
	return out, nil
}

// normalize converts to float32 and scales to unit length, matching the
// normalize_embeddings flag the index was built with.
func normalize(v []float64) []float32 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	n := math.Sqrt(sum)
	if n == 0 {
		n = 1
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x / n)
	}
	return out
}
