// Package main implements the lawai question-answering CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wing0907/lawai-engine/engine/answer"
	"github.com/wing0907/lawai-engine/engine/bundle"
	"github.com/wing0907/lawai-engine/engine/domain"
	"github.com/wing0907/lawai-engine/engine/retrieve"
	"github.com/wing0907/lawai-engine/engine/semantic"
	"github.com/wing0907/lawai-engine/pkg/ollama"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	var (
		query         = flag.String("q", "", "question to answer (required)")
		indexRoot     = flag.String("index-root", envOr("INDEX_ROOT", "index"), "corpus bundle directory")
		qdrantURL     = flag.String("qdrant", envOr("QDRANT_URL", "localhost:6334"), "qdrant address")
		ollamaHost    = flag.String("ollama", envOr("OLLAMA_HOST", "http://localhost:11434"), "ollama host")
		embedModel    = flag.String("embed-model", envOr("EMBED_MODEL", "bge-m3"), "embedding model")
		llmModel      = flag.String("llm", envOr("LLM_MODEL", "llama3"), "generation model")
		topK          = flag.Int("topk", 6, "final context rows")
		topKEach      = flag.Int("topk-each", 6, "retrieval depth per corpus")
		minScore      = flag.Float64("min-score", 0.5, "similarity floor")
		maxCtx        = flag.Int("max-ctx", 12000, "context character budget")
		maxNewTokens  = flag.Int("max-new-tokens", 512, "generation token cap")
		dedup         = flag.Bool("dedup", true, "collapse repeated provisions and sections")
		showRetrieval = flag.Bool("show-retrieval", false, "print retrieved sources")
		timeout       = flag.Duration("timeout", 5*time.Minute, "overall deadline")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: ask -q \"질문\" [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := semantic.New(*qdrantURL)
	if err != nil {
		fatal("qdrant connect", err)
	}
	defer store.Close()

	bundles, err := bundle.Load(*indexRoot, bundle.QdrantOpener(ctx, store), logger)
	if err != nil {
		fatal("load bundles", err)
	}

	pool := ollama.NewClientPool()
	client, err := pool.Get(*ollamaHost)
	if err != nil {
		fatal("ollama client", err)
	}

	opts := answer.Options{
		TopK:         *topK,
		TopKEach:     *topKEach,
		MinScore:     float32(*minScore),
		MaxCtxChars:  *maxCtx,
		MaxNewTokens: *maxNewTokens,
		MaxDirect:    12,
		DedupHits:    *dedup,
	}
	svc := answer.New(
		ollama.NewEmbedder(client, *embedModel, 0),
		retrieve.New(bundles),
		ollama.NewGenerator(client, *llmModel, 0),
		opts, logger, nil,
	)

	res, err := svc.Ask(ctx, *query)
	if err != nil {
		fatal("ask", err)
	}

	if *showRetrieval {
		fmt.Println("=== RETRIEVAL ===")
		if len(res.Sources) == 0 {
			fmt.Println("(no hits above threshold)")
		}
		for _, s := range res.Sources {
			fmt.Printf("[%s] %s\n", s.Type, s.Label)
		}
		fmt.Println()
	}

	fmt.Println("=== ANSWER ===")
	if res.Answer == "" {
		fmt.Println(domain.NotFoundAnswer)
		return
	}
	fmt.Println(res.Answer)
}

func fatal(stage string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", stage, err)
	os.Exit(1)
}
