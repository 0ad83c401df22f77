// Package main implements the counter-argument simulation CLI. It reads
// the opponent's argument from a flag, a file, or stdin and prints the
// structured analysis as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/wing0907/lawai-engine/engine/argue"
	"github.com/wing0907/lawai-engine/engine/bundle"
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
		text         = flag.String("q", "", "opponent's argument text")
		file         = flag.String("f", "", "file holding the opponent's argument")
		indexRoot    = flag.String("index-root", envOr("INDEX_ROOT", "index"), "corpus bundle directory")
		qdrantURL    = flag.String("qdrant", envOr("QDRANT_URL", "localhost:6334"), "qdrant address")
		ollamaHost   = flag.String("ollama", envOr("OLLAMA_HOST", "http://localhost:11434"), "ollama host")
		embedModel   = flag.String("embed-model", envOr("EMBED_MODEL", "bge-m3"), "embedding model")
		llmModel     = flag.String("llm", envOr("LLM_MODEL", "llama3"), "generation model")
		preK         = flag.Int("pre-k", 40, "retrieval depth per query variant")
		finalK       = flag.Int("final-k", 5, "evidence rows for the prompt")
		alpha        = flag.Float64("alpha", 0.75, "rerank mixing weight")
		minScore     = flag.Float64("min-score", 0.20, "similarity floor")
		maxNewTokens = flag.Int("max-new-tokens", 256, "generation token cap")
		timeout      = flag.Duration("timeout", 5*time.Minute, "overall deadline")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	opponent, err := readOpponent(*text, *file)
	if err != nil {
		fatal("read input", err)
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

	opts := argue.DefaultOptions()
	opts.PreK = *preK
	opts.FinalK = *finalK
	opts.MinScore = float32(*minScore)
	opts.MaxNewTokens = *maxNewTokens
	opts.Rerank.Alpha = *alpha

	svc := argue.New(
		ollama.NewEmbedder(client, *embedModel, 0),
		retrieve.New(bundles),
		ollama.NewGenerator(client, *llmModel, 0),
		opts, logger, nil,
	)

	res, err := svc.Simulate(ctx, opponent)
	if err != nil {
		fatal("simulate", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		fatal("encode result", err)
	}
}

// readOpponent resolves the input in priority order: -q, then -f, then
// stdin when it is piped.
func readOpponent(text, file string) (string, error) {
	if text != "" {
		return text, nil
	}
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	info, err := os.Stdin.Stat()
	if err == nil && info.Mode()&os.ModeCharDevice == 0 {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		if s := strings.TrimSpace(string(raw)); s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("no opponent text: pass -q, -f, or pipe stdin")
}

func fatal(stage string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", stage, err)
	os.Exit(1)
}
