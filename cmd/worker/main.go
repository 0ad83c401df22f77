// Package main implements the lawai NATS worker: it serves the ask and
// simulate pipelines over request/reply subjects so other services can
// consume them without speaking HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/wing0907/lawai-engine/engine/answer"
	"github.com/wing0907/lawai-engine/engine/argue"
	"github.com/wing0907/lawai-engine/engine/bundle"
	"github.com/wing0907/lawai-engine/engine/retrieve"
	"github.com/wing0907/lawai-engine/engine/semantic"
	"github.com/wing0907/lawai-engine/pkg/metrics"
	"github.com/wing0907/lawai-engine/pkg/natsutil"
	"github.com/wing0907/lawai-engine/pkg/ollama"
)

const (
	subjectAsk      = "lawai.ask"
	subjectSimulate = "lawai.simulate"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// AskRequest is the payload on lawai.ask.
type AskRequest struct {
	Question string `json:"question"`
}

// SimulateRequest is the payload on lawai.simulate.
type SimulateRequest struct {
	OpponentText string `json:"opponent_text"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	natsURL := envOr("NATS_URL", nats.DefaultURL)
	indexRoot := envOr("INDEX_ROOT", "index")
	qdrantURL := envOr("QDRANT_URL", "localhost:6334")
	ollamaHost := envOr("OLLAMA_HOST", "http://localhost:11434")
	embedModel := envOr("EMBED_MODEL", "bge-m3")
	llmModel := envOr("LLM_MODEL", "llama3")

	store, err := semantic.New(qdrantURL)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	bundles, err := bundle.Load(indexRoot, bundle.QdrantOpener(ctx, store), logger)
	if err != nil {
		return err
	}
	retriever := retrieve.New(bundles)

	pool := ollama.NewClientPool()
	client, err := pool.Get(ollamaHost)
	if err != nil {
		return err
	}
	embedder := ollama.NewEmbedder(client, embedModel, 0)
	generator := ollama.NewGenerator(client, llmModel, 0)

	reg := metrics.New()
	askSvc := answer.New(embedder, retriever, generator, answer.DefaultOptions(), logger, reg)
	simSvc := argue.New(embedder, retriever, generator, argue.DefaultOptions(), logger, reg)

	nc, err := nats.Connect(natsURL, nats.Name("lawai-worker"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	askSub, err := natsutil.Reply(nc, subjectAsk, func(ctx context.Context, req AskRequest) (answer.Result, error) {
		if req.Question == "" {
			return answer.Result{}, fmt.Errorf("question is required")
		}
		return askSvc.Ask(ctx, req.Question)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subjectAsk, err)
	}
	defer askSub.Unsubscribe()

	simSub, err := natsutil.Reply(nc, subjectSimulate, func(ctx context.Context, req SimulateRequest) (argue.Result, error) {
		if req.OpponentText == "" {
			return argue.Result{}, fmt.Errorf("opponent_text is required")
		}
		return simSvc.Simulate(ctx, req.OpponentText)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subjectSimulate, err)
	}
	defer simSub.Unsubscribe()

	logger.Info("worker ready",
		"nats", natsURL, "bundles", len(bundles),
		"subjects", []string{subjectAsk, subjectSimulate})

	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}
