// Package main implements the lawai HTTP API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/wing0907/lawai-engine/engine/answer"
	"github.com/wing0907/lawai-engine/engine/argue"
	"github.com/wing0907/lawai-engine/engine/bundle"
	"github.com/wing0907/lawai-engine/engine/retrieve"
	"github.com/wing0907/lawai-engine/engine/semantic"
	"github.com/wing0907/lawai-engine/pkg/metrics"
	"github.com/wing0907/lawai-engine/pkg/mid"
	"github.com/wing0907/lawai-engine/pkg/ollama"
)

// Config holds all environment-based configuration.
type Config struct {
	Port        string
	IndexRoot   string
	QdrantURL   string
	OllamaHost  string
	EmbedModel  string
	LLMModel    string
	CORSOrigin  string
	MaxNewToken int
}

func loadConfig() Config {
	return Config{
		Port:        envOr("PORT", "8080"),
		IndexRoot:   envOr("INDEX_ROOT", "index"),
		QdrantURL:   envOr("QDRANT_URL", "localhost:6334"),
		OllamaHost:  envOr("OLLAMA_HOST", "http://localhost:11434"),
		EmbedModel:  envOr("EMBED_MODEL", "bge-m3"),
		LLMModel:    envOr("LLM_MODEL", "llama3"),
		CORSOrigin:  envOr("CORS_ORIGIN", "*"),
		MaxNewToken: envIntOr("MAX_NEW_TOKENS", 512),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant and load the corpus bundles ---
	store, err := semantic.New(cfg.QdrantURL)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	bundles, err := bundle.Load(cfg.IndexRoot, bundle.QdrantOpener(ctx, store), logger)
	if err != nil {
		return err
	}
	retriever := retrieve.New(bundles)

	// --- Ollama clients ---
	pool := ollama.NewClientPool()
	client, err := pool.Get(cfg.OllamaHost)
	if err != nil {
		return err
	}
	embedder := ollama.NewEmbedder(client, cfg.EmbedModel, 0)
	generator := ollama.NewGenerator(client, cfg.LLMModel, 0)

	// --- Services ---
	reg := metrics.New()

	askOpts := answer.DefaultOptions()
	askOpts.MaxNewTokens = cfg.MaxNewToken
	askSvc := answer.New(embedder, retriever, generator, askOpts, logger, reg)
	simSvc := argue.New(embedder, retriever, generator, argue.DefaultOptions(), logger, reg)

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth(bundles))
	mux.HandleFunc("POST /api/ask", handleAsk(askSvc, logger))
	mux.HandleFunc("POST /api/simulate", handleSimulate(simSvc, logger))
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("lawai-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "bundles", len(bundles))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleHealth(bundles []bundle.Bundle) http.HandlerFunc {
	type corpusInfo struct {
		Corpus string `json:"corpus"`
		Kind   string `json:"kind"`
		Rows   int    `json:"rows"`
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		infos := make([]corpusInfo, 0, len(bundles))
		for _, b := range bundles {
			infos = append(infos, corpusInfo{Corpus: b.Corpus, Kind: string(b.Kind), Rows: len(b.Rows)})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "bundles": infos})
	}
}

// AskRequest is the JSON body for POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

func handleAsk(svc *answer.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			http.Error(w, `{"error":"question is required"}`, http.StatusBadRequest)
			return
		}

		res, err := svc.Ask(r.Context(), req.Question)
		if err != nil {
			logger.Error("ask failed", "err", err)
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}

// SimulateRequest is the JSON body for POST /api/simulate.
type SimulateRequest struct {
	OpponentText string `json:"opponent_text"`
}

func handleSimulate(svc *argue.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SimulateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.OpponentText == "" {
			http.Error(w, `{"error":"opponent_text is required"}`, http.StatusBadRequest)
			return
		}

		res, err := svc.Simulate(r.Context(), req.OpponentText)
		if err != nil {
			logger.Error("simulate failed", "err", err)
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}
