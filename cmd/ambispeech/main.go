package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lc2/ambispeech/internal/api"
	"github.com/lc2/ambispeech/internal/common"
	"github.com/lc2/ambispeech/internal/icd10"
	"github.com/lc2/ambispeech/internal/llm"
	"github.com/lc2/ambispeech/internal/nlp"
	"github.com/lc2/ambispeech/internal/prompt"
)

func main() {
	logger := common.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Warn("ambispeech: .env file not loaded", "error", err)
	} else {
		logger.Info("ambispeech: environment loaded from .env")
	}

	addr := flag.String("addr", ":8000", "listen address")
	flag.Parse()

	provider := llm.NewProvider()

	icdCfg, err := icd10.LoadConfig()
	if err != nil {
		fatal(logger, "ambispeech: invalid corpus configuration", err)
	}
	store, err := icd10.Open(icdCfg.Path)
	if err != nil {
		fatal(logger, "ambispeech: failed to open corpus store", err)
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		fatal(logger, "ambispeech: failed to inspect corpus store", err)
	}
	if count == 0 && icdCfg.CSVPath != "" {
		if _, err := store.ImportCSV(ctx, icdCfg.CSVPath); err != nil {
			fatal(logger, "ambispeech: corpus import failed", err)
		}
	}
	if _, err := store.Vectorize(ctx, provider, icdCfg.EmbedBatch); err != nil {
		// The service still starts; unvectorized rows score zero until the
		// embedding service is reachable again and the process restarts.
		logger.Warn("ambispeech: corpus vectorization incomplete", "error", err)
	}
	entries, err := store.Entries(ctx)
	if err != nil {
		fatal(logger, "ambispeech: failed to load corpus", err)
	}
	index := icd10.NewIndex(entries, provider)

	catalog, err := prompt.Load(prompt.LoadConfig())
	if err != nil {
		fatal(logger, "ambispeech: failed to load prompt catalog", err)
	}
	prompts := prompt.NewStore(catalog)

	model := strings.TrimSpace(os.Getenv("OPENAI_CHAT_MODEL"))
	pipeline := nlp.New(prompts, provider, index, model)
	server := api.New(pipeline, index, provider)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ambispeech: listening", "addr", *addr, "provider", provider.Name(), "corpus", index.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "ambispeech: server failed", err)
		}
	case <-ctx.Done():
		logger.Info("ambispeech: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("ambispeech: shutdown failed", "error", err)
		}
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
