package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xcro3dile/polit/internal/adapters/llm"
	"github.com/0xcro3dile/polit/internal/adapters/vectordb"
	"github.com/0xcro3dile/polit/internal/config"
	apihttp "github.com/0xcro3dile/polit/internal/infrastructure/http"
	"github.com/0xcro3dile/polit/internal/logging"
)

func main() {
	cfg, err := config.LoadStub(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "polit-stub: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	var answerer apihttp.Answerer
	if cfg.OllamaURL != "" {
		answerer = llm.NewOllamaGenerator(cfg.OllamaURL, cfg.OllamaModel)
		logger.Info("Generating answers with Ollama", "url", cfg.OllamaURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := apihttp.NewServer(vectordb.NewInMemoryStore(), answerer, cfg.Addr, logger)
	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server failed", "error", err)
	}
	logger.Info("Server exited")
}
