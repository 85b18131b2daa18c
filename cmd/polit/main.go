package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xcro3dile/polit/internal/adapters/filewatcher"
	"github.com/0xcro3dile/polit/internal/adapters/idgen"
	"github.com/0xcro3dile/polit/internal/adapters/loader"
	"github.com/0xcro3dile/polit/internal/adapters/parser"
	"github.com/0xcro3dile/polit/internal/adapters/queryclient"
	"github.com/0xcro3dile/polit/internal/adapters/uploader"
	"github.com/0xcro3dile/polit/internal/config"
	"github.com/0xcro3dile/polit/internal/domain/ports"
	"github.com/0xcro3dile/polit/internal/domain/usecases"
	"github.com/0xcro3dile/polit/internal/infrastructure/terminal"
	"github.com/0xcro3dile/polit/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "polit: %v\n", err)
		os.Exit(2)
	}

	// Logs go to a file when asked so they don't interleave with the chat.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "polit: opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New(logOut, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Requests are never timed out; the user waits for the server.
	httpClient := &http.Client{}

	chat := usecases.NewChatUseCase(
		queryclient.NewHTTPClient(cfg.QueryURL, httpClient, logger.With("component", "query")),
		idgen.NewUUIDGenerator(),
	)
	upload := usecases.NewUploadUseCase(
		uploader.NewHTTPUploader(cfg.UploadURL, httpClient, logger.With("component", "upload")),
	)
	nav := usecases.NewNavigationUseCase()
	fileLoader := loader.NewFileLoader(parser.NewPDFInspector(), logger)

	var watcher ports.FileWatcher
	if cfg.DropDir != "" {
		// Every file is reported so non-PDF drops get the same rejection as picks.
		w, err := filewatcher.NewFSNotifyWatcher(nil, filewatcher.DefaultSettle, logger.With("component", "drop"))
		if err != nil {
			logger.Fatal("Failed to start drop folder watcher", "error", err)
		}
		watcher = w
	}

	renderer := terminal.NewRenderer(os.Stdout, cfg.NoColor)
	renderer.Banner(cfg.UploadURL, cfg.QueryURL, cfg.DropDir)

	app := terminal.NewApp(chat, upload, nav, fileLoader, watcher, cfg.DropDir, renderer, logger)
	if err := app.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Terminal session failed", "error", err)
	}
}
