package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/dudel/internal/api"
	"github.com/ironsheep/dudel/internal/canvas"
	"github.com/ironsheep/dudel/internal/config"
	"github.com/ironsheep/dudel/internal/editor"
	"github.com/ironsheep/dudel/internal/generation"
	"github.com/ironsheep/dudel/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("dudel - sketch editor and image generation service")
	fmt.Println()
	fmt.Println("Usage: dudel [command] [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  mcp      Run the editor as an MCP server on stdin/stdout (default)")
	fmt.Println("  serve    Run the HTTP generation endpoint")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  FAL_KEY                          fal.ai API key (required to generate)")
	fmt.Println("  FAL_QUEUE_URL                    Queue base URL (default https://queue.fal.run)")
	fmt.Println("  DUDEL_ADDR                       serve listen address (default :3000)")
	fmt.Println("  DUDEL_LOG_LEVEL=debug            Enable debug logging")
	fmt.Println("  DUDEL_REQUEST_TIMEOUT            Per-generation timeout (default 2m)")
	fmt.Println("  DUDEL_MAX_ATTEMPTS               Status checks before giving up (default 20)")
	fmt.Println("  DUDEL_GENERATE_URL               mcp: generate through a remote dudel server")
	fmt.Println()
	fmt.Println(".env.local and .env in the working directory are read if present.")
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("dudel %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	// Log to stderr (stdout is for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Debug("dudel starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := "mcp", []string(nil)
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	switch cmd {
	case "mcp":
		err = runMCP(ctx, cfg, logger, args)
	case "serve":
		err = runServe(ctx, cfg, logger, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func newService(cfg config.Config, logger *slog.Logger) *generation.Service {
	client := generation.NewClient(generation.Options{
		BaseURL:    cfg.QueueBaseURL,
		Key:        cfg.FalKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Policy:     cfg.Retry,
		Logger:     logger,
	})
	fetcher := &generation.ImageFetcher{
		Client:       &http.Client{Timeout: 60 * time.Second},
		AllowPrivate: cfg.AllowPrivateResultURLs,
	}
	return generation.NewService(client, fetcher, logger)
}

func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.ListenAddr, "listen address")
	timeout := fs.Duration("timeout", cfg.RequestTimeout, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.FalKey == "" {
		logger.Warn("FAL_KEY is not set; generate requests will fail")
	}

	genAPI, err := api.New(newService(cfg, logger), logger, *timeout)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           genAPI.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func runMCP(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	remote := fs.String("generate-url", cfg.GenerateURL, "generate through this dudel server instead of calling fal.ai")
	width := fs.Float64("width", editor.DefaultLayout.ContainerWidth, "canvas width in view pixels")
	dpr := fs.Float64("dpr", editor.DefaultLayout.DevicePixelRatio, "device pixel ratio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var gen editor.Generator
	if *remote != "" {
		logger.Debug("using remote generator", "url", *remote)
		gen = api.NewClient(*remote, &http.Client{Timeout: cfg.RequestTimeout})
	} else {
		gen = newService(cfg, logger)
	}

	session := editor.NewSession(editor.SessionOptions{
		Layout: canvas.Layout{
			ContainerWidth:   *width,
			ViewportWidth:    editor.DefaultLayout.ViewportWidth,
			DevicePixelRatio: *dpr,
		},
		Generator:       gen,
		Logger:          logger,
		GenerateTimeout: cfg.RequestTimeout,
	})

	srv := server.New(session, logger, Version)
	return srv.Run(ctx, os.Stdin, os.Stdout)
}
