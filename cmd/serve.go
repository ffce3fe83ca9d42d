package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/config"
	"github.com/sohumt123/Tickker/logger"
	"github.com/sohumt123/Tickker/pricecache"
	"github.com/sohumt123/Tickker/server"
	"github.com/sohumt123/Tickker/store"
	"github.com/sohumt123/Tickker/yahoo"
)

// shutdownTimeout bounds the graceful shutdown of the server.
const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	envFile string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the performance API over HTTP" }
func (*serveCmd) Usage() string {
	return `tkr serve [-env <file>]

  Serve the performance API. The server is configured from the environment
  (TICKKER_ADDR, TICKKER_DATA_DIR, TICKKER_CACHE_PATH, TICKKER_BENCHMARK,
  TICKKER_FETCH_CONCURRENCY, TICKKER_FETCH_TIMEOUT, TICKKER_YAHOO_URL,
  LOG_LEVEL, LOG_PRETTY), optionally loaded from a dotenv file.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.envFile, "env", ".env", "Dotenv file to load, ignored when missing")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	client := yahoo.New(cfg.Yahoo.URL, cfg.Fetch.Timeout)
	cache, err := pricecache.Open(cfg.CachePath, client, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open price cache")
		return subcommands.ExitFailure
	}
	defer cache.Close()

	dir := store.Dir{Path: cfg.DataDir}
	engine := tickker.NewEngine(dir, dir, cache, log)
	engine.Benchmark = cfg.Benchmark
	engine.Fetch = tickker.FetchOptions{Concurrency: cfg.Fetch.Concurrency, Timeout: cfg.Fetch.Timeout}

	srv := server.New(server.Config{
		Engine:      engine,
		Log:         log,
		Addr:        cfg.Addr,
		CORSOrigins: cfg.CORSOrigins,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
