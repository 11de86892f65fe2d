// Fixture Server
//
// Serves the fixture pages used by browser tests (grid, console, frames,
// webrtc) so they can be opened by hand while writing or debugging goldens.
//
// Usage:
//
//	go run ./cmd/fixture-server -addr :8080
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/thesyncim/browsertest/cmd/fixture-server/server"
	"github.com/thesyncim/browsertest/pkg/logging"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.New(*logLevel, os.Stderr)

	cfg := server.DefaultConfig()
	cfg.Addr = *addr
	cfg.Logger = logger
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create server")
	}

	if _, err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}

	paths := make([]string, 0, len(server.Pages))
	for p := range server.Pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fmt.Println("Fixture Server")
	fmt.Println("==============")
	for _, p := range paths {
		fmt.Printf("  %s\n", srv.URL(p))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
		os.Exit(1)
	}
}
