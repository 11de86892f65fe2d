//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/thesyncim/browsertest/cmd/fixture-server/server"
	"github.com/thesyncim/browsertest/pkg/events"
	"github.com/thesyncim/browsertest/pkg/golden"
	"github.com/thesyncim/browsertest/pkg/testutil"
)

// startServer starts a fixture server on a random port and shuts it down
// when the test ends.
func startServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(server.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	addr, err := srv.Start()
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Logf("Server started on %s", addr)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("server shutdown error: %v", err)
		}
	})
	return srv
}

// browserConfig returns the suite's browser settings with a fresh profile
// directory under profileRoot.
func browserConfig(t *testing.T) testutil.BrowserConfig {
	t.Helper()

	dir, err := os.MkdirTemp(profileRoot, "profile-")
	if err != nil {
		t.Fatalf("failed to create profile dir: %v", err)
	}
	cfg := testutil.BrowserConfigFrom(suiteConfig)
	cfg.UserDataDir = dir
	return cfg
}

// waitTimeout applies the configured event wait timeout.
func waitTimeout() events.WaitOption {
	return events.WithTimeout(suiteConfig.WaitTimeout())
}

// checkedInGoldens compares against the goldens committed with the suite.
func checkedInGoldens() golden.Config {
	return golden.Config{
		GoldenDir: suiteConfig.GoldenDir,
		OutputDir: suiteConfig.OutputDir,
	}
}

// newBrowser launches Chrome with a blank page open and closes it when the
// test ends.
func newBrowser(t *testing.T, cfg testutil.BrowserConfig) *testutil.BrowserClient {
	t.Helper()

	client, err := testutil.NewBrowserClient(cfg)
	if err != nil {
		t.Fatalf("failed to create browser: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("browser close error: %v", err)
		}
	})
	if _, err := client.NewPage(); err != nil {
		t.Fatalf("failed to open page: %v", err)
	}
	return client
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
