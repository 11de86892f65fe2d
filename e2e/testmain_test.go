//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"testing"

	"github.com/thesyncim/browsertest/pkg/config"
)

var (
	// suiteConfig is loaded from $BROWSERTEST_CONFIG, or the defaults.
	suiteConfig *config.Config

	// profileRoot holds the Chrome profile of every browser this suite
	// launches, so cleanup can find them by command line.
	profileRoot string
)

func TestMain(m *testing.M) {
	cfg, err := config.FromEnv(config.EnvVar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "e2e: %v\n", err)
		os.Exit(2)
	}
	suiteConfig = cfg

	profileRoot, err = os.MkdirTemp("", "browsertest-e2e-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "e2e: failed to create profile root: %v\n", err)
		os.Exit(2)
	}

	code := m.Run()

	// Rod's leakless guard normally reaps Chrome when the test binary
	// exits; this catches the rest without touching unrelated browsers.
	cleanupSuiteBrowsers(profileRoot)
	_ = os.RemoveAll(profileRoot)

	os.Exit(code)
}

// cleanupSuiteBrowsers kills Chrome processes whose command line contains
// root, i.e. those launched with a --user-data-dir under it.
func cleanupSuiteBrowsers(root string) {
	switch runtime.GOOS {
	case "darwin", "linux":
		// pkill exits non-zero when nothing matched.
		_ = exec.Command("pkill", "-f", "--", root).Run()
	}
}
