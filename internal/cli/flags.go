// Package cli implements the golden command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/thesyncim/browsertest/pkg/config"
	"github.com/thesyncim/browsertest/pkg/golden"
	"github.com/thesyncim/browsertest/pkg/logging"
)

// GlobalFlags holds flags shared by every command.
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
	GoldenDir  string
	OutputDir  string
}

// NewRootCommand builds the golden command tree.
func NewRootCommand(version string) *cobra.Command {
	flags := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "golden",
		Short: "Compare, verify and promote golden test artifacts",
		Long: `golden compares actual test artifacts (screenshots, text dumps) against
checked-in reference files. Mismatches leave actual, expected and diff files in
the output directory; promote copies accepted results back into the golden
directory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "config file (.toml or .yaml)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVarP(&flags.GoldenDir, "golden-dir", "g", "", "directory holding golden files")
	root.PersistentFlags().StringVarP(&flags.OutputDir, "output-dir", "o", "", "directory for actual/expected/diff artifacts")

	root.AddCommand(newCompareCommand(flags))
	root.AddCommand(newVerifyCommand(flags))
	root.AddCommand(newPromoteCommand(flags))
	return root
}

// loadConfig reads the config file, if any, and applies flag overrides.
func (f *GlobalFlags) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if f.ConfigFile != "" {
		loaded, err := config.LoadFromFile(f.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.GoldenDir != "" {
		cfg.GoldenDir = f.GoldenDir
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (f *GlobalFlags) goldenConfig(w io.Writer) (golden.Config, *log.Logger, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return golden.Config{}, nil, err
	}
	logger := logging.New(cfg.LogLevel, w)
	return golden.Config{
		GoldenDir: cfg.GoldenDir,
		OutputDir: cfg.OutputDir,
		Logger:    logger,
	}, logger, nil
}
