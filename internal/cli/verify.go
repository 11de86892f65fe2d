package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/thesyncim/browsertest/pkg/golden"
)

// VerifyResult summarises a verify run.
type VerifyResult struct {
	Total    int
	Passed   int
	Missing  []string
	Failed   []string
	Messages map[string]string
}

// OK reports whether every artifact matched.
func (r *VerifyResult) OK() bool {
	return len(r.Failed) == 0 && len(r.Missing) == 0
}

func newVerifyCommand(flags *GlobalFlags) *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "verify <actual-dir>",
		Short: "Compare every file under <actual-dir> against the golden directory",
		Long: `verify walks <actual-dir> and compares each file against the golden entry
with the same relative path. It exits non-zero if any entry is missing or
differs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.goldenConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			names, err := collectNames(args[0])
			if err != nil {
				return err
			}
			logger.Debug().Int("files", len(names)).Str("dir", args[0]).Msg("verifying")

			var progress io.Writer = cmd.ErrOrStderr()
			if noProgress {
				progress = nil
			}
			result, err := Verify(cfg, args[0], names, progress)
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), result)
			if !result.OK() {
				return fmt.Errorf("%d of %d artifacts did not match", len(result.Failed)+len(result.Missing), result.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

// collectNames lists regular files under dir as slash-separated relative
// paths, skipping actual/expected/diff artifacts left by earlier runs.
func collectNames(dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if golden.IsArtifact(rel) {
			return nil
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// Verify compares each named file under actualDir. A nil progress writer
// disables the progress bar.
func Verify(cfg golden.Config, actualDir string, names []string, progress io.Writer) (*VerifyResult, error) {
	result := &VerifyResult{
		Total:    len(names),
		Messages: make(map[string]string),
	}

	var bar *pb.ProgressBar
	if progress != nil {
		bar = pb.New(len(names)).SetWriter(progress).Start()
		defer bar.Finish()
	}

	for _, name := range names {
		actual, err := os.ReadFile(filepath.Join(actualDir, filepath.FromSlash(name)))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		res := golden.Compare(cfg, actual, name)
		switch {
		case res.Pass:
			result.Passed++
		case errors.Is(res.Err, golden.ErrMissingGolden):
			result.Missing = append(result.Missing, name)
			result.Messages[name] = res.Message
		default:
			result.Failed = append(result.Failed, name)
			result.Messages[name] = res.Message
		}

		if bar != nil {
			bar.Increment()
		}
	}
	return result, nil
}

func printSummary(w io.Writer, r *VerifyResult) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Golden Verification\n")
	fmt.Fprintf(w, "===================\n")
	fmt.Fprintf(w, "Total:    %d\n", r.Total)
	fmt.Fprintf(w, "Passed:   %d\n", r.Passed)
	fmt.Fprintf(w, "Failed:   %d\n", len(r.Failed))
	fmt.Fprintf(w, "Missing:  %d\n", len(r.Missing))
	for _, name := range r.Failed {
		fmt.Fprintf(w, "  FAIL    %s\n", r.Messages[name])
	}
	for _, name := range r.Missing {
		fmt.Fprintf(w, "  MISSING %s\n", r.Messages[name])
	}
	fmt.Fprintf(w, "Status:   %s\n", checkMark(r.OK()))
}

func checkMark(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
