// Package golden compares test artifacts against checked-in reference
// ("golden") files.
//
// A golden entry is addressed by name, a slash-separated path relative to
// the golden directory whose extension selects the comparator:
//
//	testdata/golden/screenshot-grid.png   -> image comparator
//	testdata/golden/frames/dump.txt       -> text comparator
//
// On mismatch the actual artifact, a copy of the expected artifact and a diff
// (PNG for images, HTML for text) are written to the output directory so a
// human can inspect them, and promote the actual result with Promote when it
// is the new truth.
package golden

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	"github.com/thesyncim/browsertest/pkg/logging"
)

var (
	// ErrMissingGolden means no reference file exists for the entry.
	ErrMissingGolden = errors.New("missing golden")

	// ErrNoComparator means no comparator is registered for the entry type.
	ErrNoComparator = errors.New("no comparator")

	// ErrSizeMismatch means two images have different dimensions.
	ErrSizeMismatch = errors.New("image sizes differ")

	// ErrContentType means the actual buffer is not of the golden's type.
	ErrContentType = errors.New("unexpected content type")

	// ErrInvalidName means the entry name is empty, absolute or escapes the
	// golden and output directories.
	ErrInvalidName = errors.New("invalid golden name")
)

// validName reports whether name stays inside the directory it is joined to.
func validName(name string) bool {
	return filepath.IsLocal(filepath.FromSlash(name))
}

// Config locates golden and output directories.
type Config struct {
	// GoldenDir holds the reference artifacts.
	GoldenDir string

	// OutputDir receives actual, expected and diff artifacts on failure.
	// It may equal GoldenDir.
	OutputDir string

	// Logger records mismatches. Nil discards.
	Logger *log.Logger
}

func (c Config) logger() *log.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

// Suffixes Compare appends to an entry's base name for its artifacts.
const (
	ActualSuffix   = "-actual"
	ExpectedSuffix = "-expected"
	DiffSuffix     = "-diff"
)

// IsArtifact reports whether name is a file Compare writes next to an actual
// result rather than an entry of its own.
func IsArtifact(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	stem := strings.TrimSuffix(base, path.Ext(base))
	for _, suffix := range []string{ActualSuffix, ExpectedSuffix, DiffSuffix} {
		if strings.HasSuffix(stem, suffix) {
			return true
		}
	}
	return false
}

func (c Config) inPlace() bool {
	return filepath.Clean(c.GoldenDir) == filepath.Clean(c.OutputDir)
}

// GoldenPath returns where the reference for name lives.
func (c Config) GoldenPath(name string) string {
	return filepath.Join(c.GoldenDir, filepath.FromSlash(name))
}

// ActualPath returns where the actual artifact for name is written. When the
// output and golden directories are the same, an "-actual" suffix keeps the
// reference from being overwritten.
func (c Config) ActualPath(name string) string {
	if c.inPlace() {
		return c.suffixed(name, ActualSuffix, path.Ext(name))
	}
	return filepath.Join(c.OutputDir, filepath.FromSlash(name))
}

// ExpectedPath returns where a copy of the reference is written on mismatch.
func (c Config) ExpectedPath(name string) string {
	return c.suffixed(name, ExpectedSuffix, path.Ext(name))
}

// DiffPath returns where the diff artifact with extension ext is written.
func (c Config) DiffPath(name, ext string) string {
	return c.suffixed(name, DiffSuffix, ext)
}

func (c Config) suffixed(name, suffix, ext string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	return filepath.Join(c.OutputDir, filepath.FromSlash(base+suffix+ext))
}

// Result is the outcome of one comparison.
type Result struct {
	Pass    bool
	Message string

	// Err classifies a failure; nil when Pass is true.
	Err error
}

// Compare checks actual against the golden entry name.
//
// A missing or unreadable golden file is not an error: the actual artifact is
// staged at ActualPath and a failed Result wrapping ErrMissingGolden is
// returned. Unknown content types fail with ErrNoComparator, and names that
// would resolve outside the directories fail with ErrInvalidName.
func Compare(cfg Config, actual []byte, name string) Result {
	logger := cfg.logger()

	if !validName(name) {
		return Result{
			Message: fmt.Sprintf("Invalid golden name %q: must be a relative path inside the golden directory", name),
			Err:     ErrInvalidName,
		}
	}

	expected, err := os.ReadFile(cfg.GoldenPath(name))
	if err != nil {
		actualPath := cfg.ActualPath(name)
		if werr := writeFile(actualPath, actual); werr != nil {
			return Result{
				Message: fmt.Sprintf("%s is missing in golden results, and writing the actual result failed: %v", name, werr),
				Err:     errors.Join(ErrMissingGolden, werr),
			}
		}
		logger.Warn().Str("name", name).Str("actual", actualPath).Msg("golden missing, actual result staged")
		return Result{
			Message: fmt.Sprintf("%s is missing in golden results. Actual result written to %s", name, actualPath),
			Err:     ErrMissingGolden,
		}
	}

	mimeType := MIMEType(name)
	comparator, ok := Lookup(mimeType)
	if !ok {
		return Result{
			Message: fmt.Sprintf("Failed to find comparator with type %s: %s", mimeType, name),
			Err:     ErrNoComparator,
		}
	}

	mismatch, err := comparator.Compare(actual, expected)
	if err != nil {
		return Result{
			Message: fmt.Sprintf("%s comparison failed: %v", name, err),
			Err:     err,
		}
	}
	if mismatch == nil {
		logger.Debug().Str("name", name).Str("mime", mimeType).Msg("golden match")
		return Result{Pass: true}
	}

	if err := writeArtifacts(cfg, name, actual, expected, mismatch); err != nil {
		return Result{
			Message: fmt.Sprintf("%s mismatch! %sWriting artifacts failed: %v", name, mismatch.Message, err),
			Err:     err,
		}
	}

	logger.Warn().
		Str("name", name).
		Str("mime", mimeType).
		Str("output_dir", cfg.OutputDir).
		Msg("golden mismatch")

	if strings.HasPrefix(mimeType, "text/") || mimeType == "application/json" {
		logger.Debug().Str("name", name).Msg(UnifiedDiff(string(expected), string(actual)))
	}

	err = mismatch.Err
	if err == nil {
		err = fmt.Errorf("%s mismatch", name)
	}
	return Result{
		Message: fmt.Sprintf("%s mismatch! %sDetails: %s", name, mismatch.Message, cfg.OutputDir),
		Err:     err,
	}
}

// CompareString is Compare for text artifacts.
func CompareString(cfg Config, actual, name string) Result {
	return Compare(cfg, []byte(actual), name)
}

func writeArtifacts(cfg Config, name string, actual, expected []byte, m *Mismatch) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeFile(cfg.ActualPath(name), actual); err != nil {
		return err
	}
	if !cfg.inPlace() {
		if err := writeFile(cfg.ExpectedPath(name), expected); err != nil {
			return err
		}
	}
	if len(m.Diff) > 0 {
		if err := writeFile(cfg.DiffPath(name, m.DiffExt), m.Diff); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// Promote copies the staged actual artifact for name into the golden
// directory, making it the new reference.
func Promote(cfg Config, name string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	src := cfg.ActualPath(name)
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read staged result for %s: %w", name, err)
	}
	if err := writeFile(cfg.GoldenPath(name), data); err != nil {
		return err
	}
	cfg.logger().Info().Str("name", name).Str("from", src).Msg("golden promoted")
	return nil
}
