package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/browsertest/pkg/golden"
)

type dirs struct {
	golden string
	output string
	actual string
}

func newDirs(t *testing.T) dirs {
	t.Helper()
	return dirs{golden: t.TempDir(), output: t.TempDir(), actual: t.TempDir()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func run(t *testing.T, d dirs, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--golden-dir", d.golden, "--output-dir", d.output, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCompare_Pass(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.golden, "a.txt", "hello")
	actual := writeFile(t, d.actual, "a.txt", "hello")

	out, err := run(t, d, "compare", actual, "a.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS a.txt")
}

func TestCompare_Mismatch(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.golden, "a.txt", "hello")
	actual := writeFile(t, d.actual, "a.txt", "goodbye")

	out, err := run(t, d, "compare", actual, "a.txt")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL a.txt mismatch! Texts differ.")
	assert.FileExists(t, filepath.Join(d.output, "a-diff.html"))
}

func TestCompare_MissingActualFile(t *testing.T) {
	d := newDirs(t)
	_, err := run(t, d, "compare", filepath.Join(d.actual, "nope.txt"), "nope.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read actual file")
}

func TestCompare_RequiresTwoArgs(t *testing.T) {
	d := newDirs(t)
	_, err := run(t, d, "compare", "only-one")
	require.Error(t, err)
}

func TestVerify_Summary(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.golden, "same.txt", "same")
	writeFile(t, d.golden, "nested/changed.json", `{"a":1}`)
	writeFile(t, d.actual, "same.txt", "same")
	writeFile(t, d.actual, "nested/changed.json", `{"a":2}`)
	writeFile(t, d.actual, "new.txt", "brand new")

	out, err := run(t, d, "verify", "--no-progress", d.actual)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 artifacts did not match")
	assert.Contains(t, out, "Total:    3")
	assert.Contains(t, out, "Passed:   1")
	assert.Contains(t, out, "Failed:   1")
	assert.Contains(t, out, "Missing:  1")
	assert.Contains(t, out, "FAIL    nested/changed.json mismatch!")
	assert.Contains(t, out, "MISSING new.txt is missing in golden results.")
	assert.Contains(t, out, "Status:   FAIL")
}

func TestVerify_AllPass(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.golden, "a.txt", "a")
	writeFile(t, d.actual, "a.txt", "a")

	out, err := run(t, d, "verify", "--no-progress", d.actual)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:   PASS")
}

func TestVerify_WithProgress(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.golden, "a.txt", "a")
	writeFile(t, d.actual, "a.txt", "a")

	var progress bytes.Buffer
	cfg := golden.Config{GoldenDir: d.golden, OutputDir: d.output}
	res, err := Verify(cfg, d.actual, []string{"a.txt"}, &progress)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 1, res.Passed)
}

func TestPromote_AcceptsStagedCandidate(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.actual, "new.txt", "brand new")

	_, err := run(t, d, "verify", "--no-progress", d.actual)
	require.Error(t, err)

	out, err := run(t, d, "promote", "new.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "promoted")

	data, err := os.ReadFile(filepath.Join(d.golden, "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "brand new", string(data))

	_, err = run(t, d, "verify", "--no-progress", d.actual)
	require.NoError(t, err)
}

func TestPromote_NothingStaged(t *testing.T) {
	d := newDirs(t)
	_, err := run(t, d, "promote", "ghost.txt")
	require.Error(t, err)
}

func TestConfigFile_FlagsOverride(t *testing.T) {
	d := newDirs(t)
	cfgPath := writeFile(t, t.TempDir(), "golden.yaml", "golden_dir: /does/not/exist\noutput_dir: /nope\n")
	writeFile(t, d.golden, "a.txt", "a")
	actual := writeFile(t, d.actual, "a.txt", "a")

	out, err := run(t, d, "--config", cfgPath, "compare", actual, "a.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
}

func TestConfigFile_Unsupported(t *testing.T) {
	d := newDirs(t)
	cfgPath := writeFile(t, t.TempDir(), "golden.ini", "x=1")
	_, err := run(t, d, "--config", cfgPath, "promote", "a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestCollectNames_SortedSlashPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "")
	writeFile(t, dir, "a/z.png", "")
	writeFile(t, dir, "a/c.txt", "")

	names, err := collectNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/c.txt", "a/z.png", "b.txt"}, names)
}

func TestCollectNames_SkipsArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "grid.png", "")
	writeFile(t, dir, "grid-expected.png", "")
	writeFile(t, dir, "grid-diff.png", "")
	writeFile(t, dir, "page-actual.txt", "")
	writeFile(t, dir, "page-diff.html", "")

	names, err := collectNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"grid.png"}, names)
}

func TestVerify_RerunInOutputDir(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.golden, "a.txt", "old")
	writeFile(t, d.output, "a.txt", "new")

	// The first run leaves a-expected.txt and a-diff.html next to a.txt.
	out, err := run(t, d, "verify", "--no-progress", d.output)
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(d.output, "a-expected.txt"))
	assert.FileExists(t, filepath.Join(d.output, "a-diff.html"))

	out, err = run(t, d, "verify", "--no-progress", d.output)
	require.Error(t, err)
	assert.Contains(t, out, "Total:    1")
	assert.Contains(t, out, "Missing:  0")
}

func TestCompare_RejectsNameOutsideGoldenDir(t *testing.T) {
	d := newDirs(t)
	actual := writeFile(t, d.actual, "a.txt", "a")

	out, err := run(t, d, "compare", actual, "../escaped.txt")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid golden name")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(d.output), "escaped.txt"))
}
