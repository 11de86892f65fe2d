package golden

import "testing"

// Assert fails t when actual does not match the golden entry name.
// Returns true on a match.
func Assert(t testing.TB, cfg Config, actual []byte, name string) bool {
	t.Helper()
	res := Compare(cfg, actual, name)
	if !res.Pass {
		t.Errorf("%s", res.Message)
	}
	return res.Pass
}

// AssertString is Assert for text artifacts.
func AssertString(t testing.TB, cfg Config, actual, name string) bool {
	t.Helper()
	return Assert(t, cfg, []byte(actual), name)
}
