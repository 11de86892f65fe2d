//go:build e2e

// Package e2e provides end-to-end tests that drive a real browser against
// the fixture server.
//
// These tests are isolated from the standard test suite via build tags.
// They require a Chrome browser (auto-downloaded by Rod if not present)
// and are intended for CI pipelines or explicit local testing.
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// E2E tests use:
//   - Rod for browser automation (Chrome DevTools Protocol)
//   - the fixture server for pages and WebRTC signaling
//   - BrowserClient and PageEvents from pkg/testutil
//   - golden.Compare for screenshot and frame-tree goldens
//   - events.WaitForEvent instead of sleeps
//
// Configuration:
// Set BROWSERTEST_CONFIG to a .toml or .yaml file to override browser
// settings, the event wait timeout and the golden/output directories.
// Checked-in goldens live under testdata/golden; mismatch artifacts are
// written to testdata/output.
//
// Test isolation:
// Each test starts its own server on a random port and launches
// its own browser instance with a profile under a per-run temp directory.
// Tests can run in parallel.
package e2e
