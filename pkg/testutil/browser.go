// Package testutil provides browser automation helpers for end-to-end tests.
// It wraps Rod to provide headless Chrome instances, screenshots for golden
// comparison, frame helpers and a bridge from CDP events to events.Emitter.
package testutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/phuslu/log"

	"github.com/thesyncim/browsertest/pkg/config"
	"github.com/thesyncim/browsertest/pkg/logging"
)

// BrowserConfig configures Chrome launch options.
type BrowserConfig struct {
	Headless       bool          // Run in headless mode (default: true)
	Timeout        time.Duration // Default operation timeout (default: 30s)
	ViewportWidth  int           // Page width in CSS pixels (default: 800)
	ViewportHeight int           // Page height in CSS pixels (default: 600)
	FakeMedia      bool          // Synthetic camera/microphone, no permission prompts
	UserDataDir    string        // Chrome profile directory; empty lets Rod pick one
	Logger         *log.Logger   // Nil discards
}

// DefaultBrowserConfig returns sensible defaults for E2E testing.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  800,
		ViewportHeight: 600,
	}
}

// BrowserConfigFrom converts file configuration into a BrowserConfig.
func BrowserConfigFrom(cfg *config.Config) BrowserConfig {
	return BrowserConfig{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.BrowserTimeout(),
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	}
}

// BrowserClient wraps Rod with a test-friendly Chrome configuration.
type BrowserClient struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     BrowserConfig
	logger  *log.Logger
}

// NewBrowserClient launches Chrome and connects to it.
// The browser is configured with:
//   - No sandbox (for container compatibility)
//   - No GPU, so screenshots are rasterised the same way on every host
//   - Hidden scrollbars, which otherwise leak into screenshots
//   - Fake media devices when FakeMedia is set, for WebRTC pages
func NewBrowserClient(cfg BrowserConfig) (*BrowserClient, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	l := newLauncher(cfg)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}
	logger.Debug().Str("control_url", url).Msg("browser connected")

	return &BrowserClient{
		browser: browser,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func newLauncher(cfg BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("hide-scrollbars").
		Set("font-render-hinting", "none")
	if cfg.FakeMedia {
		l = l.Set("use-fake-ui-for-media-stream").
			Set("use-fake-device-for-media-stream").
			Set("autoplay-policy", "no-user-gesture-required")
	}
	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}
	return l
}

// Browser returns the underlying Rod browser.
func (c *BrowserClient) Browser() *rod.Browser {
	return c.browser
}

// NewPage opens a blank page sized to the configured viewport and makes it
// the current page.
func (c *BrowserClient) NewPage() (*rod.Page, error) {
	page, err := c.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	c.page = page
	if c.cfg.ViewportWidth > 0 && c.cfg.ViewportHeight > 0 {
		if err := c.SetViewport(c.cfg.ViewportWidth, c.cfg.ViewportHeight); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// Navigate opens a URL with timeout, creating a page first if none is open.
// Returns the page for further interaction.
func (c *BrowserClient) Navigate(url string) (*rod.Page, error) {
	if c.page == nil {
		if _, err := c.NewPage(); err != nil {
			return nil, err
		}
	}
	page := c.page

	err := page.Timeout(c.cfg.Timeout).Navigate(url)
	if err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.Timeout(c.cfg.Timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	c.logger.Debug().Str("url", url).Msg("navigated")
	return page, nil
}

// Page returns the current page, or nil if none open.
func (c *BrowserClient) Page() *rod.Page {
	return c.page
}

// Eval executes JavaScript and returns the result.
// Requires Navigate() to have been called first.
func (c *BrowserClient) Eval(js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	if c.page == nil {
		return nil, errors.New("no page open, call Navigate first")
	}
	result, err := c.page.Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return result, nil
}

// WaitStable waits for the page to be stable (no DOM changes).
func (c *BrowserClient) WaitStable() error {
	if c.page == nil {
		return errors.New("no page open")
	}
	return c.page.WaitStable(c.cfg.Timeout)
}

// SetViewport resizes the current page.
func (c *BrowserClient) SetViewport(width, height int) error {
	if c.page == nil {
		return errors.New("no page open")
	}
	err := c.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

// Screenshot captures the current page as PNG.
func (c *BrowserClient) Screenshot(fullPage bool) ([]byte, error) {
	if c.page == nil {
		return nil, errors.New("no page open")
	}
	data, err := c.page.Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

// Close cleans up browser resources.
// Always call this (via defer) to prevent orphaned Chrome processes.
func (c *BrowserClient) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}
