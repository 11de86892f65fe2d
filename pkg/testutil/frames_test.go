package testutil

import (
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"

	"github.com/thesyncim/browsertest/pkg/config"
)

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, "http://localhost:<PORT>/frames/one-frame.html",
		NormalizePort("http://localhost:8907/frames/one-frame.html"))
	assert.Equal(t, "http://127.0.0.1:<PORT>/",
		NormalizePort("http://127.0.0.1:54321/"))
	assert.Equal(t, "http://localhost:80/", NormalizePort("http://localhost:80/"), "short ports kept")
	assert.Equal(t, "about:blank", NormalizePort("about:blank"))
}

func TestFormatFrameTree(t *testing.T) {
	tree := &proto.PageFrameTree{
		Frame: &proto.PageFrame{URL: "http://localhost:8907/frames/nested-frames.html"},
		ChildFrames: []*proto.PageFrameTree{
			{
				Frame: &proto.PageFrame{URL: "http://localhost:8907/frames/two-frames.html", Name: "2ndFrame"},
				ChildFrames: []*proto.PageFrameTree{
					{Frame: &proto.PageFrame{URL: "http://localhost:8907/frames/frame.html", Name: "uno"}},
					{Frame: &proto.PageFrame{URL: "http://localhost:8907/frames/frame.html", Name: "dos"}},
				},
			},
			{Frame: &proto.PageFrame{URL: "http://localhost:8907/frames/frame.html", Name: "aframe"}},
		},
	}

	assert.Equal(t, []string{
		"http://localhost:<PORT>/frames/nested-frames.html",
		"    http://localhost:<PORT>/frames/two-frames.html (2ndFrame)",
		"        http://localhost:<PORT>/frames/frame.html (uno)",
		"        http://localhost:<PORT>/frames/frame.html (dos)",
		"    http://localhost:<PORT>/frames/frame.html (aframe)",
	}, FormatFrameTree(tree))
}

func TestFormatFrameTree_Nil(t *testing.T) {
	assert.Empty(t, FormatFrameTree(nil))
	assert.Empty(t, FormatFrameTree(&proto.PageFrameTree{}))
}

func TestIsFavicon(t *testing.T) {
	assert.True(t, IsFavicon("http://localhost:8907/favicon.ico"))
	assert.False(t, IsFavicon("http://localhost:8907/grid.html"))
}

func TestFrameSelector(t *testing.T) {
	assert.Equal(t, `iframe[id="frame1"]`, frameSelector("frame1"))
}

func TestDefaultBrowserConfig(t *testing.T) {
	cfg := DefaultBrowserConfig()
	assert.True(t, cfg.Headless)
	assert.Equal(t, 800, cfg.ViewportWidth)
	assert.Equal(t, 600, cfg.ViewportHeight)
	assert.False(t, cfg.FakeMedia)
}

func TestBrowserConfigFrom(t *testing.T) {
	fc := config.Default()
	fc.Browser.Headless = false
	fc.Browser.TimeoutSeconds = 7
	fc.Browser.ViewportWidth = 1024
	fc.Browser.ViewportHeight = 768

	cfg := BrowserConfigFrom(fc)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, 1024, cfg.ViewportWidth)
	assert.Equal(t, 768, cfg.ViewportHeight)
}
