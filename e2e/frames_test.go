//go:build e2e

package e2e

import (
	"strings"
	"testing"

	"github.com/thesyncim/browsertest/pkg/events"
	"github.com/thesyncim/browsertest/pkg/golden"
	"github.com/thesyncim/browsertest/pkg/testutil"
)

func TestFrames_DumpMatchesGolden(t *testing.T) {
	srv := startServer(t)
	client := newBrowser(t, browserConfig(t))

	page, err := client.Navigate(srv.URL("/frames/two-frames.html"))
	if err != nil {
		t.Fatalf("failed to navigate: %v", err)
	}
	if err := client.WaitStable(); err != nil {
		t.Fatalf("page not stable: %v", err)
	}

	lines, err := testutil.DumpFrames(page)
	if err != nil {
		t.Fatalf("dump frames: %v", err)
	}

	golden.AssertString(t, checkedInGoldens(), strings.Join(lines, "\n"), "frames/two-frames.txt")
}

func TestFrames_AttachDetach(t *testing.T) {
	srv := startServer(t)
	client := newBrowser(t, browserConfig(t))
	ctx := testContext(t)

	page, err := client.Navigate(srv.URL("/frames/one-frame.html"))
	if err != nil {
		t.Fatalf("failed to navigate: %v", err)
	}

	src := testutil.PageEvents(page)
	defer src.Close()

	attached := events.WaitForEventAsync[testutil.PageEvent](ctx, src, testutil.EventFrameAttached, nil, waitTimeout())
	frame, err := testutil.AttachFrame(page, "frame2", srv.URL("/frames/frame.html"))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	ev, err := attached.Wait(ctx)
	if err != nil {
		t.Fatalf("frameattached: %v", err)
	}
	if ev.FrameID == "" {
		t.Error("frameattached without frame id")
	}

	text := frame.MustElement("div").MustText()
	if text != "Hi, I'm frame" {
		t.Errorf("frame content: got %q", text)
	}

	lines, err := testutil.DumpFrames(page)
	if err != nil {
		t.Fatalf("dump frames: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 frames, got %d: %v", len(lines), lines)
	}

	navigated := events.WaitForEventAsync[testutil.PageEvent](ctx, src, testutil.EventFrameNavigated,
		func(e testutil.PageEvent) bool { return strings.HasSuffix(e.URL, "/grid.html") }, waitTimeout())
	if err := testutil.NavigateFrame(page, "frame2", srv.URL("/grid.html")); err != nil {
		t.Fatalf("navigate frame: %v", err)
	}
	if _, err := navigated.Wait(ctx); err != nil {
		t.Fatalf("framenavigated: %v", err)
	}

	detached := events.WaitForEventAsync[testutil.PageEvent](ctx, src, testutil.EventFrameDetached, nil, waitTimeout())
	if err := testutil.DetachFrame(page, "frame2"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if _, err := detached.Wait(ctx); err != nil {
		t.Fatalf("framedetached: %v", err)
	}

	lines, err = testutil.DumpFrames(page)
	if err != nil {
		t.Fatalf("dump frames: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("expected 2 frames after detach, got %d: %v", len(lines), lines)
	}
}
