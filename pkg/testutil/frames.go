package testutil

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// AttachFrame appends an iframe with the given id and src to the page body,
// waits for it to load and returns the frame.
func AttachFrame(page *rod.Page, frameID, url string) (*rod.Page, error) {
	_, err := page.Eval(`(id, url) => new Promise(resolve => {
		const frame = document.createElement('iframe');
		frame.src = url;
		frame.id = id;
		frame.onload = () => resolve(true);
		document.body.appendChild(frame);
	})`, frameID, url)
	if err != nil {
		return nil, fmt.Errorf("failed to attach frame %s: %w", frameID, err)
	}

	el, err := page.Element(frameSelector(frameID))
	if err != nil {
		return nil, fmt.Errorf("failed to find frame %s: %w", frameID, err)
	}
	frame, err := el.Frame()
	if err != nil {
		return nil, fmt.Errorf("failed to get content of frame %s: %w", frameID, err)
	}
	return frame, nil
}

// DetachFrame removes the iframe with the given id.
func DetachFrame(page *rod.Page, frameID string) error {
	_, err := page.Eval(`id => {
		const frame = document.getElementById(id);
		if (frame) frame.remove();
	}`, frameID)
	if err != nil {
		return fmt.Errorf("failed to detach frame %s: %w", frameID, err)
	}
	return nil
}

// NavigateFrame points the iframe with the given id at url and waits for it to load.
func NavigateFrame(page *rod.Page, frameID, url string) error {
	_, err := page.Eval(`(id, url) => new Promise((resolve, reject) => {
		const frame = document.getElementById(id);
		if (!frame) {
			reject(new Error('no frame ' + id));
			return;
		}
		frame.onload = () => resolve(true);
		frame.src = url;
	})`, frameID, url)
	if err != nil {
		return fmt.Errorf("failed to navigate frame %s: %w", frameID, err)
	}
	return nil
}

// DumpFrames returns the page's frame tree, one line per frame, children
// indented by four spaces. Each line is the frame URL with the server port
// replaced by <PORT>, followed by the frame name in parentheses if set.
func DumpFrames(page *rod.Page) ([]string, error) {
	res, err := proto.PageGetFrameTree{}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("failed to get frame tree: %w", err)
	}
	return FormatFrameTree(res.FrameTree), nil
}

// FormatFrameTree renders tree the way DumpFrames does.
func FormatFrameTree(tree *proto.PageFrameTree) []string {
	var lines []string
	var walk func(t *proto.PageFrameTree, indent string)
	walk = func(t *proto.PageFrameTree, indent string) {
		if t == nil || t.Frame == nil {
			return
		}
		desc := NormalizePort(t.Frame.URL)
		if t.Frame.Name != "" {
			desc += " (" + t.Frame.Name + ")"
		}
		lines = append(lines, indent+desc)
		for _, child := range t.ChildFrames {
			walk(child, "    "+indent)
		}
	}
	walk(tree, "")
	return lines
}

var portPattern = regexp.MustCompile(`:\d{4,5}/`)

// NormalizePort replaces a four or five digit port in url with <PORT>.
func NormalizePort(url string) string {
	return portPattern.ReplaceAllString(url, ":<PORT>/")
}

// IsFavicon reports whether url requests a favicon.
func IsFavicon(url string) bool {
	return strings.Contains(url, "favicon.ico")
}

func frameSelector(frameID string) string {
	return fmt.Sprintf("iframe[id=%q]", frameID)
}
