package golden

import (
	"html"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// TextComparator compares text artifacts for exact equality and renders a
// line-level HTML diff on mismatch.
type TextComparator struct{}

// Compare reports a mismatch unless actual and expected are byte-identical.
func (TextComparator) Compare(actual, expected []byte) (*Mismatch, error) {
	a, e := string(actual), string(expected)
	if a == e {
		return nil, nil
	}
	return &Mismatch{
		Message: "Texts differ. ",
		Diff:    []byte(RenderHTMLDiff(e, a)),
		DiffExt: ".html",
	}, nil
}

const diffStyle = `pre { font-family: monospace; }
del { background: #fdd; color: #a00; text-decoration: line-through; }
ins { background: #dfd; color: #070; text-decoration: none; }`

// RenderHTMLDiff renders a line diff from expected to actual as a standalone
// HTML page. Removed lines are wrapped in <del>, added lines in <ins>.
func RenderHTMLDiff(expected, actual string) string {
	a := splitLines(expected)
	b := splitLines(actual)

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	sb.WriteString(diffStyle)
	sb.WriteString("\n</style>\n</head>\n<body>\n<pre>")

	m := difflib.NewMatcher(a, b)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			writeLines(&sb, "", a[op.I1:op.I2])
		case 'd':
			writeLines(&sb, "del", a[op.I1:op.I2])
		case 'i':
			writeLines(&sb, "ins", b[op.J1:op.J2])
		case 'r':
			writeLines(&sb, "del", a[op.I1:op.I2])
			writeLines(&sb, "ins", b[op.J1:op.J2])
		}
	}

	sb.WriteString("</pre>\n</body>\n</html>\n")
	return sb.String()
}

func writeLines(sb *strings.Builder, tag string, lines []string) {
	if len(lines) == 0 {
		return
	}
	text := html.EscapeString(strings.Join(lines, ""))
	if tag == "" {
		sb.WriteString(text)
		return
	}
	sb.WriteString("<" + tag + ">")
	sb.WriteString(text)
	sb.WriteString("</" + tag + ">")
}

// UnifiedDiff returns a unified diff of expected and actual with three lines
// of context, or an empty string when they are equal.
func UnifiedDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(expected),
		B:        splitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// splitLines splits s after each newline. Unlike difflib.SplitLines it does
// not invent an empty trailing line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
