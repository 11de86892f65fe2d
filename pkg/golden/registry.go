package golden

import (
	"image/jpeg"
	"image/png"
	"mime"
	"path"
	"strings"
	"sync"

	"golang.org/x/image/webp"
)

// Comparator decides whether actual matches expected.
// It returns a nil Mismatch when the two are equivalent. A non-nil error means
// the comparison itself could not run (for example undecodable input).
type Comparator interface {
	Compare(actual, expected []byte) (*Mismatch, error)
}

// ComparatorFunc adapts a function to the Comparator interface.
type ComparatorFunc func(actual, expected []byte) (*Mismatch, error)

// Compare calls f.
func (f ComparatorFunc) Compare(actual, expected []byte) (*Mismatch, error) {
	return f(actual, expected)
}

// Mismatch describes how actual differs from expected.
type Mismatch struct {
	// Message is a human-readable explanation, may be empty.
	Message string

	// Diff is an optional artifact visualising the difference.
	Diff []byte

	// DiffExt is the file extension used when persisting Diff (e.g. ".png").
	DiffExt string

	// Err optionally classifies the mismatch (e.g. ErrSizeMismatch).
	Err error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Comparator{
		"image/png":        NewImageComparator("image/png", png.Decode),
		"image/jpeg":       NewImageComparator("image/jpeg", jpeg.Decode),
		"image/webp":       NewImageComparator("image/webp", webp.Decode),
		"text/plain":       TextComparator{},
		"text/html":        TextComparator{},
		"application/json": TextComparator{},
	}
)

// Register installs c as the comparator for mimeType, replacing any existing
// one. Registering a nil comparator removes the entry.
func Register(mimeType string, c Comparator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if c == nil {
		delete(registry, mimeType)
		return
	}
	registry[mimeType] = c
}

// Lookup returns the comparator registered for mimeType.
func Lookup(mimeType string) (Comparator, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[mimeType]
	return c, ok
}

var extensionTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".txt":  "text/plain",
	".log":  "text/plain",
	".snap": "text/plain",
	".html": "text/html",
	".htm":  "text/html",
	".json": "application/json",
}

// MIMEType infers the content type of a golden entry from its extension.
// Returns an empty string when the extension is unknown.
func MIMEType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if ext == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}
	return mediaType
}
