// Package readers extracts plain text from uploaded documents, one reader per
// family of file extensions.
package readers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType marks a file extension no reader is registered for.
// Callers treat it as a skip, not a failure.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrRead marks an I/O or parse failure while extracting a document.
var ErrRead = errors.New("failed to read document")

type Reader interface {
	Exts() []string
	ReadText(path string) (string, error)
}

// Registry routes extraction by file extension and caps the extracted text to
// bound downstream memory use. Overflow is discarded, not an error.
type Registry struct {
	maxChars int
	readers  map[string]Reader
}

func NewRegistry(maxChars int) *Registry {
	return &Registry{maxChars: maxChars, readers: make(map[string]Reader)}
}

func (rg *Registry) Register(readers ...Reader) error {
	for _, r := range readers {
		for _, ext := range r.Exts() {
			if _, ok := rg.readers[ext]; ok {
				return fmt.Errorf("reader already registered for type %s", ext)
			}

			rg.readers[ext] = r
		}
	}

	return nil
}

func (rg *Registry) Supported(path string) bool {
	_, ok := rg.readers[normalizeExt(path)]
	return ok
}

// Extract returns the document's text, empty for empty files, truncated at
// the configured character cap.
func (rg *Registry) Extract(path string) (string, error) {
	r, ok := rg.readers[normalizeExt(path)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}

	text, err := r.ReadText(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}

	if rg.maxChars > 0 && len(text) > rg.maxChars {
		text = text[:rg.maxChars]
	}

	return text, nil
}

func normalizeExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
