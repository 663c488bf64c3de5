package readers

import (
	"fmt"
	"os"
)

type TxtReader struct{}

func (r *TxtReader) Exts() []string { return []string{".txt", ".md"} }

func (r *TxtReader) ReadText(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text file: %w", err)
	}

	return string(buf), nil
}
