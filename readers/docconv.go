package readers

import (
	"fmt"

	"code.sajari.com/docconv/v2"
)

// DocconvReader handles the rich document formats docconv can convert.
// Parsing fidelity is docconv's concern; we only consume the extracted body.
type DocconvReader struct{}

func (r *DocconvReader) Exts() []string {
	return []string{".pdf", ".docx", ".odt", ".xml"}
}

func (r *DocconvReader) ReadText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert document: %w", err)
	}

	return res.Body, nil
}
