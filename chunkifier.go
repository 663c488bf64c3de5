package main

import "strings"

// Chunkifier splits extracted text into bounded, overlapping windows. Windows
// prefer to end at the last newline inside the window, then the last space,
// then the hard size boundary, so chunks break on natural edges when
// possible. Chunk count is capped; overflow is dropped silently as
// backpressure against pathological inputs.
type Chunkifier struct {
	chunkSize    int
	chunkOverlap int
	maxChunks    int
}

func (c *Chunkifier) Chunkify(text string) []string {
	if len(text) == 0 {
		return []string{}
	}

	size := c.chunkSize
	if size <= 0 {
		size = 1000
	}
	overlap := c.chunkOverlap
	if overlap >= size {
		overlap = size / 2
	}
	if overlap < 0 {
		overlap = 0
	}

	res := make([]string, 0, len(text)/(size-overlap)+1)
	start := 0
	for start < len(text) {
		if c.maxChunks > 0 && len(res) >= c.maxChunks {
			break
		}

		end := min(start+size, len(text))
		if end < len(text) {
			if nl := strings.LastIndexByte(text[start:end], '\n'); nl > 0 {
				end = start + nl + 1
			} else if sp := strings.LastIndexByte(text[start:end], ' '); sp > 0 {
				end = start + sp + 1
			}
		}

		res = append(res, text[start:end])
		if end >= len(text) {
			break
		}

		next := end - overlap
		if next <= start {
			// No boundary advanced the cursor; force a hard cut.
			next = end
		}
		start = next
	}

	return res
}
