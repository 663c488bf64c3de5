package docstore

// Reserved metadata keys written by the ingestion pipeline. KeyText is
// guaranteed to be present on every record so retrieval can return the chunk
// verbatim; the rest are informational. Callers may attach additional keys,
// which pass through untouched.
const (
	KeyText       = "text"
	KeyFileName   = "file_name"
	KeyFileType   = "file_type"
	KeyFilePath   = "file_path"
	KeyChunkIndex = "chunk_index"
	KeyUploadedAt = "uploaded_at"
	KeyFileCrc    = "file_crc"
)

// Record is the persisted unit of the index: an identifier, one embedding
// vector and a metadata mapping.
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// SearchResult is a retrieval hit. Score is backend-defined but always
// higher-is-more-similar; the local backend uses cosine similarity in [-1, 1].
type SearchResult struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

type Stats struct {
	Count     int
	Dimension int
}

// Mode records which backend was selected at construction. Callers may read
// it for display but must not branch on it; both modes honor the same
// contract.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)
