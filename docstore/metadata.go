package docstore

import (
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
)

func toDocumentMetadata(meta map[string]any) chroma.DocumentMetadata {
	attrs := make([]*chroma.MetaAttribute, 0, len(meta))
	for k, v := range meta {
		switch t := v.(type) {
		case string:
			attrs = append(attrs, chroma.NewStringAttribute(k, t))
		case int:
			attrs = append(attrs, chroma.NewIntAttribute(k, int64(t)))
		case int64:
			attrs = append(attrs, chroma.NewIntAttribute(k, t))
		case uint32:
			attrs = append(attrs, chroma.NewIntAttribute(k, int64(t)))
		case float32:
			attrs = append(attrs, chroma.NewFloatAttribute(k, float64(t)))
		case float64:
			attrs = append(attrs, chroma.NewFloatAttribute(k, t))
		case bool:
			attrs = append(attrs, chroma.NewBoolAttribute(k, t))
		default:
			attrs = append(attrs, chroma.NewStringAttribute(k, fmt.Sprint(v)))
		}
	}

	return chroma.NewDocumentMetadata(attrs...)
}

// enumerableMetadata matches metadata implementations that can list their
// keys. The chroma client returns one; the assertion keeps us off its
// concrete type.
type enumerableMetadata interface {
	Keys() []string
	GetRaw(key string) (interface{}, bool)
}

func fromDocumentMetadata(meta chroma.DocumentMetadata) map[string]any {
	out := make(map[string]any)
	if meta == nil {
		return out
	}

	if em, ok := meta.(enumerableMetadata); ok {
		for _, k := range em.Keys() {
			if v, ok := em.GetRaw(k); ok {
				out[k] = v
			}
		}
		return out
	}

	// Fallback: recover the reserved keys the pipeline writes.
	for _, k := range []string{KeyText, KeyFileName, KeyFileType, KeyFilePath, KeyUploadedAt} {
		if v, ok := meta.GetString(k); ok {
			out[k] = v
		}
	}
	if v, ok := meta.GetInt(KeyChunkIndex); ok {
		out[KeyChunkIndex] = v
	}
	if v, ok := meta.GetInt(KeyFileCrc); ok {
		out[KeyFileCrc] = v
	}

	return out
}
