package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type DocumentID string

// NewDocumentID derives a stable document ID from its source path, so
// re-indexing the same file replaces the prior entry.
func NewDocumentID(path string) DocumentID {
	sum := sha256.Sum256([]byte(path))
	return DocumentID(hex.EncodeToString(sum[:16]))
}

// DocumentMeta describes an indexed document without its embedding.
type DocumentMeta struct {
	ID            DocumentID `json:"id"`
	Filename      string     `json:"filename"`
	Path          string     `json:"path"`
	IndexedAt     time.Time  `json:"indexed_at"`
	ContentHash   string     `json:"content_hash"`
	SizeBytes     int64      `json:"size_bytes"`
	ChunkCount    int        `json:"chunk_count"`
	LastIndexedAt time.Time  `json:"last_indexed_at"`
}

// DocumentVector pairs document metadata with its embedding. The
// embedding dimensionality is fixed per embedding model.
type DocumentVector struct {
	DocumentMeta
	Embedding []float32 `json:"embedding"`
}

// RetrievedDocument is a retrieval hit: document metadata with its
// similarity to the query, embedding omitted.
type RetrievedDocument struct {
	DocumentMeta
	Similarity float64 `json:"similarity"`
}

// QueryHit records one result of a logged retrieval query.
type QueryHit struct {
	ID         DocumentID `json:"id"`
	Similarity float64    `json:"similarity"`
}

// QueryLogEntry is an audit entry for a retrieval query.
type QueryLogEntry struct {
	Query     string     `json:"query"`
	QueriedAt time.Time  `json:"queried_at"`
	Hits      []QueryHit `json:"hits"`
}

// HashContent returns the content hash used to detect no-op
// re-indexing.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
