package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidSource     = goerr.New("invalid memory source")
	ErrInvalidConfidence = goerr.New("confidence must be within [0, 1]")
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

type Source string

const (
	SourceObservation Source = "observation"
	SourceInteraction Source = "interaction"
	SourceRealization Source = "realization"
	SourceDiagnostic  Source = "diagnostic"
)

// Validate checks if the source is valid
func (s Source) Validate() error {
	switch s {
	case SourceObservation, SourceInteraction, SourceRealization, SourceDiagnostic:
		return nil
	default:
		return goerr.Wrap(ErrInvalidSource, "unknown source", goerr.V("source", s))
	}
}

// MemoryRecord is a single entry in the episodic memory log.
// Confidence is fixed at creation; AccessCount only grows until the
// record is pruned or reset.
type MemoryRecord struct {
	ID             MemoryID       `json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	Content        string         `json:"content"`
	Source         Source         `json:"source"`
	Confidence     float64        `json:"confidence"`
	AccessCount    int            `json:"access_count"`
	LastAccessedAt *time.Time     `json:"last_accessed_at,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// DecayedRecord is a MemoryRecord annotated with its decay strength and
// relevance weight. Annotation never mutates the underlying record.
type DecayedRecord struct {
	*MemoryRecord
	Decay           float64 `json:"decay"`
	RelevanceWeight float64 `json:"relevance_weight"`
}

// ForgottenRecord is an audit entry for a record removed from the
// episodic store, preserving the original content.
type ForgottenRecord struct {
	Record      *MemoryRecord `json:"record"`
	Reason      string        `json:"reason"`
	ForgottenAt time.Time     `json:"forgotten_at"`
}
