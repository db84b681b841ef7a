package model

import (
	"time"

	"github.com/google/uuid"
)

type FactID string

// NewFactID generates a new unique FactID
func NewFactID() FactID {
	return FactID(uuid.New().String())
}

// Fact is a curated semantic memory entry, promoted from one or more
// episodic records by consolidation. Revisions holds prior content
// strings in order, oldest first.
type Fact struct {
	ID          FactID     `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	Content     string     `json:"content"`
	Source      Source     `json:"source"`
	Confidence  float64    `json:"confidence"`
	Revisions   []string   `json:"revisions,omitempty"`
	AccessCount int        `json:"access_count"`
	DerivedFrom []MemoryID `json:"derived_from,omitempty"`
}

// Revise replaces the fact content, appending the previous content to
// the revision list and adjusting confidence.
func (f *Fact) Revise(content string, confidence float64) {
	f.Revisions = append(f.Revisions, f.Content)
	f.Content = content
	f.Confidence = confidence
}
