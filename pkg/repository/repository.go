// Package repository persists the engine's memory stores as JSON
// documents under a single base directory. Each store owns exactly one
// on-disk document; all cross-store effects go through explicit
// read-then-write calls on this interface.
package repository

import (
	"context"
	"time"

	"github.com/m-mizutani/engram/pkg/decay"
	"github.com/m-mizutani/engram/pkg/model"
)

// Capacity bounds. Stores are pruned silently on write; exceeding a
// bound is never an error.
const (
	MaxEpisodic    = 50
	MaxSemantic    = 100
	MaxQueryLog    = 100
	MaxSelfHistory = 20
)

// Store file keys under the base directory.
const (
	keyEpisodic      = "episodic.json"
	keyDecayedView   = "episodic_decayed.json"
	keySemantic      = "semantic.json"
	keySelfModel     = "self_model.json"
	keyForgettingLog = "forgetting_log.json"
	keyDocumentMeta  = "documents/metadata.json"
	keyEmbeddings    = "documents/embeddings.json"
	keyQueryLog      = "query_log.json"
)

// Repository defines the interface for memory data persistence
type Repository interface {
	// AppendEpisodic appends a record and prunes the store to MaxEpisodic
	AppendEpisodic(ctx context.Context, rec *model.MemoryRecord) error

	// ListEpisodic returns all episodic records in append order
	ListEpisodic(ctx context.Context) ([]*model.MemoryRecord, error)

	// IncrementAccess bumps access counters for every listed id present,
	// persisting once. Returns the number of records updated.
	IncrementAccess(ctx context.Context, ids []model.MemoryID) (int, error)

	// RemoveEpisodic deletes the listed records, returning the removed ones
	RemoveEpisodic(ctx context.Context, ids []model.MemoryID) ([]*model.MemoryRecord, error)

	// SaveDecayedView persists the derived decayed view of the episodic store
	SaveDecayedView(ctx context.Context, records []*model.DecayedRecord) error

	// AppendFacts appends facts to the semantic store and prunes to MaxSemantic
	AppendFacts(ctx context.Context, facts []*model.Fact) error

	// ListFacts returns all semantic facts
	ListFacts(ctx context.Context) ([]*model.Fact, error)

	// GetSelfModel returns the current self-model and its snapshot history.
	// A store without a persisted model returns the default model.
	GetSelfModel(ctx context.Context) (*model.SelfModel, []*model.SelfModel, error)

	// UpdateSelfModel snapshots the current model into history, applies the
	// update, bumps the version, and returns the new current model.
	UpdateSelfModel(ctx context.Context, update *model.SelfModelUpdate) (*model.SelfModel, error)

	// AppendForgotten records pruned or consolidated records in the audit log
	AppendForgotten(ctx context.Context, entries []*model.ForgottenRecord) error

	// ListForgotten returns the forgetting audit log
	ListForgotten(ctx context.Context) ([]*model.ForgottenRecord, error)

	// PutDocument upserts an indexed document vector
	PutDocument(ctx context.Context, doc *model.DocumentVector) error

	// GetDocumentMeta returns metadata for a document, or nil when not indexed
	GetDocumentMeta(ctx context.Context, id model.DocumentID) (*model.DocumentMeta, error)

	// ListDocuments returns all indexed documents with embeddings
	ListDocuments(ctx context.Context) ([]*model.DocumentVector, error)

	// AppendQueryLog records a retrieval query, keeping the newest MaxQueryLog
	AppendQueryLog(ctx context.Context, entry *model.QueryLogEntry) error

	// ListQueryLog returns the retrieval query log, oldest first
	ListQueryLog(ctx context.Context) ([]*model.QueryLogEntry, error)
}

var _ Repository = (*FileStore)(nil)

// FileStore implements Repository on top of a Durable store.
type FileStore struct {
	durable  *Durable
	clock    func() time.Time
	halfLife float64
}

// Option is a functional option for FileStore
type Option func(*FileStore)

// WithClock overrides the time source, used by tests and batch replays
func WithClock(clock func() time.Time) Option {
	return func(s *FileStore) {
		s.clock = clock
	}
}

// WithHalfLife sets the decay half-life in days used for pruning
func WithHalfLife(days float64) Option {
	return func(s *FileStore) {
		s.halfLife = days
	}
}

// New creates a file-backed repository rooted at baseDir.
func New(baseDir string, opts ...Option) *FileStore {
	s := &FileStore{
		durable:  NewDurable(baseDir),
		clock:    time.Now,
		halfLife: decay.DefaultHalfLifeDays,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Durable exposes the underlying durable store for callers that need
// raw load/save access (e.g. status display).
func (s *FileStore) Durable() *Durable {
	return s.durable
}
