// Package memory implements the episodic, semantic and self-model
// operations of the engine: append, access accounting, decay-annotated
// reads, consolidation and summary.
package memory

import (
	"time"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/decay"
	"github.com/m-mizutani/engram/pkg/repository"
)

// UseCase provides memory store operations
type UseCase struct {
	repo     repository.Repository
	archive  adapter.Archive
	clock    func() time.Time
	halfLife float64
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithArchive enables best-effort archival of forgotten records
func WithArchive(archive adapter.Archive) Option {
	return func(uc *UseCase) {
		uc.archive = archive
	}
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCase) {
		uc.clock = clock
	}
}

// WithHalfLife sets the decay half-life in days
func WithHalfLife(days float64) Option {
	return func(uc *UseCase) {
		uc.halfLife = days
	}
}

// New creates a new memory UseCase instance
func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:     repo,
		clock:    time.Now,
		halfLife: decay.DefaultHalfLifeDays,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
