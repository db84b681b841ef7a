// Package retrieval implements document indexing and top-K cosine
// similarity retrieval over the stored document vectors.
package retrieval

import (
	"time"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/repository"
)

// Defaults for retrieval parameters.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.5
)

// UseCase provides document retrieval operations
type UseCase struct {
	repo    repository.Repository
	gateway adapter.Gateway
	clock   func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCase) {
		uc.clock = clock
	}
}

// New creates a new retrieval UseCase instance
func New(repo repository.Repository, gateway adapter.Gateway, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:    repo,
		gateway: gateway,
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
