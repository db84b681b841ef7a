package memory

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Append validates the input, assigns an ID and timestamp, and appends
// the record to the episodic store. The store enforces its capacity
// bound on write; pruning is silent.
func (u *UseCase) Append(
	ctx context.Context,
	content string,
	source model.Source,
	confidence float64,
	metadata map[string]any,
) (*model.MemoryRecord, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if confidence < 0 || confidence > 1 {
		return nil, goerr.Wrap(model.ErrInvalidConfidence, "cannot append record",
			goerr.V("confidence", confidence))
	}

	rec := &model.MemoryRecord{
		ID:         model.NewMemoryID(),
		CreatedAt:  u.clock(),
		Content:    content,
		Source:     source,
		Confidence: confidence,
		Metadata:   metadata,
	}

	if err := u.repo.AppendEpisodic(ctx, rec); err != nil {
		return nil, goerr.Wrap(err, "failed to append episodic record")
	}

	return rec, nil
}

// IncrementAccess marks the listed records as used, bumping access
// counters in one batched write. Reading for display does not count as
// use; only this call does.
func (u *UseCase) IncrementAccess(ctx context.Context, ids []model.MemoryID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	updated, err := u.repo.IncrementAccess(ctx, ids)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to increment access counters")
	}
	return updated, nil
}
