package memory

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// SelfModel returns the current self-model and its snapshot history.
func (u *UseCase) SelfModel(ctx context.Context) (*model.SelfModel, []*model.SelfModel, error) {
	current, history, err := u.repo.GetSelfModel(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load self-model")
	}
	return current, history, nil
}

// UpdateSelfModel applies a partial update. The prior current model is
// snapshotted into history before the change takes effect.
func (u *UseCase) UpdateSelfModel(ctx context.Context, update *model.SelfModelUpdate) (*model.SelfModel, error) {
	if update == nil {
		return nil, goerr.New("self-model update is nil")
	}

	updated, err := u.repo.UpdateSelfModel(ctx, update)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update self-model")
	}
	return updated, nil
}
