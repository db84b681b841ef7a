package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/gt"
)

func strPtr(s string) *string { return &s }

func TestSelfModelDefault(t *testing.T) {
	repo := repository.New(t.TempDir())

	current, history, err := repo.GetSelfModel(context.Background())
	gt.NoError(t, err)
	gt.V(t, current.Version).Equal("1.0.0")
	gt.A(t, history).Length(0)
}

func TestSelfModelUpdateSnapshotsHistory(t *testing.T) {
	repo := repository.New(t.TempDir())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{
			Identity: strPtr(fmt.Sprintf("iteration %d", i)),
		})
		gt.NoError(t, err)
	}

	// Three snapshots so far; a fourth update appends the prior current.
	_, history, err := repo.GetSelfModel(ctx)
	gt.NoError(t, err)
	gt.A(t, history).Length(3)

	updated, err := repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{Identity: strPtr("X")})
	gt.NoError(t, err)
	gt.V(t, updated.Identity).Equal("X")

	current, history, err := repo.GetSelfModel(ctx)
	gt.NoError(t, err)
	gt.V(t, current.Identity).Equal("X")
	gt.A(t, history).Length(4)
	gt.V(t, history[3].Identity).Equal("iteration 2")
}

func TestSelfModelVersionBump(t *testing.T) {
	repo := repository.New(t.TempDir())
	ctx := context.Background()

	first, err := repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{Identity: strPtr("a")})
	gt.NoError(t, err)
	gt.V(t, first.Version).Equal("1.0.1")

	second, err := repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{Identity: strPtr("b")})
	gt.NoError(t, err)
	gt.V(t, second.Version).Equal("1.0.2")
}

func TestSelfModelHistoryCap(t *testing.T) {
	repo := repository.New(t.TempDir())
	ctx := context.Background()

	for i := 0; i < repository.MaxSelfHistory+5; i++ {
		_, err := repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{
			Identity: strPtr(fmt.Sprintf("v%d", i)),
		})
		gt.NoError(t, err)
	}

	_, history, err := repo.GetSelfModel(ctx)
	gt.NoError(t, err)
	gt.A(t, history).Length(repository.MaxSelfHistory)

	// Oldest snapshots were evicted; the newest survives.
	gt.V(t, history[len(history)-1].Identity).Equal(fmt.Sprintf("v%d", repository.MaxSelfHistory+3))
}

func TestSelfModelPartialUpdate(t *testing.T) {
	repo := repository.New(t.TempDir())
	ctx := context.Background()

	_, err := repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{
		Identity:     strPtr("curious assistant"),
		ActiveDrives: []string{"learn", "help"},
		InternalState: map[string]float64{
			"energy": 0.8,
		},
	})
	gt.NoError(t, err)

	// Updating one field leaves the others intact.
	updated, err := repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{
		InternalState: map[string]float64{"energy": 0.4, "focus": 0.9},
	})
	gt.NoError(t, err)
	gt.V(t, updated.Identity).Equal("curious assistant")
	gt.A(t, updated.ActiveDrives).Length(2)
	gt.V(t, updated.InternalState["energy"]).Equal(0.4)
	gt.V(t, updated.InternalState["focus"]).Equal(0.9)
}

func TestSelfModelHistoryImmutable(t *testing.T) {
	repo := repository.New(t.TempDir())
	ctx := context.Background()

	_, err := repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{
		ActiveDrives: []string{"explore"},
	})
	gt.NoError(t, err)
	_, err = repo.UpdateSelfModel(ctx, &model.SelfModelUpdate{
		ActiveDrives: []string{"persist"},
	})
	gt.NoError(t, err)

	_, history, err := repo.GetSelfModel(ctx)
	gt.NoError(t, err)

	// Mutating a returned snapshot must not leak into the store.
	history[0].ActiveDrives = append(history[0].ActiveDrives, "tampered")

	_, reloaded, err := repo.GetSelfModel(ctx)
	gt.NoError(t, err)
	gt.A(t, reloaded[1].ActiveDrives).Length(1)
	gt.V(t, reloaded[1].ActiveDrives[0]).Equal("explore")
}
