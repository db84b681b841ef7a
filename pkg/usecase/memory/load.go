package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/engram/pkg/decay"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// LoadWithDecay returns all episodic records annotated with decay
// strength and relevance weight. Access counters are not touched. The
// derived view is persisted best-effort for inspection; a failure
// there never fails the read.
func (u *UseCase) LoadWithDecay(ctx context.Context) ([]*model.DecayedRecord, error) {
	records, err := u.repo.ListEpisodic(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load episodic store")
	}

	now := u.clock()
	annotated := make([]*model.DecayedRecord, len(records))
	for i, rec := range records {
		strength := decay.Strength(rec.CreatedAt, rec.AccessCount, u.halfLife, now)
		annotated[i] = &model.DecayedRecord{
			MemoryRecord:    rec,
			Decay:           strength,
			RelevanceWeight: decay.Weight(strength, rec.Confidence),
		}
	}

	if err := u.repo.SaveDecayedView(ctx, annotated); err != nil {
		logging.From(ctx).Warn("failed to persist decayed view", "error", err)
	}

	return annotated, nil
}

// SortByRelevance returns a new list ordered by descending relevance
// weight. This ordering is the canonical basis for any "most relevant
// N" selection.
func SortByRelevance(records []*model.DecayedRecord) []*model.DecayedRecord {
	sorted := make([]*model.DecayedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceWeight > sorted[j].RelevanceWeight
	})
	return sorted
}
