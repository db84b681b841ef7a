package repository

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/engram/pkg/decay"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
)

type episodicDoc struct {
	Records []*model.MemoryRecord `json:"records"`
}

type decayedViewDoc struct {
	Records []*model.DecayedRecord `json:"records"`
}

func (s *FileStore) AppendEpisodic(ctx context.Context, rec *model.MemoryRecord) error {
	var doc episodicDoc
	return s.durable.Update(ctx, keyEpisodic, &doc, func(bool) error {
		doc.Records = append(doc.Records, rec)

		var removed []*model.MemoryRecord
		doc.Records, removed = pruneByWeight(doc.Records, MaxEpisodic, s.halfLife, s.clock())
		if len(removed) > 0 {
			logging.From(ctx).Debug("pruned episodic records",
				"removed", len(removed), "cap", MaxEpisodic)
		}
		return nil
	})
}

func (s *FileStore) ListEpisodic(ctx context.Context) ([]*model.MemoryRecord, error) {
	var doc episodicDoc
	if _, err := s.durable.Load(ctx, keyEpisodic, &doc); err != nil {
		return nil, err
	}
	return doc.Records, nil
}

func (s *FileStore) IncrementAccess(ctx context.Context, ids []model.MemoryID) (int, error) {
	wanted := make(map[model.MemoryID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	updated := 0
	var doc episodicDoc
	err := s.durable.Update(ctx, keyEpisodic, &doc, func(bool) error {
		now := s.clock()
		for _, rec := range doc.Records {
			if !wanted[rec.ID] {
				continue
			}
			rec.AccessCount++
			at := now
			rec.LastAccessedAt = &at
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *FileStore) RemoveEpisodic(ctx context.Context, ids []model.MemoryID) ([]*model.MemoryRecord, error) {
	wanted := make(map[model.MemoryID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var removed []*model.MemoryRecord
	var doc episodicDoc
	err := s.durable.Update(ctx, keyEpisodic, &doc, func(bool) error {
		kept := doc.Records[:0]
		for _, rec := range doc.Records {
			if wanted[rec.ID] {
				removed = append(removed, rec)
			} else {
				kept = append(kept, rec)
			}
		}
		doc.Records = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *FileStore) SaveDecayedView(ctx context.Context, records []*model.DecayedRecord) error {
	return s.durable.Save(ctx, keyDecayedView, &decayedViewDoc{Records: records})
}

// pruneByWeight keeps the max highest-relevance-weight records,
// preserving append order among the kept. Removal order is ascending
// weight, ties broken by oldest timestamp first.
func pruneByWeight(records []*model.MemoryRecord, max int, halfLife float64, now time.Time) (kept, removed []*model.MemoryRecord) {
	if len(records) <= max {
		return records, nil
	}

	type scored struct {
		rec    *model.MemoryRecord
		weight float64
	}
	candidates := make([]scored, len(records))
	for i, rec := range records {
		strength := decay.Strength(rec.CreatedAt, rec.AccessCount, halfLife, now)
		candidates[i] = scored{rec: rec, weight: decay.Weight(strength, rec.Confidence)}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight < candidates[j].weight
		}
		return candidates[i].rec.CreatedAt.Before(candidates[j].rec.CreatedAt)
	})

	drop := make(map[model.MemoryID]bool, len(records)-max)
	for _, c := range candidates[:len(records)-max] {
		drop[c.rec.ID] = true
		removed = append(removed, c.rec)
	}

	for _, rec := range records {
		if !drop[rec.ID] {
			kept = append(kept, rec)
		}
	}
	return kept, removed
}
