package repository

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/engram/pkg/decay"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
)

type semanticDoc struct {
	Facts []*model.Fact `json:"facts"`
}

// AppendFacts appends to the fact table and prunes to MaxSemantic.
// Consolidation runs that push the table over the cap use the same
// relevance-weight eviction as episodic appends, so there is exactly
// one eviction policy across stores.
func (s *FileStore) AppendFacts(ctx context.Context, facts []*model.Fact) error {
	var doc semanticDoc
	return s.durable.Update(ctx, keySemantic, &doc, func(bool) error {
		doc.Facts = append(doc.Facts, facts...)

		if len(doc.Facts) > MaxSemantic {
			removed := len(doc.Facts) - MaxSemantic
			doc.Facts = pruneFactsByWeight(doc.Facts, MaxSemantic, s.halfLife, s.clock())
			logging.From(ctx).Debug("pruned semantic facts",
				"removed", removed, "cap", MaxSemantic)
		}
		return nil
	})
}

func (s *FileStore) ListFacts(ctx context.Context) ([]*model.Fact, error) {
	var doc semanticDoc
	if _, err := s.durable.Load(ctx, keySemantic, &doc); err != nil {
		return nil, err
	}
	return doc.Facts, nil
}

func pruneFactsByWeight(facts []*model.Fact, max int, halfLife float64, now time.Time) []*model.Fact {
	if len(facts) <= max {
		return facts
	}

	type scored struct {
		fact   *model.Fact
		weight float64
	}
	candidates := make([]scored, len(facts))
	for i, f := range facts {
		strength := decay.Strength(f.CreatedAt, f.AccessCount, halfLife, now)
		candidates[i] = scored{fact: f, weight: decay.Weight(strength, f.Confidence)}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight < candidates[j].weight
		}
		return candidates[i].fact.CreatedAt.Before(candidates[j].fact.CreatedAt)
	})

	drop := make(map[model.FactID]bool, len(facts)-max)
	for _, c := range candidates[:len(facts)-max] {
		drop[c.fact.ID] = true
	}

	kept := make([]*model.Fact, 0, max)
	for _, f := range facts {
		if !drop[f.ID] {
			kept = append(kept, f)
		}
	}
	return kept
}
