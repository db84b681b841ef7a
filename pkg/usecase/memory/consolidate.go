package memory

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// ConsolidateOptions controls which episodic records are promoted.
type ConsolidateOptions struct {
	// Cutoff promotes records whose decay strength fell below this value.
	// Zero means the default.
	Cutoff float64
}

// DefaultConsolidateCutoff promotes records that have decayed below
// one quarter strength.
const DefaultConsolidateCutoff = 0.25

// ConsolidationReport summarizes one consolidation run.
type ConsolidationReport struct {
	Promoted  []*model.Fact
	Forgotten []*model.MemoryRecord
}

// Consolidate promotes decayed episodic records into the semantic fact
// table, removes the sources, and records each removal in the
// forgetting log. When an archive is configured the originals are also
// copied there, best-effort.
func (u *UseCase) Consolidate(ctx context.Context, opts ConsolidateOptions) (*ConsolidationReport, error) {
	cutoff := opts.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultConsolidateCutoff
	}

	annotated, err := u.LoadWithDecay(ctx)
	if err != nil {
		return nil, err
	}

	var qualifying []*model.DecayedRecord
	for _, rec := range annotated {
		if rec.Decay < cutoff {
			qualifying = append(qualifying, rec)
		}
	}
	if len(qualifying) == 0 {
		return &ConsolidationReport{}, nil
	}

	now := u.clock()
	facts := make([]*model.Fact, 0, len(qualifying))
	ids := make([]model.MemoryID, 0, len(qualifying))
	for _, rec := range qualifying {
		facts = append(facts, &model.Fact{
			ID:          model.NewFactID(),
			CreatedAt:   now,
			Content:     rec.Content,
			Source:      rec.Source,
			Confidence:  rec.Confidence,
			DerivedFrom: []model.MemoryID{rec.ID},
		})
		ids = append(ids, rec.ID)
	}

	if err := u.repo.AppendFacts(ctx, facts); err != nil {
		return nil, goerr.Wrap(err, "failed to append consolidated facts")
	}

	removed, err := u.repo.RemoveEpisodic(ctx, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to remove consolidated records")
	}

	entries := make([]*model.ForgottenRecord, 0, len(removed))
	for _, rec := range removed {
		entries = append(entries, &model.ForgottenRecord{
			Record:      rec,
			Reason:      fmt.Sprintf("consolidated to semantic store (decay below %.2f)", cutoff),
			ForgottenAt: now,
		})
	}
	if err := u.repo.AppendForgotten(ctx, entries); err != nil {
		return nil, goerr.Wrap(err, "failed to write forgetting log")
	}

	if u.archive != nil {
		for _, entry := range entries {
			key := fmt.Sprintf("forgotten/%s/%s.json", now.Format("2006-01-02"), entry.Record.ID)
			if err := u.archive.PutRecord(ctx, key, entry); err != nil {
				logging.From(ctx).Warn("failed to archive forgotten record",
					"id", entry.Record.ID, "error", err)
			}
		}
	}

	logging.From(ctx).Info("consolidation complete",
		"promoted", len(facts), "cutoff", cutoff)

	return &ConsolidationReport{Promoted: facts, Forgotten: removed}, nil
}
