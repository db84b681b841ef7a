package repository

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
)

type selfModelDoc struct {
	Current *model.SelfModel   `json:"current"`
	History []*model.SelfModel `json:"history"`
}

func (s *FileStore) GetSelfModel(ctx context.Context) (*model.SelfModel, []*model.SelfModel, error) {
	var doc selfModelDoc
	found, err := s.durable.Load(ctx, keySelfModel, &doc)
	if err != nil {
		return nil, nil, err
	}
	if !found || doc.Current == nil {
		return model.DefaultSelfModel(s.clock()), nil, nil
	}
	return doc.Current, doc.History, nil
}

// UpdateSelfModel copies the unmodified current model into the history
// before applying the update. History entries are never edited after
// append; the oldest is evicted past MaxSelfHistory.
func (s *FileStore) UpdateSelfModel(ctx context.Context, update *model.SelfModelUpdate) (*model.SelfModel, error) {
	var doc selfModelDoc
	var current *model.SelfModel

	err := s.durable.Update(ctx, keySelfModel, &doc, func(bool) error {
		now := s.clock()
		if doc.Current == nil {
			doc.Current = model.DefaultSelfModel(now)
		}

		doc.History = append(doc.History, doc.Current.Clone())
		if len(doc.History) > MaxSelfHistory {
			doc.History = doc.History[len(doc.History)-MaxSelfHistory:]
		}

		next := doc.Current.Clone()
		update.Apply(next)
		next.Version = doc.Current.NextVersion()
		next.CreatedAt = now

		doc.Current = next
		current = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}
