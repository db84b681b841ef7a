package repository

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
)

type forgettingDoc struct {
	Entries []*model.ForgottenRecord `json:"entries"`
}

type queryLogDoc struct {
	Entries []*model.QueryLogEntry `json:"entries"`
}

func (s *FileStore) AppendForgotten(ctx context.Context, entries []*model.ForgottenRecord) error {
	if len(entries) == 0 {
		return nil
	}
	var doc forgettingDoc
	return s.durable.Update(ctx, keyForgettingLog, &doc, func(bool) error {
		doc.Entries = append(doc.Entries, entries...)
		return nil
	})
}

func (s *FileStore) ListForgotten(ctx context.Context) ([]*model.ForgottenRecord, error) {
	var doc forgettingDoc
	if _, err := s.durable.Load(ctx, keyForgettingLog, &doc); err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// AppendQueryLog keeps the newest MaxQueryLog entries, evicting the
// oldest first.
func (s *FileStore) AppendQueryLog(ctx context.Context, entry *model.QueryLogEntry) error {
	var doc queryLogDoc
	return s.durable.Update(ctx, keyQueryLog, &doc, func(bool) error {
		doc.Entries = append(doc.Entries, entry)
		if len(doc.Entries) > MaxQueryLog {
			doc.Entries = doc.Entries[len(doc.Entries)-MaxQueryLog:]
		}
		return nil
	})
}

func (s *FileStore) ListQueryLog(ctx context.Context) ([]*model.QueryLogEntry, error) {
	var doc queryLogDoc
	if _, err := s.durable.Load(ctx, keyQueryLog, &doc); err != nil {
		return nil, err
	}
	return doc.Entries, nil
}
