package repository

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
)

type documentMetaDoc struct {
	Documents []*model.DocumentMeta `json:"documents"`
}

type embeddingDoc struct {
	Embeddings map[model.DocumentID][]float32 `json:"embeddings"`
}

// PutDocument upserts one indexed document. The embedding table is
// written before the metadata table: metadata presence is what gates
// hash-based skip on re-index, so a crash between the two writes only
// causes a redundant re-embedding, never a metadata entry without its
// vector.
func (s *FileStore) PutDocument(ctx context.Context, doc *model.DocumentVector) error {
	var embeds embeddingDoc
	err := s.durable.Update(ctx, keyEmbeddings, &embeds, func(bool) error {
		if embeds.Embeddings == nil {
			embeds.Embeddings = make(map[model.DocumentID][]float32)
		}
		embeds.Embeddings[doc.ID] = doc.Embedding
		return nil
	})
	if err != nil {
		return err
	}

	var metas documentMetaDoc
	return s.durable.Update(ctx, keyDocumentMeta, &metas, func(bool) error {
		meta := doc.DocumentMeta
		for i, m := range metas.Documents {
			if m.ID == doc.ID {
				metas.Documents[i] = &meta
				return nil
			}
		}
		metas.Documents = append(metas.Documents, &meta)
		return nil
	})
}

func (s *FileStore) GetDocumentMeta(ctx context.Context, id model.DocumentID) (*model.DocumentMeta, error) {
	var metas documentMetaDoc
	if _, err := s.durable.Load(ctx, keyDocumentMeta, &metas); err != nil {
		return nil, err
	}
	for _, m := range metas.Documents {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (s *FileStore) ListDocuments(ctx context.Context) ([]*model.DocumentVector, error) {
	var metas documentMetaDoc
	if _, err := s.durable.Load(ctx, keyDocumentMeta, &metas); err != nil {
		return nil, err
	}

	var embeds embeddingDoc
	if _, err := s.durable.Load(ctx, keyEmbeddings, &embeds); err != nil {
		return nil, err
	}

	docs := make([]*model.DocumentVector, 0, len(metas.Documents))
	for _, m := range metas.Documents {
		docs = append(docs, &model.DocumentVector{
			DocumentMeta: *m,
			Embedding:    embeds.Embeddings[m.ID],
		})
	}
	return docs, nil
}
