package retrieval

import (
	"context"
	"sort"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Status tells callers whether retrieval actually ran. A degraded
// result is distinct from "ran and found nothing".
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Result is the outcome of one retrieval call.
type Result struct {
	Documents []*model.RetrievedDocument
	Status    Status
	Hint      string
}

// RetrieveOptions controls top-K selection. Zero values use defaults.
type RetrieveOptions struct {
	TopK      int
	Threshold float64
}

// Retrieve embeds the query and scans every stored document vector,
// returning the topK entries with similarity strictly above the
// threshold. Gateway failures degrade to an empty result with a
// recovery hint; retrieval is always best-effort for its callers.
func (u *UseCase) Retrieve(ctx context.Context, query string, opts RetrieveOptions) (*Result, error) {
	topK := opts.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK < 0 {
		return nil, goerr.New("topK must be positive", goerr.V("topK", topK))
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	queryVec, err := u.gateway.Embed(ctx, query)
	if err != nil {
		logging.From(ctx).Warn("embedding unavailable, retrieval degraded", "error", err)
		return &Result{
			Status: StatusDegraded,
			Hint:   "embedding gateway unavailable; check connectivity and credentials",
		}, nil
	}

	docs, err := u.repo.ListDocuments(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load document store")
	}

	var hits []*model.RetrievedDocument
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			logging.From(ctx).Warn("document has no embedding, skipping", "id", doc.ID)
			continue
		}

		similarity, err := CosineSimilarity(queryVec, doc.Embedding)
		if err != nil {
			return nil, err
		}
		if similarity <= threshold {
			continue
		}

		hits = append(hits, &model.RetrievedDocument{
			DocumentMeta: doc.DocumentMeta,
			Similarity:   similarity,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	entry := &model.QueryLogEntry{
		Query:     query,
		QueriedAt: u.clock(),
	}
	for _, hit := range hits {
		entry.Hits = append(entry.Hits, model.QueryHit{ID: hit.ID, Similarity: hit.Similarity})
	}
	if err := u.repo.AppendQueryLog(ctx, entry); err != nil {
		logging.From(ctx).Warn("failed to append query log", "error", err)
	}

	return &Result{Documents: hits, Status: StatusOK}, nil
}
