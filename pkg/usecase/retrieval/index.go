package retrieval

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// chunkSize is the approximate text size per chunk recorded in
// document metadata.
const chunkSize = 2000

// IndexReport summarizes one indexing run.
type IndexReport struct {
	Indexed int
	Skipped int
	Failed  int
}

// IndexFolder indexes every supported file directly under dir. The
// operation is idempotent: a file whose content hash matches its
// stored metadata is skipped without re-embedding. A failure on one
// document is logged and skipped, never aborting the rest of the
// batch.
func (u *UseCase) IndexFolder(ctx context.Context, dir string) (*IndexReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read document directory", goerr.V("dir", dir))
	}

	logger := logging.From(ctx)
	report := &IndexReport{}

	for _, entry := range entries {
		if entry.IsDir() || !adapter.SupportedDocument(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := u.indexFile(ctx, path, report); err != nil {
			logger.Warn("failed to index document, skipping",
				"path", path, "error", err)
			report.Failed++
		}
	}

	logger.Info("indexing complete", "dir", dir,
		"indexed", report.Indexed, "skipped", report.Skipped, "failed", report.Failed)

	return report, nil
}

func (u *UseCase) indexFile(ctx context.Context, path string, report *IndexReport) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read document")
	}

	id := model.NewDocumentID(path)
	hash := model.HashContent(raw)

	prior, err := u.repo.GetDocumentMeta(ctx, id)
	if err != nil {
		return err
	}
	if prior != nil && prior.ContentHash == hash {
		report.Skipped++
		return nil
	}

	text, err := adapter.ExtractText(path)
	if err != nil {
		return err
	}

	embedding, err := u.gateway.Embed(ctx, text)
	if err != nil {
		return err
	}

	now := u.clock()
	doc := &model.DocumentVector{
		DocumentMeta: model.DocumentMeta{
			ID:            id,
			Filename:      filepath.Base(path),
			Path:          path,
			IndexedAt:     now,
			ContentHash:   hash,
			SizeBytes:     int64(len(raw)),
			ChunkCount:    len(text)/chunkSize + 1,
			LastIndexedAt: now,
		},
		Embedding: embedding,
	}
	if err := u.repo.PutDocument(ctx, doc); err != nil {
		return err
	}

	report.Indexed++
	return nil
}
