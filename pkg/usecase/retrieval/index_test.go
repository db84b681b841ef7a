package retrieval_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/engram/pkg/usecase/retrieval"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestIndexFolder(t *testing.T) {
	docDir := t.TempDir()
	writeDoc(t, docDir, "notes.md", "# Notes\n\nsome notes")
	writeDoc(t, docDir, "log.txt", "plain text log")
	writeDoc(t, docDir, "script.py", "print('not a document')")

	var embedCalls atomic.Int64
	repo := repository.New(t.TempDir())
	gateway := &mockGateway{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			embedCalls.Add(1)
			return []float32{1, 0}, nil
		},
	}
	uc := retrieval.New(repo, gateway)
	ctx := context.Background()

	report, err := uc.IndexFolder(ctx, docDir)
	gt.NoError(t, err)
	gt.V(t, report.Indexed).Equal(2)
	gt.V(t, report.Skipped).Equal(0)
	gt.V(t, report.Failed).Equal(0)
	gt.V(t, embedCalls.Load()).Equal(2)

	docs := gt.R1(repo.ListDocuments(ctx)).NoError(t)
	gt.A(t, docs).Length(2)
}

func TestIndexFolderSkipsUnchanged(t *testing.T) {
	docDir := t.TempDir()
	writeDoc(t, docDir, "stable.md", "unchanged content")
	changing := writeDoc(t, docDir, "draft.md", "first draft")

	var embedCalls atomic.Int64
	repo := repository.New(t.TempDir())
	gateway := &mockGateway{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			embedCalls.Add(1)
			return []float32{1, 0}, nil
		},
	}
	uc := retrieval.New(repo, gateway)
	ctx := context.Background()

	report := gt.R1(uc.IndexFolder(ctx, docDir)).NoError(t)
	gt.V(t, report.Indexed).Equal(2)

	// Re-run without changes: both files skip, no new embeddings.
	report = gt.R1(uc.IndexFolder(ctx, docDir)).NoError(t)
	gt.V(t, report.Indexed).Equal(0)
	gt.V(t, report.Skipped).Equal(2)
	gt.V(t, embedCalls.Load()).Equal(int64(2))

	// Edit one file: only that file is re-embedded.
	gt.NoError(t, os.WriteFile(changing, []byte("second draft"), 0600))
	report = gt.R1(uc.IndexFolder(ctx, docDir)).NoError(t)
	gt.V(t, report.Indexed).Equal(1)
	gt.V(t, report.Skipped).Equal(1)
	gt.V(t, embedCalls.Load()).Equal(int64(3))
}

func TestIndexFolderToleratesSingleFailure(t *testing.T) {
	docDir := t.TempDir()
	writeDoc(t, docDir, "good.md", "indexable content")
	writeDoc(t, docDir, "poison.md", "embedding fails for this one")

	repo := repository.New(t.TempDir())
	gateway := &mockGateway{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			if strings.Contains(text, "fails") {
				return nil, goerr.New("embedding rejected")
			}
			return []float32{1, 0}, nil
		},
	}
	uc := retrieval.New(repo, gateway)
	ctx := context.Background()

	report, err := uc.IndexFolder(ctx, docDir)
	gt.NoError(t, err)
	gt.V(t, report.Indexed).Equal(1)
	gt.V(t, report.Failed).Equal(1)

	docs := gt.R1(repo.ListDocuments(ctx)).NoError(t)
	gt.A(t, docs).Length(1)
	gt.V(t, docs[0].Filename).Equal("good.md")
}

func TestIndexFolderMissingDir(t *testing.T) {
	repo := repository.New(t.TempDir())
	uc := retrieval.New(repo, &mockGateway{})

	_, err := uc.IndexFolder(context.Background(), filepath.Join(t.TempDir(), "absent"))
	gt.Error(t, err)
}
