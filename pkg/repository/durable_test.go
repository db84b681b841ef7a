package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/gt"
)

type testDoc struct {
	Name  string         `json:"name"`
	Count int            `json:"count"`
	Tags  []string       `json:"tags"`
	Meta  map[string]any `json:"meta"`
}

func TestDurableRoundTrip(t *testing.T) {
	d := repository.NewDurable(t.TempDir())
	ctx := context.Background()

	saved := testDoc{
		Name:  "alpha",
		Count: 3,
		Tags:  []string{"a", "b"},
		Meta:  map[string]any{"k": "v"},
	}
	gt.NoError(t, d.Save(ctx, "sub/dir/doc.json", &saved))

	var loaded testDoc
	found, err := d.Load(ctx, "sub/dir/doc.json", &loaded)
	gt.NoError(t, err)
	gt.B(t, found).True()
	gt.V(t, loaded).Equal(saved)
}

func TestDurableMissingFile(t *testing.T) {
	d := repository.NewDurable(t.TempDir())

	var loaded testDoc
	found, err := d.Load(context.Background(), "nope.json", &loaded)
	gt.NoError(t, err)
	gt.B(t, found).False()
}

func TestDurableCorruptFile(t *testing.T) {
	dir := t.TempDir()
	d := repository.NewDurable(dir)

	gt.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	var loaded testDoc
	found, err := d.Load(context.Background(), "broken.json", &loaded)
	gt.NoError(t, err)
	gt.B(t, found).False()
}

func TestDurableEnvelopeVersion(t *testing.T) {
	dir := t.TempDir()
	d := repository.NewDurable(dir)
	ctx := context.Background()

	gt.NoError(t, d.Save(ctx, "doc.json", &testDoc{Name: "x"}))

	raw, err := os.ReadFile(filepath.Join(dir, "doc.json"))
	gt.NoError(t, err)
	gt.S(t, string(raw)).Contains(`"version"`)
	gt.S(t, string(raw)).Contains(repository.SchemaVersion)
}

func TestDurableNoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	d := repository.NewDurable(dir)

	gt.NoError(t, d.Save(context.Background(), "doc.json", &testDoc{Name: "x"}))

	entries, err := os.ReadDir(dir)
	gt.NoError(t, err)
	gt.V(t, len(entries)).Equal(1)
	gt.V(t, entries[0].Name()).Equal("doc.json")
}

func TestDurableConcurrentUpdates(t *testing.T) {
	d := repository.NewDurable(t.TempDir())
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var doc testDoc
			err := d.Update(ctx, "counter.json", &doc, func(bool) error {
				doc.Count++
				return nil
			})
			gt.NoError(t, err)
		}()
	}
	wg.Wait()

	var doc testDoc
	found, err := d.Load(ctx, "counter.json", &doc)
	gt.NoError(t, err)
	gt.B(t, found).True()
	gt.V(t, doc.Count).Equal(writers)
}

func TestDurableReadDuringWrite(t *testing.T) {
	d := repository.NewDurable(t.TempDir())
	ctx := context.Background()

	gt.NoError(t, d.Save(ctx, "doc.json", &testDoc{Name: "first"}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			var doc testDoc
			err := d.Update(ctx, "doc.json", &doc, func(bool) error {
				doc.Count++
				time.Sleep(time.Millisecond)
				return nil
			})
			gt.NoError(t, err)
		}
	}()

	// Readers must always see a complete document, pre- or post-write.
	for i := 0; i < 100; i++ {
		var doc testDoc
		found, err := d.Load(ctx, "doc.json", &doc)
		gt.NoError(t, err)
		gt.B(t, found).True()
		gt.V(t, doc.Name).Equal("first")
	}
	<-done
}
