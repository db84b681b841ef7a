package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// SchemaVersion is written into every persisted document so future
// schema changes can detect older files on load.
const SchemaVersion = "1.0"

// envelope wraps every persisted JSON document with its schema tag.
type envelope struct {
	Version string          `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Durable is a file-backed store of named JSON documents. Writes go to
// a temporary file in the target directory and are renamed over the
// target, so a reader never observes a partially written file. All
// mutations of one key are serialized through that key's lock; writes
// to different keys proceed concurrently. It does not coordinate with
// other OS processes writing the same files.
type Durable struct {
	baseDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDurable creates a durable store rooted at baseDir.
func NewDurable(baseDir string) *Durable {
	return &Durable{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

// BaseDir returns the root directory of the store.
func (d *Durable) BaseDir() string {
	return d.baseDir
}

// lockFor returns the mutex serializing writes to key. sync.Mutex in
// starvation mode hands off in FIFO order under contention, which is
// the submission-order guarantee writers rely on.
func (d *Durable) lockFor(key string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l, ok := d.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	d.locks[key] = l
	return l
}

func (d *Durable) path(key string) string {
	return filepath.Join(d.baseDir, key)
}

// Load reads the document stored under key into v. A missing file
// returns (false, nil). A corrupt file is logged and also returns
// (false, nil): storage damage is never fatal to a reader. Reads are
// not queued behind writes; the atomic rename guarantees they see
// either the old or the new document, never a torn one.
func (d *Durable) Load(ctx context.Context, key string, v any) (bool, error) {
	raw, err := os.ReadFile(d.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to read store file", goerr.V("key", key))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logging.From(ctx).Warn("corrupt store file, treating as empty",
			"key", key, "error", err)
		return false, nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		logging.From(ctx).Warn("corrupt store document, treating as empty",
			"key", key, "version", env.Version, "error", err)
		return false, nil
	}

	return true, nil
}

// Save persists v under key. It returns only after the rename has
// completed, so a nil error means the document is durable.
func (d *Durable) Save(ctx context.Context, key string, v any) error {
	lock := d.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	return d.write(key, v)
}

// Update runs a load-mutate-save cycle atomically with respect to
// other updates of the same key. v receives the current document (or
// keeps its zero value when none exists), apply mutates it, and the
// result is saved. This is the primitive that closes the lost-update
// race between concurrent writers of one store.
func (d *Durable) Update(ctx context.Context, key string, v any, apply func(found bool) error) error {
	lock := d.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	found, err := d.Load(ctx, key, v)
	if err != nil {
		return err
	}
	if err := apply(found); err != nil {
		return err
	}

	return d.write(key, v)
}

func (d *Durable) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal document", goerr.V("key", key))
	}

	env := envelope{
		Version: SchemaVersion,
		SavedAt: time.Now(),
		Data:    data,
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal envelope", goerr.V("key", key))
	}

	target := d.path(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create store directory", goerr.V("dir", dir))
	}

	// Temp file must live in the same directory as the target so the
	// rename stays within one filesystem and remains atomic.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V("key", key))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return goerr.Wrap(err, "failed to write temp file", goerr.V("key", key))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return goerr.Wrap(err, "failed to sync temp file", goerr.V("key", key))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return goerr.Wrap(err, "failed to close temp file", goerr.V("key", key))
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return goerr.Wrap(err, "failed to rename over target", goerr.V("key", key))
	}

	return nil
}
