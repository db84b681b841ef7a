package adapter

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Archive is an optional sink for records removed from the episodic
// store, keeping full copies beyond the local forgetting log. Archival
// is best-effort: the engine logs and continues when a put fails.
type Archive interface {
	// PutRecord stores one JSON document under the given key
	PutRecord(ctx context.Context, key string, record any) error
}

// gcsArchive implements Archive on a Cloud Storage bucket
type gcsArchive struct {
	bucketName string
	client     *storage.Client
	timeout    time.Duration
}

// NewArchive creates a Cloud Storage backed archive
func NewArchive(ctx context.Context, bucketName string) (Archive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &gcsArchive{
		bucketName: bucketName,
		client:     client,
		timeout:    30 * time.Second,
	}, nil
}

func (a *gcsArchive) PutRecord(ctx context.Context, key string, record any) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	data, err := json.Marshal(record)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal archive record", goerr.V("key", key))
	}

	w := a.client.Bucket(a.bucketName).Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return goerr.Wrap(err, "failed to write archive object", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize archive object", goerr.V("key", key))
	}

	return nil
}
