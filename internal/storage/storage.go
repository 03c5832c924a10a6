// Package storage removes attachment blobs (resumes, cover letters) from the
// configured backend.
package storage

import (
	"context"
	"errors"
)

// ErrInvalidKey is returned for keys that cannot address a blob.
var ErrInvalidKey = errors.New("invalid blob key")

// DeleteResult reports the outcome for one key. Err is nil when the blob is
// gone, including when it never existed.
type DeleteResult struct {
	Key string
	Err error
}

// BlobStorage deletes blobs by key.
type BlobStorage interface {
	// DeleteBlobs returns one result per input key, in input order. A failed
	// key never aborts the others.
	DeleteBlobs(ctx context.Context, keys []string) []DeleteResult
}

// Failed filters results down to the failed ones.
func Failed(results []DeleteResult) []DeleteResult {
	var out []DeleteResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

func failAll(keys []string, err error) []DeleteResult {
	out := make([]DeleteResult, len(keys))
	for i, key := range keys {
		out[i] = DeleteResult{Key: key, Err: err}
	}
	return out
}
