package storagemock

import (
	"bytes"
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// batchConcurrency caps parallel object operations in the batch
// helpers. Plenty for local filesystems, polite to live backends.
const batchConcurrency = 8

// UploadAll uploads every key/content pair into bucket concurrently.
// Any upload error cancels the remaining work; on error the set of
// objects written is undefined.
func UploadAll(ctx context.Context, bucket Bucket, objects map[string][]byte, opts ...UploadOption) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for key, data := range objects {
		key, data := key, data
		g.Go(func() error {
			return bucket.Object(key).Upload(ctx, bytes.NewReader(data), opts...)
		})
	}
	return g.Wait()
}

// DownloadAll downloads every key from bucket concurrently and returns
// the contents keyed by object key.
func DownloadAll(ctx context.Context, bucket Bucket, keys []string) (map[string][]byte, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	var mu sync.Mutex
	results := make(map[string][]byte, len(keys))

	for _, key := range keys {
		key := key
		g.Go(func() error {
			data, err := bucket.Object(key).Bytes(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			results[key] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
