package storagemock

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/storagemock/blobio"
)

// mockClient is the filesystem-backed Client variant. All operations
// delegate to the activation's blobio engine.
type mockClient struct {
	engine *blobio.Engine
}

var (
	_ Client = (*mockClient)(nil)
	_ Bucket = (*mockBucket)(nil)
	_ Object = (*mockObject)(nil)
)

func (c *mockClient) Bucket(name string) Bucket {
	return &mockBucket{client: c, name: name}
}

func (c *mockClient) Close() error { return nil }

type mockBucket struct {
	client *mockClient
	name   string
}

func (b *mockBucket) Name() string { return b.name }

func (b *mockBucket) Object(key string) Object {
	return &mockObject{client: b.client, bucket: b.name, key: key}
}

func (b *mockBucket) Labels() map[string]string { return nil }
func (b *mockBucket) Location() string          { return "" }

// mockObject is a lazy handle: it holds no file descriptors and caches
// only the metadata loaded by the last download or Attrs.
type mockObject struct {
	client *mockClient
	bucket string
	key    string
	md     Metadata
}

func (o *mockObject) BucketName() string { return o.bucket }
func (o *mockObject) Key() string        { return o.key }

func (o *mockObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.bucket, o.key)
}

func (o *mockObject) Download(ctx context.Context, w io.Writer) error {
	md, err := o.client.engine.Download(ctx, o.bucket, o.key, w)
	if err != nil {
		return translateError(err)
	}
	o.md = md
	return nil
}

func (o *mockObject) DownloadFile(ctx context.Context, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	if err := o.Download(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (o *mockObject) Bytes(ctx context.Context) ([]byte, error) {
	data, md, err := o.client.engine.Bytes(ctx, o.bucket, o.key)
	if err != nil {
		return nil, translateError(err)
	}
	o.md = md
	return data, nil
}

func (o *mockObject) Text(ctx context.Context) (string, error) {
	data, err := o.Bytes(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (o *mockObject) Upload(ctx context.Context, r io.Reader, opts ...UploadOption) error {
	cfg := ApplyUploadOptions(opts)

	_, err := o.client.engine.Upload(ctx, o.bucket, o.key, r, blobio.UploadOptions{
		Metadata: cfg.Metadata,
		Gzip:     cfg.Gzip,
	})
	return translateError(err)
}

func (o *mockObject) UploadFile(ctx context.Context, filename string, opts ...UploadOption) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()
	return o.Upload(ctx, f, opts...)
}

func (o *mockObject) UploadString(ctx context.Context, data string, opts ...UploadOption) error {
	return o.Upload(ctx, strings.NewReader(data), opts...)
}

func (o *mockObject) Attrs(ctx context.Context) (Metadata, error) {
	md, err := o.client.engine.Stat(ctx, o.bucket, o.key)
	if err != nil {
		return Metadata{}, translateError(err)
	}
	o.md = md
	return md, nil
}

func (o *mockObject) Metadata() Metadata { return o.md }

func (o *mockObject) Generation() int64 { return 0 }
func (o *mockObject) MD5() []byte       { return nil }

func (o *mockObject) Delete(ctx context.Context) error { return nil }
