package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/storagemock"
)

// Client is the MinIO-backed storagemock.Client.
type Client struct {
	mc *minio.Client
}

var _ storagemock.Client = (*Client)(nil)

// NewClient wraps an existing minio client.
func NewClient(mc *minio.Client) *Client {
	return &Client{mc: mc}
}

// Factory adapts client for storagemock.SetFactory.
func Factory(client *Client) storagemock.Factory {
	return func(context.Context) (storagemock.Client, error) {
		return client, nil
	}
}

// Bucket returns a handle for the named bucket.
func (c *Client) Bucket(name string) storagemock.Bucket {
	return &bucketHandle{client: c, name: name}
}

// Close is part of the facade; minio clients need no explicit
// shutdown.
func (c *Client) Close() error { return nil }

type bucketHandle struct {
	client *Client
	name   string
}

func (b *bucketHandle) Name() string { return b.name }

func (b *bucketHandle) Object(key string) storagemock.Object {
	return &objectHandle{client: b.client, bucket: b.name, key: key}
}

func (b *bucketHandle) Labels() map[string]string { return nil }
func (b *bucketHandle) Location() string          { return "" }

type objectHandle struct {
	client *Client
	bucket string
	key    string
	md     storagemock.Metadata
}

func (o *objectHandle) BucketName() string { return o.bucket }
func (o *objectHandle) Key() string        { return o.key }

func (o *objectHandle) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.bucket, o.key)
}

func (o *objectHandle) Download(ctx context.Context, w io.Writer) error {
	// Stat first: it surfaces not-found and carries the metadata
	// headers, while GetObject defers errors until the first read.
	info, err := o.client.mc.StatObject(ctx, o.bucket, o.key, minio.StatObjectOptions{})
	if err != nil {
		return translateError(err)
	}

	obj, err := o.client.mc.GetObject(ctx, o.bucket, o.key, minio.GetObjectOptions{})
	if err != nil {
		return translateError(err)
	}
	defer obj.Close()

	if _, err := io.Copy(w, obj); err != nil {
		return translateError(err)
	}

	o.md = metadataFromInfo(info)
	return nil
}

func (o *objectHandle) DownloadFile(ctx context.Context, filename string) error {
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

func (o *objectHandle) Bytes(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := o.Download(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *objectHandle) Text(ctx context.Context) (string, error) {
	data, err := o.Bytes(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (o *objectHandle) Upload(ctx context.Context, r io.Reader, opts ...storagemock.UploadOption) error {
	cfg := storagemock.ApplyUploadOptions(opts)

	var md storagemock.Metadata
	if cfg.Metadata != nil {
		md = *cfg.Metadata
	}

	body := r
	size := int64(-1)
	if cfg.Gzip {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := io.Copy(gz, r); err != nil {
			gz.Close()
			return fmt.Errorf("compress content: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("compress content: %w", err)
		}
		md.ContentEncoding = storagemock.String("gzip")
		body = &buf
		size = int64(buf.Len())
	}

	_, err := o.client.mc.PutObject(ctx, o.bucket, o.key, body, size, putOptions(md))
	return translateError(err)
}

func (o *objectHandle) UploadFile(ctx context.Context, filename string, opts ...storagemock.UploadOption) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()
	return o.Upload(ctx, f, opts...)
}

func (o *objectHandle) UploadString(ctx context.Context, data string, opts ...storagemock.UploadOption) error {
	return o.Upload(ctx, strings.NewReader(data), opts...)
}

func (o *objectHandle) Attrs(ctx context.Context) (storagemock.Metadata, error) {
	info, err := o.client.mc.StatObject(ctx, o.bucket, o.key, minio.StatObjectOptions{})
	if err != nil {
		return storagemock.Metadata{}, translateError(err)
	}
	o.md = metadataFromInfo(info)
	return o.md, nil
}

func (o *objectHandle) Metadata() storagemock.Metadata { return o.md }

func (o *objectHandle) Generation() int64 { return 0 }
func (o *objectHandle) MD5() []byte       { return nil }

// Delete removes the object. Live variants perform real deletes; see
// the facade documentation.
func (o *objectHandle) Delete(ctx context.Context) error {
	return translateError(o.client.mc.RemoveObject(ctx, o.bucket, o.key, minio.RemoveObjectOptions{}))
}

func putOptions(md storagemock.Metadata) minio.PutObjectOptions {
	opts := minio.PutObjectOptions{}
	if v, ok := md.GetContentType(); ok {
		opts.ContentType = v
	}
	if v, ok := md.GetContentEncoding(); ok {
		opts.ContentEncoding = v
	}
	if v, ok := md.GetContentDisposition(); ok {
		opts.ContentDisposition = v
	}
	if v, ok := md.GetContentLanguage(); ok {
		opts.ContentLanguage = v
	}
	if v, ok := md.GetCacheControl(); ok {
		opts.CacheControl = v
	}
	return opts
}

// metadataFromInfo maps stat headers onto Metadata. HTTP headers
// cannot distinguish absent from empty, so empty headers stay unset.
func metadataFromInfo(info minio.ObjectInfo) storagemock.Metadata {
	var md storagemock.Metadata
	if info.ContentType != "" {
		md.ContentType = storagemock.String(info.ContentType)
	}
	assign := func(dst **string, header string) {
		if v := info.Metadata.Get(header); v != "" {
			*dst = storagemock.String(v)
		}
	}
	assign(&md.CacheControl, "Cache-Control")
	assign(&md.ContentDisposition, "Content-Disposition")
	assign(&md.ContentEncoding, "Content-Encoding")
	assign(&md.ContentLanguage, "Content-Language")
	return md
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch resp := minio.ToErrorResponse(err); resp.Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %w", storagemock.ErrObjectNotFound, err)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %w", storagemock.ErrUnknownBucket, err)
	case "AccessDenied":
		return fmt.Errorf("%w: %w", storagemock.ErrPermissionDenied, err)
	}

	return err
}
