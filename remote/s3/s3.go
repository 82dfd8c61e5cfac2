package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/storagemock"
)

// API is the slice of the S3 client used by this package. *s3.Client
// satisfies it; tests can substitute a stub. manager.UploadAPIClient
// is embedded because writes go through manager.Uploader.
type API interface {
	manager.UploadAPIClient

	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Client is the S3-backed storagemock.Client.
type Client struct {
	api      API
	uploader *manager.Uploader
}

var _ storagemock.Client = (*Client)(nil)

// NewClient wraps an existing S3 API client.
func NewClient(api API) *Client {
	return &Client{
		api:      api,
		uploader: manager.NewUploader(api),
	}
}

// New builds a Client from the default AWS configuration chain.
func New(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewClient(s3.NewFromConfig(cfg)), nil
}

// Factory adapts client for storagemock.SetFactory.
func Factory(client *Client) storagemock.Factory {
	return func(context.Context) (storagemock.Client, error) {
		return client, nil
	}
}

// Bucket returns a handle for the named S3 bucket.
func (c *Client) Bucket(name string) storagemock.Bucket {
	return &bucketHandle{client: c, name: name}
}

// Close is part of the facade; the underlying SDK client needs no
// explicit shutdown.
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
	out, err := o.client.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return translateError(err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("read object body: %w", err)
	}

	o.md = storagemock.Metadata{
		CacheControl:       out.CacheControl,
		ContentDisposition: out.ContentDisposition,
		ContentEncoding:    out.ContentEncoding,
		ContentLanguage:    out.ContentLanguage,
		ContentType:        out.ContentType,
	}
	return nil
}

func (o *objectHandle) DownloadFile(ctx context.Context, filename string) error {
	return downloadFile(ctx, o, filename)
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
	md, body, err := resolveUpload(r, opts)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:             aws.String(o.bucket),
		Key:                aws.String(o.key),
		Body:               body,
		CacheControl:       md.CacheControl,
		ContentDisposition: md.ContentDisposition,
		ContentEncoding:    md.ContentEncoding,
		ContentLanguage:    md.ContentLanguage,
		ContentType:        md.ContentType,
	}
	if _, err := o.client.uploader.Upload(ctx, input); err != nil {
		return translateError(err)
	}
	return nil
}

func (o *objectHandle) UploadFile(ctx context.Context, filename string, opts ...storagemock.UploadOption) error {
	return uploadFile(ctx, o, filename, opts)
}

func (o *objectHandle) UploadString(ctx context.Context, data string, opts ...storagemock.UploadOption) error {
	return o.Upload(ctx, strings.NewReader(data), opts...)
}

func (o *objectHandle) Attrs(ctx context.Context) (storagemock.Metadata, error) {
	head, err := o.client.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return storagemock.Metadata{}, translateError(err)
	}

	o.md = storagemock.Metadata{
		CacheControl:       head.CacheControl,
		ContentDisposition: head.ContentDisposition,
		ContentEncoding:    head.ContentEncoding,
		ContentLanguage:    head.ContentLanguage,
		ContentType:        head.ContentType,
	}
	return o.md, nil
}

func (o *objectHandle) Metadata() storagemock.Metadata { return o.md }

func (o *objectHandle) Generation() int64 { return 0 }
func (o *objectHandle) MD5() []byte       { return nil }

// Delete removes the object. Unlike the mocked variant this is a real
// operation: leaving deletes inert against a live service would be a
// silent data bug, not a stand-in.
func (o *objectHandle) Delete(ctx context.Context) error {
	_, err := o.client.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	return translateError(err)
}

// resolveUpload folds the facade upload options into metadata and an
// optionally gzip-compressed body. Compression buffers the content;
// uploads through this facade are whole-object by contract.
func resolveUpload(r io.Reader, opts []storagemock.UploadOption) (storagemock.Metadata, io.Reader, error) {
	cfg := storagemock.ApplyUploadOptions(opts)

	var md storagemock.Metadata
	if cfg.Metadata != nil {
		md = *cfg.Metadata
	}

	if !cfg.Gzip {
		return md, r, nil
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := io.Copy(gz, r); err != nil {
		gz.Close()
		return storagemock.Metadata{}, nil, fmt.Errorf("compress content: %w", err)
	}
	if err := gz.Close(); err != nil {
		return storagemock.Metadata{}, nil, fmt.Errorf("compress content: %w", err)
	}
	md.ContentEncoding = storagemock.String("gzip")
	return md, &buf, nil
}

func downloadFile(ctx context.Context, o storagemock.Object, filename string) error {
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

func uploadFile(ctx context.Context, o storagemock.Object, filename string, opts []storagemock.UploadOption) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()
	return o.Upload(ctx, f, opts...)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %w", storagemock.ErrObjectNotFound, err)
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", storagemock.ErrObjectNotFound, err)
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return fmt.Errorf("%w: %w", storagemock.ErrUnknownBucket, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDenied" {
		return fmt.Errorf("%w: %w", storagemock.ErrPermissionDenied, err)
	}

	return err
}
