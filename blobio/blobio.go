package blobio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/storagemock/internal/keypath"
	"github.com/hupe1980/storagemock/mounttable"
	"github.com/hupe1980/storagemock/sidecar"
)

var (
	// ErrObjectNotFound is returned when a download or metadata fetch
	// targets a key with no backing content file.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidObjectKey is returned for object keys that are empty,
	// absolute, or would escape the mount root.
	ErrInvalidObjectKey = keypath.ErrInvalidKey
)

// Engine executes downloads and uploads against a mount table.
//
// Every operation re-resolves and re-reads from disk; the engine holds
// no cache.
type Engine struct {
	table      *mounttable.Table
	logger     *slog.Logger
	decompress bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithoutDecompression disables transparent gunzip of content whose
// sidecar declares content_encoding "gzip". Downloads then return the
// stored bytes verbatim.
func WithoutDecompression() Option {
	return func(e *Engine) {
		e.decompress = false
	}
}

// NewEngine creates an Engine over table.
func NewEngine(table *mounttable.Table, opts ...Option) *Engine {
	e := &Engine{
		table:      table,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		decompress: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UploadOptions carries the optional parts of an upload.
type UploadOptions struct {
	// Metadata, when non-nil, is persisted as the object's sidecar.
	// When nil no sidecar is written.
	Metadata *sidecar.Metadata

	// Gzip compresses the content before writing and records
	// content_encoding "gzip" in the persisted sidecar.
	Gzip bool
}

// Download streams the full content of bucket/key into w and returns
// the object's metadata.
//
// The content file is opened only after the mount's read permission is
// confirmed and the key is confined to the mount root. A missing
// content file fails with ErrObjectNotFound; a missing sidecar is not
// an error.
func (e *Engine) Download(ctx context.Context, bucket, key string, w io.Writer) (sidecar.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return sidecar.Metadata{}, err
	}

	path, err := e.resolve(bucket, key, mounttable.OpRead)
	if err != nil {
		return sidecar.Metadata{}, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return sidecar.Metadata{}, fmt.Errorf("%w: %s -> %s", ErrObjectNotFound, uri(bucket, key), path)
	}
	if err != nil {
		return sidecar.Metadata{}, fmt.Errorf("open content file: %w", err)
	}
	defer f.Close()

	md, err := sidecar.Load(path)
	if err != nil {
		return sidecar.Metadata{}, err
	}

	var src io.Reader = f
	if enc, ok := md.GetContentEncoding(); ok && enc == "gzip" && e.decompress {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return sidecar.Metadata{}, fmt.Errorf("decompress %s: %w", uri(bucket, key), err)
		}
		defer gz.Close()
		src = gz
	}

	n, err := io.Copy(w, src)
	if err != nil {
		return sidecar.Metadata{}, fmt.Errorf("read content file: %w", err)
	}

	e.logger.DebugContext(ctx, "download completed",
		"bucket", bucket,
		"key", key,
		"bytes", n,
	)
	return md, nil
}

// Bytes downloads the full content of bucket/key into memory.
func (e *Engine) Bytes(ctx context.Context, bucket, key string) ([]byte, sidecar.Metadata, error) {
	var buf bytes.Buffer
	md, err := e.Download(ctx, bucket, key, &buf)
	if err != nil {
		return nil, sidecar.Metadata{}, err
	}
	return buf.Bytes(), md, nil
}

// Upload replaces the content of bucket/key with the bytes read from r.
//
// Permission and key confinement are checked before anything touches
// the filesystem; a denied upload leaves the mount untouched. Parent
// directories are created on demand. The content file is replaced
// atomically and existing content is overwritten unconditionally.
// Returns the number of content bytes consumed from r.
func (e *Engine) Upload(ctx context.Context, bucket, key string, r io.Reader, opts UploadOptions) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := e.resolve(bucket, key, mounttable.OpWrite)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create content file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := writeContent(tmp, r, opts.Gzip)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("write content file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("close content file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("replace content file: %w", err)
	}

	if md, ok := uploadMetadata(opts); ok {
		if err := sidecar.Store(path, md); err != nil {
			return n, err
		}
	}

	e.logger.DebugContext(ctx, "upload completed",
		"bucket", bucket,
		"key", key,
		"bytes", n,
		"gzip", opts.Gzip,
	)
	return n, nil
}

// Stat fetches the metadata of bucket/key without reading content.
// The object's content file must exist.
func (e *Engine) Stat(ctx context.Context, bucket, key string) (sidecar.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return sidecar.Metadata{}, err
	}

	path, err := e.resolve(bucket, key, mounttable.OpRead)
	if err != nil {
		return sidecar.Metadata{}, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return sidecar.Metadata{}, fmt.Errorf("%w: %s -> %s", ErrObjectNotFound, uri(bucket, key), path)
	} else if err != nil {
		return sidecar.Metadata{}, fmt.Errorf("stat content file: %w", err)
	}

	return sidecar.Load(path)
}

// resolve runs the shared front half of every operation: mount lookup,
// access check, key confinement. No filesystem access beyond the mount
// table's own validation happens before all three pass.
func (e *Engine) resolve(bucket, key string, op mounttable.Operation) (string, error) {
	mount, err := e.table.Resolve(bucket)
	if err != nil {
		return "", err
	}
	if err := mount.Allow(op); err != nil {
		return "", err
	}
	return keypath.Resolve(mount.LocalRoot, key)
}

func writeContent(dst io.Writer, src io.Reader, compress bool) (int64, error) {
	if !compress {
		return io.Copy(dst, src)
	}
	gz := gzip.NewWriter(dst)
	n, err := io.Copy(gz, src)
	if err != nil {
		gz.Close()
		return n, err
	}
	return n, gz.Close()
}

func uploadMetadata(opts UploadOptions) (sidecar.Metadata, bool) {
	if opts.Metadata == nil && !opts.Gzip {
		return sidecar.Metadata{}, false
	}
	var md sidecar.Metadata
	if opts.Metadata != nil {
		md = *opts.Metadata
	}
	if opts.Gzip {
		md.ContentEncoding = sidecar.String("gzip")
	}
	return md, true
}

func uri(bucket, key string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, key)
}
