package storagemock

import (
	"context"
	"io"

	"github.com/hupe1980/storagemock/sidecar"
)

// Metadata is the optional HTTP-style header metadata of an object.
// See the sidecar package for the on-disk representation.
type Metadata = sidecar.Metadata

// String returns a pointer to s, for building Metadata literals.
func String(s string) *string {
	return sidecar.String(s)
}

// Client is the object-storage client facade.
//
// The mocked variant returned by Activate resolves buckets against the
// activation's mount table; live variants (remote/s3, remote/minio)
// talk to real services. Code under test should depend on this
// interface and obtain instances through NewClient.
type Client interface {
	// Bucket returns a handle for the named bucket. No validation
	// happens until an operation runs.
	Bucket(name string) Bucket

	// Close is an inert stand-in; the mocked client holds no
	// connections.
	Close() error
}

// Bucket is a handle for one named bucket.
type Bucket interface {
	// Name returns the bucket name.
	Name() string

	// Object returns a handle for the object at key. No I/O happens
	// until an operation runs.
	Object(key string) Object

	// Labels is an inert stand-in; always nil.
	Labels() map[string]string

	// Location is an inert stand-in; always empty.
	Location() string
}

// Object is a lazy handle for one object. Creating the handle performs
// no I/O; every operation re-resolves and re-reads.
type Object interface {
	// BucketName returns the name of the bucket holding the object.
	BucketName() string

	// Key returns the object key.
	Key() string

	// URI returns the gs://bucket/key form of the object's location.
	URI() string

	// Download streams the object's full content into w and loads its
	// metadata onto the handle.
	Download(ctx context.Context, w io.Writer) error

	// DownloadFile downloads the object's content into the local file
	// at filename, creating or truncating it.
	DownloadFile(ctx context.Context, filename string) error

	// Bytes downloads the object's content into memory.
	Bytes(ctx context.Context) ([]byte, error)

	// Text downloads the object's content as a UTF-8 string.
	Text(ctx context.Context) (string, error)

	// Upload replaces the object's content with the bytes read from r.
	// Existing content is overwritten unconditionally.
	Upload(ctx context.Context, r io.Reader, opts ...UploadOption) error

	// UploadFile uploads the content of the local file at filename.
	UploadFile(ctx context.Context, filename string, opts ...UploadOption) error

	// UploadString uploads data encoded as UTF-8.
	UploadString(ctx context.Context, data string, opts ...UploadOption) error

	// Attrs fetches the object's metadata without reading content.
	// The object must exist.
	Attrs(ctx context.Context) (Metadata, error)

	// Metadata returns the metadata loaded by the last Download or
	// Attrs on this handle. Before any load it is the zero Metadata
	// with every field unset; accessing it early is not an error.
	Metadata() Metadata

	// Generation is an inert stand-in; always 0.
	Generation() int64

	// MD5 is an inert stand-in; always nil.
	MD5() []byte

	// Delete is an inert stand-in on the mocked variant: it returns
	// nil and never touches the filesystem.
	Delete(ctx context.Context) error
}
