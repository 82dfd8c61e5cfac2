package mounttable

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrDuplicateBucket is returned when two mounts declare the same
	// bucket name.
	ErrDuplicateBucket = errors.New("duplicate bucket name")

	// ErrRootNotDirectory is returned when a mount's local root does not
	// exist or is not a directory.
	ErrRootNotDirectory = errors.New("mount root is not an existing directory")

	// ErrUnknownBucket is returned when a bucket name has no mount.
	ErrUnknownBucket = errors.New("no mount specified for the bucket")

	// ErrNotReadable is returned when a read is attempted on a mount
	// without read access.
	ErrNotReadable = errors.New("bucket is not readable")

	// ErrNotWritable is returned when a write is attempted on a mount
	// without write access.
	ErrNotWritable = errors.New("bucket is not writable")
)

// Operation is a storage access kind checked against a Mount's flags.
type Operation int

const (
	// OpRead covers downloads and metadata fetches.
	OpRead Operation = iota
	// OpWrite covers uploads.
	OpWrite
)

// Mount binds a bucket name to a local directory root.
//
// Both permission flags default to false: a zero-permission mount
// resolves but denies every operation.
type Mount struct {
	// BucketName is the bucket this mount serves. Unique per Table.
	BucketName string
	// LocalRoot is the directory backing the bucket. It must exist when
	// the Table is built.
	LocalRoot string
	// Readable enables downloads and metadata fetches.
	Readable bool
	// Writable enables uploads.
	Writable bool
}

// Allow reports whether op is permitted by the mount's flags.
func (m Mount) Allow(op Operation) error {
	switch op {
	case OpRead:
		if !m.Readable {
			return fmt.Errorf("%w: %s", ErrNotReadable, m.BucketName)
		}
	case OpWrite:
		if !m.Writable {
			return fmt.Errorf("%w: %s", ErrNotWritable, m.BucketName)
		}
	default:
		return fmt.Errorf("unknown operation: %d", op)
	}
	return nil
}

// Table is an immutable index of mounts, built once per activation.
type Table struct {
	mounts map[string]Mount
}

// New validates mounts and builds a Table.
//
// It fails if a bucket name repeats or a local root is not an existing
// directory. An empty mount set is valid; the resulting table resolves
// nothing.
func New(mounts []Mount) (*Table, error) {
	indexed := make(map[string]Mount, len(mounts))
	for _, m := range mounts {
		if _, ok := indexed[m.BucketName]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBucket, m.BucketName)
		}
		info, err := os.Stat(m.LocalRoot)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s -> %s", ErrRootNotDirectory, m.BucketName, m.LocalRoot)
		}
		indexed[m.BucketName] = m
	}
	return &Table{mounts: indexed}, nil
}

// Resolve returns the mount serving bucketName.
func (t *Table) Resolve(bucketName string) (Mount, error) {
	m, ok := t.mounts[bucketName]
	if !ok {
		return Mount{}, fmt.Errorf("%w: %s", ErrUnknownBucket, bucketName)
	}
	return m, nil
}

// Len returns the number of mounts in the table.
func (t *Table) Len() int {
	return len(t.mounts)
}

// Close empties the table. Subsequent Resolve calls fail with
// ErrUnknownBucket rather than returning stale mounts.
func (t *Table) Close() {
	t.mounts = nil
}
