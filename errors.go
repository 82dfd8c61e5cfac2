package storagemock

import (
	"errors"
	"fmt"

	"github.com/hupe1980/storagemock/blobio"
	"github.com/hupe1980/storagemock/mounttable"
	"github.com/hupe1980/storagemock/sidecar"
)

var (
	// ErrInvalidMount is returned by Activate for bad mount
	// declarations: duplicate bucket names or missing root directories.
	ErrInvalidMount = errors.New("invalid mount configuration")

	// ErrUnknownBucket is returned when a bucket name has no mount.
	ErrUnknownBucket = errors.New("unknown bucket")

	// ErrPermissionDenied is returned when the mount's flags do not
	// allow the requested operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidObjectKey is returned for object keys that are empty,
	// absolute, or traverse outside the bucket root.
	ErrInvalidObjectKey = errors.New("invalid object key")

	// ErrObjectNotFound is returned when a download or metadata fetch
	// targets a nonexistent object.
	ErrObjectNotFound = errors.New("object not found")

	// ErrMalformedMetadata is returned when an object's metadata
	// sidecar exists but cannot be parsed.
	ErrMalformedMetadata = errors.New("malformed object metadata")
)

// translateError unifies subpackage errors under the package sentinels
// so callers only need errors.Is against this package.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, mounttable.ErrDuplicateBucket),
		errors.Is(err, mounttable.ErrRootNotDirectory):
		return fmt.Errorf("%w: %w", ErrInvalidMount, err)

	case errors.Is(err, mounttable.ErrUnknownBucket):
		return fmt.Errorf("%w: %w", ErrUnknownBucket, err)

	case errors.Is(err, mounttable.ErrNotReadable),
		errors.Is(err, mounttable.ErrNotWritable):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)

	case errors.Is(err, blobio.ErrInvalidObjectKey):
		return fmt.Errorf("%w: %w", ErrInvalidObjectKey, err)

	case errors.Is(err, blobio.ErrObjectNotFound):
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)

	case errors.Is(err, sidecar.ErrMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedMetadata, err)
	}

	return err
}
