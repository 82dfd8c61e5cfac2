// Package keypath normalizes object keys and confines them to a mount root.
//
// Object keys are relative, forward-slash separated identifiers. Resolve
// maps a key onto the local filesystem below a root directory and
// guarantees the result never escapes that root, regardless of the key's
// shape. Traversal attempts fail before any filesystem access happens.
package keypath

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty, absolute, or would
// escape the mount root after normalization.
var ErrInvalidKey = errors.New("invalid object key")

// Clean normalizes a /-separated object key.
//
// It rejects empty keys, absolute keys, and keys whose normalized form
// starts with a ".." segment. The returned key is slash-separated and
// free of "." and ".." segments.
func Clean(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: absolute key %q", ErrInvalidKey, key)
	}
	// Backslashes are not separators in object keys, but a Windows-style
	// absolute key smuggled through path.Clean would survive as a single
	// opaque segment and resolve somewhere surprising on Windows hosts.
	if strings.ContainsRune(key, '\\') {
		return "", fmt.Errorf("%w: backslash in key %q", ErrInvalidKey, key)
	}

	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: key %q escapes the bucket root", ErrInvalidKey, key)
	}
	return cleaned, nil
}

// Resolve returns the absolute filesystem path for key below root.
//
// root must be an absolute directory path. The returned path is always a
// strict descendant of root.
func Resolve(root, key string) (string, error) {
	cleaned, err := Clean(key)
	if err != nil {
		return "", err
	}

	resolved := filepath.Join(root, filepath.FromSlash(cleaned))

	// Clean already rejected traversal, so this only trips if the two
	// normalization passes ever disagree. Fail closed in that case.
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: key %q escapes the bucket root", ErrInvalidKey, key)
	}

	return resolved, nil
}
