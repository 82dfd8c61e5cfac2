package sidecar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Suffix is appended to an object's content file name to form its
// sidecar file name, e.g. "foo/bar.baz.__metadata__".
const Suffix = ".__metadata__"

// ErrMalformed is returned when a sidecar file exists but cannot be
// parsed. No partial metadata is ever returned alongside it.
var ErrMalformed = errors.New("malformed metadata sidecar")

// Metadata carries the optional HTTP-style header fields of an object.
//
// Nil means the field is unset; a pointer to "" is an explicitly empty
// value. Use String to build pointers in place.
type Metadata struct {
	CacheControl       *string `json:"cache_control,omitempty"`
	ContentDisposition *string `json:"content_disposition,omitempty"`
	ContentEncoding    *string `json:"content_encoding,omitempty"`
	ContentLanguage    *string `json:"content_language,omitempty"`
	ContentType        *string `json:"content_type,omitempty"`
}

// String returns a pointer to s, for building Metadata literals.
func String(s string) *string {
	return &s
}

// IsZero reports whether no field is set.
func (m Metadata) IsZero() bool {
	return m.CacheControl == nil &&
		m.ContentDisposition == nil &&
		m.ContentEncoding == nil &&
		m.ContentLanguage == nil &&
		m.ContentType == nil
}

// GetCacheControl returns the cache_control field and whether it is set.
func (m Metadata) GetCacheControl() (string, bool) { return deref(m.CacheControl) }

// GetContentDisposition returns the content_disposition field and whether it is set.
func (m Metadata) GetContentDisposition() (string, bool) { return deref(m.ContentDisposition) }

// GetContentEncoding returns the content_encoding field and whether it is set.
func (m Metadata) GetContentEncoding() (string, bool) { return deref(m.ContentEncoding) }

// GetContentLanguage returns the content_language field and whether it is set.
func (m Metadata) GetContentLanguage() (string, bool) { return deref(m.ContentLanguage) }

// GetContentType returns the content_type field and whether it is set.
func (m Metadata) GetContentType() (string, bool) { return deref(m.ContentType) }

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

// Path returns the sidecar file path for a content file path.
func Path(contentPath string) string {
	return contentPath + Suffix
}

// Load reads the sidecar next to contentPath.
//
// A missing sidecar is not an error: it yields a zero Metadata. A
// sidecar that exists but does not parse as a flat object with the five
// known string fields fails with ErrMalformed.
func Load(contentPath string) (Metadata, error) {
	raw, err := os.ReadFile(Path(contentPath))
	if errors.Is(err, os.ErrNotExist) {
		return Metadata{}, nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata sidecar: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var md Metadata
	if err := dec.Decode(&md); err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %v", ErrMalformed, Path(contentPath), err)
	}
	// Trailing garbage after the object is as malformed as a bad object.
	if dec.More() {
		return Metadata{}, fmt.Errorf("%w: %s: trailing data", ErrMalformed, Path(contentPath))
	}
	return md, nil
}

// Store writes md as the sidecar for contentPath, replacing any
// existing sidecar atomically.
func Store(contentPath string, md Metadata) error {
	raw, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("encode metadata sidecar: %w", err)
	}

	target := Path(contentPath)
	dir := filepath.Dir(target)

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create metadata sidecar: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write metadata sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close metadata sidecar: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace metadata sidecar: %w", err)
	}
	return nil
}
