// Package sidecar reads and writes per-object metadata files.
//
// Metadata for an object lives in a plain-text JSON file next to the
// content file, named "<content file>.__metadata__". The object carries
// up to five optional HTTP-style header fields; a missing sidecar file
// means all fields are unset. Fields are pointer-valued so that an
// absent field and an empty string stay distinguishable across a
// round trip.
//
// Test fixtures typically create sidecars by hand:
//
//	os.WriteFile("testdata/hello.txt.__metadata__",
//	    []byte(`{"content_type": "text/plain"}`), 0o644)
package sidecar
