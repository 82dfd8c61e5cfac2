// Package blobio translates object-level operations into filesystem
// operations under a mount table's access policy.
//
// The Engine orchestrates one logical operation end to end: resolve the
// bucket's mount, check the requested access, confine the object key to
// the mount root, then stream bytes. Downloads also load the object's
// metadata sidecar; uploads replace content atomically and persist
// metadata only when the caller supplied it.
//
// Content whose sidecar declares content_encoding "gzip" is decompressed
// transparently on download, matching the remote service's default
// behavior. Disable with WithoutDecompression.
package blobio
