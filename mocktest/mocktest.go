// Package mocktest wires storagemock activations into the standard
// testing lifecycle.
//
// It lives outside the main package so that storagemock itself does
// not import testing.
package mocktest

import (
	"testing"

	"github.com/hupe1980/storagemock"
)

// Activate activates mounts for the duration of the test and registers
// deactivation with tb.Cleanup, so the factory swap never leaks into
// later tests. Activation failures fail the test immediately.
func Activate(tb testing.TB, mounts ...storagemock.Mount) storagemock.Client {
	tb.Helper()

	a, err := storagemock.Activate(mounts)
	if err != nil {
		tb.Fatalf("activate mock storage: %v", err)
	}
	tb.Cleanup(func() {
		_ = a.Close()
	})
	return a.Client()
}

// Bucket activates a single mount backed by a fresh temporary
// directory and returns its bucket handle together with the directory,
// for fixtures and assertions on the backing files.
func Bucket(tb testing.TB, name string, readable, writable bool) (storagemock.Bucket, string) {
	tb.Helper()

	dir := tb.TempDir()
	client := Activate(tb, storagemock.Mount{
		BucketName: name,
		LocalRoot:  dir,
		Readable:   readable,
		Writable:   writable,
	})
	return client.Bucket(name), dir
}
