package storagemock_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/storagemock"
	"github.com/hupe1980/storagemock/sidecar"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDownloadText(t *testing.T) {
	srcDir := t.TempDir()
	writeFixture(t, srcDir, "hello.txt", "Hello.")

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "readable", LocalRoot: srcDir, Readable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	text, err := a.Client().Bucket("readable").Object("hello.txt").Text(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Hello.", text)
}

func TestUploadString(t *testing.T) {
	dstDir := t.TempDir()

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "writable", LocalRoot: dstDir, Writable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	err = a.Client().Bucket("writable").Object("world.txt").UploadString(context.Background(), "World.")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dstDir, "world.txt"))
	require.NoError(t, err)
	require.Equal(t, "World.", string(got))
}

func TestUploadToReadOnlyBucket(t *testing.T) {
	srcDir := t.TempDir()
	writeFixture(t, srcDir, "existing.txt", "keep me")

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "readable", LocalRoot: srcDir, Readable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	err = a.Client().Bucket("readable").Object("new.txt").UploadString(context.Background(), "nope")
	require.ErrorIs(t, err, storagemock.ErrPermissionDenied)

	// Directory unchanged.
	entries, err := os.ReadDir(srcDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "existing.txt", entries[0].Name())
}

func TestDownloadFromWriteOnlyBucket(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "hidden.txt", "secret")

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "writable", LocalRoot: dir, Writable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Client().Bucket("writable").Object("hidden.txt").Bytes(context.Background())
	require.ErrorIs(t, err, storagemock.ErrPermissionDenied)
}

func TestNoMountsDeclared(t *testing.T) {
	a, err := storagemock.Activate(nil)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Client().Bucket("anything").Object("key").Bytes(context.Background())
	require.ErrorIs(t, err, storagemock.ErrUnknownBucket)
}

func TestMetadataAfterDownload(t *testing.T) {
	srcDir := t.TempDir()
	writeFixture(t, srcDir, "hello.txt", "Hello.")
	writeFixture(t, srcDir, "hello.txt"+sidecar.Suffix, `{"content_type": "text/plain"}`)

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "readable", LocalRoot: srcDir, Readable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	obj := a.Client().Bucket("readable").Object("hello.txt")

	// Lazy: nothing loaded before the download.
	_, ok := obj.Metadata().GetContentType()
	require.False(t, ok)

	_, err = obj.Bytes(context.Background())
	require.NoError(t, err)

	ct, ok := obj.Metadata().GetContentType()
	require.True(t, ok)
	require.Equal(t, "text/plain", ct)
}

func TestMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "data", LocalRoot: dir, Readable: true, Writable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	client := a.Client()

	md := storagemock.Metadata{
		ContentType:     storagemock.String("application/json"),
		CacheControl:    storagemock.String("no-store"),
		ContentLanguage: storagemock.String("en"),
	}
	err = client.Bucket("data").Object("doc.json").UploadString(ctx, `{"a":1}`,
		storagemock.WithMetadata(md))
	require.NoError(t, err)

	obj := client.Bucket("data").Object("doc.json")
	text, err := obj.Text(ctx)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, text)
	require.Equal(t, md, obj.Metadata())

	// Unset fields stay unset.
	_, ok := obj.Metadata().GetContentDisposition()
	require.False(t, ok)
}

func TestTraversalKeys(t *testing.T) {
	root := t.TempDir()
	inner := filepath.Join(root, "inner")
	require.NoError(t, os.Mkdir(inner, 0o755))
	writeFixture(t, root, "outside.txt", "secret")

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "data", LocalRoot: inner, Readable: true, Writable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	for _, key := range []string{"../outside.txt", "/outside.txt", "a/../../outside.txt"} {
		_, err := a.Client().Bucket("data").Object(key).Bytes(ctx)
		require.ErrorIs(t, err, storagemock.ErrInvalidObjectKey, "download key %q", key)

		err = a.Client().Bucket("data").Object(key).UploadString(ctx, "x")
		require.ErrorIs(t, err, storagemock.ErrInvalidObjectKey, "upload key %q", key)
	}
}

func TestObjectNotFound(t *testing.T) {
	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "readable", LocalRoot: t.TempDir(), Readable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	obj := a.Client().Bucket("readable").Object("missing.txt")

	_, err = obj.Bytes(context.Background())
	require.ErrorIs(t, err, storagemock.ErrObjectNotFound)

	var buf bytes.Buffer
	err = obj.Download(context.Background(), &buf)
	require.ErrorIs(t, err, storagemock.ErrObjectNotFound)

	_, err = obj.Attrs(context.Background())
	require.ErrorIs(t, err, storagemock.ErrObjectNotFound)
}

func TestActivate_InvalidMounts(t *testing.T) {
	dir := t.TempDir()

	_, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "twice", LocalRoot: dir, Readable: true},
		{BucketName: "twice", LocalRoot: dir, Writable: true},
	})
	require.ErrorIs(t, err, storagemock.ErrInvalidMount)

	_, err = storagemock.Activate([]storagemock.Mount{
		{BucketName: "ghost", LocalRoot: filepath.Join(dir, "missing")},
	})
	require.ErrorIs(t, err, storagemock.ErrInvalidMount)
}

func TestNewClient_FactorySwap(t *testing.T) {
	ctx := context.Background()

	// Nothing installed.
	_, err := storagemock.NewClient(ctx)
	require.ErrorIs(t, err, storagemock.ErrNoFactory)

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "readable", LocalRoot: t.TempDir(), Readable: true},
	})
	require.NoError(t, err)

	client, err := storagemock.NewClient(ctx)
	require.NoError(t, err)
	require.Equal(t, a.Client(), client)

	require.NoError(t, a.Close())

	// Restored on close.
	_, err = storagemock.NewClient(ctx)
	require.ErrorIs(t, err, storagemock.ErrNoFactory)

	// Close is idempotent.
	require.NoError(t, a.Close())
}

func TestNewClient_NestedActivations(t *testing.T) {
	ctx := context.Background()

	outer, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "outer", LocalRoot: t.TempDir(), Readable: true},
	})
	require.NoError(t, err)
	defer outer.Close()

	inner, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "inner", LocalRoot: t.TempDir(), Readable: true},
	})
	require.NoError(t, err)

	client, err := storagemock.NewClient(ctx)
	require.NoError(t, err)
	require.Equal(t, inner.Client(), client)

	require.NoError(t, inner.Close())

	client, err = storagemock.NewClient(ctx)
	require.NoError(t, err)
	require.Equal(t, outer.Client(), client)
}

func TestClosedActivationResolvesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "hello.txt", "Hello.")

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "readable", LocalRoot: dir, Readable: true},
	})
	require.NoError(t, err)

	client := a.Client()
	require.NoError(t, a.Close())

	// A stale handle must not keep resolving old mounts.
	_, err = client.Bucket("readable").Object("hello.txt").Bytes(context.Background())
	require.ErrorIs(t, err, storagemock.ErrUnknownBucket)
}

func TestWith_ReleasesOnError(t *testing.T) {
	sentinel := errors.New("test failure")

	err := storagemock.With(nil, func(storagemock.Client) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = storagemock.NewClient(context.Background())
	require.ErrorIs(t, err, storagemock.ErrNoFactory)
}

func TestWith_ReleasesOnPanic(t *testing.T) {
	require.Panics(t, func() {
		_ = storagemock.With(nil, func(storagemock.Client) error {
			panic("boom")
		})
	})

	_, err := storagemock.NewClient(context.Background())
	require.ErrorIs(t, err, storagemock.ErrNoFactory)
}

func TestDownloadFileAndUploadFile(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	scratch := t.TempDir()
	writeFixture(t, srcDir, "hello.txt", "Hello.")

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "readable", LocalRoot: srcDir, Readable: true},
		{BucketName: "writable", LocalRoot: dstDir, Writable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	local := filepath.Join(scratch, "local.txt")

	err = a.Client().Bucket("readable").Object("hello.txt").DownloadFile(ctx, local)
	require.NoError(t, err)
	got, err := os.ReadFile(local)
	require.NoError(t, err)
	require.Equal(t, "Hello.", string(got))

	err = a.Client().Bucket("writable").Object("copy.txt").UploadFile(ctx, local)
	require.NoError(t, err)
	got, err = os.ReadFile(filepath.Join(dstDir, "copy.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello.", string(got))
}

func TestBatchHelpers(t *testing.T) {
	dir := t.TempDir()

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "data", LocalRoot: dir, Readable: true, Writable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	bucket := a.Client().Bucket("data")

	objects := map[string][]byte{
		"a.txt":        []byte("alpha"),
		"nested/b.txt": []byte("beta"),
		"nested/c.txt": []byte("gamma"),
	}
	require.NoError(t, storagemock.UploadAll(ctx, bucket, objects))

	got, err := storagemock.DownloadAll(ctx, bucket, []string{"a.txt", "nested/b.txt", "nested/c.txt"})
	require.NoError(t, err)
	require.Equal(t, objects, got)

	_, err = storagemock.DownloadAll(ctx, bucket, []string{"a.txt", "missing.txt"})
	require.ErrorIs(t, err, storagemock.ErrObjectNotFound)
}

func TestInertStandIns(t *testing.T) {
	a, err := storagemock.Activate(nil)
	require.NoError(t, err)
	defer a.Close()

	client := a.Client()
	require.NoError(t, client.Close())

	bucket := client.Bucket("anything")
	require.Nil(t, bucket.Labels())
	require.Empty(t, bucket.Location())

	obj := bucket.Object("key")
	require.Zero(t, obj.Generation())
	require.Nil(t, obj.MD5())
	// Inert delete: no mount, no filesystem, still no error.
	require.NoError(t, obj.Delete(context.Background()))
	require.Equal(t, "gs://anything/key", obj.URI())
}

func TestMalformedSidecarSurfaces(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "hello.txt", "Hello.")
	writeFixture(t, dir, "hello.txt"+sidecar.Suffix, "{broken")

	a, err := storagemock.Activate([]storagemock.Mount{
		{BucketName: "readable", LocalRoot: dir, Readable: true},
	})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Client().Bucket("readable").Object("hello.txt").Bytes(context.Background())
	require.ErrorIs(t, err, storagemock.ErrMalformedMetadata)
}
