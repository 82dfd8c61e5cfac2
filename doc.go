// Package storagemock substitutes a filesystem-backed fake for a cloud
// object-storage client, so tests exercising storage workflows run
// against local directories instead of a network service.
//
// Buckets are declared as mounts: a bucket name bound to a local
// directory with explicit read/write permissions. Activating a mount
// set installs a mocked client as the process default; deactivating
// restores whatever was installed before, on all exit paths.
//
// # Quick start
//
//	srcDir := t.TempDir()
//	dstDir := t.TempDir()
//	os.WriteFile(filepath.Join(srcDir, "hello.txt"), []byte("Hello."), 0o644)
//
//	err := storagemock.With([]storagemock.Mount{
//	    {BucketName: "readable", LocalRoot: srcDir, Readable: true},
//	    {BucketName: "writable", LocalRoot: dstDir, Writable: true},
//	}, func(client storagemock.Client) error {
//	    text, err := client.Bucket("readable").Object("hello.txt").Text(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    return client.Bucket("writable").Object("world.txt").UploadString(ctx, text)
//	})
//
// Object metadata lives in sidecar files next to the content, named
// "<content file>.__metadata__" (see the sidecar package). Metadata is
// loaded lazily: it becomes visible on a handle after a download or an
// explicit Attrs call.
//
// # Live variants
//
// The same Client/Bucket/Object facade has live implementations over
// real object stores in remote/s3 and remote/minio. Code under test
// that accepts a Client needs no change between the mocked and live
// variants; SetFactory installs either as the process default.
//
// # Concurrency
//
// The library targets cooperative, single-threaded test execution.
// Parallel test processes must use separate activations over separate
// directories; there is no cross-activation isolation or locking.
package storagemock
