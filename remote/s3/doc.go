// Package s3 provides the live variant of the storagemock facade,
// backed by Amazon S3 via aws-sdk-go-v2.
//
// It implements the same Client/Bucket/Object surface as the mocked
// variant, so code under test switches between them through
// storagemock.SetFactory without changes:
//
//	client, err := s3.New(ctx)
//	restore := storagemock.SetFactory(s3.Factory(client))
//	defer restore()
//
// Service errors are translated to the storagemock sentinels
// (ErrObjectNotFound, ErrUnknownBucket, ErrPermissionDenied), so
// errors.Is checks hold against either variant.
package s3
