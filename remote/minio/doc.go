// Package minio provides the live variant of the storagemock facade
// for MinIO and other S3-compatible endpoints, via minio-go.
//
// It implements the same Client/Bucket/Object surface as the mocked
// variant; service errors are translated to the storagemock sentinels
// so errors.Is checks hold against either variant.
package minio
