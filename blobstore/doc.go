// Package blobstore provides storage abstraction for encoded mesh snapshots.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and scratch work
//   - LocalStore: local filesystem with atomic rename on write
//   - s3.Store: Amazon S3 with multipart uploads and paginated listing
//   - minio.Store: MinIO and other S3-compatible services
//   - ThrottledStore: byte-rate and concurrency limits around any store
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Put(ctx, name, data) error
//	    Get(ctx, name) ([]byte, error)
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
