// Package blob archives raw fetched pages and export artifacts. The store
// abstraction keeps the pipeline independent of where the bytes land
// (Google Cloud Storage, the local filesystem, or memory in tests).
package blob

import "context"

// Store uploads a blob and returns the URI it can be retrieved at.
type Store interface {
	Put(ctx context.Context, path, contentType string, data []byte) (string, error)
}
