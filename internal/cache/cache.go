package cache

import "time"

// Cache stores serialized build artifacts keyed by document content hash.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key namespaces a document content hash. The hash is already a sha256 hex
// digest of the element list, so two files with identical elements share an
// entry regardless of filename.
func Key(docHash string) string {
	return "lexstore:v1:" + docHash
}
