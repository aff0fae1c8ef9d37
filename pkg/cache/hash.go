package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey names a cache entry by namespace and the JSON encoding of its
// inputs, e.g. "trace:bst:delete:9f86d0...". Encoding failures collapse to the
// hash of "null"; inputs are plain option values, so that does not occur.
func hashKey(namespace string, inputs ...any) string {
	data, _ := json.Marshal(inputs)
	return namespace + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data. File cache entries are named
// by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
