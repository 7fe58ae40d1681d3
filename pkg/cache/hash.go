package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// MeshKey returns the cache key for a mesh decoded by the codec registered
// under ext from a file with the given contents.
func MeshKey(ext string, contents []byte) string {
	return "mesh:" + ext + ":" + Hash(contents)
}
