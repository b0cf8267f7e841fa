package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint returns a hash over the serialized, order-stable document
// list. Any add, remove, or edit changes the fingerprint; it is the single
// invalidation key for chunks, the vector index, and the answer cache.
func Fingerprint(docs []Document) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, d := range docs {
		// Encode errors are impossible for a struct of strings.
		_ = enc.Encode(d)
	}
	return hex.EncodeToString(h.Sum(nil))
}
