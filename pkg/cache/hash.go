package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash fingerprints a source document. The runner keys artifacts by this
// digest, so two uploads of the same plan share cached renders.
func Hash(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

// Key builds an artifact key of the form "kind:digest". Each part is
// written with its Go type, so the option 4 and the string "4" give
// different keys, and parts are NUL-separated so adjacent strings cannot
// run together.
func Key(kind string, parts ...any) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%T=%v\x00", part, part)
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
