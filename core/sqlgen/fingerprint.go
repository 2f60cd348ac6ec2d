package sqlgen

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the hex-encoded BLAKE3 hash of DDL text. Generation is
// deterministic, so equal fingerprints mean the schema is unchanged; the
// session layer uses this for no-op detection and export reports it.
func Fingerprint(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
