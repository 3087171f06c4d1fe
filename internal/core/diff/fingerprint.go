package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Fingerprint identifies one version of a path's content by modification
// metadata plus a content hash. Identical fingerprints mean identical
// content; comparable, so usable directly as a cache key.
type Fingerprint struct {
	ModTime int64 // unix nanoseconds
	Size    int64
	Sum     string // sha256 hex of the content
}

// NewFingerprint computes a fingerprint for a content version.
func NewFingerprint(modTime time.Time, data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint{
		ModTime: modTime.UnixNano(),
		Size:    int64(len(data)),
		Sum:     hex.EncodeToString(sum[:]),
	}
}

// IsZero reports whether the fingerprint is unset, as for a path that did
// not exist.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%d-%d-%s", f.ModTime, f.Size, f.Sum)
}

// Short returns an abbreviated content hash for log output. The zero
// fingerprint, which stands for a path with no prior version, reads "none".
func (f Fingerprint) Short() string {
	if len(f.Sum) < 8 {
		return "none"
	}
	return f.Sum[:8]
}
