// Package identity derives stable artifact identifiers from upload names and
// content checksums. Minting is a pure function of its inputs, which is what
// makes re-upload detection an upsert instead of a duplicate insert.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const checksumSuffixLen = 8

type Minter struct {
	namespace string
}

func NewMinter(namespace string) *Minter {
	return &Minter{namespace: strings.TrimRight(namespace, "_")}
}

// Mint returns the primary identifier for a filename:
// <namespace>_<sanitized-filename>.
func (m *Minter) Mint(filename string) string {
	return fmt.Sprintf("%s_%s", m.namespace, SanitizeFilename(filename))
}

// MintWithChecksum returns the collision-resolved identifier used when the
// plain identifier is already bound to different content. The suffix is a
// fixed checksum prefix, so identical inputs always resolve identically.
func (m *Minter) MintWithChecksum(filename, checksum string) string {
	suffix := checksum
	if len(suffix) > checksumSuffixLen {
		suffix = suffix[:checksumSuffixLen]
	}
	return fmt.Sprintf("%s_%s", m.Mint(filename), suffix)
}

// Checksum computes the hex sha256 of the content stream.
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("checksum content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SanitizeFilename reduces an upload name to a safe identifier fragment.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "artifact.bin"
	}
	return base
}
