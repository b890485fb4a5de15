// Package identity derives the stable, source-qualified identifier used to
// decide whether a posting has been reported before.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

// hashLen is the number of hex characters kept from the content hash.
const hashLen = 32

// Resolve returns the identifier for p.
//
// When the source supplied its own id the identifier is "source:id". Otherwise
// it is "source:" followed by a hash of the case-folded title, company, and
// URL host+path. Query strings and fragments never contribute, so per-fetch
// tracking parameters do not defeat deduplication.
func Resolve(p model.Posting) string {
	if id := strings.TrimSpace(p.ExternalID); id != "" {
		return p.SourceName + ":" + id
	}
	return p.SourceName + ":" + ContentHash(p.Title, p.Company, p.URL)
}

// ContentHash is the fallback fingerprint of a posting without an external id.
func ContentHash(title, company, rawURL string) string {
	key := fold(title) + "|" + fold(company) + "|" + urlKey(rawURL)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:hashLen]
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// urlKey reduces a URL to lower-cased host+path with trailing slashes removed.
// Unparseable input falls back to the text before any '?' or '#'.
func urlKey(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			raw = raw[:i]
		}
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	key := strings.ToLower(u.Host) + strings.ToLower(u.EscapedPath())
	return strings.TrimRight(key, "/")
}
