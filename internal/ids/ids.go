// Package ids mints the content-addressed identifiers used throughout the
// store. Identifiers are pure functions of their inputs: hashing the same
// parts always yields the same URN regardless of process, host, or time,
// which is what makes rebuilds idempotent and lets a parent's section ID be
// computed from its element ID alone.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// urnPrefix namespaces every minted identifier.
const urnPrefix = "urn:lex"

// partSeparator joins URN parts before hashing. Changing it changes every
// identifier the tool has ever minted.
const partSeparator = "|"

// Hash returns the hex-encoded SHA-256 digest of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// URN mints a stable identifier in the given namespace from the joined parts.
func URN(namespace string, parts ...string) string {
	return urnPrefix + ":" + namespace + ":" + Hash(strings.Join(parts, partSeparator))
}

// NowISO returns the current UTC time in ISO-8601 with second precision and
// a trailing "Z" (e.g. 2026-08-28T12:00:00Z).
func NowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}
