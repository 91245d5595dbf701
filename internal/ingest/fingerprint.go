// Package ingest assigns stable sequential identifiers to new complaint
// rows and rejects rows that were already ingested.
package ingest

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// Fingerprint computes the dedup key for a candidate row: a SHA-256 over
// the order id plus a normalized projection of the row's content fields.
// Two rows with the same order id and the same content (modulo case and
// whitespace) map to the same key.
//
// The projection defaults to the complaint's textual content (category,
// product, description) and is configurable via INGEST_DEDUP_FIELDS.
func Fingerprint(orderID string, fields map[string]string, projection []string) string {
	var b strings.Builder
	b.WriteString(normalize(orderID))
	for _, name := range projection {
		b.WriteByte('\n')
		b.WriteString(normalize(fields[name]))
	}
	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", hash)
}

// normalize collapses whitespace and lowercases, so cosmetic edits in the
// source do not produce a new record.
func normalize(s string) string {
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	return strings.TrimSpace(s)
}
