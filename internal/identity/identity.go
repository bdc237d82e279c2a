// Package identity derives stable point IDs from document names, so
// re-ingesting the same file updates its point instead of duplicating it.
package identity

import "github.com/google/uuid"

// Namespace for name-based IDs. Fixed so the same name maps to the same
// ID across processes and machines.
var namespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// ForName returns the deterministic UUIDv5 ID for a document name.
func ForName(name string) string {
	return uuid.NewSHA1(namespace, []byte(name)).String()
}
