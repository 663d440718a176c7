package cache

import (
	"strings"

	pkgcache "MarketPulse/pkg/cache"
)

// Fingerprint derives the deterministic cache key for an operation and its
// normalized parameters. The same operation with the same parameters always
// addresses the same entry.
func Fingerprint(operation string, params ...string) string {
	raw := pkgcache.GenerateKey(operation, strings.Join(params, ":"))
	return operation + ":" + pkgcache.HashKey(raw)
}
