// Package cache holds small in-process caches for derived data such as
// report totals.
package cache

// Cache is a keyed store of values that may disappear at any time.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Purge()
	Len() int
}
