package module

// CacheMetrics collects hit/miss statistics for the storage read caches.
type CacheMetrics interface {

	// CacheHit is called when the resource was served from the cache.
	CacheHit(resource string)

	// CacheMiss is called when the resource had to be fetched from the
	// underlying store.
	CacheMiss(resource string)

	// CacheEntries reports the current number of cached entries.
	CacheEntries(resource string, count uint)
}
