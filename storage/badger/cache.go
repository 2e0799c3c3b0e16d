package badger

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/module"
)

func withLimit(limit uint) func(*Cache) {
	return func(c *Cache) {
		c.limit = limit
	}
}

type storeFunc func(group.InternalID, interface{}) error

func withStore(store storeFunc) func(*Cache) {
	return func(c *Cache) {
		c.store = store
	}
}

func noStore(group.InternalID, interface{}) error {
	return fmt.Errorf("no store function for cache put available")
}

type retrieveFunc func(group.InternalID) (interface{}, error)

func withRetrieve(retrieve retrieveFunc) func(*Cache) {
	return func(c *Cache) {
		c.retrieve = retrieve
	}
}

func noRetrieve(group.InternalID) (interface{}, error) {
	return nil, fmt.Errorf("no retrieve function for cache get available")
}

func withResource(resource string) func(*Cache) {
	return func(c *Cache) {
		c.resource = resource
	}
}

// Cache is a read-through LRU in front of the badger-backed store, keyed by
// group internal id.
type Cache struct {
	metrics  module.CacheMetrics
	limit    uint
	store    storeFunc
	retrieve retrieveFunc
	resource string
	cache    *lru.Cache
}

func newCache(collector module.CacheMetrics, options ...func(*Cache)) *Cache {
	c := Cache{
		metrics:  collector,
		limit:    1000,
		store:    noStore,
		retrieve: noRetrieve,
		resource: "undefined",
	}
	for _, option := range options {
		option(&c)
	}
	c.cache, _ = lru.New(int(c.limit))
	c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	return &c
}

// Get will try to retrieve the resource from cache first, and then from the
// injected store.
func (c *Cache) Get(internalID group.InternalID) (interface{}, error) {

	resource, cached := c.cache.Get(internalID)
	if cached {
		c.metrics.CacheHit(c.resource)
		return resource, nil
	}

	c.metrics.CacheMiss(c.resource)
	resource, err := c.retrieve(internalID)
	if err != nil {
		return nil, err
	}

	evicted := c.cache.Add(internalID, resource)
	if !evicted {
		c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	}

	return resource, nil
}

// Put will persist the resource through the injected store and add it to the
// cache.
func (c *Cache) Put(internalID group.InternalID, resource interface{}) error {

	err := c.store(internalID, resource)
	if err != nil {
		return err
	}

	evicted := c.cache.Add(internalID, resource)
	if !evicted {
		c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	}

	return nil
}

// Remove drops the resource from the cache only.
func (c *Cache) Remove(internalID group.InternalID) {
	c.cache.Remove(internalID)
	c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
}
