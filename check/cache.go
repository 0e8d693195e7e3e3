package check

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wippyai/abi-runtime/layout"
)

// The memoization cache records (interface, implementation) pairs
// that already checked clean, keyed by type id. It is purely a
// performance optimization: disabling it never changes results,
// because layouts are immutable for the life of the process.

const defaultCacheSize = 1024

type idPair [2]layout.TypeID

var cache struct {
	mu  sync.RWMutex
	lru *lru.Cache[idPair, struct{}]
}

func init() {
	c, err := lru.New[idPair, struct{}](defaultCacheSize)
	if err != nil {
		panic(err)
	}
	cache.lru = c
}

// ResizeCache changes the capacity of the memoization cache. A size
// of zero disables memoization.
func ResizeCache(size int) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if size <= 0 {
		cache.lru = nil
		return
	}
	c, err := lru.New[idPair, struct{}](size)
	if err != nil {
		panic(err)
	}
	cache.lru = c
}

func cacheHit(t, o *layout.TypeLayout) bool {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	if cache.lru == nil {
		return false
	}
	_, ok := cache.lru.Get(idPair{t.TypeID(), o.TypeID()})
	return ok
}

func cacheStore(t, o *layout.TypeLayout) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	if cache.lru == nil {
		return
	}
	cache.lru.Add(idPair{t.TypeID(), o.TypeID()}, struct{}{})
}
