package storage

import (
	"github.com/dgraph-io/ristretto/v2"
)

// cachedPages is how many deserialized-page slots the read cache budgets for.
const cachedPages = 1024

// pageCache is a read-through cache of raw page images keyed by page id.
// It holds serialized bytes rather than *Page so a cached hit can never
// alias a page the caller is still mutating. Admission is best-effort
// (ristretto may drop a Set); correctness never depends on a hit.
type pageCache struct {
	cache *ristretto.Cache[uint64, []byte]
}

func newPageCache() (*pageCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[uint64, []byte]{
		NumCounters: cachedPages * 10,
		MaxCost:     cachedPages * PageSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &pageCache{cache: c}, nil
}

func (pc *pageCache) get(id uint64) ([]byte, bool) {
	return pc.cache.Get(id)
}

func (pc *pageCache) put(id uint64, raw []byte) {
	pc.cache.Set(id, raw, PageSize)
}

func (pc *pageCache) drop(id uint64) {
	pc.cache.Del(id)
}

func (pc *pageCache) close() {
	pc.cache.Close()
}
