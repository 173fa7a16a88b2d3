package service

import (
	"github.com/synchthia/kaizen/storage"
	"go.uber.org/zap"
)

// CacheService remembers which blobs are already in the bucket so repeated
// uploads skip them.
type CacheService struct {
	store *storage.Storage
	Cache *Cache
}

type Cache struct {
	Blobs map[string]*CachedBlob `json:"blobs,omitempty"`
}

type CachedBlob struct {
	Key  string `json:"key"`
	Size uint64 `json:"size"`
}

const cacheFileName = "kaizen-cache.json"

func InitCache(dirPath string, log *zap.Logger) (*CacheService, error) {
	cache := &Cache{}

	store, err := storage.New(dirPath, log)
	if err != nil {
		return nil, err
	}

	if _, err := store.Load(cacheFileName, cache); err != nil {
		return nil, err
	}
	if cache.Blobs == nil {
		cache.Blobs = make(map[string]*CachedBlob)
	}

	return &CacheService{
		store: store,
		Cache: cache,
	}, nil
}

func (c *CacheService) Has(hash string) bool {
	_, ok := c.Cache.Blobs[hash]
	return ok
}

func (c *CacheService) Put(hash string, blob *CachedBlob) {
	c.Cache.Blobs[hash] = blob
}

func (c *CacheService) Save() error {
	return c.store.Save(cacheFileName, c.Cache)
}
