package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SignedURLKey returns the cache key for a signed retrieval URL of a
// stored object, per storage class. The metadata API behind signed-URL
// generation is rate limited, so fresh URLs are cached below their
// validity window instead of re-requested per proxy hit.
func (r *CacheKeyStruct) SignedURLKey(resourceType, publicID string) string {
	return fmt.Sprintf("signed_url:%s:%s", resourceType, publicID)
}

// ResourceClassKey returns the cache key for the discovered storage
// class of an object (image vs raw), avoiding repeat probe sequences.
func (r *CacheKeyStruct) ResourceClassKey(publicID string) string {
	return fmt.Sprintf("resource_class:%s", publicID)
}

var CacheKey = NewCacheKeyStruct()
