package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SponsorListKey returns the cache key for the full sponsor listing
func (r *CacheKeyStruct) SponsorListKey() string {
	return "sponsors:all"
}

// SponsorKey returns the cache key for a single sponsor document
func (r *CacheKeyStruct) SponsorKey(sponsorID string) string {
	return fmt.Sprintf("sponsor:%s", sponsorID)
}

var CacheKey = NewCacheKeyStruct()
