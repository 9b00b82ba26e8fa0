package session

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ideaboard/internal/profile"
)

// profileCache maps lowercased email to the last-fetched profile. Entries
// expire after the configured TTL and the entry count is hard-capped, so the
// cache cannot grow without bound across a long-lived session. Invalidation
// stays an explicit, narrow operation: logout flushes everything, recovery
// flows drop single entries.
type profileCache struct {
	c       *gocache.Cache
	maxSize int
}

func newProfileCache(ttl time.Duration, maxSize int) *profileCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = 256
	}
	return &profileCache{
		c:       gocache.New(ttl, time.Minute),
		maxSize: maxSize,
	}
}

func cacheKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (pc *profileCache) get(email string) (*profile.Profile, bool) {
	v, ok := pc.c.Get(cacheKey(email))
	if !ok {
		return nil, false
	}
	p, ok := v.(profile.Profile)
	if !ok {
		return nil, false
	}
	copied := p
	return &copied, true
}

func (pc *profileCache) set(email string, p profile.Profile) {
	if pc.c.ItemCount() >= pc.maxSize {
		pc.c.DeleteExpired()
		if pc.c.ItemCount() >= pc.maxSize {
			pc.c.Flush()
		}
	}
	pc.c.SetDefault(cacheKey(email), p)
}

func (pc *profileCache) delete(email string) {
	pc.c.Delete(cacheKey(email))
}

func (pc *profileCache) flush() {
	pc.c.Flush()
}

func (pc *profileCache) len() int {
	return pc.c.ItemCount()
}
