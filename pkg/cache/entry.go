package cache

import (
	"container/list"
	"time"
)

// entry is a stored value with its freshness window. Values are
// immutable once stored; Set replaces the whole entry, it never merges.
type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration

	// lruElem is the entry's position in the recency list, nil when
	// the store is unbounded.
	lruElem *list.Element
}

// expiredAt reports whether the entry's TTL has elapsed at now.
func (e *entry) expiredAt(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}
