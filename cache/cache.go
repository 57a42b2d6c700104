package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

var (
	DefaultCoverTTL     = 1 * time.Hour
	DefaultCandidateTTL = 6 * time.Hour
)

type Cache struct {
	Covers     *Keyed[[]byte]
	Candidates *Keyed[string]
}

func New() *Cache {
	return &Cache{
		Covers:     NewKeyed[[]byte](100),
		Candidates: NewKeyed[string](10_000),
	}
}

// Keyed is an LRU cache whose Fetch runs at most one loader per key at a time, so
// concurrent workers asking for the same cover share a single download.
type Keyed[T any] struct {
	c     *ccache.Cache[T]
	mux   sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mux  sync.Mutex
	refs int
}

func NewKeyed[T any](maxSize int64) *Keyed[T] {
	return &Keyed[T]{
		c: ccache.New(
			ccache.Configure[T]().
				MaxSize(maxSize).
				GetsPerPromote(3).
				ItemsToPrune(1),
		),
		mux:   sync.Mutex{},
		locks: make(map[string]*keyLock),
	}
}

func (c *Keyed[T]) acquire(k string) *keyLock {
	c.mux.Lock()
	l, ok := c.locks[k]
	if !ok {
		l = &keyLock{} //nolint:exhaustruct
		c.locks[k] = l
	}
	l.refs++
	c.mux.Unlock()

	l.mux.Lock()

	return l
}

func (c *Keyed[T]) release(k string, l *keyLock) {
	l.mux.Unlock()

	c.mux.Lock()
	l.refs--
	if l.refs == 0 {
		delete(c.locks, k)
	}
	c.mux.Unlock()
}

func (c *Keyed[T]) Fetch(k string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	l := c.acquire(k)
	defer c.release(k, l)

	item, err := c.c.Fetch(k, ttl, fetch)
	if nil != err {
		var zero T
		return zero, fmt.Errorf("fetch %s: %w", k, err)
	}

	return item.Value(), nil
}

func (c *Keyed[T]) Stop() {
	c.c.Stop()
}

func (c *Cache) Stop() {
	c.Covers.Stop()
	c.Candidates.Stop()
}
