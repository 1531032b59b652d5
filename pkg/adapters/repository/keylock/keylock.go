// Package keylock serializes writers per key without a global lock.
package keylock

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const DefaultStripes = 256

// Striped maps keys onto a fixed set of mutexes. Two keys may share a
// stripe; a key never maps to two stripes.
type Striped struct {
	stripes []sync.Mutex
}

func New(n int) *Striped {
	if n <= 0 {
		n = DefaultStripes
	}
	return &Striped{stripes: make([]sync.Mutex, n)}
}

func (s *Striped) Lock(key string) (unlock func()) {
	mu := &s.stripes[xxhash.Sum64String(key)%uint64(len(s.stripes))]
	mu.Lock()
	return mu.Unlock
}
