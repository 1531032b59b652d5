package domain

import (
	"encoding/json"
	"sort"
)

// CountEntry is the serialized form of one Counter key.
type CountEntry[K comparable] struct {
	Key   K     `json:"key"`
	Count int64 `json:"count"`
}

// Counter is a map of counts that remembers first-insertion order, so that
// ranking is stable among equal counts. It serializes as an array of entries.
type Counter[K comparable] struct {
	entries []CountEntry[K]
	index   map[K]int
}

// Inc adds one to k, creating it at 1 if absent.
func (c *Counter[K]) Inc(k K) {
	if c.index == nil {
		c.index = make(map[K]int)
	}
	if i, ok := c.index[k]; ok {
		c.entries[i].Count++
		return
	}
	c.index[k] = len(c.entries)
	c.entries = append(c.entries, CountEntry[K]{Key: k, Count: 1})
}

func (c *Counter[K]) Get(k K) int64 {
	if i, ok := c.index[k]; ok {
		return c.entries[i].Count
	}
	return 0
}

func (c *Counter[K]) Len() int { return len(c.entries) }

// Entries returns a copy of all entries in insertion order.
func (c *Counter[K]) Entries() []CountEntry[K] {
	out := make([]CountEntry[K], len(c.entries))
	copy(out, c.entries)
	return out
}

// Top returns at most n entries ordered by count descending. Ties keep
// insertion order.
func (c *Counter[K]) Top(n int) []CountEntry[K] {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (c *Counter[K]) Clone() Counter[K] {
	var cp Counter[K]
	cp.load(c.entries)
	return cp
}

func (c *Counter[K]) load(entries []CountEntry[K]) {
	c.entries = make([]CountEntry[K], 0, len(entries))
	c.index = make(map[K]int, len(entries))
	for _, e := range entries {
		if i, ok := c.index[e.Key]; ok {
			c.entries[i].Count += e.Count
			continue
		}
		c.index[e.Key] = len(c.entries)
		c.entries = append(c.entries, e)
	}
}

func (c Counter[K]) MarshalJSON() ([]byte, error) {
	if c.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.entries)
}

func (c *Counter[K]) UnmarshalJSON(b []byte) error {
	var entries []CountEntry[K]
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	c.load(entries)
	return nil
}
