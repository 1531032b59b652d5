package domain

import "encoding/json"

// RecentSet is an insertion-ordered set of fingerprints with O(1) membership.
// It is a recency window, not a history: Truncate drops the oldest members.
// Serialized as an array, oldest first.
type RecentSet struct {
	items   []string // items[head:] are live, oldest first
	head    int
	members map[string]struct{}
}

func (s *RecentSet) Contains(fp string) bool {
	_, ok := s.members[fp]
	return ok
}

func (s *RecentSet) Len() int { return len(s.items) - s.head }

// Add appends fp as the newest member. It reports false if fp was present.
func (s *RecentSet) Add(fp string) bool {
	if s.members == nil {
		s.members = make(map[string]struct{})
	}
	if _, ok := s.members[fp]; ok {
		return false
	}
	s.members[fp] = struct{}{}
	s.items = append(s.items, fp)
	return true
}

// Truncate keeps only the keep most recently added members.
func (s *RecentSet) Truncate(keep int) {
	if keep < 0 {
		keep = 0
	}
	drop := s.Len() - keep
	if drop <= 0 {
		return
	}
	for _, fp := range s.items[s.head : s.head+drop] {
		delete(s.members, fp)
	}
	clear(s.items[s.head : s.head+drop])
	s.head += drop
	if s.head > len(s.items)/2 {
		s.items = append(s.items[:0:0], s.items[s.head:]...)
		s.head = 0
	}
}

// Members returns the live members, oldest first.
func (s *RecentSet) Members() []string {
	out := make([]string, s.Len())
	copy(out, s.items[s.head:])
	return out
}

func (s *RecentSet) Clone() RecentSet {
	var cp RecentSet
	cp.load(s.items[s.head:])
	return cp
}

func (s *RecentSet) load(fps []string) {
	s.items = make([]string, 0, len(fps))
	s.head = 0
	s.members = make(map[string]struct{}, len(fps))
	for _, fp := range fps {
		s.Add(fp)
	}
}

func (s RecentSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Members())
}

func (s *RecentSet) UnmarshalJSON(b []byte) error {
	var fps []string
	if err := json.Unmarshal(b, &fps); err != nil {
		return err
	}
	s.load(fps)
	return nil
}
