package domain

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestRecentSet_AddContains(t *testing.T) {
	var s RecentSet
	if !s.Add("a") {
		t.Error("first Add should report true")
	}
	if s.Add("a") {
		t.Error("duplicate Add should report false")
	}
	if !s.Contains("a") || s.Contains("b") {
		t.Error("membership mismatch")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestRecentSet_TruncateKeepsNewest(t *testing.T) {
	var s RecentSet
	for i := 0; i < 10; i++ {
		s.Add(fmt.Sprint(i))
	}
	s.Truncate(3)

	got := s.Members()
	want := []string{"7", "8", "9"}
	if len(got) != len(want) {
		t.Fatalf("Members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Members = %v, want %v", got, want)
		}
	}
	if s.Contains("0") {
		t.Error("dropped member still reported present")
	}

	// Dropped members can be re-added and are the newest afterwards.
	if !s.Add("0") {
		t.Error("re-adding dropped member should succeed")
	}
	if m := s.Members(); m[len(m)-1] != "0" {
		t.Errorf("Members = %v, want 0 last", m)
	}
}

func TestRecentSet_RepeatedTruncation(t *testing.T) {
	var s RecentSet
	for round := 0; round < 5; round++ {
		for i := 0; i < 100; i++ {
			s.Add(fmt.Sprintf("%d-%d", round, i))
		}
		s.Truncate(50)
		if s.Len() != 50 {
			t.Fatalf("round %d: Len = %d, want 50", round, s.Len())
		}
	}
	if !s.Contains("4-99") || s.Contains("4-49") {
		t.Error("truncation kept the wrong members")
	}
}

func TestRecentSet_JSON(t *testing.T) {
	var s RecentSet
	s.Add("a")
	s.Add("b")
	s.Add("c")
	s.Truncate(2)

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `["b","c"]` {
		t.Errorf("Marshal = %s", b)
	}

	var got RecentSet
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Contains("b") || got.Contains("a") || got.Len() != 2 {
		t.Errorf("decoded Members = %v", got.Members())
	}
}
