package analytics

import "testing"

func TestHasher_Fingerprint(t *testing.T) {
	h := NewHasher("salt")

	a := h.Fingerprint("203.0.113.7", "Mozilla/5.0")
	if len(a) != FingerprintLen {
		t.Fatalf("len = %d, want %d", len(a), FingerprintLen)
	}
	if b := h.Fingerprint("203.0.113.7", "Mozilla/5.0"); a != b {
		t.Error("same inputs gave different fingerprints")
	}
	if c := h.Fingerprint("203.0.113.8", "Mozilla/5.0"); a == c {
		t.Error("different address gave the same fingerprint")
	}
	if d := NewHasher("other").Fingerprint("203.0.113.7", "Mozilla/5.0"); a == d {
		t.Error("different salt gave the same fingerprint")
	}
}

func TestHasher_FieldBoundaries(t *testing.T) {
	h := NewHasher("")
	if h.Fingerprint("ab", "c") == h.Fingerprint("a", "bc") {
		t.Error("fields must not run together")
	}
	if got := h.Fingerprint("", ""); len(got) != FingerprintLen {
		t.Errorf("empty inputs: len = %d", len(got))
	}
}
