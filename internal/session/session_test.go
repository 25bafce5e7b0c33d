package session

import "testing"

func TestCreateReturnsUniqueAlnumID(t *testing.T) {
	r := New()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := r.Create(Session{})
		if len(id) != idLength {
			t.Fatalf("id length = %d, want %d", len(id), idLength)
		}
		for _, c := range id {
			if !isAlnum(byte(c)) {
				t.Fatalf("id %q contains non-alphanumeric rune %q", id, c)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestExistsAfterCreate(t *testing.T) {
	r := New()
	id := r.Create(Session{Compress: true, Intents: 7})

	if !r.Exists(id) {
		t.Fatal("Exists should be true immediately after Create")
	}
	if r.Exists("not-a-real-session-id") {
		t.Fatal("Exists should be false for an unknown id")
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	r := New()
	shard := &Shard{Index: 0, Total: 2}
	id := r.Create(Session{Shard: shard, Compress: false, Intents: 42})

	got, ok := r.Get(id)
	if !ok {
		t.Fatal("Get should find the created session")
	}
	if got.Intents != 42 || got.Compress != false {
		t.Fatalf("Get returned %+v, want Intents=42 Compress=false", got)
	}
	if got.Shard == nil || got.Shard.Index != 0 || got.Shard.Total != 2 {
		t.Fatalf("Get returned shard %+v, want {0 2}", got.Shard)
	}

	if _, ok := r.Get("unknown"); ok {
		t.Fatal("Get should report ok=false for an unknown id")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	r := New()
	id := r.Create(Session{})

	r.Destroy(id)
	if r.Exists(id) {
		t.Fatal("session should not exist after Destroy")
	}

	// Destroying again must not panic and must leave the same observable state.
	r.Destroy(id)
	if r.Exists(id) {
		t.Fatal("session should still not exist after a second Destroy")
	}
}

func TestDestroyUnknownIDIsNoop(t *testing.T) {
	r := New()
	r.Destroy("never-existed-00000000000000000")
}

func isAlnum(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	default:
		return false
	}
}
